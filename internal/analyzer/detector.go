package analyzer

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ludo-technologies/jsfix/internal/parser"
)

// DetectionKind identifies the rule that produced a Detection
type DetectionKind uint8

const (
	DetectConsoleCall DetectionKind = iota + 1
	DetectDebugger
	DetectDialogCall
	DetectEval
	DetectAnyType
	DetectAnyCast
	DetectNonNull
	DetectDoubleCast
	DetectTSIgnore
	DetectTSNoCheck
	DetectTSExpectError
	DetectESLintDisable
	DetectHardcodedNumber
	DetectHardcodedURL
	DetectHardcodedColor
	DetectRequire
	DetectExecInjection
	DetectPathTraversal
	DetectMissingReturnType
)

// Payload carries detector specific data about a finding
type Payload struct {
	Name   string // identifier involved (method, callee, function name)
	Text   string // source excerpt of the offending node
	Detail string // extra rule data, e.g. a suggested return type
}

// Detection is a raw finding keyed by byte offset into the file text
type Detection struct {
	Kind    DetectionKind
	Offset  int
	Payload Payload
}

// Family groups detectors for enabling and skip-listing
type Family string

const (
	FamilySuspiciousCalls Family = "suspicious_calls"
	FamilyTypeEscapes     Family = "type_escapes"
	FamilySuppressions    Family = "suppressions"
	FamilyHardcoded       Family = "hardcoded"
	FamilyLegacy          Family = "legacy"
	FamilyReturnTypes     Family = "return_types"
)

// AllFamilies returns every detector family
func AllFamilies() []Family {
	return []Family{
		FamilySuspiciousCalls,
		FamilyTypeEscapes,
		FamilySuppressions,
		FamilyHardcoded,
		FamilyLegacy,
		FamilyReturnTypes,
	}
}

// Detector is one independent rule. It inspects a single node and never
// recurses; the visitor handles traversal.
type Detector interface {
	// Family names the group the detector belongs to
	Family() Family

	// Kinds is the set of node kinds the detector wants to see
	Kinds() []parser.NodeKind

	// Detect returns a finding for node, or false
	Detect(node *parser.Node, ctx VisitContext) (Detection, bool)
}

// Registry holds detectors registered once and dispatched per node kind
type Registry struct {
	detectors []Detector
	skip      map[Family][]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{skip: make(map[Family][]string)}
}

// Register adds a detector
func (r *Registry) Register(d Detector) {
	r.detectors = append(r.detectors, d)
}

// SkipFiles makes every detector of family ignore files matching any of the glob patterns
func (r *Registry) SkipFiles(family Family, patterns ...string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid skip pattern %q for %s", p, family)
		}
	}
	r.skip[family] = append(r.skip[family], patterns...)
	return nil
}

// Detectors returns the registered detectors
func (r *Registry) Detectors() []Detector {
	return r.detectors
}

// dispatchTable maps each node kind to the detectors interested in it
type dispatchTable [parser.NodeKindCount][]Detector

// ForFile builds the dispatch table for one file, leaving out detectors
// whose family is skip-listed for path.
func (r *Registry) ForFile(path string) *dispatchTable {
	var table dispatchTable
	slashed := slashPath(path)
	for _, d := range r.detectors {
		if r.skipped(d.Family(), slashed) {
			continue
		}
		for _, k := range d.Kinds() {
			table[k] = append(table[k], d)
		}
	}
	return &table
}

func (r *Registry) skipped(family Family, path string) bool {
	for _, pattern := range r.skip[family] {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

func slashPath(path string) string {
	return filepath.ToSlash(path)
}
