package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ludo-technologies/jsfix/internal/parser"
)

// DefaultAllowedNumbers are numeric literals that never count as magic numbers
var DefaultAllowedNumbers = []float64{0, 1, 2, 10, 100, 1000, -1}

var (
	timingLine   = regexp.MustCompile(`(?i)timeout|delay|interval|duration|sleep`)
	urlLiteral   = regexp.MustCompile(`^https?://([^/:?#\s]+)`)
	colorLiteral = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

var allowedURLHosts = []string{"localhost", "127.0.0.1", "w3.org", "schema.org"}

// HardcodedLiteralDetector finds magic numbers, absolute URLs and hex colors
type HardcodedLiteralDetector struct {
	allowed map[float64]bool
}

// NewHardcodedLiteralDetector creates the detector with an allow-list of numbers
func NewHardcodedLiteralDetector(allowed []float64) *HardcodedLiteralDetector {
	if len(allowed) == 0 {
		allowed = DefaultAllowedNumbers
	}
	set := make(map[float64]bool, len(allowed))
	for _, n := range allowed {
		set[n] = true
	}
	return &HardcodedLiteralDetector{allowed: set}
}

func (d *HardcodedLiteralDetector) Family() Family { return FamilyHardcoded }

func (d *HardcodedLiteralDetector) Kinds() []parser.NodeKind {
	return []parser.NodeKind{parser.NodeNumber, parser.NodeString}
}

func (d *HardcodedLiteralDetector) Detect(node *parser.Node, ctx VisitContext) (Detection, bool) {
	if node.Kind == parser.NodeNumber {
		return d.detectNumber(node, ctx)
	}
	return d.detectString(node, ctx)
}

func (d *HardcodedLiteralDetector) detectNumber(node *parser.Node, ctx VisitContext) (Detection, bool) {
	if ctx.InsideUpperCaseConstDecl || ctx.ParentIsComputedMember || ctx.ParentKind == parser.NodeLiteralType {
		return Detection{}, false
	}

	value, ok := parseNumber(node.Raw)
	if !ok {
		return Detection{}, false
	}
	text := node.Raw
	if ctx.Negated {
		value = -value
		text = "-" + text
	}
	if d.allowed[value] {
		return Detection{}, false
	}
	if timingLine.MatchString(ctx.File.LineText(node.Span.Start)) {
		return Detection{}, false
	}

	return Detection{Kind: DetectHardcodedNumber, Offset: node.Span.Start, Payload: Payload{Text: text}}, true
}

func (d *HardcodedLiteralDetector) detectString(node *parser.Node, ctx VisitContext) (Detection, bool) {
	if ctx.ParentKind == parser.NodeImportDeclaration || ctx.ParentKind == parser.NodeExportStatement {
		return Detection{}, false
	}
	value := unquote(node.Raw)

	if m := urlLiteral.FindStringSubmatch(value); m != nil {
		if isAllowedHost(strings.ToLower(m[1])) {
			return Detection{}, false
		}
		return Detection{Kind: DetectHardcodedURL, Offset: node.Span.Start, Payload: Payload{Text: value}}, true
	}

	if colorLiteral.MatchString(value) && !ctx.File.IsStyleFile() {
		return Detection{Kind: DetectHardcodedColor, Offset: node.Span.Start, Payload: Payload{Text: value}}, true
	}

	return Detection{}, false
}

func isAllowedHost(host string) bool {
	for _, allowed := range allowedURLHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	// example.com, example.org, api.example.net, ...
	labels := strings.Split(host, ".")
	for i := 0; i < len(labels)-1; i++ {
		if labels[i] == "example" {
			return true
		}
	}
	return false
}

// parseNumber parses a JavaScript numeric literal. BigInt literals and
// anything unparsable report false.
func parseNumber(raw string) (float64, bool) {
	s := strings.ReplaceAll(raw, "_", "")
	if s == "" || strings.HasSuffix(s, "n") {
		return 0, false
	}
	lower := strings.ToLower(s)
	if len(lower) > 2 && lower[0] == '0' && strings.ContainsRune("xob", rune(lower[1])) {
		v, err := strconv.ParseInt(lower, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(v), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
