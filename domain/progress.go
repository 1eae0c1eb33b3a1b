package domain

// ProgressManager creates progress trackers for long running tasks
type ProgressManager interface {
	// StartTask starts tracking a task of total units
	StartTask(description string, total int) TaskProgress

	// IsInteractive reports whether progress is rendered to a terminal
	IsInteractive() bool

	// Close finishes every task still open
	Close()
}

// TaskProgress tracks one task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	Complete()
}
