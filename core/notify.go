package core

// Notifier surfaces transient, user-facing notifications (the toast equivalent).
// Implementations must never block or fail the calling operation.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}
