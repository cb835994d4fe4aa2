//go:build !windows

package notify

// New returns the platform notifier. There is nothing to broadcast to
// outside Windows.
func New() Notifier { return Noop{} }
