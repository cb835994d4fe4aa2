// Package notify tells running processes that the persisted environment
// changed, so new shells pick up PATH edits without a reboot.
package notify

import (
	"context"
	"time"
)

// DefaultTimeout bounds how long each receiving window may take to answer.
const DefaultTimeout = 5 * time.Second

// Notifier broadcasts an environment change.
type Notifier interface {
	Notify(ctx context.Context, timeout time.Duration) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, timeout time.Duration) error

// Notify implements Notifier.
func (f Func) Notify(ctx context.Context, timeout time.Duration) error { return f(ctx, timeout) }

// Noop never notifies anyone.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, time.Duration) error { return nil }
