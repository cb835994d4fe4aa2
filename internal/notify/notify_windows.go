//go:build windows

package notify

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	hwndBroadcast   = 0xFFFF
	wmSettingChange = 0x001A
	smtoAbortIfHung = 0x0002
)

var procSendMessageTimeoutW = windows.NewLazySystemDLL("user32.dll").NewProc("SendMessageTimeoutW")

// System broadcasts WM_SETTINGCHANGE("Environment") to all top-level windows.
type System struct{}

// New returns the platform notifier.
func New() Notifier { return System{} }

// Notify implements Notifier. timeout applies per window; windows that hang
// are skipped by the system rather than blocking the broadcast.
func (System) Notify(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	env, err := windows.UTF16PtrFromString("Environment")
	if err != nil {
		return err
	}
	var result uintptr
	r, _, callErr := procSendMessageTimeoutW.Call(
		uintptr(hwndBroadcast),
		uintptr(wmSettingChange),
		0,
		uintptr(unsafe.Pointer(env)),
		uintptr(smtoAbortIfHung),
		uintptr(timeout.Milliseconds()),
		uintptr(unsafe.Pointer(&result)),
	)
	if r != 0 {
		return nil
	}
	// A zero return with ERROR_TIMEOUT only means some window did not answer.
	if errors.Is(callErr, windows.ERROR_TIMEOUT) {
		return nil
	}
	return fmt.Errorf("broadcast environment change: %w", callErr)
}
