//go:build !linux

package system

import "context"

// WatchExitKeys needs evdev; elsewhere it only logs.
func WatchExitKeys(ctx context.Context, l Logger, onExit func()) {
	logInfo(l, "input", "exit keys are only supported on linux")
}
