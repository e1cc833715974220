//go:build !linux

package system

func AcquireConsole(l Logger) (release func()) {
	logInfo(l, "tty", "console mode switching is only supported on linux")
	return func() {}
}
