// Package system holds the Linux console and input plumbing. Everything
// here is best-effort: failures are logged and the clock keeps running.
package system

type Logger interface {
	Infof(component, format string, args ...any)
	Errorf(component, format string, args ...any)
}

func logInfo(l Logger, component, format string, args ...any) {
	if l != nil {
		l.Infof(component, format, args...)
	}
}

func logError(l Logger, component, format string, args ...any) {
	if l != nil {
		l.Errorf(component, format, args...)
	}
}
