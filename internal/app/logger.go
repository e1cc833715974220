package app

import (
	"fmt"
	"io"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger interface {
	Infof(component string, format string, args ...any)
	Errorf(component string, format string, args ...any)
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...any)  {}
func (NoopLogger) Errorf(component, format string, args ...any) {}

// FileLogger writes "<RFC3339> [LEVEL] component: message" lines. It is
// safe for concurrent use.
type FileLogger struct {
	mu  *sync.Mutex
	w   io.Writer
	now func() time.Time
}

func NewFileLogger(w io.Writer) FileLogger {
	return FileLogger{mu: &sync.Mutex{}, w: w, now: time.Now}
}

func (l FileLogger) Infof(component string, format string, args ...any) {
	l.write("INFO", component, format, args...)
}

func (l FileLogger) Errorf(component string, format string, args ...any) {
	l.write("ERROR", component, format, args...)
}

func (l FileLogger) write(level, component, format string, args ...any) {
	line := l.now().Format(time.RFC3339) + " [" + level + "] " + component + ": " + fmt.Sprintf(format, args...) + "\n"
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.w, line)
}

// NewRotatingFile opens a size-rotated log file for the debug log.
func NewRotatingFile(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MiB
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}
}
