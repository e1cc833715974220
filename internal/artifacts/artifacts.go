// Package artifacts writes intermediate bitmaps to disk for inspection.
package artifacts

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
)

// Well-known prefixes.
const (
	PrefixHands      = "clockface"
	PrefixPreAPI     = "preapi"
	PrefixBackground = "background"
)

type Logger interface {
	Infof(component, format string, args ...any)
	Errorf(component, format string, args ...any)
}

// Saver writes debug_<prefix>_<HHMMSS>.png files into Dir. A Saver with an
// empty Dir, or a nil *Saver, does nothing.
type Saver struct {
	Dir    string
	Clock  clockwork.Clock
	Logger Logger
}

func NewSaver(dir string, logger Logger) *Saver {
	return &Saver{Dir: dir, Clock: clockwork.NewRealClock(), Logger: logger}
}

func (s *Saver) Enabled() bool { return s != nil && s.Dir != "" }

// Save writes img and returns the path. Failures are logged, never returned
// to the caller's control flow; the path is empty on failure.
func (s *Saver) Save(prefix string, img image.Image) string {
	if !s.Enabled() || img == nil {
		return ""
	}
	path, err := s.write(prefix, img)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Errorf("artifacts", "save %s: %v", prefix, err)
		}
		return ""
	}
	if s.Logger != nil {
		s.Logger.Infof("artifacts", "saved %s", path)
	}
	return path
}

func (s *Saver) write(prefix string, img image.Image) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir, FileName(prefix, s.now()))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encode: %w", err)
	}
	return path, f.Close()
}

func (s *Saver) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

// FileName builds the artifact name for prefix at t.
func FileName(prefix string, t time.Time) string {
	return fmt.Sprintf("debug_%s_%s.png", prefix, t.Format("150405"))
}
