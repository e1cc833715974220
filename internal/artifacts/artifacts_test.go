package artifacts

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	infos  []string
	errors []string
}

func (l *recordingLogger) Infof(component, format string, args ...any) {
	l.infos = append(l.infos, component+": "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Errorf(component, format string, args ...any) {
	l.errors = append(l.errors, component+": "+fmt.Sprintf(format, args...))
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 3, 9, 7, 4, 5, 0, time.UTC)
	assert.Equal(t, "debug_clockface_070405.png", FileName(PrefixHands, at))
	assert.Equal(t, "debug_background_070405.png", FileName(PrefixBackground, at))
}

func TestSave_WritesPNG(t *testing.T) {
	dir := t.TempDir()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 9, 21, 15, 0, 0, time.Local))
	logger := &recordingLogger{}
	s := &Saver{Dir: filepath.Join(dir, "nested"), Clock: clock, Logger: logger}

	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})

	path := s.Save(PrefixPreAPI, img)
	require.Equal(t, filepath.Join(dir, "nested", "debug_preapi_211500.png"), path)
	assert.Len(t, logger.infos, 1)
	assert.Empty(t, logger.errors)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
	r, _, _, _ := decoded.At(1, 1).RGBA()
	assert.Equal(t, uint32(200*0x101), r)
}

func TestSave_Disabled(t *testing.T) {
	var nilSaver *Saver
	assert.False(t, nilSaver.Enabled())
	assert.Empty(t, nilSaver.Save(PrefixHands, image.NewRGBA(image.Rect(0, 0, 1, 1))))

	s := NewSaver("", nil)
	assert.False(t, s.Enabled())
	assert.Empty(t, s.Save(PrefixHands, image.NewRGBA(image.Rect(0, 0, 1, 1))))
}

func TestSave_FailureIsLogged(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	logger := &recordingLogger{}
	// A regular file where the directory should be.
	s := NewSaver(filepath.Join(blocker, "sub"), logger)

	assert.Empty(t, s.Save(PrefixBackground, image.NewRGBA(image.Rect(0, 0, 1, 1))))
	require.Len(t, logger.errors, 1)
	assert.Contains(t, logger.errors[0], "artifacts: save background")
}
