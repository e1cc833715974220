//go:build linux

package system

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

// Active VT first, then the foreground console.
var vtPaths = []string{"/dev/tty", "/dev/tty0"}

func setKDMode(mode int) error {
	var errs []error
	for _, p := range vtPaths {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			errs = append(errs, fmt.Errorf("open %s: %w", p, err))
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		_ = unix.Close(fd)
		if err != nil {
			errs = append(errs, fmt.Errorf("KDSETMODE on %s: %w", p, err))
			continue
		}
		return nil
	}
	return errors.Join(errs...)
}

func writeVT(s string) error {
	var errs []error
	for _, p := range vtPaths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_, err = f.WriteString(s)
		_ = f.Close()
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("write VT: %w", errors.Join(errs...))
}

// AcquireConsole switches the console to KD_GRAPHICS and hides the cursor
// so the text console does not bleed through the framebuffer. The returned
// func restores text mode.
func AcquireConsole(l Logger) (release func()) {
	if err := setKDMode(kdGraphics); err != nil {
		logError(l, "tty", "KD_GRAPHICS failed: %v", err)
	} else {
		logInfo(l, "tty", "KD_GRAPHICS set")
	}
	if err := writeVT("\x1b[?25l"); err != nil {
		logError(l, "tty", "hide cursor failed: %v", err)
	}
	return func() {
		if err := writeVT("\x1b[?25h"); err != nil {
			logError(l, "tty", "show cursor failed: %v", err)
		}
		if err := setKDMode(kdText); err != nil {
			logError(l, "tty", "KD_TEXT failed: %v", err)
		} else {
			logInfo(l, "tty", "KD_TEXT set")
		}
	}
}
