//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

const (
	evKey = 0x01

	// Linux input-event-codes.h
	keyEsc = 1
	keyQ   = 16
	keyF4  = 62

	keyDown = 1
)

// IsExitKey reports whether an evdev key code ends the program.
func IsExitKey(code uint16) bool {
	switch code {
	case keyEsc, keyQ, keyF4:
		return true
	}
	return false
}

// inputEventSize is sizeof(struct input_event): timeval + u16 type +
// u16 code + s32 value.
func inputEventSize() (tvSize, size int) {
	tvSize = binary.Size(unix.Timeval{})
	return tvSize, tvSize + 2 + 2 + 4
}

// scanExitKey reports whether buf holds a key-down record for an exit key.
func scanExitKey(buf []byte, tvSize, eventSize int) bool {
	for off := 0; off+eventSize <= len(buf); off += eventSize {
		rec := buf[off : off+eventSize]
		typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
		code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
		value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
		if typ == evKey && value == keyDown && IsExitKey(code) {
			return true
		}
	}
	return false
}

// WatchExitKeys reads every /dev/input/event* device and calls onExit once
// when Esc, Q or F4 goes down. Readers stop when ctx is done. Without input
// devices it logs and returns.
func WatchExitKeys(ctx context.Context, l Logger, onExit func()) {
	if onExit == nil {
		return
	}
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		logInfo(l, "input", "no evdev devices found; exit keys disabled")
		return
	}

	var once sync.Once
	trigger := func() {
		once.Do(func() {
			logInfo(l, "input", "exit key pressed")
			onExit()
		})
	}

	tvSize, eventSize := inputEventSize()
	for _, path := range paths {
		go watchDevice(ctx, path, tvSize, eventSize, trigger)
	}
}

func watchDevice(ctx context.Context, path string, tvSize, eventSize int, trigger func()) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer f.Close()

	buf := make([]byte, eventSize*64)
	for ctx.Err() == nil {
		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}
		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		if scanExitKey(buf[:n], tvSize, eventSize) {
			trigger()
			return
		}
	}
}
