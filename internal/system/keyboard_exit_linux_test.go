//go:build linux

package system

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func record(tvSize, eventSize int, typ, code uint16, value int32) []byte {
	rec := make([]byte, eventSize)
	binary.LittleEndian.PutUint16(rec[tvSize:], typ)
	binary.LittleEndian.PutUint16(rec[tvSize+2:], code)
	binary.LittleEndian.PutUint32(rec[tvSize+4:], uint32(value))
	return rec
}

func TestIsExitKey(t *testing.T) {
	assert.True(t, IsExitKey(keyEsc))
	assert.True(t, IsExitKey(keyQ))
	assert.True(t, IsExitKey(keyF4))
	assert.False(t, IsExitKey(30)) // KEY_A
}

func TestScanExitKey(t *testing.T) {
	tv, size := inputEventSize()

	var stream []byte
	stream = append(stream, record(tv, size, 0x04, 4, 458792)...) // EV_MSC scan code
	stream = append(stream, record(tv, size, evKey, 30, keyDown)...)
	assert.False(t, scanExitKey(stream, tv, size))

	// Key release and autorepeat do not count.
	assert.False(t, scanExitKey(record(tv, size, evKey, keyQ, 0), tv, size))
	assert.False(t, scanExitKey(record(tv, size, evKey, keyQ, 2), tv, size))

	stream = append(stream, record(tv, size, evKey, keyEsc, keyDown)...)
	assert.True(t, scanExitKey(stream, tv, size))

	// A trailing partial record is ignored.
	assert.False(t, scanExitKey(record(tv, size, evKey, keyF4, keyDown)[:size-1], tv, size))
}
