package buttons

import (
	"context"

	"github.com/rook-computer/clockface/internal/system"
)

// Keyboard emits Exit when Esc, Q or F4 is pressed on any evdev keyboard.
type Keyboard struct {
	*Channel
	Logger system.Logger
}

func NewKeyboard(logger system.Logger) *Keyboard {
	return &Keyboard{Channel: NewChannel(), Logger: logger}
}

func (k *Keyboard) Start(ctx context.Context) error {
	system.WatchExitKeys(ctx, k.Logger, func() { k.Send(Exit) })
	return nil
}
