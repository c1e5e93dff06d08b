package notify

import "io"

// Player plays the short notification tone.
type Player interface {
	Play() error
}

type PlayerFunc func() error

func (f PlayerFunc) Play() error { return f() }

// Bell rings the terminal bell on W.
type Bell struct {
	W io.Writer
}

func (b Bell) Play() error {
	_, err := b.W.Write([]byte{'\a'})
	return err
}
