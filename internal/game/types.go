package game

import (
	"time"

	"github.com/atotto/clipboard"
)

// Status is the transient message that replaces the turn banner.
type Status struct {
	Text  string
	Until time.Time
}

// Active reports whether the message is still showing at now.
func (s Status) Active(now time.Time) bool {
	return s.Text != "" && now.Before(s.Until)
}

// Prompt is the one-line command input.
type Prompt struct {
	Open bool
	Text []rune
}

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// SystemClipboard returns the OS clipboard.
func SystemClipboard() Clipboard { return systemClipboard{} }
