package clipboard

import (
	"errors"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("no clipboard utility found (install xclip, xsel or wl-clipboard)")

// System writes to the operating system clipboard.
type System struct{}

// New creates a System clipboard.
func New() *System {
	return &System{}
}

func (s *System) Write(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard copy failed: %w", err)
	}
	return nil
}

func (s *System) String() string { return "clipboard" }

// Writer sends the document to an io.Writer instead, e.g. stdout.
type Writer struct {
	W io.Writer
}

func (w Writer) Write(text string) error {
	_, err := io.WriteString(w.W, text)
	return err
}

func (w Writer) String() string { return "stdout" }
