package collector

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/sokinpui/itc/model"
)

// SuccessMessage is shown once the clipboard holds the new document.
const SuccessMessage = "Copied to clipboard"

var (
	// ErrRead matches every *ReadError.
	ErrRead = errors.New("read failure")
	// ErrWrite matches every *WriteError.
	ErrWrite = errors.New("write failure")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader returns the raw bytes of a referenced file.
type Reader interface {
	Read(ref model.FileReference) ([]byte, error)
}

// Clipboard replaces the shared clipboard content with text.
type Clipboard interface {
	Write(text string) error
}

// Notifier shows a message to the user. It has no failure path.
type Notifier interface {
	Info(message string)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(ref model.FileReference) ([]byte, error)

func (f ReaderFunc) Read(ref model.FileReference) ([]byte, error) { return f(ref) }

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(text string) error

func (f ClipboardFunc) Write(text string) error { return f(text) }

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Info(message string) { f(message) }

// ReadError reports a file that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool { return target == ErrRead }

// WriteError reports a clipboard write that did not go through.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write clipboard: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrWrite }

// Decode turns raw file bytes into text. A leading BOM is dropped and each
// run of invalid UTF-8 becomes one U+FFFD.
func Decode(content []byte) string {
	content = bytes.TrimPrefix(content, utf8BOM)
	return strings.ToValidUTF8(string(content), "\uFFFD")
}

// Render reads every reference in order and returns the joined document:
//
//	<file path="{path}">
//	{contents}
//	</file>
//
// Blocks are separated by one blank line. Paths and contents are not escaped.
func Render(refs []model.FileReference, reader Reader) (string, error) {
	lines := make([]string, 0, len(refs)*3)
	for _, ref := range refs {
		lines = append(lines, `<file path="`+ref.Path+`">`)

		raw, err := reader.Read(ref)
		if err != nil {
			return "", &ReadError{Path: ref.Path, Err: err}
		}
		lines = append(lines, Decode(raw))
		lines = append(lines, "</file>\n")
	}
	return strings.Join(lines, "\n"), nil
}

// Collect renders refs, replaces the clipboard with the result and notifies
// the user. Nothing is written and nobody is notified if any read fails.
func Collect(refs []model.FileReference, reader Reader, clip Clipboard, notifier Notifier) (string, error) {
	doc, err := Render(refs, reader)
	if err != nil {
		return "", err
	}
	if err := clip.Write(doc); err != nil {
		return "", &WriteError{Err: err}
	}
	notifier.Info(SuccessMessage)
	return doc, nil
}
