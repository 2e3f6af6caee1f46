package clipboard_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/itc/internal/clipboard"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := clipboard.Writer{W: &buf}

	require.NoError(t, w.Write("<file path=\"a\">\nA\n</file>\n"))
	assert.Equal(t, "<file path=\"a\">\nA\n</file>\n", buf.String())
	assert.Equal(t, "stdout", w.String())
}

func TestWriter_Error(t *testing.T) {
	t.Parallel()

	err := clipboard.Writer{W: failingWriter{}}.Write("x")
	assert.EqualError(t, err, "closed pipe")
}

func TestSystemName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "clipboard", clipboard.New().String())
}
