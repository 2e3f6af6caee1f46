package collector_test

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/itc/internal/collector"
	"github.com/sokinpui/itc/model"
)

type fakeFiles map[string]string

func (f fakeFiles) Read(ref model.FileReference) ([]byte, error) {
	content, ok := f[ref.Path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(content), nil
}

type fakeClipboard struct {
	content string
	writes  int
	err     error
}

func (c *fakeClipboard) Write(text string) error {
	if c.err != nil {
		return c.err
	}
	c.content = text
	c.writes++
	return nil
}

type fakeNotifier struct {
	messages []string
}

func (n *fakeNotifier) Info(message string) {
	n.messages = append(n.messages, message)
}

func refs(paths ...string) []model.FileReference {
	out := make([]model.FileReference, len(paths))
	for i, p := range paths {
		out[i] = model.FileReference{Path: p}
	}
	return out
}

func TestCollect_SingleFile(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{}
	notifier := &fakeNotifier{}

	_, err := collector.Collect(refs("/a/b.txt"), fakeFiles{"/a/b.txt": "hello"}, clip, notifier)
	require.NoError(t, err)

	assert.Equal(t, "<file path=\"/a/b.txt\">\nhello\n</file>\n", clip.content)
	assert.Equal(t, 1, clip.writes)
	assert.Equal(t, []string{collector.SuccessMessage}, notifier.messages)
}

func TestCollect_TwoFilesInOrder(t *testing.T) {
	t.Parallel()

	files := fakeFiles{"/a": "X", "/b": "Y"}
	clip := &fakeClipboard{}

	_, err := collector.Collect(refs("/a", "/b"), files, clip, &fakeNotifier{})
	require.NoError(t, err)

	want := "<file path=\"/a\">\nX\n</file>\n\n<file path=\"/b\">\nY\n</file>\n"
	assert.Equal(t, want, clip.content)
}

func TestCollect_PreservesInputOrderWithoutDedup(t *testing.T) {
	t.Parallel()

	files := fakeFiles{}
	var paths []string
	for i := 9; i >= 0; i-- {
		p := fmt.Sprintf("/dir/f%d.go", i)
		files[p] = fmt.Sprintf("content %d", i)
		paths = append(paths, p)
	}
	paths = append(paths, "/dir/f3.go")

	clip := &fakeClipboard{}
	_, err := collector.Collect(refs(paths...), files, clip, &fakeNotifier{})
	require.NoError(t, err)

	assert.Equal(t, len(paths), strings.Count(clip.content, "<file path="))
	assert.Equal(t, len(paths), strings.Count(clip.content, "</file>"))

	last := -1
	rest := clip.content
	offset := 0
	for _, p := range paths {
		idx := strings.Index(rest, `<file path="`+p+`">`)
		require.GreaterOrEqual(t, idx, 0, "missing block for %s", p)
		assert.Greater(t, offset+idx, last)
		last = offset + idx
		offset += idx + 1
		rest = rest[idx+1:]
	}
}

func TestCollect_MultilineContentIsOpaque(t *testing.T) {
	t.Parallel()

	files := fakeFiles{"main.go": "package main\n\nfunc main() {}\n"}
	clip := &fakeClipboard{}

	_, err := collector.Collect(refs("main.go"), files, clip, &fakeNotifier{})
	require.NoError(t, err)

	assert.Equal(t, "<file path=\"main.go\">\npackage main\n\nfunc main() {}\n\n</file>\n", clip.content)
}

func TestCollect_ReadFailureLeavesClipboardUntouched(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{content: "previous"}
	notifier := &fakeNotifier{}

	_, err := collector.Collect(refs("/a", "/missing", "/b"), fakeFiles{"/a": "X", "/b": "Y"}, clip, notifier)
	require.Error(t, err)

	assert.ErrorIs(t, err, collector.ErrRead)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, collector.ErrWrite)

	var readErr *collector.ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "/missing", readErr.Path)

	assert.Equal(t, "previous", clip.content)
	assert.Zero(t, clip.writes)
	assert.Empty(t, notifier.messages)
}

func TestCollect_InvalidUTF8IsReplaced(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{}
	notifier := &fakeNotifier{}

	doc, err := collector.Collect(refs("/latin1.txt"), fakeFiles{"/latin1.txt": "caf\xe9 au lait"}, clip, notifier)
	require.NoError(t, err)

	assert.Equal(t, "<file path=\"/latin1.txt\">\ncaf\uFFFD au lait\n</file>\n", doc)
	assert.Equal(t, doc, clip.content)
	assert.Equal(t, []string{"Copied to clipboard"}, notifier.messages)
}

func TestCollect_WriteFailure(t *testing.T) {
	t.Parallel()

	denied := errors.New("clipboard access denied")
	clip := &fakeClipboard{err: denied}
	notifier := &fakeNotifier{}

	_, err := collector.Collect(refs("/a"), fakeFiles{"/a": "X"}, clip, notifier)
	require.Error(t, err)

	assert.ErrorIs(t, err, collector.ErrWrite)
	assert.ErrorIs(t, err, denied)
	assert.NotErrorIs(t, err, collector.ErrRead)
	assert.Empty(t, notifier.messages)
}

func TestCollect_EmptySelection(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{content: "previous"}
	notifier := &fakeNotifier{}

	doc, err := collector.Collect(nil, fakeFiles{}, clip, notifier)
	require.NoError(t, err)

	assert.Empty(t, doc)
	assert.Empty(t, clip.content)
	assert.Equal(t, 1, clip.writes)
	assert.Equal(t, []string{collector.SuccessMessage}, notifier.messages)
}

func TestCollect_Idempotent(t *testing.T) {
	t.Parallel()

	files := fakeFiles{"/a": "X", "/b": "Y\nZ"}
	clip := &fakeClipboard{}

	_, err := collector.Collect(refs("/a", "/b"), files, clip, &fakeNotifier{})
	require.NoError(t, err)
	first := clip.content

	_, err = collector.Collect(refs("/a", "/b"), files, clip, &fakeNotifier{})
	require.NoError(t, err)

	assert.Equal(t, first, clip.content)
}

func TestRender_PathAndContentAreNotEscaped(t *testing.T) {
	t.Parallel()

	path := `/odd/"name" & <tag>.txt`
	doc, err := collector.Render(refs(path), fakeFiles{path: "a < b && c > d"})
	require.NoError(t, err)

	assert.Equal(t, "<file path=\"/odd/\"name\" & <tag>.txt\">\na < b && c > d\n</file>\n", doc)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("strips BOM", func(t *testing.T) {
		assert.Equal(t, "hello", collector.Decode([]byte("\xEF\xBB\xBFhello")))
	})

	t.Run("keeps multibyte text", func(t *testing.T) {
		assert.Equal(t, "héllo wörld ✓", collector.Decode([]byte("héllo wörld ✓")))
	})

	t.Run("replaces invalid bytes", func(t *testing.T) {
		assert.Equal(t, "\uFFFD(", collector.Decode([]byte{0xC3, 0x28}))
		assert.Equal(t, "\uFFFD\x00", collector.Decode([]byte("\xff\xfe\x00")))
	})
}

func TestFuncAdapters(t *testing.T) {
	t.Parallel()

	var written, notified string
	reader := collector.ReaderFunc(func(ref model.FileReference) ([]byte, error) {
		return []byte(strings.ToUpper(ref.Path)), nil
	})
	clip := collector.ClipboardFunc(func(text string) error {
		written = text
		return nil
	})
	notifier := collector.NotifierFunc(func(message string) {
		notified = message
	})

	_, err := collector.Collect(refs("x"), reader, clip, notifier)
	require.NoError(t, err)

	assert.Equal(t, "<file path=\"x\">\nX\n</file>\n", written)
	assert.Equal(t, collector.SuccessMessage, notified)
}
