package nvim

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/neovim/go-client/nvim"

	"github.com/sokinpui/itc/internal/collector"
	"github.com/sokinpui/itc/internal/fs"
	"github.com/sokinpui/itc/model"
)

// ErrNoServer is returned when no Neovim address is known.
var ErrNoServer = errors.New("no Neovim server: set --server or run inside Neovim ($NVIM)")

// Manager handles the connection and interaction with a Neovim instance.
// It serves as reader, notifier and optionally clipboard for the collector.
type Manager struct {
	nvim     *nvim.Nvim
	fallback collector.Reader
	// byName maps buffer names to buffers. It is filled once per Manager,
	// by Selection or by the first Read.
	byName map[string]nvim.Buffer
}

// New connects to the Neovim instance at addr, or the one named by the
// environment when addr is empty.
func New(addr string) (*Manager, error) {
	if addr == "" {
		addr = os.Getenv("NVIM")
	}
	if addr == "" {
		addr = os.Getenv("NVIM_LISTEN_ADDRESS")
	}
	if addr == "" {
		return nil, ErrNoServer
	}

	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nvim at %s: %w", addr, err)
	}
	slog.Debug("connected to nvim", "addr", addr)
	return newManager(v), nil
}

func newManager(v *nvim.Nvim) *Manager {
	return &Manager{nvim: v, fallback: fs.OSReader{}}
}

// Close disconnects from Neovim.
func (m *Manager) Close() {
	if m.nvim != nil {
		m.nvim.Close()
	}
}

type bufferInfo struct {
	buffer  nvim.Buffer
	name    string
	listed  int
	buftype string
}

func (m *Manager) buffers() ([]bufferInfo, error) {
	bufs, err := m.nvim.Buffers()
	if err != nil {
		return nil, fmt.Errorf("failed to list nvim buffers: %w", err)
	}

	infos := make([]bufferInfo, len(bufs))
	b := m.nvim.NewBatch()
	for i, buf := range bufs {
		infos[i].buffer = buf
		b.BufferName(buf, &infos[i].name)
		b.Call("buflisted", &infos[i].listed, int(buf))
		b.Call("getbufvar", &infos[i].buftype, int(buf), "&buftype")
	}
	if err := b.Execute(); err != nil {
		return nil, fmt.Errorf("failed to inspect nvim buffers: %w", err)
	}
	return infos, nil
}

// Selection returns the listed file buffers in buffer-number order, or only
// the current buffer when current is set.
func (m *Manager) Selection(current bool) ([]model.FileReference, error) {
	if current {
		buf, err := m.nvim.CurrentBuffer()
		if err != nil {
			return nil, fmt.Errorf("failed to get current buffer: %w", err)
		}
		name, err := m.nvim.BufferName(buf)
		if err != nil {
			return nil, fmt.Errorf("failed to get current buffer name: %w", err)
		}
		if name == "" {
			return nil, errors.New("current buffer has no file name")
		}
		return []model.FileReference{{Path: name}}, nil
	}

	infos, err := m.buffers()
	if err != nil {
		return nil, err
	}
	m.index(infos)

	var refs []model.FileReference
	for _, info := range infos {
		if info.listed == 0 || info.buftype != "" || info.name == "" {
			continue
		}
		refs = append(refs, model.FileReference{Path: info.name})
	}
	return refs, nil
}

func (m *Manager) index(infos []bufferInfo) {
	m.byName = make(map[string]nvim.Buffer, len(infos))
	for _, info := range infos {
		if info.name == "" {
			continue
		}
		if _, ok := m.byName[info.name]; !ok {
			m.byName[info.name] = info.buffer
		}
	}
}

func (m *Manager) lookup(path string) (nvim.Buffer, bool, error) {
	if m.byName == nil {
		infos, err := m.buffers()
		if err != nil {
			return 0, false, err
		}
		m.index(infos)
	}
	buf, ok := m.byName[path]
	return buf, ok, nil
}

// Read returns the content of the loaded buffer for ref, including unsaved
// edits. Files without a loaded buffer are read from disk.
func (m *Manager) Read(ref model.FileReference) ([]byte, error) {
	buf, ok, err := m.lookup(ref.Path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return m.fallback.Read(ref)
	}

	loaded, err := m.nvim.IsBufferLoaded(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to check buffer %s: %w", ref.Path, err)
	}
	if !loaded {
		return m.fallback.Read(ref)
	}
	return m.bufferContent(buf)
}

// bufferSizeLua returns line2byte past the last line of a buffer, which is
// -1 only when the buffer holds no lines at all.
const bufferSizeLua = `local buf = ...
return vim.api.nvim_buf_call(buf, function()
  return vim.fn.line2byte(vim.fn.line('$') + 1)
end)`

func (m *Manager) bufferContent(buf nvim.Buffer) ([]byte, error) {
	var (
		lines [][]byte
		eol   int
		size  int
	)
	b := m.nvim.NewBatch()
	b.BufferLines(buf, 0, -1, true, &lines)
	b.Call("getbufvar", &eol, int(buf), "&endofline")
	b.ExecLua(bufferSizeLua, &size, int(buf))
	if err := b.Execute(); err != nil {
		return nil, fmt.Errorf("failed to read buffer lines: %w", err)
	}

	// An empty buffer still reports one empty line, but writes no bytes.
	// A buffer holding a single empty line writes "\n" when eol is set.
	if len(lines) == 0 || size == -1 {
		return []byte{}, nil
	}
	content := bytes.Join(lines, []byte("\n"))
	if eol == 1 {
		content = append(content, '\n')
	}
	return content, nil
}

// Info shows message through vim.notify.
func (m *Manager) Info(message string) {
	err := m.nvim.ExecLua("vim.notify(..., vim.log.levels.INFO)", nil, message)
	if err != nil {
		slog.Warn("nvim notification failed", "error", err)
	}
}

// Register returns a clipboard that writes into the named Neovim register.
func (m *Manager) Register(name string) collector.Clipboard {
	return collector.ClipboardFunc(func(text string) error {
		if err := m.nvim.Call("setreg", nil, name, text); err != nil {
			return fmt.Errorf("failed to set register %q: %w", name, err)
		}
		return nil
	})
}
