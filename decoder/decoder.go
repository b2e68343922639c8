package decoder

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Func turns a file on disk into plain text. Decoders for the binary
// formats (.hwp, .hwpx, .pdf, .docx) are registered by the format
// collaborators at startup; the registry itself only ships plain-text
// handling.
type Func func(path string) (string, error)

const decodeCacheSize = 64

// Registry dispatches files to decoders by extension. Decoded text is
// cached by path, size and mtime so re-analyzing a folder does not
// re-read unchanged files.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Func
	cache    *lru.Cache[string, string]
}

func NewRegistry() *Registry {
	cache, _ := lru.New[string, string](decodeCacheSize)
	r := &Registry{
		decoders: make(map[string]Func),
		cache:    cache,
	}
	r.Register(".txt", decodePlainText)
	r.Register(".md", decodePlainText)
	return r
}

// Register installs a decoder for a file extension (with leading dot,
// case-insensitive). Registering an extension twice replaces the
// previous decoder.
func (r *Registry) Register(ext string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[strings.ToLower(ext)] = fn
}

// Supported reports whether a decoder exists for the file's extension.
func (r *Registry) Supported(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Decode runs the decoder registered for the file's extension. A
// decode failure belongs to that file alone; callers skip the file and
// keep going.
func (r *Registry) Decode(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	r.mu.RLock()
	fn, ok := r.decoders[ext]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat file: %w", err)
	}
	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())

	if text, ok := r.cache.Get(key); ok {
		return text, nil
	}

	text, err := fn(path)
	if err != nil {
		return "", err
	}
	r.cache.Add(key, text)
	return text, nil
}

func decodePlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}
