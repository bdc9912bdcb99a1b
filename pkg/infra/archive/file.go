package archive

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// KeyLayout is the time format of archive keys
const KeyLayout = "2006-01-02_15:04:05"

// File keeps every fetched batch in one JSON object keyed by fetch time
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile creates an archiver writing to path
func NewFile(path string) *File {
	return &File{path: path}
}

func (a *File) Save(ctx context.Context, fetchedAt time.Time, batch []model.RawNotification) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	archive := map[string][]model.RawNotification{}
	raw, err := os.ReadFile(a.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return goerr.Wrap(err, "failed to read archive", goerr.V("path", a.path))
	case len(raw) > 0:
		if err := json.Unmarshal(raw, &archive); err != nil {
			return goerr.Wrap(err, "failed to parse archive", goerr.V("path", a.path))
		}
	}

	archive[fetchedAt.Format(KeyLayout)] = batch

	out, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode archive")
	}

	if dir := filepath.Dir(a.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return goerr.Wrap(err, "failed to create archive directory", goerr.V("dir", dir))
		}
	}

	// Replace atomically via a temp file
	tmp := a.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write archive", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, a.path); err != nil {
		return goerr.Wrap(err, "failed to replace archive", goerr.V("path", a.path))
	}
	return nil
}
