package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patchbaylabs/patchbay/pkg/errors"
	"github.com/patchbaylabs/patchbay/pkg/observability"
)

// File stores one JSON file per document in a directory. It is meant
// for single-user setups where the documents should survive restarts
// and stay inspectable with ordinary tools.
type File struct {
	dir string
}

// DefaultDir returns the default document directory under the user's
// data directory (~/.local/share/patchbay/documents on Linux).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.CodeConfigInvalid, err, "resolve home directory")
	}
	return filepath.Join(home, ".local", "share", "patchbay", "documents"), nil
}

// NewFile creates a file-backed store rooted at dir. An empty dir
// selects [DefaultDir]. The directory is created if missing.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		var err error
		dir, err = DefaultDir()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(errors.CodeStoreUnavailable, err, "create store directory %s", dir)
	}
	return &File{dir: dir}, nil
}

// Dir returns the backing directory.
func (f *File) Dir() string { return f.dir }

// Get implements Store.
func (f *File) Get(ctx context.Context, id string) (*Record, error) {
	start := time.Now()
	rec, err := f.read(id)
	observability.Store().OnGet(ctx, "file", id, err == nil, time.Since(start))
	return rec, err
}

func (f *File) read(id string) (*Record, error) {
	if err := errors.ValidateDocumentID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(id))
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.CodeStoreUnavailable, err, "read document %s", id)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.CodeInvalidDocument, err, "parse document %s", id)
	}
	return &rec, nil
}

// Put implements Store. Writes go through a temp file and rename so a
// crash cannot leave a half-written document behind.
func (f *File) Put(ctx context.Context, rec *Record) error {
	start := time.Now()
	err := f.write(rec)
	observability.Store().OnPut(ctx, "file", rec.ID, time.Since(start), err)
	return err
}

func (f *File) write(rec *Record) error {
	if err := errors.ValidateDocumentID(rec.ID); err != nil {
		return err
	}
	if prev, err := f.read(rec.ID); err == nil {
		stamp(rec, &prev.CreatedAt)
	} else {
		stamp(rec, nil)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "encode document %s", rec.ID)
	}

	path := f.path(rec.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(errors.CodeStoreUnavailable, err, "write document %s", rec.ID)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.CodeStoreUnavailable, err, "write document %s", rec.ID)
	}
	return nil
}

// Delete implements Store.
func (f *File) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateDocumentID(id); err != nil {
		return err
	}
	err := os.Remove(f.path(id))
	if os.IsNotExist(err) {
		err = nil
	} else if err != nil {
		err = errors.Wrap(errors.CodeStoreUnavailable, err, "delete document %s", id)
	}
	observability.Store().OnDelete(ctx, "file", id, err)
	return err
}

// List implements Store.
func (f *File) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStoreUnavailable, err, "list documents")
	}
	var infos []Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		rec, err := f.read(strings.TrimSuffix(name, ".json"))
		if err != nil {
			// Skip entries that no longer parse rather than failing
			// the whole listing.
			continue
		}
		infos = append(infos, infoOf(rec))
	}
	sortInfos(infos)
	return infos, nil
}

// Close implements Store. It is a no-op for the file backend.
func (f *File) Close() error { return nil }

func (f *File) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

var _ Store = (*File)(nil)
