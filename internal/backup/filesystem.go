package backup

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Filesystem keeps backups in one local directory
type Filesystem struct {
	root string
}

// NewFilesystem returns a sink rooted at dir, creating it if needed
func NewFilesystem(dir string) (*Filesystem, error) {
	if dir == "" {
		dir = "./backups"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Filesystem{root: dir}, nil
}

func (f *Filesystem) Driver() Driver { return DriverFilesystem }

func (f *Filesystem) Write(ctx context.Context, name string, data []byte) (Info, error) {
	if !ValidName(name) {
		return Info{}, ErrInvalidName
	}
	tmp, err := os.CreateTemp(f.root, ".tmp-*")
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return Info{}, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return Info{}, err
	}

	path := filepath.Join(f.root, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Info{}, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{Name: name, Size: st.Size(), ModifiedAt: st.ModTime().UTC()}, nil
}

func (f *Filesystem) Read(ctx context.Context, name string) ([]byte, error) {
	if !ValidName(name) {
		return nil, ErrInvalidName
	}
	data, err := os.ReadFile(filepath.Join(f.root, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (f *Filesystem) List(ctx context.Context) ([]Info, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, err
	}
	infos := []Info{}
	for _, e := range entries {
		if e.IsDir() || !ValidName(e.Name()) {
			continue
		}
		st, err := e.Info()
		if err != nil {
			return nil, err
		}
		infos = append(infos, Info{Name: e.Name(), Size: st.Size(), ModifiedAt: st.ModTime().UTC()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}
