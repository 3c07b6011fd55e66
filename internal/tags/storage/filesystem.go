package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spendlens/spendlens/internal/tags"
	"gopkg.in/yaml.v3"
)

// fileDefinition is the on-disk shape, in YAML or JSON.
type fileDefinition struct {
	Name       string `yaml:"name" json:"name"`
	Conditions any    `yaml:"conditions" json:"conditions"`
}

// FileSystemRepository keeps one tag per *.yaml, *.yml or *.json file in a
// directory. Files are loaded once at construction; Save and Delete write
// through to disk.
type FileSystemRepository struct {
	mu    sync.RWMutex
	dir   string
	defs  map[string]*tags.Definition
	paths map[string]string
}

// NewFileSystemRepository eagerly loads every tag file in dir. A missing
// directory holds zero tags. Malformed files and duplicate names fail.
func NewFileSystemRepository(dir string) (*FileSystemRepository, error) {
	r := &FileSystemRepository{
		dir:   dir,
		defs:  make(map[string]*tags.Definition),
		paths: make(map[string]string),
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileSystemRepository) load() error {
	info, err := os.Stat(r.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("tag dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("tag path %q is not a directory", r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("reading tag dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !isTagFile(e.Name()) {
			continue
		}

		path := filepath.Join(r.dir, e.Name())
		raw, err := readTagFile(path)
		if err != nil {
			return err
		}
		if raw.Name == "" {
			slog.Warn("[TagStore] Skipping tag file without a name", "path", path)
			continue
		}
		if prev, exists := r.paths[raw.Name]; exists {
			return fmt.Errorf("tag %q: duplicate name in %s and %s", raw.Name, prev, path)
		}

		info, err := e.Info()
		if err != nil {
			return fmt.Errorf("stat tag file %s: %w", path, err)
		}
		def, err := tags.NewDefinition(raw.Name, raw.Conditions, info.ModTime())
		if err != nil {
			return fmt.Errorf("tag file %s: %w", path, err)
		}
		r.defs[raw.Name] = def
		r.paths[raw.Name] = path
	}
	return nil
}

func (r *FileSystemRepository) Get(_ context.Context, name string) (*tags.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.defs[name]
	if !ok {
		return nil, tags.ErrNotFound
	}
	copy := *d
	return &copy, nil
}

func (r *FileSystemRepository) List(_ context.Context) ([]*tags.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*tags.Definition, 0, len(r.defs))
	for _, d := range r.defs {
		copy := *d
		out = append(out, &copy)
	}
	tags.SortDefinitions(out)
	return out, nil
}

// Save writes the definition to <name>.yaml, or over the file it was loaded from.
func (r *FileSystemRepository) Save(_ context.Context, d *tags.Definition) error {
	if strings.ContainsAny(d.Name, `/\`) || d.Name == "." || d.Name == ".." {
		return fmt.Errorf("tag name %q cannot be used as a file name", d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path, ok := r.paths[d.Name]
	if !ok {
		path = filepath.Join(r.dir, d.Name+".yaml")
	}

	var (
		data []byte
		err  error
	)
	body := fileDefinition{Name: d.Name, Conditions: d.Conditions}
	if filepath.Ext(path) == ".json" {
		data, err = json.MarshalIndent(body, "", "  ")
	} else {
		data, err = yaml.Marshal(body)
	}
	if err != nil {
		return fmt.Errorf("encoding tag %q: %w", d.Name, err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("creating tag dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing tag file %s: %w", path, err)
	}

	copy := *d
	r.defs[d.Name] = &copy
	r.paths[d.Name] = path
	return nil
}

func (r *FileSystemRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path, ok := r.paths[name]
	if !ok {
		return tags.ErrNotFound
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing tag file %s: %w", path, err)
	}
	delete(r.defs, name)
	delete(r.paths, name)
	return nil
}

func isTagFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func readTagFile(path string) (fileDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileDefinition{}, fmt.Errorf("reading tag file %s: %w", path, err)
	}

	var raw fileDefinition
	if filepath.Ext(path) == ".json" {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return fileDefinition{}, fmt.Errorf("parsing tag file %s: %w", path, err)
	}
	return raw, nil
}
