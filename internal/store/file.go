package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"webpanel/internal/common/fsutil"
	"webpanel/internal/panel"
)

// File keeps instances in a YAML or JSON document chosen by extension.
type File struct {
	path string
	yaml bool
}

type fileDoc struct {
	Instances []entry `json:"instances" yaml:"instances"`
}

// NewFile returns a file store at path; "~" is expanded.
func NewFile(path string) (*File, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(p))
	return &File{path: p, yaml: ext == ".yaml" || ext == ".yml"}, nil
}

// Path returns the expanded file path.
func (f *File) Path() string { return f.path }

func (f *File) Close() error { return nil }

// SaveAll writes items atomically (temp file + rename).
func (f *File) SaveAll(_ context.Context, items []panel.Persisted) error {
	doc := fileDoc{Instances: make([]entry, 0, len(items))}
	for _, p := range items {
		doc.Instances = append(doc.Instances, fromPanel(p))
	}
	var b []byte
	var err error
	if f.yaml {
		b, err = yaml.Marshal(doc)
	} else {
		b, err = json.MarshalIndent(doc, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if _, err := fsutil.EnsureDir(filepath.Dir(f.path)); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// LoadAll reads the file; a missing file yields no instances.
func (f *File) LoadAll(context.Context) ([]panel.Persisted, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	var doc fileDoc
	if f.yaml {
		err = yaml.Unmarshal(b, &doc)
	} else {
		err = json.Unmarshal(b, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode state %s: %w", f.path, err)
	}
	out := make([]panel.Persisted, 0, len(doc.Instances))
	for _, e := range doc.Instances {
		if e.ID == "" {
			continue
		}
		out = append(out, e.toPanel())
	}
	return out, nil
}
