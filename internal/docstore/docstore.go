// Package docstore reads and writes versioned YAML configuration
// documents inside module directories.
//
// A document is a string-keyed mapping carrying two reserved,
// system-managed keys:
//   - DATETIME: creation date stamp (YYYY-MM-DD)
//   - VERSION: the version number encoded in the file name
//
// Merge updates never overwrite the reserved keys; only a wholesale
// override replace can change them. The store does not validate that
// an overridden VERSION still matches the file name - callers own that
// consistency if they want it.
package docstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/confman-io/confman/internal/errs"
)

// Reserved document keys managed by the system.
const (
	KeyDatetime = "DATETIME"
	KeyVersion  = "VERSION"
)

// dateLayout is the DATETIME stamp format.
const dateLayout = "2006-01-02"

// Document is a string-keyed configuration mapping.
type Document map[string]any

// Store accesses document files under a configuration root.
type Store struct {
	root string
}

// New creates a store rooted at the given configuration directory.
func New(root string) *Store {
	return &Store{root: root}
}

// Path returns the on-disk path for a document file.
func (s *Store) Path(module, name string) string {
	return filepath.Join(s.root, module, name)
}

// Exists reports whether the document file is present.
func (s *Store) Exists(module, name string) bool {
	info, err := os.Stat(s.Path(module, name))
	return err == nil && info.Mode().IsRegular()
}

// Read loads and parses a document file.
// Fails with InvalidArgument if the file content is not a mapping.
func (s *Store) Read(module, name string) (Document, error) {
	data, err := os.ReadFile(s.Path(module, name))
	if err != nil {
		return nil, fmt.Errorf("read document %q: %w", name, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.InvalidArgument("document %q is not a mapping: %v", name, err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Write serializes a document to its file, replacing any previous
// content.
func (s *Store) Write(module, name string, doc Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %q: %w", name, err)
	}
	if err := os.WriteFile(s.Path(module, name), data, 0o644); err != nil {
		return fmt.Errorf("write document %q: %w", name, err)
	}
	return nil
}

// Remove deletes the document file.
func (s *Store) Remove(module, name string) error {
	if err := os.Remove(s.Path(module, name)); err != nil {
		return fmt.Errorf("remove document %q: %w", name, err)
	}
	return nil
}

// ListModule returns the document file names inside a module directory,
// sorted by name. A missing module yields an empty list, not an error.
func (s *Store) ListModule(module string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, module))
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan module %q: %w", module, err)
	}

	names := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Template returns a fresh document carrying only the reserved keys.
func Template(version float64, now time.Time) Document {
	return Document{
		KeyDatetime: now.Format(dateLayout),
		KeyVersion:  version,
	}
}

// Merge writes every key of patch except the reserved ones over dst,
// insert-or-replace. Keys of dst untouched by patch (including
// DATETIME and VERSION) are preserved. dst is modified in place and
// returned.
func Merge(dst, patch Document) Document {
	for k, v := range patch {
		if k == KeyDatetime || k == KeyVersion {
			continue
		}
		dst[k] = v
	}
	return dst
}
