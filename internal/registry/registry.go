// Package registry enumerates and manages module directories.
//
// A module is a named partition of the configuration root, implemented
// as a subdirectory. The filesystem is the source of truth: List
// rescans on every call and nothing is cached between calls, so two
// scans with no intervening filesystem change return identical sets.
package registry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/confman-io/confman/internal/errs"
)

// Registry manages module directories under a configuration root.
type Registry struct {
	root string
	log  *slog.Logger
}

// New creates a registry rooted at the given configuration directory.
// The directory must already exist.
func New(root string, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{root: root, log: log}
}

// List re-derives the module set by scanning the configuration root
// for subdirectories. The result is sorted by name.
func (r *Registry) List() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("scan configuration root: %w", err)
	}

	modules := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			modules = append(modules, entry.Name())
		}
	}
	return modules, nil
}

// Has reports whether a module directory of the given name exists.
func (r *Registry) Has(name string) (bool, error) {
	modules, err := r.List()
	if err != nil {
		return false, err
	}
	return slices.Contains(modules, name), nil
}

// Create makes a new module directory.
// Fails with AlreadyExists if a directory of that name is present.
func (r *Registry) Create(name string) error {
	path := filepath.Join(r.root, name)

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return errs.AlreadyExists("module %q already exists", name)
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		return fmt.Errorf("create module %q: %w", name, err)
	}

	r.log.Info("module created", "module", name)
	return nil
}

// Delete recursively removes a module directory and everything in it.
// Fails with NotFound if the module is absent. Cascading the removal
// into experiment ledgers is the caller's responsibility.
func (r *Registry) Delete(name string) error {
	path := filepath.Join(r.root, name)

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return errs.NotFound("no module %q to delete", name)
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("delete module %q: %w", name, err)
	}

	r.log.Info("module deleted", "module", name)
	return nil
}
