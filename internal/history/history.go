// Package history tracks the most recently accessed document per
// module, per project.
//
// One history.yaml lives at the configuration root and is shared by
// every project using that root. Only the single most recent access is
// retained per (project, module) pair - this is a pointer, not a log.
// Entries for modules that no longer exist are pruned on every
// synchronization pass. Every mutation persists immediately; there is
// no batching.
package history

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// FileName is the history document file name under the configuration
// root.
const FileName = "history.yaml"

// Document maps project name -> (module name -> last-accessed document
// file name).
type Document map[string]map[string]string

// Tracker owns the history document for one project.
type Tracker struct {
	path    string
	project string
	doc     Document
	log     *slog.Logger
}

// Load opens the history document at the configuration root, creating
// it if absent. A project name not seen before is entered with an
// empty module mapping and persisted.
func Load(root, project string, log *slog.Logger) (*Tracker, error) {
	if log == nil {
		log = slog.Default()
	}
	t := &Tracker{
		path:    filepath.Join(root, FileName),
		project: project,
		log:     log,
	}

	data, err := os.ReadFile(t.path)
	if os.IsNotExist(err) {
		t.log.Info("history initialized", "path", t.path)
		t.doc = Document{project: {}}
		return t, t.save()
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	if err := yaml.Unmarshal(data, &t.doc); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	if t.doc == nil {
		t.doc = Document{}
	}

	if _, ok := t.doc[project]; !ok {
		t.log.Info("history project added", "project", project)
		t.doc[project] = map[string]string{}
		return t, t.save()
	}

	t.log.Info("history loaded", "project", project)
	return t, nil
}

// Prune deletes every entry of the current project whose module is not
// in the given registry snapshot, then persists.
func (t *Tracker) Prune(modules []string) error {
	entries := t.doc[t.project]
	if entries == nil {
		entries = map[string]string{}
		t.doc[t.project] = entries
	}

	for module := range entries {
		if !slices.Contains(modules, module) {
			delete(entries, module)
		}
	}
	return t.save()
}

// RecordAccess insert-or-replaces the current project's entry for the
// module and persists immediately.
func (t *Tracker) RecordAccess(module, fileName string) error {
	if t.doc[t.project] == nil {
		t.doc[t.project] = map[string]string{}
	}
	t.doc[t.project][module] = fileName
	return t.save()
}

// Show re-reads the history document from disk and returns it in full,
// all projects included.
func (t *Tracker) Show() (Document, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	return doc, nil
}

func (t *Tracker) save() error {
	data, err := yaml.Marshal(t.doc)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(t.path, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
