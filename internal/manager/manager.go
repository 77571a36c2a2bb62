// Package manager orchestrates the configuration lifecycle for one
// project.
//
// A Manager couples three persisted stores sharing a configuration
// root:
//   - the module directory tree (registry, docstore)
//   - the per-root history document (history)
//   - the per-project experiment record tables (ledger)
//
// Every public document operation re-derives the module snapshot from
// the filesystem and prunes the history against it before doing its
// own work. Delete operations additionally cascade into every ledger
// under the root. Nothing is cached across calls beyond the ledger
// rows, which mirror the on-disk table as of the last load or save.
//
// The manager is synchronous and single-threaded. Concurrent use
// against the same configuration root is unsafe: read-modify-write
// sequences on the history document and the ledger tables are not
// atomic, and the last writer wins.
package manager

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/confman-io/confman/internal/docstore"
	"github.com/confman-io/confman/internal/history"
	"github.com/confman-io/confman/internal/ledger"
	"github.com/confman-io/confman/internal/registry"
)

// ConfigDirName is the configuration root directory name under the
// project path.
const ConfigDirName = "configuration"

// Manager manages modules, configuration documents, history, and
// experiment records for one project.
type Manager struct {
	project    string
	configPath string

	registry *registry.Registry
	docs     *docstore.Store
	history  *history.Tracker
	ledger   *ledger.Ledger

	// rows mirrors the current project's ledger table as of the last
	// load or save.
	rows []ledger.Row

	// modules is the registry snapshot from the last sync. Refreshed at
	// the top of every public document operation, never trusted across
	// calls.
	modules []string

	now func() time.Time
	log *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger overrides the logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// New creates a manager for the given project name and project path.
//
// Initialization creates <projectPath>/configuration/ if missing,
// scans the module directories, loads or creates the history document
// (seeding the project with an empty mapping when new), and opens or
// creates the project's experiment ledger.
func New(project, projectPath string, opts ...Option) (*Manager, error) {
	m := &Manager{
		project: project,
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("component", "manager", "project", project)

	m.configPath = filepath.Join(projectPath, ConfigDirName)
	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(m.configPath, 0o755); err != nil {
			return nil, fmt.Errorf("create configuration folder: %w", err)
		}
		m.log.Info("configuration folder created", "path", m.configPath)
	}

	m.registry = registry.New(m.configPath, m.log)
	m.docs = docstore.New(m.configPath)

	if err := m.syncModules(); err != nil {
		return nil, err
	}

	h, err := history.Load(m.configPath, project, m.log)
	if err != nil {
		return nil, err
	}
	m.history = h
	if err := m.history.Prune(m.modules); err != nil {
		return nil, err
	}

	l, err := ledger.Open(filepath.Join(m.configPath, ledger.FileName(project)))
	if err != nil {
		return nil, err
	}
	m.ledger = l
	if err := m.reloadRows(); err != nil {
		l.Close()
		return nil, err
	}

	m.log.Info("configuration manager initialized")
	return m, nil
}

// Close releases the manager's ledger connection.
func (m *Manager) Close() error {
	return m.ledger.Close()
}

// Project returns the owning project name.
func (m *Manager) Project() string {
	return m.project
}

// ConfigPath returns the configuration root directory.
func (m *Manager) ConfigPath() string {
	return m.configPath
}

// History prunes the current project's entries against the registry
// and returns the full on-disk history document, all projects
// included.
func (m *Manager) History() (history.Document, error) {
	if err := m.sync(); err != nil {
		return nil, err
	}
	return m.history.Show()
}

// Stats summarizes the configuration root.
type Stats struct {
	Modules   int `json:"modules"`
	Documents int `json:"documents"`
}

// Stats counts modules and documents from a fresh filesystem scan.
func (m *Manager) Stats() (Stats, error) {
	if err := m.syncModules(); err != nil {
		return Stats{}, err
	}

	s := Stats{Modules: len(m.modules)}
	for _, module := range m.modules {
		names, err := m.docs.ListModule(module)
		if err != nil {
			return Stats{}, err
		}
		s.Documents += len(names)
	}
	return s, nil
}

// sync refreshes the module snapshot from the filesystem and prunes
// history entries for modules that disappeared. Called at the top of
// every public document operation.
func (m *Manager) sync() error {
	if err := m.syncModules(); err != nil {
		return err
	}
	return m.history.Prune(m.modules)
}

func (m *Manager) syncModules() error {
	modules, err := m.registry.List()
	if err != nil {
		return err
	}
	m.modules = modules
	return nil
}

func (m *Manager) hasModule(name string) bool {
	return slices.Contains(m.modules, name)
}

// reloadRows re-reads the current project's ledger table, picking up
// cascades applied through other ledgers' files.
func (m *Manager) reloadRows() error {
	rows, err := m.ledger.Load()
	if err != nil {
		return err
	}
	m.rows = rows
	return nil
}
