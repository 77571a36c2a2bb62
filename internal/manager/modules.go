package manager

import (
	"github.com/confman-io/confman/internal/ledger"
)

// Modules returns the current module set from a fresh filesystem scan.
func (m *Manager) Modules() ([]string, error) {
	if err := m.syncModules(); err != nil {
		return nil, err
	}
	out := make([]string, len(m.modules))
	copy(out, m.modules)
	return out, nil
}

// CreateModule creates a new module directory.
// Fails with AlreadyExists if the module is already present.
func (m *Manager) CreateModule(name string) error {
	if err := m.registry.Create(name); err != nil {
		return err
	}
	return m.syncModules()
}

// DeleteModule recursively removes a module and all of its documents,
// then cascades: every ledger under the configuration root loses the
// rows referencing the module, across all projects.
// Fails with NotFound if the module is absent.
func (m *Manager) DeleteModule(name string) error {
	if err := m.registry.Delete(name); err != nil {
		return err
	}
	if err := ledger.PurgeModule(m.configPath, name); err != nil {
		return err
	}
	return m.reloadRows()
}
