package manager

import (
	"github.com/confman-io/confman/internal/codec"
	"github.com/confman-io/confman/internal/docstore"
	"github.com/confman-io/confman/internal/errs"
	"github.com/confman-io/confman/internal/ledger"
)

// Ref selects a configuration document. Experiment is optional and
// defaults to the manager's project name when empty.
type Ref struct {
	Module     string
	Version    float64
	Experiment string
}

// resolve fills in the default experiment name and returns it with the
// canonical document file name.
func (m *Manager) resolve(ref Ref) (experiment, fileName string) {
	experiment = ref.Experiment
	if experiment == "" {
		experiment = m.project
	}
	return experiment, codec.Encode(ref.Module, experiment, ref.Version)
}

// Create makes a new configuration document containing only the
// reserved DATETIME and VERSION keys, creating the module implicitly
// if it is missing. If initial is non-nil it is applied as a
// merge-update right after, so the reserved keys stay system-managed.
// Fails with AlreadyExists if the document file is already present.
func (m *Manager) Create(ref Ref, initial docstore.Document) error {
	if err := m.sync(); err != nil {
		return err
	}
	if !m.hasModule(ref.Module) {
		if err := m.CreateModule(ref.Module); err != nil {
			return err
		}
	}

	_, name := m.resolve(ref)
	if m.docs.Exists(ref.Module, name) {
		return errs.AlreadyExists("document %q already exists", name)
	}

	if err := m.docs.Write(ref.Module, name, docstore.Template(ref.Version, m.now())); err != nil {
		return err
	}
	m.log.Info("document created", "file", name)

	if initial != nil {
		return m.Update(ref, initial, false)
	}
	return nil
}

// Update rewrites an existing document.
//
// With override=false (the default behavior) the stored document is
// loaded and every key of data except DATETIME/VERSION is written over
// it; untouched legacy keys and the reserved keys survive. With
// override=true the document is replaced wholesale by data, reserved
// keys included and caller-controlled - the store does not recheck
// that an overridden VERSION matches the file name.
//
// Fails with NotFound if the module or document is absent and with
// InvalidArgument if data is nil.
func (m *Manager) Update(ref Ref, data docstore.Document, override bool) error {
	if err := m.sync(); err != nil {
		return err
	}
	if !m.hasModule(ref.Module) {
		return errs.NotFound("no module %q", ref.Module)
	}
	if data == nil {
		return errs.InvalidArgument("update payload must be a mapping")
	}

	_, name := m.resolve(ref)
	if !m.docs.Exists(ref.Module, name) {
		return errs.NotFound("no document %q to update", name)
	}

	if override {
		if err := m.docs.Write(ref.Module, name, data); err != nil {
			return err
		}
	} else {
		doc, err := m.docs.Read(ref.Module, name)
		if err != nil {
			return err
		}
		if err := m.docs.Write(ref.Module, name, docstore.Merge(doc, data)); err != nil {
			return err
		}
	}

	m.log.Info("document updated", "file", name, "override", override)
	return nil
}

// Get returns the full document content and records it as the module's
// most recent access in the project's history.
// Fails with NotFound if the module or document is absent.
func (m *Manager) Get(ref Ref) (docstore.Document, error) {
	if err := m.sync(); err != nil {
		return nil, err
	}
	if !m.hasModule(ref.Module) {
		return nil, errs.NotFound("no module %q", ref.Module)
	}

	_, name := m.resolve(ref)
	if !m.docs.Exists(ref.Module, name) {
		return nil, errs.NotFound("no document %q to get", name)
	}

	if err := m.history.RecordAccess(ref.Module, name); err != nil {
		return nil, err
	}
	m.log.Info("document read", "file", name)

	return m.docs.Read(ref.Module, name)
}

// Delete removes a document. Before the file goes away, every ledger
// under the configuration root loses the rows referencing it, across
// all projects.
// Fails with NotFound if the module or document is absent.
func (m *Manager) Delete(ref Ref) error {
	if err := m.sync(); err != nil {
		return err
	}
	if !m.hasModule(ref.Module) {
		return errs.NotFound("no module %q", ref.Module)
	}

	_, name := m.resolve(ref)
	if !m.docs.Exists(ref.Module, name) {
		return errs.NotFound("no document %q to delete", name)
	}

	if err := ledger.PurgeDocument(m.configPath, name); err != nil {
		return err
	}
	if err := m.reloadRows(); err != nil {
		return err
	}
	if err := m.docs.Remove(ref.Module, name); err != nil {
		return err
	}

	m.log.Info("document deleted", "file", name)
	return nil
}

// Show lists the document file names of one module. Scan only, no
// history or ledger side effects; a missing module yields an empty
// list.
func (m *Manager) Show(module string) ([]string, error) {
	if err := m.syncModules(); err != nil {
		return nil, err
	}
	return m.docs.ListModule(module)
}

// ShowAll lists the document file names of every module.
func (m *Manager) ShowAll() (map[string][]string, error) {
	if err := m.syncModules(); err != nil {
		return nil, err
	}

	all := map[string][]string{}
	for _, module := range m.modules {
		names, err := m.docs.ListModule(module)
		if err != nil {
			return nil, err
		}
		all[module] = names
	}
	return all, nil
}

// CreateByName decomposes a document file name and delegates to
// Create.
func (m *Manager) CreateByName(fileName string, initial docstore.Document) error {
	n, err := codec.Decode(fileName)
	if err != nil {
		return err
	}
	return m.Create(refOf(n), initial)
}

// UpdateByName decomposes a document file name and delegates to
// Update.
func (m *Manager) UpdateByName(fileName string, data docstore.Document, override bool) error {
	n, err := codec.Decode(fileName)
	if err != nil {
		return err
	}
	return m.Update(refOf(n), data, override)
}

// GetByName decomposes a document file name and delegates to Get.
func (m *Manager) GetByName(fileName string) (docstore.Document, error) {
	n, err := codec.Decode(fileName)
	if err != nil {
		return nil, err
	}
	return m.Get(refOf(n))
}

// DeleteByName decomposes a document file name and delegates to
// Delete.
func (m *Manager) DeleteByName(fileName string) error {
	n, err := codec.Decode(fileName)
	if err != nil {
		return err
	}
	return m.Delete(refOf(n))
}

func refOf(n codec.Name) Ref {
	return Ref{Module: n.Module, Version: n.Version, Experiment: n.Experiment}
}
