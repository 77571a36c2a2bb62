package manager

import (
	"slices"

	"github.com/confman-io/confman/internal/docstore"
	"github.com/confman-io/confman/internal/errs"
	"github.com/confman-io/confman/internal/ledger"
)

// SaveExperiment appends a save point referencing a configuration
// document to the project's experiment ledger and persists the full
// table. Repeated saves of the same document create repeated rows;
// there is no dedup.
// Fails with NotFound if the referenced document does not exist.
func (m *Manager) SaveExperiment(ref Ref, note string) error {
	experiment, name := m.resolve(ref)
	if !m.docs.Exists(ref.Module, name) {
		return errs.NotFound("no document %q to save", name)
	}

	m.rows = append(m.rows, ledger.Row{
		ID:         ledger.NewRowID(),
		Datetime:   ledger.Timestamp(m.now()),
		Yaml:       name,
		Module:     ref.Module,
		Experiment: experiment,
		Version:    ref.Version,
		Note:       note,
	})
	if err := m.ledger.Replace(m.rows); err != nil {
		return err
	}

	m.log.Info("experiment saved", "file", name, "row", len(m.rows)-1)
	return nil
}

// Experiments returns the current project's in-memory record table.
// It reflects the last load or save, not necessarily the filesystem:
// cascades applied by another manager instance show up only after the
// next operation that reloads the table.
func (m *Manager) Experiments() []ledger.Row {
	return slices.Clone(m.rows)
}

// LoadExperiment resolves a row by ordinal position, records a history
// access for its module, and returns the parsed document content.
// Fails with NotFound if the index is out of range or the referenced
// document file is gone.
func (m *Manager) LoadExperiment(index int) (docstore.Document, error) {
	if index < 0 || index >= len(m.rows) {
		return nil, errs.NotFound("no experiment record at index %d", index)
	}
	row := m.rows[index]

	if !m.docs.Exists(row.Module, row.Yaml) {
		return nil, errs.NotFound("no document %q to load", row.Yaml)
	}

	if err := m.history.RecordAccess(row.Module, row.Yaml); err != nil {
		return nil, err
	}
	m.log.Info("experiment loaded", "file", row.Yaml, "row", index)

	return m.docs.Read(row.Module, row.Yaml)
}

// DeleteExperiment removes the row at the given ordinal position from
// the current project's table only - no cross-project cascade, in
// contrast with document and module deletion. The table compacts and
// renumbers.
// Fails with NotFound if the index is out of range.
func (m *Manager) DeleteExperiment(index int) error {
	if index < 0 || index >= len(m.rows) {
		return errs.NotFound("no experiment record at index %d", index)
	}
	name := m.rows[index].Yaml

	m.rows = append(m.rows[:index], m.rows[index+1:]...)
	if err := m.ledger.Replace(m.rows); err != nil {
		return err
	}

	m.log.Info("experiment deleted", "file", name, "row", index)
	return nil
}
