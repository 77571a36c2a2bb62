package manager

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confman-io/confman/internal/docstore"
	"github.com/confman-io/confman/internal/errs"
	"github.com/confman-io/confman/internal/ledger"
)

var testClock = func() time.Time {
	return time.Date(2026, 8, 25, 14, 30, 5, 0, time.UTC)
}

// createTestManager creates a manager for the given project over a
// fresh (or shared) project path with a fixed clock and silent logger.
func createTestManager(t *testing.T, project, path string) *Manager {
	t.Helper()
	m, err := New(project, path,
		WithClock(testClock),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

// asFloat coerces a decoded YAML scalar to float64. yaml.v3 may decode
// integral numbers as int.
func asFloat(t *testing.T, v any) float64 {
	t.Helper()
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		t.Fatalf("not a number: %T (%v)", v, v)
		return 0
	}
}

func TestInitializeCreatesConfigurationFolder(t *testing.T) {
	path := t.TempDir()
	m := createTestManager(t, "riiid", path)

	info, err := os.Stat(filepath.Join(path, ConfigDirName))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, "riiid", m.Project())

	// History document and project ledger exist after initialization.
	_, err = os.Stat(filepath.Join(m.ConfigPath(), "history.yaml"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(m.ConfigPath(), ledger.FileName("riiid")))
	require.NoError(t, err)
}

func TestCreateDocument(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	require.NoError(t, m.CreateModule("data"))
	require.NoError(t, m.Create(Ref{Module: "data", Version: 1.0, Experiment: "riiid"}, nil))

	// File exists under the module directory with the canonical name.
	_, err := os.Stat(filepath.Join(m.ConfigPath(), "data", "data_riiid_v1.0.yaml"))
	require.NoError(t, err)

	doc, err := m.Get(Ref{Module: "data", Version: 1.0})
	require.NoError(t, err)
	assert.Equal(t, "2026-08-25", doc[docstore.KeyDatetime])
	assert.InDelta(t, 1.0, asFloat(t, doc[docstore.KeyVersion]), 1e-9)
	assert.Len(t, doc, 2)
}

func TestCreateImplicitModule(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	require.NoError(t, m.Create(Ref{Module: "training", Version: 2.5}, nil))

	modules, err := m.Modules()
	require.NoError(t, err)
	assert.Equal(t, []string{"training"}, modules)
}

func TestCreateAlreadyExists(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	ref := Ref{Module: "data", Version: 1.0}
	require.NoError(t, m.Create(ref, nil))

	err := m.Create(ref, nil)
	require.Error(t, err)
	assert.True(t, errs.IsAlreadyExists(err))
}

func TestCreateWithInitialData(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	ref := Ref{Module: "data", Version: 1.0}
	// Reserved keys in the payload are ignored by the merge.
	require.NoError(t, m.Create(ref, docstore.Document{
		"lr":      0.01,
		"VERSION": 99.0,
	}))

	doc, err := m.Get(ref)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, asFloat(t, doc["lr"]), 1e-9)
	assert.InDelta(t, 1.0, asFloat(t, doc[docstore.KeyVersion]), 1e-9)
	assert.Equal(t, "2026-08-25", doc[docstore.KeyDatetime])
}

func TestUpdateMerge(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	ref := Ref{Module: "data", Version: 1.0, Experiment: "riiid"}
	require.NoError(t, m.Create(ref, nil))
	require.NoError(t, m.Update(ref, docstore.Document{"lr": 0.01}, false))

	doc, err := m.Get(ref)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-25", doc[docstore.KeyDatetime])
	assert.InDelta(t, 1.0, asFloat(t, doc[docstore.KeyVersion]), 1e-9)
	assert.InDelta(t, 0.01, asFloat(t, doc["lr"]), 1e-9)

	// A second merge keeps untouched legacy keys.
	require.NoError(t, m.Update(ref, docstore.Document{"optimizer": "adam"}, false))
	doc, err = m.Get(ref)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, asFloat(t, doc["lr"]), 1e-9)
	assert.Equal(t, "adam", doc["optimizer"])
}

// Override law: the stored document becomes exactly the payload,
// reserved keys included.
func TestUpdateOverride(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	ref := Ref{Module: "data", Version: 1.0}
	require.NoError(t, m.Create(ref, docstore.Document{"lr": 0.01}))
	require.NoError(t, m.Update(ref, docstore.Document{"only": "this"}, true))

	doc, err := m.Get(ref)
	require.NoError(t, err)
	assert.Equal(t, docstore.Document{"only": "this"}, doc)
}

func TestUpdateErrors(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())
	require.NoError(t, m.Create(Ref{Module: "data", Version: 1.0}, nil))

	err := m.Update(Ref{Module: "nope", Version: 1.0}, docstore.Document{"a": 1}, false)
	assert.True(t, errs.IsNotFound(err))

	err = m.Update(Ref{Module: "data", Version: 9.0}, docstore.Document{"a": 1}, false)
	assert.True(t, errs.IsNotFound(err))

	err = m.Update(Ref{Module: "data", Version: 1.0}, nil, false)
	assert.True(t, errs.IsInvalidArgument(err))
}

func TestGetRecordsHistory(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	ref := Ref{Module: "data", Version: 1.0}
	require.NoError(t, m.Create(ref, nil))
	_, err := m.Get(ref)
	require.NoError(t, err)

	doc, err := m.History()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"data": "data_riiid_v1.0.yaml"}, doc["riiid"])
}

func TestGetNotFound(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	_, err := m.Get(Ref{Module: "data", Version: 1.0})
	assert.True(t, errs.IsNotFound(err))
}

// History entries for modules that disappeared behind the manager's
// back are pruned on the next synchronization.
func TestHistoryPruning(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	ref := Ref{Module: "data", Version: 1.0}
	require.NoError(t, m.Create(ref, nil))
	_, err := m.Get(ref)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(m.ConfigPath(), "data")))

	doc, err := m.History()
	require.NoError(t, err)
	assert.Empty(t, doc["riiid"])
}

func TestDeleteCascadesAcrossProjects(t *testing.T) {
	path := t.TempDir()
	alpha := createTestManager(t, "alpha", path)
	beta := createTestManager(t, "beta", path)

	ref := Ref{Module: "data", Version: 1.0, Experiment: "shared"}
	require.NoError(t, alpha.Create(ref, nil))
	require.NoError(t, alpha.SaveExperiment(ref, "baseline"))
	require.NoError(t, beta.SaveExperiment(ref, "from beta"))

	require.NoError(t, alpha.Delete(ref))

	// The file is gone.
	assert.NoFileExists(t, filepath.Join(alpha.ConfigPath(), "data", "data_shared_v1.0.yaml"))

	// No ledger under the root references the document any more.
	assert.Empty(t, alpha.Experiments())
	betaLedger, err := ledger.Open(filepath.Join(path, ConfigDirName, ledger.FileName("beta")))
	require.NoError(t, err)
	defer betaLedger.Close()
	rows, err := betaLedger.Load()
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDeleteModuleCascadesAcrossProjects(t *testing.T) {
	path := t.TempDir()
	alpha := createTestManager(t, "alpha", path)
	beta := createTestManager(t, "beta", path)

	dataRef := Ref{Module: "data", Version: 1.0, Experiment: "shared"}
	modelRef := Ref{Module: "model", Version: 1.0, Experiment: "shared"}
	require.NoError(t, alpha.Create(dataRef, nil))
	require.NoError(t, alpha.Create(modelRef, nil))
	require.NoError(t, alpha.SaveExperiment(dataRef, ""))
	require.NoError(t, alpha.SaveExperiment(modelRef, ""))
	require.NoError(t, beta.SaveExperiment(dataRef, ""))

	require.NoError(t, alpha.DeleteModule("data"))

	rows := alpha.Experiments()
	require.Len(t, rows, 1)
	assert.Equal(t, "model", rows[0].Module)

	betaLedger, err := ledger.Open(filepath.Join(path, ConfigDirName, ledger.FileName("beta")))
	require.NoError(t, err)
	defer betaLedger.Close()
	betaRows, err := betaLedger.Load()
	require.NoError(t, err)
	assert.Empty(t, betaRows)
}

func TestDeleteModuleNotFound(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())
	err := m.DeleteModule("missing")
	assert.True(t, errs.IsNotFound(err))
}

func TestSaveExperiment(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	ref := Ref{Module: "data", Version: 1.0}
	require.NoError(t, m.Create(ref, nil))

	require.NoError(t, m.SaveExperiment(ref, "baseline"))
	// Repeated saves create repeated rows.
	require.NoError(t, m.SaveExperiment(ref, "baseline again"))

	rows := m.Experiments()
	require.Len(t, rows, 2)
	assert.Equal(t, "data_riiid_v1.0.yaml", rows[0].Yaml)
	assert.Equal(t, "2026-08-25 14:30:05", rows[0].Datetime)
	assert.Equal(t, "riiid", rows[0].Experiment)
	assert.Equal(t, "baseline again", rows[1].Note)
	assert.NotEqual(t, rows[0].ID, rows[1].ID)
}

func TestSaveExperimentNotFound(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())
	err := m.SaveExperiment(Ref{Module: "data", Version: 1.0}, "")
	assert.True(t, errs.IsNotFound(err))
}

func TestLoadExperiment(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	ref := Ref{Module: "data", Version: 1.0}
	require.NoError(t, m.Create(ref, docstore.Document{"lr": 0.01}))
	require.NoError(t, m.SaveExperiment(ref, "baseline"))

	doc, err := m.LoadExperiment(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, asFloat(t, doc["lr"]), 1e-9)

	// Loading records a history access for the row's module.
	hist, err := m.History()
	require.NoError(t, err)
	assert.Equal(t, "data_riiid_v1.0.yaml", hist["riiid"]["data"])
}

func TestLoadExperimentErrors(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	_, err := m.LoadExperiment(0)
	assert.True(t, errs.IsNotFound(err))

	ref := Ref{Module: "data", Version: 1.0}
	require.NoError(t, m.Create(ref, nil))
	require.NoError(t, m.SaveExperiment(ref, ""))

	// Row survives but the file was removed out-of-band: stale row.
	require.NoError(t, os.Remove(filepath.Join(m.ConfigPath(), "data", "data_riiid_v1.0.yaml")))
	_, err = m.LoadExperiment(0)
	assert.True(t, errs.IsNotFound(err))
}

func TestDeleteExperiment(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	for _, module := range []string{"a", "b", "c"} {
		ref := Ref{Module: module, Version: 1.0}
		require.NoError(t, m.Create(ref, nil))
		require.NoError(t, m.SaveExperiment(ref, module))
	}

	require.NoError(t, m.DeleteExperiment(1))

	rows := m.Experiments()
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Module)
	assert.Equal(t, "c", rows[1].Module)

	err := m.DeleteExperiment(5)
	assert.True(t, errs.IsNotFound(err))
}

func TestShowAndShowAll(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	require.NoError(t, m.Create(Ref{Module: "data", Version: 1.0}, nil))
	require.NoError(t, m.Create(Ref{Module: "data", Version: 2.0}, nil))
	require.NoError(t, m.Create(Ref{Module: "model", Version: 1.0}, nil))

	names, err := m.Show("data")
	require.NoError(t, err)
	assert.Equal(t, []string{"data_riiid_v1.0.yaml", "data_riiid_v2.0.yaml"}, names)

	names, err = m.Show("missing")
	require.NoError(t, err)
	assert.Empty(t, names)

	all, err := m.ShowAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, []string{"model_riiid_v1.0.yaml"}, all["model"])
}

func TestByNameWrappers(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	require.NoError(t, m.CreateByName("data_riiid_v1.0.yaml", nil))
	require.NoError(t, m.UpdateByName("data_riiid_v1.0.yaml", docstore.Document{"lr": 0.1}, false))

	doc, err := m.GetByName("data_riiid_v1.0.yaml")
	require.NoError(t, err)
	assert.InDelta(t, 0.1, asFloat(t, doc["lr"]), 1e-9)

	require.NoError(t, m.DeleteByName("data_riiid_v1.0.yaml"))
	_, err = m.GetByName("data_riiid_v1.0.yaml")
	assert.True(t, errs.IsNotFound(err))

	_, err = m.GetByName("bad.yaml")
	assert.True(t, errs.IsInvalidArgument(err))
}

func TestStats(t *testing.T) {
	m := createTestManager(t, "riiid", t.TempDir())

	require.NoError(t, m.Create(Ref{Module: "data", Version: 1.0}, nil))
	require.NoError(t, m.Create(Ref{Module: "data", Version: 2.0}, nil))
	require.NoError(t, m.Create(Ref{Module: "model", Version: 1.0}, nil))

	stats, err := m.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{Modules: 2, Documents: 3}, stats)
}
