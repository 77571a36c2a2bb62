package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootInvalidFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--format", "xml", "--path", t.TempDir(), "module", "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootModuleLifecycle(t *testing.T) {
	path := t.TempDir()

	run := func(args ...string) (string, error) {
		buf := &bytes.Buffer{}
		cmd := NewRootCommand()
		cmd.SetOut(buf)
		cmd.SetErr(buf)
		cmd.SetArgs(append([]string{"--project", "riiid", "--path", path}, args...))
		err := cmd.Execute()
		return buf.String(), err
	}

	out, err := run("module", "create", "data")
	require.NoError(t, err)
	assert.Contains(t, out, "created")

	out, err = run("module", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "data")

	_, err = run("module", "create", "data")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err = run("module", "delete", "data")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	_, err = run("module", "delete", "data")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRootShowAndStatus(t *testing.T) {
	path := t.TempDir()

	run := func(args ...string) (string, error) {
		buf := &bytes.Buffer{}
		cmd := NewRootCommand()
		cmd.SetOut(buf)
		cmd.SetErr(buf)
		cmd.SetArgs(append([]string{"--project", "riiid", "--path", path}, args...))
		err := cmd.Execute()
		return buf.String(), err
	}

	_, err := run("create", "data", "1.0")
	require.NoError(t, err)
	_, err = run("create", "model", "2.5")
	require.NoError(t, err)

	out, err := run("show", "data")
	require.NoError(t, err)
	assert.Contains(t, out, "data_riiid_v1.0.yaml")

	out, err = run("show")
	require.NoError(t, err)
	assert.Contains(t, out, "data:")
	assert.Contains(t, out, "model_riiid_v2.5.yaml")

	out, err = run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Modules: 2, Total Documents: 2")
}

func TestRootHistory(t *testing.T) {
	path := t.TempDir()

	run := func(args ...string) (string, error) {
		buf := &bytes.Buffer{}
		cmd := NewRootCommand()
		cmd.SetOut(buf)
		cmd.SetErr(buf)
		cmd.SetArgs(append([]string{"--project", "riiid", "--path", path}, args...))
		err := cmd.Execute()
		return buf.String(), err
	}

	_, err := run("create", "data", "1.0")
	require.NoError(t, err)
	_, err = run("get", "data", "1.0")
	require.NoError(t, err)

	out, err := run("history")
	require.NoError(t, err)
	assert.Contains(t, out, "riiid:")
	assert.Contains(t, out, "data: data_riiid_v1.0.yaml")
}
