package cli

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/panasenco/plsql/internal/config"
	"github.com/panasenco/plsql/internal/locale"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = old

	out, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(out), runErr
}

func TestRunDryRunPrintsNormalizedQuery(t *testing.T) {
	// No client binary exists in the test environment, so any subprocess
	// attempt would fail the run.
	cmd := New(config.NewConfig())

	out, err := captureStdout(t, func() error {
		return cmd.Run(context.Background(),
			[]string{"plsql", "run", "--dry-run", "select 1\r\n\r\nfrom dual;"})
	})

	require.NoError(t, err)
	assert.Equal(t, "select 1\nfrom dual;\n", out)
}

func TestRunDryRunNeedsNoConnection(t *testing.T) {
	t.Setenv(config.DefaultConnectEnvVar, "")

	cmd := New(config.NewConfig())

	out, err := captureStdout(t, func() error {
		return cmd.Run(context.Background(),
			[]string{"plsql", "run", "--dry-run", "select sysdate from dual;"})
	})

	require.NoError(t, err)
	assert.Equal(t, "select sysdate from dual;\n", out)
}

func TestValidateOutputFormat(t *testing.T) {
	l := locale.Default()

	for _, format := range []string{"xlsx", "csv", "json", "XLSX"} {
		assert.NoError(t, validateOutputFormat(format, l), format)
	}

	assert.Error(t, validateOutputFormat("parquet", l))
	assert.Error(t, validateOutputFormat("", l))
}

func TestFailuresErrorNil(t *testing.T) {
	assert.NoError(t, failuresError(nil))
	assert.NoError(t, failuresError(map[string]error{}))
}

func TestReadScriptArgWins(t *testing.T) {
	l := locale.Default()

	script, err := readScript("select 1 from dual;", "", false, l)

	require.NoError(t, err)
	assert.Equal(t, "select 1 from dual;\n", script)
}

func TestReadScriptAppendsCommit(t *testing.T) {
	l := locale.Default()

	script, err := readScript("update t set a = 1;", "", true, l)

	require.NoError(t, err)
	assert.Equal(t, "update t set a = 1;\ncommit;\n", script)
}

func TestReadScriptFromFile(t *testing.T) {
	l := locale.Default()

	f, err := os.CreateTemp(t.TempDir(), "query-*.sql")
	require.NoError(t, err)
	_, err = f.WriteString("select id\n\nfrom t;\n")
	require.NoError(t, err)
	f.Close()

	script, err := readScript("", f.Name(), false, l)

	require.NoError(t, err)
	assert.Equal(t, "select id\nfrom t;\n", script)
}
