package sqlcl

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// loginSQL is the startup script the client reads from SQLPATH. It fixes the
// output format the parser depends on: CSV rows, feedback lines
// ("no rows selected", "<N> rows selected.") and DBMS_OUTPUT text.
const loginSQL = `set sqlformat csv
set feedback on
set serveroutput on
`

// PreambleProvider supplies the directory holding login.sql for one
// invocation. Injected so tests and concurrent runs never share a path.
type PreambleProvider interface {
	// Provide returns the directory to expose as SQLPATH and a cleanup
	// function. Cleanup must be safe to call on every exit path.
	Provide() (dir string, cleanup func(), err error)
}

// TempPreamble writes login.sql to a fresh uuid-named directory under the
// system temp dir for every call.
type TempPreamble struct{}

func (TempPreamble) Provide() (string, func(), error) {
	dir := filepath.Join(os.TempDir(), "plsql-"+uuid.NewString())

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", nil, fmt.Errorf("error creating preamble directory: %w", err)
	}

	cleanup := func() { os.RemoveAll(dir) }

	if err := os.WriteFile(filepath.Join(dir, "login.sql"), []byte(loginSQL), 0o600); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("error writing login.sql: %w", err)
	}

	return dir, cleanup, nil
}
