package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/regkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invoicesJSON = `[
  {"id": 1, "fullInvoiceName": "Spring order", "objCompany": "ACME", "censoredDt": "2024-01-01",
   "mainRegisters": [{"name": "Cola", "brand": "X", "totalSpace": 1}, {"name": "Tea", "brand": "Y", "totalSpace": 2}]},
  {"id": 2, "fullInvoiceName": "Summer order", "objCompany": "Globex", "censoredDt": "2024-06-01"}
]`

type env struct {
	data string
	cfg  string
}

func newEnv(t *testing.T) env {
	t.Helper()
	data := t.TempDir()
	dir := filepath.Join(data, "files", "invoices")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(invoicesJSON), 0o600))

	cfg := filepath.Join(data, "regkeeper.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("layout: android\nsample_size: 30\nlog_level: error\n"), 0o600))
	return env{data: data, cfg: cfg}
}

func (e env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--config", e.cfg, "--data-dir", e.data}, args...)
	err := Execute(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

// runLogged is run with the log level raised to info. It returns stdout and
// the log output.
func (e env) runLogged(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--config", e.cfg, "--data-dir", e.data, "--log-level", "info"}, args...)
	err := Execute(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestExecute_BrandsLogsStoreCreation(t *testing.T) {
	e := newEnv(t)

	_, logs, err := e.runLogged(t, "", "brands")
	require.NoError(t, err)
	assert.Contains(t, logs, "brand store created")

	_, logs, err = e.runLogged(t, "", "brands")
	require.NoError(t, err)
	assert.NotContains(t, logs, "brand store created")
}

func TestExecute_BrandsUsesSampleData(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "brands", "--size", "10", "--page", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Sample Brand 0021")
	assert.Contains(t, out, "page 3 of 3, 30 brands")
	assert.FileExists(t, filepath.Join(e.data, "databases", "brands.db"))

	out, err = e.run(t, "", "brands", "-s", "brand 002")
	require.NoError(t, err)
	assert.Contains(t, out, "page 1 of 1, 10 brands")
}

func TestExecute_InvoiceCommands(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "invoices", "scan", "--company", "glob")
	require.NoError(t, err)
	assert.Contains(t, out, "Summer order")
	assert.NotContains(t, out, "Spring order")

	out, err = e.run(t, "", "invoices", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Spring order")
	assert.Contains(t, out, "Tea")

	out, err = e.run(t, "", "invoices", "count")
	require.NoError(t, err)
	assert.Contains(t, out, "Invoices: 2")
	assert.Contains(t, out, "Register items: 2")

	_, err = e.run(t, "", "invoices", "show", "404")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestExecute_EditLifecycle(t *testing.T) {
	for _, store := range []string{"fs", "sqlite"} {
		t.Run(store, func(t *testing.T) {
			e := newEnv(t)
			edit := func(args ...string) string {
				out, err := e.run(t, "", append([]string{"--edit-store", store, "edits"}, args...)...)
				require.NoError(t, err)
				return out
			}

			assert.Contains(t, edit("amount", "1", "2", "7.5"), "amount set to \"7.5\"")
			assert.Contains(t, edit("list"), "saved")

			out, err := e.run(t, "", "--edit-store", store, "invoices", "show", "1")
			require.NoError(t, err)
			assert.Contains(t, out, "7.5")

			assert.Contains(t, edit("export", "1"), filepath.Join(e.data, "files", "exports"))
			assert.Contains(t, edit("list"), "exported")

			assert.Contains(t, edit("reset", "1"), "Invoice 1 reset.")
			assert.Contains(t, edit("delete", "1"), "has no saved edits")

			edit("save", "2")
			assert.Contains(t, edit("reset-all", "--yes"), "All edits deleted.")
			assert.Contains(t, edit("list"), "No saved edits.")
		})
	}
}

func TestExecute_ResetAllWithoutConfirmation(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "", "edits", "save", "1")
	require.NoError(t, err)

	out, err := e.run(t, "n\n", "edits", "reset-all")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	out, err = e.run(t, "", "edits", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Spring order")
}

func TestExecute_Shell(t *testing.T) {
	captureOutput(t)
	e := newEnv(t)

	out, err := e.run(t, "brands\nmore\nmore\nshow 2\nexit\n", "--page-size", "20", "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "20 of 30 brands loaded")
	assert.Contains(t, out, "30 of 30 brands loaded")
	assert.Contains(t, out, "No more brands.")
	assert.Contains(t, out, "Summer order")
}

func TestExecute_ShellTagsServiceLogsWithSession(t *testing.T) {
	captureOutput(t)
	e := newEnv(t)

	_, logs, err := e.runLogged(t, "scan\nexit\n", "shell")
	require.NoError(t, err)

	var started, scanned string
	for _, line := range strings.Split(logs, "\n") {
		switch {
		case strings.Contains(line, "shell started"):
			started = line
		case strings.Contains(line, "invoices scanned"):
			scanned = line
		}
	}
	require.NotEmpty(t, started)
	require.NotEmpty(t, scanned)
	assert.Contains(t, scanned, "session=")
	assert.Equal(t, sessionID(started), sessionID(scanned))
}

func TestExecute_OneShotCommandsHaveNoSession(t *testing.T) {
	e := newEnv(t)

	_, logs, err := e.runLogged(t, "", "invoices", "scan")
	require.NoError(t, err)
	assert.Contains(t, logs, "invoices scanned")
	assert.NotContains(t, logs, "session=")
}

func sessionID(line string) string {
	for _, f := range strings.Fields(line) {
		if v, ok := strings.CutPrefix(f, "session="); ok {
			return v
		}
	}
	return ""
}

func TestExecute_InvalidConfig(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "", "--edit-store", "redis", "edits", "list")
	require.Error(t, err)

	_, err = e.run(t, "", "invoices", "show", "x")
	require.Error(t, err)
}
