package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/regkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	calls []string
	fail  error
}

func (f *fakeExec) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.fail
}

func (f *fakeExec) Browse(_ context.Context, term string) error { return f.record("browse %q", term) }
func (f *fakeExec) More(context.Context) error                  { return f.record("more") }
func (f *fakeExec) Scan(_ context.Context, fl models.ScanFilter) error {
	return f.record("scan %q", fl.Company)
}
func (f *fakeExec) Show(_ context.Context, id int64) error   { return f.record("show %d", id) }
func (f *fakeExec) Count(context.Context) error              { return f.record("count") }
func (f *fakeExec) Edits(context.Context) error              { return f.record("edits") }
func (f *fakeExec) Save(_ context.Context, id int64) error   { return f.record("save %d", id) }
func (f *fakeExec) Export(_ context.Context, id int64) error { return f.record("export %d", id) }
func (f *fakeExec) Delete(_ context.Context, id int64) error { return f.record("delete %d", id) }
func (f *fakeExec) Reset(_ context.Context, id int64) error  { return f.record("reset %d", id) }
func (f *fakeExec) ResetAll(_ context.Context, confirmed bool) error {
	return f.record("reset-all %v", confirmed)
}
func (f *fakeExec) SetAmount(_ context.Context, id int64, index int, amount *float64) error {
	return f.record("amount %d %d %s", id, index, formatAmount(amount))
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func run(t *testing.T, f *fakeExec, input ...string) {
	t.Helper()
	sc := bufio.NewScanner(strings.NewReader(strings.Join(input, "\n")))
	runREPL(context.Background(), f, func() string { return "" }, sc)
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	captureOutput(t)
	f := &fakeExec{}

	run(t, f,
		"help",
		"brands coca cola",
		"more",
		"scan acme",
		"show 12",
		"count",
		"edits",
		"amount 12 2 3,5",
		"amount 12 1 -",
		"save 12",
		"export 12",
		"delete 12",
		"reset 12",
		"reset-all yes",
		"exit",
		"show 99",
	)

	assert.Equal(t, []string{
		`browse "coca cola"`,
		"more",
		`scan "acme"`,
		"show 12",
		"count",
		"edits",
		"amount 12 2 3.5",
		"amount 12 1 ",
		"save 12",
		"export 12",
		"delete 12",
		"reset 12",
		"reset-all true",
	}, f.calls)
}

func TestRunREPL_ReportsBadInput(t *testing.T) {
	out := captureOutput(t)
	f := &fakeExec{}

	run(t, f, "show", "show abc", "amount 1 x 2", "frobnicate")

	assert.Empty(t, f.calls)
	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "Usage: show <id>")
	assert.Contains(t, joined, `invalid invoice id "abc"`)
	assert.Contains(t, joined, `invalid item number "x"`)
	assert.Contains(t, joined, "Unknown command: frobnicate")
}

func TestRunREPL_ResetAllAsksForConfirmation(t *testing.T) {
	captureOutput(t)
	f := &fakeExec{}

	run(t, f, "reset-all", "no", "reset-all", "y")

	assert.Equal(t, []string{"reset-all true"}, f.calls)
}

func TestRunREPL_ErrorsDoNotStopTheLoop(t *testing.T) {
	out := captureOutput(t)
	f := &fakeExec{fail: errors.New("boom")}

	run(t, f, "count", "edits")

	require.Len(t, f.calls, 2)
	assert.Contains(t, strings.Join(*out, "\n"), "Error: boom")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	captureOutput(t)
	f := &fakeExec{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runREPL(ctx, f, func() string { return "" }, bufio.NewScanner(strings.NewReader("count\n")))
	assert.Empty(t, f.calls)
}

func TestParseAmount(t *testing.T) {
	v, err := parseAmount(" 2.25 ")
	require.NoError(t, err)
	assert.Equal(t, 2.25, *v)

	v, err = parseAmount("clear")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = parseAmount("lots")
	require.Error(t, err)
}
