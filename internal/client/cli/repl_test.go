package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(context.Context) error { return f.record("whoami") }
func (f *fakeExec) Verify(_ context.Context, serial string) error {
	return f.record("verify %s", serial)
}
func (f *fakeExec) Last(context.Context) error         { return f.record("last") }
func (f *fakeExec) History(context.Context) error      { return f.record("history") }
func (f *fakeExec) ClearHistory(context.Context) error { return f.record("clearhistory") }
func (f *fakeExec) Stats(context.Context) error        { return f.record("stats") }
func (f *fakeExec) List(_ context.Context, kind string) error {
	return f.record("list %s", kind)
}
func (f *fakeExec) Add(_ context.Context, kind string) error { return f.record("add %s", kind) }
func (f *fakeExec) Update(_ context.Context, kind string, id int64) error {
	return f.record("update %s %d", kind, id)
}
func (f *fakeExec) Delete(_ context.Context, kind string, id int64) error {
	return f.record("delete %s %d", kind, id)
}
func (f *fakeExec) PDF(_ context.Context, id int64, path string) error {
	return f.record("pdf %d %s", id, path)
}
func (f *fakeExec) Dashboard(context.Context) error { return f.record("dashboard") }

// capturePrintln replaces printlnFn and returns everything printed so far.
func capturePrintln(t *testing.T) func() string {
	t.Helper()
	orig := printlnFn
	var sb strings.Builder
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(&sb, a...) }
	t.Cleanup(func() { printlnFn = orig })
	return sb.String
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"verify NS-1",
		"v NS-2",
		"last",
		"history",
		"stats",
		"login",
		"help",
		"list products",
		"l cert",
		"add customer",
		"update products 7",
		"delete certificates 3",
		"pdf 3",
		"pdf 4 out/label.pdf",
		"dashboard",
		"whoami",
		"clearhistory",
		"logout",
		"exit",
		"verify never",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))

	require.Equal(t, []string{
		"verify NS-1",
		"verify NS-2",
		"last",
		"history",
		"stats",
		"login",
		"list products",
		"list certificates",
		"add customers",
		"update products 7",
		"delete certificates 3",
		"pdf 3 ",
		"pdf 4 out/label.pdf",
		"dashboard",
		"whoami",
		"clearhistory",
		"logout",
	}, exec.calls)
}

func TestRunREPL_RequiresSession(t *testing.T) {
	out := capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" },
		rdr("list products\ndashboard\npdf 1\nlogout\nverify X\n"))

	require.Equal(t, []string{"verify X"}, exec.calls)
	require.Equal(t, 4, strings.Count(out(), "Please log in first."))
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	out := capturePrintln(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, rdr(strings.Join([]string{
		"verify",
		"verify a b",
		"list",
		"list widgets",
		"update products",
		"update products x",
		"delete products 0",
		"pdf",
		"pdf -1",
		"pdf 1 a b",
		"frobnicate",
		"",
		"quit",
	}, "\n")))

	require.Empty(t, exec.calls)
	printed := out()
	require.Contains(t, printed, "Usage: verify <serial>")
	require.Contains(t, printed, "Usage: list <customers|products|certificates>")
	require.Contains(t, printed, "Usage: update <customers|products|certificates> <id>")
	require.Contains(t, printed, "Usage: delete <customers|products|certificates> <id>")
	require.Contains(t, printed, "Usage: pdf <certificate id> [file]")
	require.Contains(t, printed, "Unknown command: frobnicate")
	require.Contains(t, printed, "Bye!")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	out := capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(anonymous)" }, rdr("stats"))

	require.Equal(t, []string{"stats"}, exec.calls)
	require.Contains(t, out(), "pa (anonymous) > ")
	require.NotContains(t, out(), "Bye!")
}

func TestRunREPL_Help(t *testing.T) {
	out := capturePrintln(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "" }, rdr("help\n"))
	require.Contains(t, out(), helpAnonymous)

	out = capturePrintln(t)
	runREPL(context.Background(), &fakeExec{loggedIn: true}, func() string { return "" }, rdr("help\n"))
	require.Contains(t, out(), helpLoggedIn)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"customers", kindCustomers, true},
		{"Customer", kindCustomers, true},
		{"product", kindProducts, true},
		{"certs", kindCertificates, true},
		{"CERTIFICATE", kindCertificates, true},
		{"widgets", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := parseKind(tc.in)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestIDArg(t *testing.T) {
	id, ok := idArg([]string{"products", "12"}, 1)
	require.True(t, ok)
	require.Equal(t, int64(12), id)

	_, ok = idArg([]string{"products"}, 1)
	require.False(t, ok)
	_, ok = idArg([]string{"0"}, 0)
	require.False(t, ok)
	_, ok = idArg([]string{"abc"}, 0)
	require.False(t, ok)
}
