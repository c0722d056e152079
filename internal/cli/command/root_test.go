package command

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

// run executes the CLI with args and captures its output.
func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Run(context.Background(), append([]string{"snapshot-merger"}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestApp(t *testing.T) {
	app := App()

	if app.Name != "snapshot-merger" {
		t.Errorf("Name = %q, want %q", app.Name, "snapshot-merger")
	}

	commands := map[string]bool{}
	for _, cmd := range app.Commands {
		commands[cmd.Name] = true
	}
	for _, name := range []string{"inspect", "verify", "import"} {
		if !commands[name] {
			t.Errorf("missing command: %s", name)
		}
	}

	flags := map[string]bool{}
	for _, f := range app.Flags {
		for _, n := range f.Names() {
			flags[n] = true
		}
	}
	for _, name := range []string{
		"mainnet-ledger", "ledger-to-merge", "output-directory", "o", "warp-slot",
		"config", "c", "log-level", "log-format", "output", "f", "workers",
		"segment-size", "metrics-textfile", "overwrite", "progress",
	} {
		if !flags[name] {
			t.Errorf("missing flag: %s", name)
		}
	}
}

func TestRun_Help(t *testing.T) {
	code, stdout, _ := run(t, "--help")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout, "--mainnet-ledger") {
		t.Errorf("help output missing --mainnet-ledger: %q", stdout)
	}
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := run(t, "--version")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout, "snapshot-merger") {
		t.Errorf("version output = %q", stdout)
	}
}

func TestRun_InvalidArguments(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no flags", nil, "--mainnet-ledger"},
		{"missing target", []string{"--mainnet-ledger", dir, "-o", dir}, "--ledger-to-merge"},
		{"missing output", []string{"--mainnet-ledger", dir, "--ledger-to-merge", dir}, "--output-directory"},
		{"bad warp slot", []string{"--mainnet-ledger", dir, "--ledger-to-merge", dir, "-o", dir, "--warp-slot", "-1"}, "InvalidArgument"},
		{"unknown flag", []string{"--no-such-flag"}, "InvalidArgument"},
		{"stray argument", []string{"--mainnet-ledger", dir, "--ledger-to-merge", dir, "-o", dir, "extra"}, "unexpected argument"},
		{"segment size above 4 GiB", []string{"--segment-size", "4294967297", "--mainnet-ledger", dir, "--ledger-to-merge", dir, "-o", dir}, "writer.max_segment_size"},
		{"bad log format", []string{"--log-format", "xml", "--mainnet-ledger", dir, "--ledger-to-merge", dir, "-o", dir}, "log.format"},
		{"inspect without ledger", []string{"inspect"}, "--ledger"},
		{"verify without archive", []string{"verify"}, "exactly one archive"},
		{"import without ledger dir", []string{"import", "--archive", "x.tar.zst"}, "--ledger-dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, tt.args...)
			if code != 2 {
				t.Errorf("exit code = %d, want 2 (stderr %q)", code, stderr)
			}
			if !strings.Contains(stderr, "error: InvalidArgument") || !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr = %q, want InvalidArgument mentioning %q", stderr, tt.want)
			}
		})
	}
}

func TestOverrides(t *testing.T) {
	// Exercised through the root action so flags are parsed for real.
	app := App()
	var got map[string]any
	app.Action = func(c *cli.Context) error {
		got = overrides(c)
		return nil
	}
	err := app.Run([]string{"snapshot-merger", "--workers", "3", "--overwrite", "--output", "json", "--segment-size", "4096"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := map[string]any{
		"merge.workers":           3,
		"writer.workers":          3,
		"writer.overwrite":        true,
		"output.format":           "json",
		"writer.max_segment_size": uint64(4096),
	}
	if len(got) != len(want) {
		t.Fatalf("overrides = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("overrides[%q] = %v (%T), want %v", k, got[k], got[k], v)
		}
	}
}
