package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

// newTestWriter creates a Writer with captured output for testing.
func newTestWriter() (*Writer, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return NewWithWriters(stdout, stderr, false), stdout, stderr
}

func TestNew(t *testing.T) {
	w := New()
	if w == nil {
		t.Fatal("New() returned nil")
	}
	if w.out == nil || w.err == nil {
		t.Error("New() left a nil writer")
	}
}

func TestWriter_SetColorMode(t *testing.T) {
	w, _, _ := newTestWriter()
	w.SetColorMode("always")
	if !w.color {
		t.Error("SetColorMode(always) did not enable color")
	}
	w.SetColorMode("never")
	if w.color {
		t.Error("SetColorMode(never) did not disable color")
	}
}

func TestWriter_PrintAndError(t *testing.T) {
	w, stdout, stderr := newTestWriter()

	w.Println("hello %s", "world")
	w.Errorln("error %d", 42)

	if got := stdout.String(); got != "hello world\n" {
		t.Errorf("Println() = %q, want %q", got, "hello world\n")
	}
	if got := stderr.String(); got != "error 42\n" {
		t.Errorf("Errorln() = %q, want %q", got, "error 42\n")
	}
}

func TestWriter_QuietSuppressesProgress(t *testing.T) {
	w, stdout, stderr := newTestWriter()
	w.SetQuiet(true)

	w.Info("info")
	w.Notice("notice")
	w.RunStart(1, 2, "base")
	w.RunSuccess("base", "1s")
	w.Section("Batch")
	if stdout.Len() != 0 {
		t.Errorf("quiet mode printed %q", stdout.String())
	}

	w.RunFailed("base", "boom")
	if !strings.Contains(stderr.String(), "[base] failed: boom") {
		t.Errorf("RunFailed() must print in quiet mode, got %q", stderr.String())
	}
}

func TestWriter_Notice(t *testing.T) {
	w, stdout, _ := newTestWriter()
	w.Notice("running %d simulations sequentially", 3)
	if got := stdout.String(); got != "note: running 3 simulations sequentially\n" {
		t.Errorf("Notice() = %q", got)
	}
}

func TestWriter_Warning(t *testing.T) {
	w, stdout, stderr := newTestWriter()
	w.Warning("unknown directive %q", "foo")
	if stdout.Len() != 0 {
		t.Errorf("Warning() wrote to stdout: %q", stdout.String())
	}
	if got := stderr.String(); got != "warning: unknown directive \"foo\"\n" {
		t.Errorf("Warning() = %q", got)
	}
}

func TestWriter_RunProgress(t *testing.T) {
	w, stdout, _ := newTestWriter()
	w.RunStart(2, 4, "base_mua1_0.02")
	w.RunSuccess("base_mua1_0.02", "12ms")

	want := "[2/4] base_mua1_0.02\n[base_mua1_0.02] done 12ms\n"
	if got := stdout.String(); got != want {
		t.Errorf("run progress = %q, want %q", got, want)
	}
}

func TestWriter_Table(t *testing.T) {
	w, stdout, _ := newTestWriter()
	w.Table([]string{"RUN", "STATUS"}, [][]string{
		{"a", "ok"},
		{"longer_name", "failed"},
	})

	want := strings.Join([]string{
		"RUN          STATUS",
		"-----------  ------",
		"a            ok",
		"longer_name  failed",
		"",
	}, "\n")
	if got := stdout.String(); got != want {
		t.Errorf("Table() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriter_ColorPlaceholders(t *testing.T) {
	w := NewWithWriters(&bytes.Buffer{}, &bytes.Buffer{}, true)
	got := w.colorPlaceholders("infile=<file>")
	if !strings.Contains(got, colorPlaceholder+"<file>"+reset) {
		t.Errorf("colorPlaceholders() = %q", got)
	}
	if !strings.HasPrefix(got, "infile=") {
		t.Errorf("colorPlaceholders() changed plain text: %q", got)
	}
}

func TestWriter_HelpPlain(t *testing.T) {
	w, stdout, _ := newTestWriter()
	w.HelpTitle("mc")
	w.HelpSection("Directives:")
	w.HelpCommand("infile=<file>", "input template", 16)
	w.HelpEnvVar("MC_ENGINE", "engine command", 12)
	w.HelpExample("mc infile=a.yaml", "")

	out := stdout.String()
	for _, want := range []string{
		"mc\n",
		"\nDirectives:\n",
		"  infile=<file>     input template\n",
		"  MC_ENGINE     engine command\n",
		"  mc infile=a.yaml\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q:\n%s", want, out)
		}
	}
}

func TestWriter_ConcurrentLines(t *testing.T) {
	w, stdout, _ := newTestWriter()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w.Println("line %02d", i)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
	if len(lines) != 50 {
		t.Fatalf("got %d lines, want 50", len(lines))
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "line ") || len(l) != len("line 00") {
			t.Errorf("interleaved line %q", l)
		}
	}
}

func TestWriter_ErrorPrefix(t *testing.T) {
	w, _, stderr := newTestWriter()
	w.ErrorPrefix("cannot read %s", "a.yaml")
	if got := stderr.String(); got != "mc: cannot read a.yaml\n" {
		t.Errorf("ErrorPrefix() = %q", got)
	}
}
