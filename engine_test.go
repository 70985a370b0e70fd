package grantling

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/grantling/grantling/value"
)

func TestLoadByNameCaches(t *testing.T) {
	eng := quietEngine()
	loads := 0
	eng.SetLoader(func(name string) (string, error) {
		loads++
		return "body of " + name, nil
	})

	for i := 0; i < 3; i++ {
		tmpl, err := eng.LoadByName("page")
		if err != nil {
			t.Fatal(err)
		}
		if tmpl.Name() != "page" {
			t.Errorf("expected name page, got %s", tmpl.Name())
		}
	}
	if loads != 1 {
		t.Errorf("expected a single load, got %d", loads)
	}
}

func TestInvalidate(t *testing.T) {
	eng := quietEngine()
	version := 1
	eng.SetLoader(func(name string) (string, error) {
		return fmt.Sprintf("v%d", version), nil
	})

	render := func() string {
		tmpl, err := eng.LoadByName("page")
		if err != nil {
			t.Fatal(err)
		}
		ctx := eng.CreateContext()
		ctx.Push()
		out, err := tmpl.RenderToString(ctx)
		if err != nil {
			t.Fatal(err)
		}
		return out
	}

	if got := render(); got != "v1" {
		t.Fatalf("expected v1, got %q", got)
	}

	version = 2
	if got := render(); got != "v1" {
		t.Errorf("cache should still serve v1, got %q", got)
	}

	eng.Invalidate("page")
	if got := render(); got != "v2" {
		t.Errorf("expected v2 after Invalidate, got %q", got)
	}

	version = 3
	eng.InvalidateAll()
	if got := render(); got != "v3" {
		t.Errorf("expected v3 after InvalidateAll, got %q", got)
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "greet.tpl"),
		[]byte("hi {{ name }}"), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := quietEngine()
	eng.SetTemplateDir(dir)

	tmpl, err := eng.LoadByName("greet.tpl")
	if err != nil {
		t.Fatal(err)
	}
	ctx := eng.CreateContext()
	ctx.Push()
	ctx.Set("name", value.FromString("there"))
	out, err := tmpl.RenderToString(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if out != "hi there" {
		t.Errorf("expected %q, got %q", "hi there", out)
	}
}

func TestLoadByNameMissing(t *testing.T) {
	eng := quietEngine()
	eng.SetTemplateDir(t.TempDir())

	_, err := eng.LoadByName("absent.tpl")
	if err == nil {
		t.Fatal("expected an error")
	}
	terr, ok := err.(*Error)
	if !ok || terr.Kind != ErrTemplateNotFound {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
	if terr.Name != "absent.tpl" {
		t.Errorf("error should carry the template name, got %q", terr.Name)
	}
}

func TestNewTemplateParseError(t *testing.T) {
	eng := quietEngine()
	if _, err := eng.NewTemplate("bad", "{% bogus %}"); err == nil {
		t.Fatal("expected a parse error")
	}
	// A failed parse must not register anything.
	eng.SetLoader(func(name string) (string, error) {
		return "", fmt.Errorf("no loader for %s", name)
	})
	if _, err := eng.LoadByName("bad"); err == nil {
		t.Error("broken template should not be cached")
	}
}

func TestCreate(t *testing.T) {
	eng := quietEngine()
	mustTemplate(t, eng, "page", "content for {{ target }}\n")

	dir := t.TempDir()
	tmpl := mustTemplate(t, eng, "driver",
		"before{% create 'out.txt' from 'page' %}after")
	ctx := eng.CreateContext()
	ctx.Push()
	ctx.Set("target", value.FromString("x"))
	ctx.SetOutputDirectory(dir)

	out, err := tmpl.RenderToString(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if out != "beforeafter" {
		t.Errorf("create must not touch the main stream, got %q", out)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "content for x\n" {
		t.Errorf("file content: got %q", string(data))
	}
}

func TestCreateDynamicNames(t *testing.T) {
	eng := quietEngine()
	mustTemplate(t, eng, "member", "{{ m.name }};")

	dir := t.TempDir()
	tmpl := mustTemplate(t, eng,
		"driver", "{% for m in members %}{% create m.file from 'member' %}{% endfor %}")
	ctx := eng.CreateContext()
	ctx.Push()
	ctx.Set("members", value.FromAny([]any{
		map[string]any{"name": "a", "file": "a.txt"},
		map[string]any{"name": "b", "file": "b.txt"},
	}))
	ctx.SetOutputDirectory(dir)

	if _, err := tmpl.RenderToString(ctx); err != nil {
		t.Fatal(err)
	}

	for _, want := range []struct{ file, content string }{
		{"a.txt", "a;"},
		{"b.txt", "b;"},
	} {
		data, err := os.ReadFile(filepath.Join(dir, want.file))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != want.content {
			t.Errorf("%s: got %q", want.file, string(data))
		}
	}
}

func TestCreateMissingTemplateWarns(t *testing.T) {
	eng := New()
	var warned []error
	eng.SetWarnFunc(func(err error) { warned = append(warned, err) })
	eng.SetLoader(func(name string) (string, error) {
		return "", fmt.Errorf("no template %s", name)
	})

	dir := t.TempDir()
	tmpl := mustTemplate(t, eng, "driver", "a{% create 'x.txt' from 'gone' %}b")
	ctx := eng.CreateContext()
	ctx.Push()
	ctx.SetOutputDirectory(dir)

	out, err := tmpl.RenderToString(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if out != "ab" {
		t.Errorf("expected %q, got %q", "ab", out)
	}
	if len(warned) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warned))
	}
	if _, err := os.Stat(filepath.Join(dir, "x.txt")); !os.IsNotExist(err) {
		t.Error("no file should be written when the template is missing")
	}
}

func TestCreateWriteFailureWarns(t *testing.T) {
	eng := New()
	var warned []error
	eng.SetWarnFunc(func(err error) { warned = append(warned, err) })
	mustTemplate(t, eng, "page", "x")

	tmpl := mustTemplate(t, eng, "driver", "a{% create 'o.txt' from 'page' %}b")
	ctx := eng.CreateContext()
	ctx.Push()
	ctx.SetOutputDirectory(filepath.Join(t.TempDir(), "no", "such", "dir"))

	out, err := tmpl.RenderToString(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if out != "ab" {
		t.Errorf("expected %q, got %q", "ab", out)
	}
	if len(warned) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warned))
	}
	terr, ok := warned[0].(*Error)
	if !ok || terr.Kind != ErrCreateFailed {
		t.Errorf("expected ErrCreateFailed, got %v", warned[0])
	}
}

func TestWriteFailureIsFatal(t *testing.T) {
	eng := quietEngine()
	tmpl := mustTemplate(t, eng, "t", "some text")
	ctx := eng.CreateContext()
	ctx.Push()

	err := tmpl.Render(failWriter{}, ctx)
	if err == nil {
		t.Fatal("expected an error")
	}
	terr, ok := err.(*Error)
	if !ok || terr.Kind != ErrWriteFailed {
		t.Errorf("expected ErrWriteFailed, got %v", err)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, fmt.Errorf("sink closed")
}
