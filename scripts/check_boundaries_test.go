package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, root string, rel string, imports ...string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := "package x\n\nimport (\n"
	for _, imp := range imports {
		src += "\t_ \"" + imp + "\"\n"
	}
	src += ")\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCollectViolationsAcceptsLayeredImports(t *testing.T) {
	root := t.TempDir()
	prefix := "qaboard/contexts/community/answers"
	writeSource(t, root, "community/answers/domain/entities/a.go", "time", prefix+"/domain/errors")
	writeSource(t, root, "community/answers/ports/ports.go", "context", prefix+"/domain/entities")
	writeSource(t, root, "community/answers/application/commands/c.go", prefix+"/ports", prefix+"/application")
	writeSource(t, root, "community/answers/adapters/postgres/r.go", "gorm.io/gorm", prefix+"/ports")

	if got := collectViolations(root); len(got) != 0 {
		t.Fatalf("expected no violations, got %+v", got)
	}
}

func TestCollectViolationsFlagsLayerBreaks(t *testing.T) {
	root := t.TempDir()
	prefix := "qaboard/contexts/community/answers"
	writeSource(t, root, "community/answers/domain/entities/a.go", "gorm.io/gorm")
	writeSource(t, root, "community/answers/application/commands/c.go", prefix+"/adapters/memory")
	writeSource(t, root, "community/answers/ports/ports.go", "qaboard/internal/platform/db")
	writeSource(t, root, "community/answers/adapters/http/h.go", "qaboard/contexts/other/service/ports")

	got := collectViolations(root)
	rules := map[string]bool{}
	for _, v := range got {
		rules[v.Rule] = true
	}
	for _, want := range []string{
		"domain import is outside explicit allowlist",
		"application must not import adapters",
		"ports must not import runtime infrastructure",
		"cross-module imports are forbidden",
	} {
		if !rules[want] {
			t.Fatalf("expected rule %q in %+v", want, got)
		}
	}
}

func TestRepositoryContextsRespectBoundaries(t *testing.T) {
	if got := collectViolations(filepath.Join("..", "contexts")); len(got) != 0 {
		t.Fatalf("boundary violations: %+v", got)
	}
}
