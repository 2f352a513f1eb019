package migrations

import (
	"context"
	"io/fs"
	"strings"
	"testing"
)

func TestFilesystems_ReturnsBothDialects(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("resolve filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected postgres and sqlite filesystems, got %d", len(filesystems))
	}

	byDialect := map[string]FilesystemSpec{}
	for _, spec := range filesystems {
		byDialect[spec.Dialect] = spec
	}
	for _, dialect := range []string{DialectPostgres, DialectSQLite} {
		spec, ok := byDialect[dialect]
		if !ok {
			t.Fatalf("missing %s filesystem", dialect)
		}
		matches, globErr := fs.Glob(spec.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("expected *.up.sql files for %s", dialect)
		}
	}
}

func TestRegister_InvokesCallbackPerTarget(t *testing.T) {
	var registered []string
	reg, err := Register(context.Background(), func(_ context.Context, dialect string, sourceLabel string, fsys fs.FS) error {
		if sourceLabel != "go-extensions" {
			t.Fatalf("unexpected source label %q", sourceLabel)
		}
		if fsys == nil {
			t.Fatalf("expected filesystem for %s", dialect)
		}
		registered = append(registered, dialect)
		return nil
	})
	if err != nil {
		t.Fatalf("register migrations: %v", err)
	}
	if len(registered) != 2 {
		t.Fatalf("expected both dialects registered, got %v", registered)
	}
	if len(reg.Filesystems) != 2 {
		t.Fatalf("unexpected registration %+v", reg)
	}
}

func TestRegister_FiltersByValidationTargets(t *testing.T) {
	var registered []string
	_, err := Register(context.Background(), func(_ context.Context, dialect string, _ string, _ fs.FS) error {
		registered = append(registered, dialect)
		return nil
	}, WithValidationTargets(DialectSQLite))
	if err != nil {
		t.Fatalf("register migrations: %v", err)
	}
	if len(registered) != 1 || registered[0] != DialectSQLite {
		t.Fatalf("expected sqlite only, got %v", registered)
	}
}

func TestRegister_RequiresCallback(t *testing.T) {
	_, err := Register(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "register function") {
		t.Fatalf("expected register function error, got %v", err)
	}
}

func TestRegister_CustomSourceLabel(t *testing.T) {
	_, err := Register(context.Background(), func(_ context.Context, _ string, sourceLabel string, _ fs.FS) error {
		if sourceLabel != "host-app" {
			t.Fatalf("unexpected source label %q", sourceLabel)
		}
		return nil
	}, WithDialectSourceLabel("host-app"))
	if err != nil {
		t.Fatalf("register migrations: %v", err)
	}
}
