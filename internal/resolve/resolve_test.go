package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adk-dev/adk/internal/component"
	"github.com/adk-dev/adk/internal/config"
	adkerr "github.com/adk-dev/adk/internal/errors"
)

func testConfig(t *testing.T, target string) config.Config {
	t.Helper()
	cfg, err := config.New(target, "owner/repo", "main", config.WithProjectDir(t.TempDir()))
	if err != nil {
		t.Fatalf("config.New() error: %v", err)
	}
	return cfg
}

func TestLocalPath(t *testing.T) {
	cfg, err := config.New("claude", "owner/repo", "main", config.WithProjectDir("/proj"))
	if err != nil {
		t.Fatal(err)
	}
	codex, err := config.New("codex", "owner/repo", "main", config.WithProjectDir("/proj"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		raw  string
		cfg  config.Config
		want string
	}{
		{"tool:file_search", cfg, "/proj/.claude/tools/file_search"},
		{"skill:debugging", cfg, "/proj/.claude/skills/debugging"},
		{"tool:search/semantic", cfg, "/proj/.claude/tools/search/semantic"},
		{"agent:code_reviewer", codex, "/proj/.codex/agents/code_reviewer.md"},
		{"command:commit", cfg, "/proj/.claude/commands/commit.md"},
		{"rule:team/go", codex, "/proj/.codex/rules/team/go.md"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := LocalPath(component.MustParse(tt.raw), tt.cfg)
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("LocalPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocalPathSuffixInvariant(t *testing.T) {
	cfg := testConfig(t, "claude")
	for _, typ := range component.AllTypes() {
		for _, name := range []string{"x", "a/b", "readme.md", "deep/er/name"} {
			ref := component.Ref{Type: typ, Name: name}
			p := LocalPath(ref, cfg)
			if typ.IsDirectory() {
				if filepath.Base(p) != filepath.Base(name) {
					t.Errorf("%s: LocalPath() = %q, directory types must keep the name", ref, p)
				}
			} else if !strings.HasSuffix(p, ".md") || filepath.Base(p) != filepath.Base(name)+".md" {
				t.Errorf("%s: LocalPath() = %q, file types must append .md", ref, p)
			}
		}
	}
}

func TestInspect(t *testing.T) {
	cfg := testConfig(t, "claude")
	tool := component.MustParse("tool:x")
	agent := component.MustParse("agent:y")

	check := func(ref component.Ref, want State) {
		t.Helper()
		got, err := Inspect(ref, cfg)
		if err != nil {
			t.Fatalf("Inspect(%s) error: %v", ref, err)
		}
		if got != want {
			t.Errorf("Inspect(%s) = %v, want %v", ref, got, want)
		}
		exists, _ := Exists(ref, cfg)
		if exists != (want == StatePresent) {
			t.Errorf("Exists(%s) = %v with state %v", ref, exists, want)
		}
	}

	check(tool, StateAbsent)
	check(agent, StateAbsent)

	// wrong kinds
	writeFile(t, LocalPath(tool, cfg), "not a dir")
	if err := os.MkdirAll(LocalPath(agent, cfg), 0755); err != nil {
		t.Fatal(err)
	}
	check(tool, StateMismatch)
	check(agent, StateMismatch)

	if hint := MismatchHint(agent, cfg); !strings.Contains(hint, "is a directory") {
		t.Errorf("MismatchHint() = %q", hint)
	}

	// right kinds
	os.Remove(LocalPath(tool, cfg))
	os.Remove(LocalPath(agent, cfg))
	if err := os.MkdirAll(LocalPath(tool, cfg), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, LocalPath(agent, cfg), "agent")
	check(tool, StatePresent)
	check(agent, StatePresent)
}

func TestInspectSymlinkIsMismatch(t *testing.T) {
	cfg := testConfig(t, "claude")
	tool := component.MustParse("tool:linked")

	real := filepath.Join(t.TempDir(), "real")
	if err := os.MkdirAll(real, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(TypeDir(component.Tool, cfg), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(real, LocalPath(tool, cfg)); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	state, err := Inspect(tool, cfg)
	if err != nil || state != StateMismatch {
		t.Errorf("Inspect() = %v, %v; want mismatch", state, err)
	}
	if hint := MismatchHint(tool, cfg); !strings.Contains(hint, "symlink") {
		t.Errorf("MismatchHint() = %q", hint)
	}
}

func TestRemoveLocalDirectory(t *testing.T) {
	cfg := testConfig(t, "claude")
	ref := component.MustParse("tool:search/semantic")
	path := LocalPath(ref, cfg)

	writeFile(t, filepath.Join(path, "metadata.yaml"), "name: semantic")
	writeFile(t, filepath.Join(path, "nested", "impl.py"), "print()")
	keep := component.MustParse("tool:file_search")
	writeFile(t, filepath.Join(LocalPath(keep, cfg), "a.py"), "a")

	if err := RemoveLocal(ref, cfg); err != nil {
		t.Fatalf("RemoveLocal() error: %v", err)
	}

	if _, err := os.Lstat(path); !os.IsNotExist(err) {
		t.Errorf("%s still exists", path)
	}
	if _, err := os.Lstat(filepath.Dir(path)); !os.IsNotExist(err) {
		t.Errorf("empty parent %s left behind", filepath.Dir(path))
	}
	if _, err := os.Stat(TypeDir(component.Tool, cfg)); err != nil {
		t.Errorf("type dir removed: %v", err)
	}
	if ok, _ := Exists(keep, cfg); !ok {
		t.Errorf("sibling component removed")
	}
}

func TestRemoveLocalFile(t *testing.T) {
	cfg := testConfig(t, "codex")
	ref := component.MustParse("agent:code_reviewer")
	writeFile(t, LocalPath(ref, cfg), "# reviewer")

	if err := RemoveLocal(ref, cfg); err != nil {
		t.Fatalf("RemoveLocal() error: %v", err)
	}
	if ok, _ := Exists(ref, cfg); ok {
		t.Errorf("file still exists")
	}
}

func TestRemoveLocalMissing(t *testing.T) {
	cfg := testConfig(t, "claude")

	err := RemoveLocal(component.MustParse("skill:nope"), cfg)
	if !errors.Is(err, adkerr.ErrNotFound) {
		t.Errorf("RemoveLocal() error = %v, want NotFound", err)
	}
	if _, err := os.Stat(cfg.Root()); !os.IsNotExist(err) {
		t.Errorf("RemoveLocal created %s", cfg.Root())
	}
}

func TestRemoveLocalMismatch(t *testing.T) {
	cfg := testConfig(t, "claude")
	ref := component.MustParse("skill:oops")
	writeFile(t, LocalPath(ref, cfg), "a file, not a skill dir")

	if err := RemoveLocal(ref, cfg); !errors.Is(err, adkerr.ErrNotFound) {
		t.Errorf("RemoveLocal() error = %v, want NotFound", err)
	}
	if _, err := os.Stat(LocalPath(ref, cfg)); err != nil {
		t.Errorf("mismatched path was touched: %v", err)
	}
}

func TestRemoveLocalRefusesSymlinkedTypeDir(t *testing.T) {
	cfg := testConfig(t, "claude")
	ref := component.MustParse("tool:victim")

	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "victim", "keep.txt"), "precious")

	if err := os.MkdirAll(cfg.Root(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, TypeDir(component.Tool, cfg)); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if err := RemoveLocal(ref, cfg); !errors.Is(err, adkerr.ErrNotFound) {
		t.Errorf("RemoveLocal() error = %v, want NotFound", err)
	}
	if _, err := os.Stat(filepath.Join(outside, "victim", "keep.txt")); err != nil {
		t.Errorf("file outside the target root was removed: %v", err)
	}
}

func TestRemoveLocalDoesNotFollowInnerSymlinks(t *testing.T) {
	cfg := testConfig(t, "claude")
	ref := component.MustParse("skill:s")
	path := LocalPath(ref, cfg)
	writeFile(t, filepath.Join(path, "SKILL.md"), "skill")

	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "keep.txt"), "precious")
	if err := os.Symlink(outside, filepath.Join(path, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if err := RemoveLocal(ref, cfg); err != nil {
		t.Fatalf("RemoveLocal() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outside, "keep.txt")); err != nil {
		t.Errorf("symlink target contents were removed: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
