package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adk-dev/adk/internal/config"
	adkerr "github.com/adk-dev/adk/internal/errors"
	"github.com/adk-dev/adk/internal/source"
)

var kitFiles = map[string]string{
	"components/tools/file_search/metadata.yaml":  "name: file_search\ndescription: Find files\nversion: 0.3.0\n",
	"components/tools/file_search/file_search.py": "print('search')\n",
	"components/tools/file_search/lib/helper.py":  "def helper(): pass\n",
	"components/skills/debugging/SKILL.md":        "# Debugging\n",
	"components/agents/code_reviewer.md":          "# Reviewer\n",
	"components/rules/go.md":                      "gofmt\n",
}

func kitArchive(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range kitFiles {
		w, err := zw.Create("agentic-dev-kit-main/" + name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(content))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// harness points the CLI at an in-memory repository and an empty project.
type harness struct {
	t       *testing.T
	project string
	fetches int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, project: t.TempDir()}

	t.Setenv("ADK_CONFIG_DIR", t.TempDir())
	for _, key := range []string{"ADK_TOKEN", "ADK_GITHUB_TOKEN", "GITHUB_TOKEN", "ADK_REPO", "ADK_BRANCH", "ADK_TARGET"} {
		t.Setenv(key, "")
	}

	archive := kitArchive(t)
	orig := newFetcher
	newFetcher = func(*config.Settings) source.Fetcher {
		return source.FetcherFunc(func(ctx context.Context, repo, branch string) ([]byte, error) {
			h.fetches++
			if repo != config.DefaultRepo {
				return nil, adkerr.Newf(adkerr.KindSourceNotFound, "fetch", repo, "repository %s not found", repo)
			}
			return archive, nil
		})
	}
	t.Cleanup(func() {
		newFetcher = orig
		listJSON, browseAll, configInitUser = false, false, false
	})
	return h
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	// defaults come first so flags in args override them
	base := []string{"--project-dir=" + h.project, "--target=claude",
		"--repo=" + config.DefaultRepo, "--branch=" + config.DefaultBranch}
	rootCmd.SetArgs(append(base, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAddListUpdateRemove(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("add", "tool:file_search")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	want := filepath.Join(h.project, ".claude", "tools", "file_search")
	if !strings.Contains(out, "tool:file_search") || !strings.Contains(out, want) {
		t.Errorf("add output = %q", out)
	}

	out, err = h.run("list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "file_search") || !strings.Contains(out, "0.3.0") || !strings.Contains(out, "Find files") {
		t.Errorf("list output = %q", out)
	}

	if _, err := h.run("add", "tool:file_search"); !errors.Is(err, adkerr.ErrAlreadyExists) {
		t.Errorf("second add error = %v, want AlreadyExists", err)
	}

	if _, err := h.run("update", "tool:file_search"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := h.run("rm", "tool:file_search"); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if _, err := os.Stat(want); !os.IsNotExist(err) {
		t.Errorf("%s still exists after rm", want)
	}
	if h.fetches != 2 {
		t.Errorf("fetches = %d, want 2 (add and update)", h.fetches)
	}
}

func TestAddSeveral(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("add", "agent:code_reviewer", "rule:go", "skill:missing")
	if !errors.Is(err, adkerr.ErrComponentNotFoundRemote) {
		t.Fatalf("add error = %v, want ComponentNotFoundRemote", err)
	}
	if !strings.Contains(out, "agent:code_reviewer") || !strings.Contains(out, "rule:go") {
		t.Errorf("output = %q", out)
	}
	if h.fetches != 1 {
		t.Errorf("fetches = %d, want 1", h.fetches)
	}
	for _, p := range []string{"agents/code_reviewer.md", "rules/go.md"} {
		if _, err := os.Stat(filepath.Join(h.project, ".claude", p)); err != nil {
			t.Errorf("%s missing: %v", p, err)
		}
	}
}

func TestInvalidInputNeverFetches(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		args []string
		want error
	}{
		{[]string{"add", "tool"}, adkerr.ErrInvalidReference},
		{[]string{"add", "widget:x"}, adkerr.ErrInvalidReference},
		{[]string{"add", "tool:../../etc"}, adkerr.ErrInvalidReference},
		{[]string{"add", "rule:go", "rule:/abs"}, adkerr.ErrInvalidReference},
		{[]string{"remove", "rule:go"}, adkerr.ErrNotFound},
		{[]string{"update", "rule:go"}, adkerr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			if _, err := h.run(tt.args...); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
	if h.fetches != 0 {
		t.Errorf("fetches = %d, want 0", h.fetches)
	}
	if entries, _ := os.ReadDir(h.project); len(entries) != 0 {
		t.Errorf("project dir touched: %v", entries)
	}
}

func TestInvalidTarget(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("add", "rule:go", "--target", "vim")
	if !errors.Is(err, adkerr.ErrInvalidTarget) {
		t.Fatalf("error = %v, want InvalidTarget", err)
	}
	if exitCode(err) != 2 {
		t.Errorf("exitCode = %d, want 2", exitCode(err))
	}
	if h.fetches != 0 {
		t.Errorf("fetches = %d, want 0", h.fetches)
	}
}

func TestUnknownRepo(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("add", "rule:go", "--repo", "nobody/nothing")
	if !errors.Is(err, adkerr.ErrSourceNotFound) {
		t.Fatalf("error = %v, want SourceNotFound", err)
	}
	if exitCode(err) != 1 {
		t.Errorf("exitCode = %d, want 1", exitCode(err))
	}
	if _, err := os.Stat(filepath.Join(h.project, ".claude", "rules", "go.md")); !os.IsNotExist(err) {
		t.Error("rule installed despite fetch failure")
	}
}

func TestBrowseAll(t *testing.T) {
	h := newHarness(t)

	if _, err := h.run("add", "rule:go"); err != nil {
		t.Fatal(err)
	}
	h.fetches = 0

	out, err := h.run("browse", "--all")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if h.fetches != 1 {
		t.Errorf("fetches = %d, want 1", h.fetches)
	}
	if strings.Contains(out, "rule:go") {
		t.Errorf("browse reinstalled rule:go: %q", out)
	}
	for _, ref := range []string{"tool:file_search", "skill:debugging", "agent:code_reviewer"} {
		if !strings.Contains(out, ref) {
			t.Errorf("browse output missing %s: %q", ref, out)
		}
	}
	if strings.Contains(out, "file_search/lib") {
		t.Errorf("browse offered a component subdirectory: %q", out)
	}
	helper := filepath.Join(h.project, ".claude", "tools", "file_search", "lib", "helper.py")
	if _, err := os.Stat(helper); err != nil {
		t.Errorf("nested file not installed with its component: %v", err)
	}

	out, err = h.run("browse", "--all")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Nothing to install") {
		t.Errorf("second browse output = %q", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	path := filepath.Join(h.project, config.ProjectConfigFile)
	if !strings.Contains(out, path) {
		t.Errorf("output = %q", out)
	}
	s, err := config.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if s.Repo != config.DefaultRepo || s.Target != "claude" {
		t.Errorf("written settings = %+v", s)
	}

	if _, err := h.run("config", "init"); !errors.Is(err, adkerr.ErrAlreadyExists) {
		t.Errorf("second init error = %v, want AlreadyExists", err)
	}

	t.Setenv("ADK_TOKEN", "ghp_abcdef123456")
	out, err = h.run("config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if strings.Contains(out, "ghp_abcdef123456") || !strings.Contains(out, "****3456") {
		t.Errorf("token not masked: %q", out)
	}
	if !strings.Contains(out, config.DefaultRepo) || !strings.Contains(out, "target root: "+filepath.Join(h.project, ".claude")) {
		t.Errorf("config output = %q", out)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{adkerr.New(adkerr.KindInvalidReference, "parse", "x", "bad"), 2},
		{adkerr.New(adkerr.KindInvalidConfig, "config", "x", "bad"), 2},
		{adkerr.New(adkerr.KindNotFound, "remove", "x", "gone"), 1},
		{adkerr.New(adkerr.KindNetwork, "fetch", "x", "down"), 1},
		{errors.New("plain"), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMaskToken(t *testing.T) {
	if got := maskToken("abc"); got != "****" {
		t.Errorf("maskToken(short) = %q", got)
	}
	if got := maskToken("secret-token"); got != "****oken" {
		t.Errorf("maskToken() = %q", got)
	}
}
