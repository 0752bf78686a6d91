package config

import (
	"path/filepath"
	"regexp"
	"strings"

	adkerr "github.com/adk-dev/adk/internal/errors"
)

// Target is the platform whose directory conventions components are installed into
type Target string

const (
	TargetClaude Target = "claude"
	TargetCodex  Target = "codex"
)

var targetRoots = map[Target]string{
	TargetClaude: ".claude",
	TargetCodex:  ".codex",
}

// AllTargets returns all known targets in order
func AllTargets() []Target {
	return []Target{TargetClaude, TargetCodex}
}

// ParseTarget validates a target name.
func ParseTarget(s string) (Target, error) {
	t := Target(s)
	if _, ok := targetRoots[t]; !ok {
		names := make([]string, 0, len(targetRoots))
		for _, known := range AllTargets() {
			names = append(names, string(known))
		}
		return "", adkerr.Newf(adkerr.KindInvalidTarget, "config", s,
			"unknown target %q, valid targets: %s", s, strings.Join(names, ", "))
	}
	return t, nil
}

// RootDir returns the root directory segment for a target, e.g. ".claude".
// Targets reaching this lookup were validated by ParseTarget.
func RootDir(t Target) string {
	return targetRoots[t]
}

// Defaults for the source repository
const (
	DefaultRepo   = "LukasLeindals/agentic-dev-kit"
	DefaultBranch = "main"
	DefaultTarget = TargetClaude
)

var repoSegment = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Config is the read-only configuration for one invocation.
type Config struct {
	Target     Target
	Repo       string // owner/name
	Branch     string
	ProjectDir string // directory the target root lives in
}

// Option configures a Config during construction.
type Option func(*Config)

// WithProjectDir sets the directory the target root is created under.
func WithProjectDir(dir string) Option {
	return func(c *Config) {
		if dir != "" {
			c.ProjectDir = dir
		}
	}
}

// New validates its inputs and builds a Config
func New(target, repo, branch string, opts ...Option) (Config, error) {
	t, err := ParseTarget(target)
	if err != nil {
		return Config{}, err
	}
	if err := validateRepo(repo); err != nil {
		return Config{}, err
	}
	if err := validateBranch(branch); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Target:     t,
		Repo:       repo,
		Branch:     branch,
		ProjectDir: ".",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg, nil
}

func validateRepo(repo string) error {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || !repoSegment.MatchString(owner) || !repoSegment.MatchString(name) ||
		owner == "." || owner == ".." || name == "." || name == ".." {
		return adkerr.Newf(adkerr.KindInvalidConfig, "config", repo,
			"invalid repo %q, expected owner/name", repo)
	}
	return nil
}

func validateBranch(branch string) error {
	if branch == "" {
		return adkerr.New(adkerr.KindInvalidConfig, "config", "", "branch must not be empty")
	}
	if strings.Contains(branch, "..") || strings.ContainsAny(branch, " \t\n\\?#%") {
		return adkerr.Newf(adkerr.KindInvalidConfig, "config", branch, "invalid branch %q", branch)
	}
	return nil
}

// Owner returns the owner half of Repo.
func (c Config) Owner() string {
	owner, _, _ := strings.Cut(c.Repo, "/")
	return owner
}

// RepoName returns the name half of Repo.
func (c Config) RepoName() string {
	_, name, _ := strings.Cut(c.Repo, "/")
	return name
}

// Root returns the target root directory, e.g. "./.claude".
func (c Config) Root() string {
	return filepath.Join(c.ProjectDir, RootDir(c.Target))
}
