package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	adkerr "github.com/adk-dev/adk/internal/errors"
)

// ProjectConfigFile is the per-project settings file name.
const ProjectConfigFile = ".adk.toml"

// Settings holds the user-tunable inputs a Config is built from.
type Settings struct {
	Repo    string `mapstructure:"repo" toml:"repo"`
	Branch  string `mapstructure:"branch" toml:"branch"`
	Target  string `mapstructure:"target" toml:"target"`
	Token   string `mapstructure:"token" toml:"token,omitempty"`
	Proxy   string `mapstructure:"proxy" toml:"proxy,omitempty"`
	BaseURL string `mapstructure:"base_url" toml:"base_url,omitempty"`
	Verbose bool   `mapstructure:"verbose" toml:"verbose"`

	// ProjectDir is never read from files; it comes from the --project-dir flag.
	ProjectDir string `mapstructure:"project_dir" toml:"-"`
}

// DefaultSettings returns default settings
func DefaultSettings() *Settings {
	return &Settings{
		Repo:       DefaultRepo,
		Branch:     DefaultBranch,
		Target:     string(DefaultTarget),
		ProjectDir: ".",
	}
}

// UserConfigDir returns the directory holding config.toml, honouring ADK_CONFIG_DIR.
func UserConfigDir() (string, error) {
	if dir := os.Getenv("ADK_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "adk"), nil
}

// NewViper returns a viper instance with defaults and environment bindings set.
// Config files are merged later by Load because the project directory may
// only be known after flags are parsed.
func NewViper() *viper.Viper {
	v := viper.New()
	d := DefaultSettings()
	v.SetDefault("repo", d.Repo)
	v.SetDefault("branch", d.Branch)
	v.SetDefault("target", d.Target)
	v.SetDefault("token", "")
	v.SetDefault("proxy", "")
	v.SetDefault("base_url", "")
	v.SetDefault("verbose", false)
	v.SetDefault("project_dir", d.ProjectDir)

	v.SetEnvPrefix("ADK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("token", "ADK_TOKEN", "ADK_GITHUB_TOKEN", "GITHUB_TOKEN")

	return v
}

// Load merges the user config file and the project's .adk.toml into v,
// then decodes the result. Later layers win: defaults, user file, project
// file, environment, flags.
func Load(v *viper.Viper) (*Settings, error) {
	v.SetConfigType("toml")

	if dir, err := UserConfigDir(); err == nil {
		if err := mergeFile(v, filepath.Join(dir, "config.toml")); err != nil {
			return nil, err
		}
	}

	projectDir := v.GetString("project_dir")
	if err := mergeFile(v, filepath.Join(projectDir, ProjectConfigFile)); err != nil {
		return nil, err
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, adkerr.Wrap(adkerr.KindInvalidConfig, "config", "", err)
	}
	return s, nil
}

func mergeFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return adkerr.Wrap(adkerr.KindInvalidConfig, "config", path, err)
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return adkerr.Wrap(adkerr.KindInvalidConfig, "config", path, err)
	}
	return nil
}

// Config validates the settings and builds an immutable Config.
func (s *Settings) Config() (Config, error) {
	return New(s.Target, s.Repo, s.Branch, WithProjectDir(s.ProjectDir))
}

// Save writes the settings as TOML to path, refusing to overwrite.
func (s *Settings) Save(path string) error {
	if _, err := os.Stat(path); err == nil {
		return adkerr.Newf(adkerr.KindAlreadyExists, "config init", path, "%s already exists", path)
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile decodes a settings file without any layering.
func ReadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s := DefaultSettings()
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, adkerr.Wrap(adkerr.KindInvalidConfig, "config", path, err)
	}
	return s, nil
}
