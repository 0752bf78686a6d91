// Package cmd contains the adk command line interface.
package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/adk-dev/adk/internal/config"
	adkerr "github.com/adk-dev/adk/internal/errors"
	"github.com/adk-dev/adk/internal/installer"
	"github.com/adk-dev/adk/internal/source"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"

	// settings is loaded before every command runs
	settings *config.Settings

	logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "adk",
		Level:  log.WarnLevel,
	})

	// newFetcher builds the archive fetcher for the loaded settings.
	newFetcher = func(s *config.Settings) source.Fetcher {
		return source.NewHTTPFetcher(
			source.WithBaseURL(s.BaseURL),
			source.WithToken(s.Token),
			source.WithProxy(s.Proxy),
			source.WithUserAgent("adk/"+Version),
			source.WithLogger(logger),
		)
	}
)

var rootCmd = &cobra.Command{
	Use:   "adk",
	Short: "Agentic Dev Kit component manager",
	Long: TitleStyle.Render("adk") + SubtitleStyle.Render(" - pull reusable LLM components into your project") + `

adk copies tools, skills, agents, commands and rules from a GitHub
repository into the configuration directory of an agent platform
(.claude or .codex) in the current project.

` + SubtitleStyle.Render("Examples:") + `
  adk add tool:file_search           Add a tool
  adk add agent:code_reviewer --target codex
  adk update skill:debugging         Re-download an installed skill
  adk remove rule:go                 Remove a rule
  adk browse                         Pick components interactively`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

// flagKeys maps persistent flags onto settings keys.
var flagKeys = map[string]string{
	"repo":        "repo",
	"branch":      "branch",
	"target":      "target",
	"project-dir": "project_dir",
	"verbose":     "verbose",
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.String("repo", config.DefaultRepo, "GitHub repository to pull components from (owner/name)")
	pf.String("branch", config.DefaultBranch, "branch to pull from")
	pf.String("target", string(config.DefaultTarget), "target platform (claude, codex)")
	pf.String("project-dir", ".", "project directory holding the target root")
	pf.BoolP("verbose", "v", false, "enable debug logging")

	_ = rootCmd.RegisterFlagCompletionFunc("target", completeTargets)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

// loadSettings layers defaults, config files, environment and flags.
func loadSettings(cmd *cobra.Command, args []string) error {
	v := config.NewViper()
	if err := bindFlags(v, cmd.Root().PersistentFlags()); err != nil {
		return err
	}

	s, err := config.Load(v)
	if err != nil {
		return err
	}
	settings = s

	logger.SetLevel(log.WarnLevel)
	if s.Verbose {
		logger.SetLevel(log.DebugLevel)
	}
	logger.Debug("settings loaded",
		"repo", s.Repo, "branch", s.Branch, "target", s.Target, "project_dir", s.ProjectDir)
	return nil
}

// loadConfig validates the loaded settings.
func loadConfig() (config.Config, error) {
	return settings.Config()
}

func newInstaller() *installer.Installer {
	return installer.New(newFetcher(settings), installer.WithLogger(logger))
}

// exitCode maps an error onto the process exit status: 2 for bad input,
// 1 for everything else.
func exitCode(err error) int {
	if adkerr.IsUsage(err) {
		return 2
	}
	return 1
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(exitCode(err))
	}
}
