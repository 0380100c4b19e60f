package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dreambundler/CloneWorks/internal/config"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for cloneworks
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cloneworks",
		Short: "Plan identity-preserving image renders",
		Long: `CloneWorks turns a creative request (identity LoRA, style, pose,
garments, output settings) into an ordered plan of generation steps and
renders that plan into a workflow document for a generation backend.

Requests may be JSON, YAML, TOML or a Markdown brief containing a fenced
json, yaml or toml block. Documents are written to stdout as JSON; logs go
to stderr.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the error once
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: .cloneworks/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log verbosity: trace, debug, info, warn, error")
	cmd.PersistentFlags().String("log-dir", "", "Directory for run logs (default: no file log)")

	cmd.AddCommand(NewPlanCommand())
	cmd.AddCommand(NewRenderCommand())
	cmd.AddCommand(NewValidateCommand())

	return cmd
}

// loadConfig reads the config file named by --config (or the default one
// under the cloneworks home), applies flag overrides and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config: %w", err)
		}
		configPath = defaultPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	cfg.MergeWithFlags(
		changedString(cmd, "log-level"),
		changedString(cmd, "log-dir"),
		changedString(cmd, "emit"),
		changedBool(cmd, "pretty"),
		changedString(cmd, "output-dir"),
	)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// changedString returns the flag's value only when it was set explicitly.
// Flags a command does not define are treated as unset.
func changedString(cmd *cobra.Command, name string) *string {
	flag := cmd.Flags().Lookup(name)
	if flag == nil || !flag.Changed {
		return nil
	}
	value := flag.Value.String()
	return &value
}

func changedBool(cmd *cobra.Command, name string) *bool {
	flag := cmd.Flags().Lookup(name)
	if flag == nil || !flag.Changed {
		return nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return nil
	}
	return &value
}
