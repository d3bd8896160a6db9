package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obonovai/graphonauts/cmd/graphonauts/internal"
	"github.com/obonovai/graphonauts/internal/config"
)

// GlobalFlags are the persistent flags shared by every subcommand.
type GlobalFlags struct {
	Verbose      bool
	Quiet        bool
	OutputFormat string
	ConfigFile   string
	// Backend overrides the backend named in the config file when set.
	Backend string
}

func (f *GlobalFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&f.Verbose, "verbose", "v", false, "log at debug level and print error causes")
	pf.BoolVarP(&f.Quiet, "quiet", "q", false, "log errors only")
	pf.StringVarP(&f.OutputFormat, "output", "o", string(internal.FormatText), "output format (text|json)")
	pf.StringVar(&f.ConfigFile, "config", config.DefaultConfigPath("."), "config file")
	pf.StringVarP(&f.Backend, "backend", "b", "", "backend to use (arangodb|neo4j|memgraph|nebula)")
}

// validate rejects combinations cobra cannot express; both map to ExitConfigError.
func (f *GlobalFlags) validate() error {
	switch internal.OutputFormat(f.OutputFormat) {
	case internal.FormatText, internal.FormatJSON:
	default:
		return internal.NewCLIError(internal.ExitConfigError,
			fmt.Sprintf("invalid output format %q (expected text or json)", f.OutputFormat))
	}
	if f.Verbose && f.Quiet {
		return internal.NewCLIError(internal.ExitConfigError, "--verbose and --quiet cannot be used together")
	}
	return nil
}

func (f *GlobalFlags) format() internal.OutputFormat {
	return internal.OutputFormat(f.OutputFormat)
}

// logLevel returns the level implied by -v or -q, or configured when neither is set.
func (f *GlobalFlags) logLevel(configured string) string {
	switch {
	case f.Verbose:
		return "debug"
	case f.Quiet:
		return "error"
	}
	return configured
}
