package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/sugarcheck/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The logger is attached to the command context before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Sugarcheck classifies and validates sugar rings in macromolecular models",
		Long: `Sugarcheck finds the five- and six-membered sugar rings of a coordinate model,
assigns anomer, handedness and ring conformation from Cremer-Pople puckering
parameters, and checks each ring against a reference table.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/sugarcheck/config.toml)")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.projectCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.conformersCommand())
	root.AddCommand(c.refdbCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
