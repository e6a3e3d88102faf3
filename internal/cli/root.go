package cli

import (
	"github.com/dmitrijs2005/cryptonaut/internal/buildinfo"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the cryptonaut command.
func NewRootCommand() *cobra.Command {
	opts := Options{}

	cmd := &cobra.Command{
		Use:   "cryptonaut <target_path>",
		Short: "Distribute missing file keys in DRACOON",
		Long: `Distribute missing file keys with the system rescue key.

target_path selects what is processed: a bare host for every node, a room or
folder path for that room, or a file path for a single file.`,
		Args:          cobra.ExactArgs(1),
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Target = args[0]
			return NewApp(cmd.OutOrStdout(), cmd.ErrOrStderr()).Run(cmd.Context(), opts)
		},
	}
	cmd.SetVersionTemplate(buildinfo.String())

	flags := cmd.Flags()
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	flags.StringVar(&opts.LogFile, "log-file-path", DefaultLogFile, "log file path")
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path")

	return cmd
}
