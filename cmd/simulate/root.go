package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	opts := &appOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run tactical combat encounters from declarative content",
		Long: `Loads the built-in action and combatant catalog, layers any records found
in CONTENT_PATH on top, and plays AI-controlled encounters between the party
and its opponents.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.Int64Var(&opts.seed, "seed", 0, "dice seed, overrides ENGINE_SEED (0 uses the clock)")
	flags.StringVar(&opts.contentPath, "content", "", "directory of content records, overrides CONTENT_PATH")

	cmd.AddCommand(
		newDuelCmd(opts),
		newBatchCmd(opts),
		newContentCmd(opts),
	)
	return cmd
}
