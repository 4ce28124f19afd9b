package cmd

import (
	"fmt"
	"os"

	"mod-builder/core/kv"

	"github.com/spf13/cobra"
)

// blocksCmd inspects the entry blocks of a KeyValues file.
var blocksCmd = &cobra.Command{
	Use:   "blocks <file>",
	Short: "List or print entry blocks of a KeyValues file",
	Long: `Lists the numeric entry blocks found in a KeyValues file (items_game.txt or
an index file). With --id prints that block; with --format prints the
whole file reformatted with one token pair per line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		format, _ := cmd.Flags().GetBool("format")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		text := string(data)
		out := cmd.OutOrStdout()

		if format {
			fmt.Fprint(out, kv.Format(text))
			return nil
		}
		if kv.IsMinified(text) {
			text = kv.Prettify(text)
		}

		if id != "" {
			b, ok := kv.FindBlock(text, id)
			if !ok {
				return fmt.Errorf("no entry block %s in %s", id, args[0])
			}
			fmt.Fprintln(out, b.Text(text))
			return nil
		}

		blocks := kv.ExtractAll(text)
		for _, b := range blocks {
			fmt.Fprintf(out, "%s\t%d\t%d\n", b.ID, b.Start, b.End-b.Start)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d entry blocks\n", len(blocks))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(blocksCmd)
	blocksCmd.Flags().String("id", "", "Print the block with this id")
	blocksCmd.Flags().Bool("format", false, "Print the file reformatted")
}
