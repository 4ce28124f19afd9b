package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"mod-builder/core/kv"

	"github.com/spf13/cobra"
)

// patchCmd applies index files to an items_game file outside the pipeline.
var patchCmd = &cobra.Command{
	Use:   "patch <items_game.txt> <index.txt>...",
	Short: "Patch an item data file with one or more index files",
	Long: `Collects the entries of each index file in order (later files win on
shared ids), validates them against the item data file and replaces the
matching blocks in one atomic write. Prints the patch report as JSON.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		ids, _ := cmd.Flags().GetStringSlice("ids")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		prettify, _ := cmd.Flags().GetBool("prettify")

		if owner == "" {
			return fmt.Errorf("--owner is required")
		}

		var merged *kv.MergeMap
		for _, path := range args[1:] {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read index %s: %w", path, err)
			}
			tagged := kv.NewMergeMap()
			for _, e := range kv.Collect(owner, ids, string(data)).Entries() {
				e.Origin = path
				tagged.Put(e)
			}
			merged = kv.Merge(merged, tagged)
		}
		if merged == nil || merged.Len() == 0 {
			return fmt.Errorf("no matching entries in the given index files")
		}
		for _, o := range merged.Overwrites() {
			fmt.Fprintf(cmd.ErrOrStderr(), "entry %s supplied more than once, last index wins\n", o.ID)
		}

		report, err := kv.PatchFile(cmd.Context(), args[0], merged, nil, kv.PatchOptions{
			Prettify: prettify,
			DryRun:   dryRun,
		})
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		if report.Applied == 0 {
			return fmt.Errorf("no entry could be applied")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(patchCmd)
	patchCmd.Flags().String("owner", "", "Hero tag every replaced entry must belong to")
	patchCmd.Flags().StringSlice("ids", nil, "Limit patching to these entry ids")
	patchCmd.Flags().Bool("dry-run", false, "Validate without writing")
	patchCmd.Flags().Bool("prettify", true, "Reformat minified item data before patching")
}
