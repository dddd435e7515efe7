package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixdedup/pkg/source"
	"pixdedup/pkg/ui"
)

func newClassifyCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "classify <file>...",
		Short: "Show which platform each file name is attributed to",
		Long: `Print the source tag the resolution policy would give each file.

Only the name is inspected; the files do not need to exist.`,
		Example: `  pixdedup classify 81234567_p0.png 1Ab2Cd3Ef4Gh5Ij.jpg cat.png`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items := make([]ui.Classification, 0, len(args))
			for _, path := range args {
				items = append(items, ui.Classification{
					Path: path,
					Stem: source.Stem(path),
					Tag:  source.Classify(path),
				})
			}

			out := cmd.OutOrStdout()
			if plain {
				for _, it := range items {
					fmt.Fprintf(out, "%s\t%s\n", it.Path, it.Tag)
				}
				return nil
			}
			fmt.Fprintln(out, ui.RenderClassifications(items))
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "tab-separated output without a table")
	return cmd
}
