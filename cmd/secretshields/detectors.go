package secretshields

import (
	"fmt"
	"strings"

	"github.com/secretshields/secretshields/internal/detectors"
	"github.com/secretshields/secretshields/internal/engine"
	"github.com/secretshields/secretshields/internal/report"
	"github.com/spf13/cobra"
)

var flagDetectorIDs bool

func init() {
	detectorsCmd := &cobra.Command{
		Use:   "detectors",
		Short: "List secret patterns and whether they are enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings := loadSettings(newLogger("detectors"))
			set := settings.EnabledPatterns()
			out := cmd.OutOrStdout()
			if flagDetectorIDs {
				for _, p := range detectors.All() {
					if set.Enabled(p) {
						fmt.Fprintln(out, p.ID)
					}
				}
				return nil
			}
			return report.PrintDetectors(out, detectors.All(), set, printOptions())
		},
	}
	detectorsCmd.Flags().BoolVar(&flagDetectorIDs, "ids", false, "print only the ids of enabled patterns")

	testCmd := &cobra.Command{
		Use:   "test <id|category>",
		Short: "Run one pattern or category against text from stdin",
		Long:  "Available patterns: " + strings.Join(detectors.IDs(), ", "),
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return detectorNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			set := detectors.NewSet(args[0])
			if len(detectors.Active(set)) == 0 {
				return fmt.Errorf("unknown detector %q (see: secretshields detectors --ids)", args[0])
			}
			text, err := readInput(cmd.InOrStdin(), "")
			if err != nil {
				return err
			}
			return printDetections(cmd, engine.Scan(text, set))
		},
	}
	detectorsCmd.AddCommand(testCmd)
	rootCmd.AddCommand(detectorsCmd)
}

func printDetections(cmd *cobra.Command, res engine.Result) error {
	return report.PrintDetections(cmd.OutOrStdout(), res.Detections, printOptions())
}

// detectorNames lists pattern ids followed by category keys.
func detectorNames() []string {
	names := detectors.IDs()
	for _, c := range detectors.Categories() {
		names = append(names, string(c))
	}
	return names
}
