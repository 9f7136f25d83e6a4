package secretshields

import (
	"fmt"

	"github.com/secretshields/secretshields/internal/clipboard"
	"github.com/secretshields/secretshields/internal/engine"
	"github.com/secretshields/secretshields/internal/report"
	"github.com/secretshields/secretshields/internal/types"
	"github.com/spf13/cobra"
)

var (
	flagMaskJSON      bool
	flagMaskClipboard bool

	// newClipboard is replaced in tests.
	newClipboard = func() clipboard.Clipboard { return clipboard.NewSystem() }
)

type maskReport struct {
	Masked     string            `json:"masked"`
	Count      int               `json:"count"`
	Detections []types.Detection `json:"detections"`
}

func init() {
	maskCmd := &cobra.Command{
		Use:   "mask [file]",
		Short: "Mask secrets in a file, stdin or the clipboard",
		Long:  "Reads text from the given file (or stdin), masks every detected secret and prints the result. With --clipboard the system clipboard is masked in place.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMask,
	}
	maskCmd.Flags().BoolVar(&flagMaskJSON, "json", false, "print masked text and detections as JSON")
	maskCmd.Flags().BoolVar(&flagMaskClipboard, "clipboard", false, "mask the system clipboard in place")
	rootCmd.AddCommand(maskCmd)
}

func runMask(cmd *cobra.Command, args []string) error {
	logger := newLogger("mask")
	settings := loadSettings(logger)
	set := settings.EnabledPatterns()

	if flagMaskClipboard {
		if len(args) > 0 {
			return fmt.Errorf("--clipboard takes no file argument")
		}
		cb := newClipboard()
		text, err := cb.ReadText(cmd.Context())
		if err != nil {
			return fmt.Errorf("read clipboard: %w", err)
		}
		res := engine.Scan(text, set)
		if res.Found() {
			if err := cb.WriteText(cmd.Context(), res.Masked); err != nil {
				return fmt.Errorf("write clipboard: %w", err)
			}
			for _, d := range res.Detections {
				logger.Info("secret masked", "pattern", d.PatternID, "provider", d.Provider, "severity", d.Severity)
			}
		}
		if flagMaskJSON {
			return writeReport(cmd, res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "masked %d secret(s) in clipboard\n", len(res.Detections))
		return nil
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	text, err := readInput(cmd.InOrStdin(), name)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	res := engine.Scan(text, set)
	if flagMaskJSON {
		return writeReport(cmd, res)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), res.Masked)
	if res.Found() {
		logger.Info("secrets masked", "count", len(res.Detections))
	}
	return err
}

func writeReport(cmd *cobra.Command, res engine.Result) error {
	return report.WriteJSON(cmd.OutOrStdout(), maskReport{Masked: res.Masked, Count: len(res.Detections), Detections: res.Detections})
}
