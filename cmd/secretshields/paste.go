package secretshields

import (
	"fmt"

	"github.com/secretshields/secretshields/internal/paste"
	"github.com/spf13/cobra"
)

var (
	flagPasteMode   string
	flagPasteAccept bool
)

func init() {
	pasteCmd := &cobra.Command{
		Use:   "paste",
		Short: "Filter text on its way into an editor or terminal",
		Long: "Reads the text being pasted from stdin and writes what should be inserted to stdout. " +
			"In auto mode secrets are masked; in offer mode the text passes through and a masked alternative is announced on stderr " +
			"(rerun with --mask to take it); off disables the filter.",
		Args: cobra.NoArgs,
		RunE: runPaste,
	}
	pasteCmd.Flags().StringVar(&flagPasteMode, "mode", "", "offer|auto|off (default from pasteMasking)")
	pasteCmd.Flags().BoolVar(&flagPasteAccept, "mask", false, "accept the masked alternative")
	rootCmd.AddCommand(pasteCmd)
}

func runPaste(cmd *cobra.Command, _ []string) error {
	logger := newLogger("paste")
	settings := loadSettings(logger)
	mode := settings.PasteMasking
	if flagPasteMode != "" {
		m, ok := paste.ParseMode(flagPasteMode)
		if !ok {
			return fmt.Errorf("invalid --mode %q (want offer, auto or off)", flagPasteMode)
		}
		mode = m
	}
	text, err := readInput(cmd.InOrStdin(), "")
	if err != nil {
		return fmt.Errorf("read paste: %w", err)
	}

	if !settings.Enabled {
		mode = paste.ModeOff
	}
	out := paste.Apply(mode, text, settings.EnabledPatterns(), flagPasteAccept)
	if _, err := fmt.Fprint(cmd.OutOrStdout(), out.Text); err != nil {
		return err
	}
	switch {
	case out.Masked:
		fmt.Fprintln(cmd.ErrOrStderr(), paste.Label(out.Count))
	case out.Offer != nil:
		fmt.Fprintf(cmd.ErrOrStderr(), "%s available: rerun with --mask\n", paste.Label(out.Offer.Count))
	}
	return nil
}
