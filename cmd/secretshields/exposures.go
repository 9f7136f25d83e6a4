package secretshields

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/secretshields/secretshields/internal/audit"
	"github.com/secretshields/secretshields/internal/exposure"
	"github.com/secretshields/secretshields/internal/notify"
	"github.com/secretshields/secretshields/internal/report"
	"github.com/secretshields/secretshields/internal/state"
	"github.com/secretshields/secretshields/internal/tui"
	"github.com/spf13/cobra"
)

var (
	flagListJSON bool
	flagListAll  bool
	flagClearYes bool

	// isTerminal is replaced in tests.
	isTerminal = notify.Interactive
)

func init() {
	exposuresCmd := &cobra.Command{
		Use:     "exposures",
		Aliases: []string{"exp"},
		Short:   "Browse and resolve restored secrets",
		Long:    "Opens an interactive browser over the exposure log when run on a terminal; otherwise prints the exposed secrets.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withState(func(store *exposure.Store, backend state.Store) error {
				if isTerminal(os.Stdout) && isTerminal(os.Stdin) {
					return tui.Run(store, nil, backend)
				}
				return printExposures(cmd, store.Exposed())
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List exposures (exposed only unless --all)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withExposures(func(store *exposure.Store) error {
				events := store.Exposed()
				if flagListAll {
					events = store.All()
				}
				return printExposures(cmd, events)
			})
		},
	}
	listCmd.Flags().BoolVar(&flagListJSON, "json", false, "print as JSON")
	listCmd.Flags().BoolVar(&flagListAll, "all", false, "include rotated and dismissed exposures")

	rotateCmd := &cobra.Command{
		Use:   "rotate <id>",
		Short: "Mark an exposed secret as rotated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withExposures(func(store *exposure.Store) error {
				return reportTransition(cmd, audit.ActionRotated, args[0], store.MarkRotated)
			})
		},
	}

	dismissCmd := &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Dismiss an exposed secret without rotating it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withExposures(func(store *exposure.Store) error {
				return reportTransition(cmd, audit.ActionDismissed, args[0], store.Dismiss)
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole exposure history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !flagClearYes {
				if !isTerminal(os.Stdin) {
					return errors.New("refusing to clear without --yes")
				}
				fmt.Fprint(cmd.OutOrStdout(), "Clear all exposure history? [y/N] ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
					return nil
				}
			}
			return withExposures(func(store *exposure.Store) error {
				if err := store.ClearAll(); err != nil {
					return err
				}
				recordAudit(audit.Record{Action: audit.ActionCleared, Source: "cli"})
				fmt.Fprintln(cmd.OutOrStdout(), "exposure history cleared")
				return nil
			})
		},
	}
	clearCmd.Flags().BoolVarP(&flagClearYes, "yes", "y", false, "do not ask for confirmation")

	exposuresCmd.AddCommand(listCmd, rotateCmd, dismissCmd, clearCmd)
	rootCmd.AddCommand(exposuresCmd)
}

func withExposures(fn func(*exposure.Store) error) error {
	return withState(func(store *exposure.Store, _ state.Store) error { return fn(store) })
}

func withState(fn func(*exposure.Store, state.Store) error) error {
	logger := newLogger("exposures")
	store, backend, err := openExposures(loadSettings(logger), logger)
	if err != nil {
		return err
	}
	defer backend.Close()
	return fn(store, backend)
}

func reportTransition(cmd *cobra.Command, action audit.Action, id string, op func(string) (bool, error)) error {
	ok, err := op(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no exposed secret with id %s", id)
	}
	recordAudit(audit.Record{Action: action, Source: "cli", ExposureIDs: []string{id}})
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", action, id)
	return nil
}

func printExposures(cmd *cobra.Command, events []exposure.Event) error {
	if flagListJSON {
		return report.WriteJSON(cmd.OutOrStdout(), events)
	}
	return report.PrintExposures(cmd.OutOrStdout(), events, printOptions())
}
