package secretshields

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagLogLevel  string
	flagStatePath string
	flagDir       string
	flagEnable    string
	flagDisable   string
	flagNoColor   bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the SecretShields CLI.
var rootCmd = &cobra.Command{
	Use:           "secretshields",
	Short:         "Keep secrets out of your clipboard",
	Long:          "SecretShields watches the clipboard for API keys, tokens, private keys and credentialed URLs, masks them in place and reminds you to rotate anything you choose to expose.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return checkSelectors()
	},
}

// Execute runs the SecretShields CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagStatePath, "state", "", "exposure log path (.json file, or .db/.sqlite for SQLite)")
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "C", "", "directory holding .secretshields.yml (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&flagEnable, "enable", "", "comma-separated pattern ids or categories to enable (globs allowed)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&flagDisable, "disable", "", "comma-separated pattern ids or categories to disable (globs allowed)")
}
