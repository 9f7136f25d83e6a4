package secretshields

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/secretshields/secretshields/internal/audit"
	"github.com/secretshields/secretshields/internal/clipboard"
	"github.com/secretshields/secretshields/internal/config"
	"github.com/secretshields/secretshields/internal/countdown"
	"github.com/secretshields/secretshields/internal/monitor"
	"github.com/secretshields/secretshields/internal/notify"
	"github.com/spf13/cobra"
)

var (
	flagAutoMask      bool
	flagTTL           time.Duration
	flagPoll          time.Duration
	flagPromptTimeout time.Duration
)

func init() {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Monitor the clipboard and mask secrets as they are copied",
		Long: "Polls the system clipboard, masks detected secrets and offers a short window to restore them. " +
			"While running, type mask, restore, status, list, rotate <id>, dismiss <id>, start, stop or quit.",
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
	watchCmd.Flags().BoolVar(&flagAutoMask, "auto-mask", true, "mask detected secrets without asking")
	watchCmd.Flags().DurationVar(&flagTTL, "ttl", 0, "how long a masked secret stays restorable (default from config)")
	watchCmd.Flags().DurationVar(&flagPoll, "poll", 0, "clipboard poll interval (default from config)")
	watchCmd.Flags().DurationVar(&flagPromptTimeout, "prompt-timeout", 0, "dismiss unanswered prompts after this long (0 waits)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	logger := newLogger("monitor")
	override := func(s *config.Settings) {
		applyGlobalFlags(s)
		if cmd.Flags().Changed("auto-mask") {
			s.AutoMask = flagAutoMask
		}
		if flagTTL > 0 {
			s.RestoreTTL = flagTTL
		}
		if flagPoll > 0 {
			s.PollInterval = flagPoll
		}
	}
	src := config.NewFileSource(workDir(), config.WithOverride(override), config.WithSourceLogger(newLogger("config")))
	defer src.Close()
	settings := src.Settings()

	store, backend, err := openExposures(settings, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		n        notify.Notifier
		commands <-chan string
	)
	if isTerminal(os.Stdin) {
		term := notify.NewTerminal(os.Stdin, cmd.OutOrStdout())
		n, commands = term, term.Commands()
	} else {
		n = notify.NewLog(logger)
	}

	cd := countdown.New(monitor.Reminders(ctx, store, n, logger), countdown.WithLogger(newLogger("countdown")))
	defer cd.Close()
	if resumed := monitor.ResumeCountdowns(store.Exposed(), cd, time.Now()); resumed > 0 {
		logger.Info("rotation countdowns resumed", "count", resumed)
	}

	trail := audit.NewLog(auditPath(settings))
	sess, err := monitor.New(monitor.Deps{
		Clipboard:  clipboard.System{},
		Settings:   src,
		Exposures:  store,
		Countdowns: cd,
		Notifier:   n,
		Audit:      trail,
		Logger:     logger,
	}, monitor.WithPromptTimeout(flagPromptTimeout))
	if err != nil {
		return err
	}
	defer sess.Close()

	src.OnChange(followEnabled(sess, settings.Enabled))
	if err := src.Watch(); err != nil {
		logger.Warn("config changes will not be picked up", "err", err)
	}

	if settings.Enabled {
		sess.Start()
		n.Notify(notify.Info, "SecretShields is watching the clipboard. Type help for commands.")
	} else {
		n.Notify(notify.Info, "SecretShields is disabled. Type start to monitor anyway, or set enabled: true.")
	}

	con := &console{sess: sess, store: store, countdowns: cd, audit: trail, log: logger, out: cmd.OutOrStdout()}
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case line, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			if con.handle(ctx, line) {
				return nil
			}
		}
	}
}

// followEnabled starts or stops sess only when a reload flips enabled, so
// a console start or stop survives unrelated config edits.
func followEnabled(sess interface {
	Start()
	Stop()
}, enabled bool) func(config.Settings) {
	var mu sync.Mutex
	return func(s config.Settings) {
		mu.Lock()
		defer mu.Unlock()
		if s.Enabled == enabled {
			return
		}
		enabled = s.Enabled
		if enabled {
			sess.Start()
		} else {
			sess.Stop()
		}
	}
}
