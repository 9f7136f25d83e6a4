package secretshields

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/secretshields/secretshields/internal/audit"
	"github.com/secretshields/secretshields/internal/countdown"
	"github.com/secretshields/secretshields/internal/exposure"
	"github.com/secretshields/secretshields/internal/logging"
	"github.com/secretshields/secretshields/internal/monitor"
	"github.com/secretshields/secretshields/internal/report"
)

const consoleHelp = `commands:
  mask           mask the clipboard now
  restore        restore the last masked secret (records an exposure)
  status         show monitor state and restore window
  list           show exposed secrets
  rotate <id>    mark an exposure rotated
  dismiss <id>   dismiss an exposure
  start | stop   resume or pause monitoring
  quit           exit`

// console runs the commands typed into a watch session.
type console struct {
	sess       *monitor.Session
	store      *exposure.Store
	countdowns *countdown.Manager
	// audit is optional.
	audit *audit.Log
	log   *log.Logger
	out   io.Writer
}

// handle executes one command line and reports whether to quit.
func (c *console) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	switch strings.ToLower(fields[0]) {
	case "quit", "exit", "q":
		return true
	case "help", "h", "?":
		fmt.Fprintln(c.out, consoleHelp)
	case "mask":
		n, err := c.sess.MaskNow(ctx)
		switch {
		case errors.Is(err, monitor.ErrClipboardEmpty):
			fmt.Fprintln(c.out, "clipboard is empty")
		case err != nil:
			fmt.Fprintln(c.out, "mask failed:", err)
		case n == 0:
			fmt.Fprintln(c.out, report.NoSecretsFound)
		default:
			fmt.Fprintf(c.out, "masked %d secret(s)\n", n)
		}
	case "restore":
		events, err := c.sess.RestoreLast(ctx)
		switch {
		case errors.Is(err, monitor.ErrNothingToRestore):
			fmt.Fprintln(c.out, "nothing to restore")
		case errors.Is(err, monitor.ErrRestoreExpired):
			fmt.Fprintln(c.out, "restore window expired; the original was discarded")
		case err != nil:
			fmt.Fprintln(c.out, "restore failed:", err)
		default:
			for _, ev := range events {
				fmt.Fprintf(c.out, "exposed %s %s (%s), reminder in %dm\n", ev.ID, ev.Provider, ev.MaskedPreview, ev.CountdownMinutes)
			}
		}
	case "status":
		st := c.sess.Status()
		fmt.Fprintf(c.out, "monitor: %s\n", st.State)
		if st.Cached {
			fmt.Fprintf(c.out, "restorable: %d secret(s) for %s\n", st.Secrets, time.Until(st.ExpiresAt).Round(time.Second))
		}
		fmt.Fprintf(c.out, "exposed: %d, reminders pending: %d\n", len(c.store.Exposed()), c.countdowns.Len())
	case "list", "ls":
		exposed := c.store.Exposed()
		if len(exposed) == 0 {
			fmt.Fprintln(c.out, "no exposed secrets")
		}
		for _, ev := range exposed {
			fmt.Fprintf(c.out, "%s  %-8s %-10s %s  %s\n", ev.ID, ev.Severity, ev.Provider, ev.MaskedPreview, humanAge(time.Since(ev.Time())))
		}
	case "rotate", "dismiss":
		if arg == "" {
			fmt.Fprintf(c.out, "usage: %s <id>\n", fields[0])
			return false
		}
		c.resolve(strings.ToLower(fields[0]), arg)
	case "start":
		c.sess.Start()
	case "stop":
		c.sess.Stop()
	default:
		fmt.Fprintf(c.out, "unknown command %q (type help)\n", fields[0])
	}
	return false
}

func (c *console) resolve(action, id string) {
	var (
		ok  bool
		err error
	)
	act := audit.ActionDismissed
	if action == "rotate" {
		act = audit.ActionRotated
		ok, err = c.store.MarkRotated(id)
	} else {
		ok, err = c.store.Dismiss(id)
	}
	switch {
	case err != nil:
		fmt.Fprintf(c.out, "%s failed: %v\n", action, err)
	case !ok:
		fmt.Fprintf(c.out, "%s: no exposed secret with id %s\n", action, id)
	default:
		c.countdowns.Cancel(id)
		if c.audit != nil {
			if err := c.audit.Record(audit.Record{Action: act, Source: "console", ExposureIDs: []string{id}}); err != nil {
				logging.Or(c.log).Warn("audit record not written", "action", act, "err", err)
			}
		}
		fmt.Fprintf(c.out, "%s: %s done\n", action, id)
	}
}

func humanAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
