package secretshields

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/secretshields/secretshields/internal/audit"
	"github.com/secretshields/secretshields/internal/clipboard"
	"github.com/secretshields/secretshields/internal/config"
	"github.com/secretshields/secretshields/internal/countdown"
	"github.com/secretshields/secretshields/internal/exposure"
	"github.com/secretshields/secretshields/internal/logging"
	"github.com/secretshields/secretshields/internal/monitor"
	"github.com/secretshields/secretshields/internal/notify"
	"github.com/secretshields/secretshields/internal/paste"
	"github.com/secretshields/secretshields/internal/report"
	"github.com/secretshields/secretshields/internal/state"
	"github.com/secretshields/secretshields/internal/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	awsText   = "Config: KEY=AKIAIOSFODNN7EXAMPL1 done"
	awsMasked = "Config: KEY=AKIA████████████MPL1 done"
)

type env struct {
	dir   string
	state string
}

// newEnv isolates config lookup and state under a temp dir.
func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("SECRETSHIELDS_LOG_LEVEL", "error")
	orig := isTerminal
	isTerminal = func(*os.File) bool { return false }
	t.Cleanup(func() { isTerminal = orig })
	return env{dir: dir, state: filepath.Join(dir, "state.json")}
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func (e env) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errb bytes.Buffer
	rootCmd.SetArgs(append(args, "-C", e.dir, "--state", e.state))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errb)
	err := rootCmd.Execute()
	return out.String(), errb.String(), err
}

func (e env) seed(t *testing.T, n int) []exposure.Event {
	t.Helper()
	backend, err := state.Open(e.state)
	if err != nil {
		t.Fatal(err)
	}
	defer backend.Close()
	store, err := exposure.Open(backend)
	if err != nil {
		t.Fatal(err)
	}
	var evs []exposure.Event
	for i := 0; i < n; i++ {
		ev, err := store.Add(exposure.Params{Provider: "AWS", SecretType: "AWS Access Key ID", Severity: types.SevCritical, MaskedPreview: "AKIA████████████MPL1", CountdownMinutes: 15})
		if err != nil {
			t.Fatal(err)
		}
		evs = append(evs, ev)
	}
	return evs
}

func TestMask_Stdin(t *testing.T) {
	e := newEnv(t)
	out, _, err := e.run(t, awsText, "mask")
	if err != nil {
		t.Fatalf("mask: %v", err)
	}
	if out != awsMasked {
		t.Fatalf("got %q, want %q", out, awsMasked)
	}
}

func TestMask_FileJSON(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.dir, "in.txt")
	if err := os.WriteFile(path, []byte(awsText), 0o600); err != nil {
		t.Fatal(err)
	}
	out, _, err := e.run(t, "", "mask", "--json", path)
	if err != nil {
		t.Fatalf("mask: %v", err)
	}
	var rep maskReport
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("json: %v\n%s", err, out)
	}
	if rep.Count != 1 || rep.Masked != awsMasked {
		t.Fatalf("unexpected report %+v", rep)
	}
	if rep.Detections[0].PatternID != "aws-access-key-id" || rep.Detections[0].Provider != "AWS" {
		t.Fatalf("unexpected detection %+v", rep.Detections[0])
	}
	if strings.Contains(out, "AKIAIOSFODNN7EXAMPL1") {
		t.Fatalf("raw secret leaked into report")
	}
}

func TestMask_Selectors(t *testing.T) {
	e := newEnv(t)
	out, _, err := e.run(t, awsText, "mask", "--disable", "awsKeys")
	if err != nil {
		t.Fatal(err)
	}
	if out != awsText {
		t.Fatalf("disabled category still masked: %q", out)
	}
	if _, _, err := e.run(t, awsText, "mask", "--enable", "nothing-*"); err == nil {
		t.Fatalf("expected error when no patterns remain")
	}
	if _, _, err := e.run(t, awsText, "mask", "--enable", "[bad"); err == nil {
		t.Fatalf("expected error for malformed glob")
	}
}

func TestMask_ConfigDisablesCategory(t *testing.T) {
	e := newEnv(t)
	if err := os.WriteFile(filepath.Join(e.dir, ".secretshields.yml"), []byte("detectors:\n  awsKeys: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := e.run(t, awsText, "mask")
	if err != nil {
		t.Fatal(err)
	}
	if out != awsText {
		t.Fatalf("got %q", out)
	}
}

func TestMask_Clipboard(t *testing.T) {
	e := newEnv(t)
	mem := clipboard.NewMemory(awsText)
	orig := newClipboard
	newClipboard = func() clipboard.Clipboard { return mem }
	t.Cleanup(func() { newClipboard = orig })

	out, _, err := e.run(t, "", "mask", "--clipboard")
	if err != nil {
		t.Fatal(err)
	}
	if mem.Text() != awsMasked {
		t.Fatalf("clipboard = %q", mem.Text())
	}
	if !strings.Contains(out, "masked 1 secret(s)") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, _, err := e.run(t, "", "mask", "--clipboard", "file.txt"); err == nil {
		t.Fatalf("expected error combining --clipboard with a file")
	}
}

func TestPaste_Modes(t *testing.T) {
	e := newEnv(t)

	out, stderr, err := e.run(t, awsText, "paste")
	if err != nil {
		t.Fatal(err)
	}
	if out != awsText || !strings.Contains(stderr, paste.Label(1)) {
		t.Fatalf("offer: out=%q stderr=%q", out, stderr)
	}

	out, stderr, err = e.run(t, awsText, "paste", "--mask")
	if err != nil {
		t.Fatal(err)
	}
	if out != awsMasked || !strings.Contains(stderr, paste.Label(1)) {
		t.Fatalf("accept: out=%q stderr=%q", out, stderr)
	}

	out, stderr, err = e.run(t, awsText, "paste", "--mode", "off")
	if err != nil {
		t.Fatal(err)
	}
	if out != awsText || stderr != "" {
		t.Fatalf("off: out=%q stderr=%q", out, stderr)
	}

	if _, _, err := e.run(t, awsText, "paste", "--mode", "sometimes"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestPaste_ConfigAutoAndDisabled(t *testing.T) {
	e := newEnv(t)
	cfg := filepath.Join(e.dir, ".secretshields.yml")
	if err := os.WriteFile(cfg, []byte("pasteMasking: auto\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := e.run(t, awsText, "paste")
	if err != nil {
		t.Fatal(err)
	}
	if out != awsMasked {
		t.Fatalf("auto: %q", out)
	}

	if err := os.WriteFile(cfg, []byte("pasteMasking: auto\nenabled: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err = e.run(t, awsText, "paste")
	if err != nil {
		t.Fatal(err)
	}
	if out != awsText {
		t.Fatalf("disabled: %q", out)
	}
}

func TestExposures_ListRotateDismissClear(t *testing.T) {
	e := newEnv(t)
	evs := e.seed(t, 2)

	out, _, err := e.run(t, "", "exposures", "list", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var listed []exposure.Event
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("json: %v\n%s", err, out)
	}
	if len(listed) != 2 {
		t.Fatalf("listed %d exposures, want 2", len(listed))
	}

	if out, _, err = e.run(t, "", "exposures", "rotate", evs[0].ID); err != nil || !strings.Contains(out, "rotated") {
		t.Fatalf("rotate: %v %q", err, out)
	}
	if _, _, err = e.run(t, "", "exposures", "rotate", evs[0].ID); err == nil {
		t.Fatalf("rotating twice should fail")
	}
	if _, _, err = e.run(t, "", "exposures", "dismiss", evs[1].ID); err != nil {
		t.Fatalf("dismiss: %v", err)
	}

	out, _, err = e.run(t, "", "exposures")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No exposures") {
		t.Fatalf("expected nothing exposed, got %q", out)
	}

	out, _, err = e.run(t, "", "exposures", "list", "--all")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{evs[0].ID, evs[1].ID, "rotated", "dismissed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}

	if _, _, err = e.run(t, "", "exposures", "clear"); err == nil {
		t.Fatalf("clear without --yes should refuse off a terminal")
	}
	if _, _, err = e.run(t, "", "exposures", "clear", "--yes"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	out, _, _ = e.run(t, "", "exposures", "list", "--all")
	if !strings.Contains(out, "No exposures") {
		t.Fatalf("history not cleared: %q", out)
	}
}

func TestExposures_SQLiteState(t *testing.T) {
	e := newEnv(t)
	e.state = filepath.Join(e.dir, "state.db")
	evs := e.seed(t, 1)
	out, _, err := e.run(t, "", "exposures", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, evs[0].ID) {
		t.Fatalf("sqlite-backed list missing event:\n%s", out)
	}
}

func TestDetectors(t *testing.T) {
	e := newEnv(t)
	out, _, err := e.run(t, "", "detectors")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"aws-access-key-id", "jwt", "yes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}

	out, _, err = e.run(t, "", "detectors", "--ids", "--disable", "jwts")
	if err != nil {
		t.Fatal(err)
	}
	ids := strings.Fields(out)
	for _, id := range ids {
		if id == "jwt" {
			t.Fatalf("jwt should be disabled: %v", ids)
		}
	}
	if len(ids) == 0 {
		t.Fatalf("expected enabled ids")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	e := newEnv(t)
	if _, _, err := e.run(t, "", "config", "init", "--ttl-seconds", "30", "--disable-categories", "jwts", "--paste-masking", "auto"); err != nil {
		t.Fatalf("init: %v", err)
	}
	path := filepath.Join(e.dir, ".secretshields.yml")
	fc, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if fc.RestoreTTLSeconds == nil || *fc.RestoreTTLSeconds != 30 {
		t.Fatalf("ttl not written: %+v", fc.RestoreTTLSeconds)
	}
	if fc.Detectors["jwts"] || !fc.Detectors["awsKeys"] {
		t.Fatalf("detectors = %v", fc.Detectors)
	}
	if fc.PasteMasking == nil || *fc.PasteMasking != "auto" {
		t.Fatalf("pasteMasking not written")
	}

	if _, _, err := e.run(t, "", "config", "init"); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if _, _, err := e.run(t, "", "config", "init", "--force"); err != nil {
		t.Fatalf("force: %v", err)
	}
	if _, _, err := e.run(t, "", "config", "init", "--force", "--disable-categories", "nope"); err == nil {
		t.Fatalf("expected unknown category error")
	}

	out, _, err := e.run(t, "", "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"pasteMasking: offer", "restoreTTL: 1m0s", "aws-access-key-id", e.state} {
		if !strings.Contains(out, want) {
			t.Fatalf("show missing %q:\n%s", want, out)
		}
	}
}

func newConsole(t *testing.T, text string) (*console, *bytes.Buffer, *clipboard.Memory) {
	t.Helper()
	store, err := exposure.Open(state.NewMemory())
	if err != nil {
		t.Fatal(err)
	}
	cd := countdown.New(nil)
	t.Cleanup(cd.Close)
	clip := clipboard.NewMemory(text)
	sess, err := monitor.New(monitor.Deps{
		Clipboard:  clip,
		Settings:   config.NewStatic(config.Defaults()),
		Exposures:  store,
		Countdowns: cd,
		Notifier:   notify.NewLog(nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sess.Close)
	var out bytes.Buffer
	return &console{sess: sess, store: store, countdowns: cd, out: &out}, &out, clip
}

func TestConsole_MaskRestoreRotate(t *testing.T) {
	c, out, clip := newConsole(t, awsText)
	ctx := context.Background()

	if c.handle(ctx, "mask") {
		t.Fatal("mask should not quit")
	}
	if clip.Text() != awsMasked || !strings.Contains(out.String(), "masked 1 secret(s)") {
		t.Fatalf("mask: clip=%q out=%q", clip.Text(), out.String())
	}

	out.Reset()
	c.handle(ctx, "restore")
	if clip.Text() != awsText {
		t.Fatalf("restore did not write the original back")
	}
	exposed := c.store.Exposed()
	if len(exposed) != 1 || !strings.Contains(out.String(), exposed[0].ID) {
		t.Fatalf("restore: exposed=%v out=%q", exposed, out.String())
	}
	if !c.countdowns.Pending(exposed[0].ID) {
		t.Fatalf("countdown not started")
	}

	out.Reset()
	c.handle(ctx, "restore")
	if !strings.Contains(out.String(), "nothing to restore") {
		t.Fatalf("second restore: %q", out.String())
	}

	out.Reset()
	c.handle(ctx, "status")
	if !strings.Contains(out.String(), "monitor: stopped") || !strings.Contains(out.String(), "exposed: 1") {
		t.Fatalf("status: %q", out.String())
	}

	out.Reset()
	c.handle(ctx, "rotate "+exposed[0].ID)
	if c.countdowns.Pending(exposed[0].ID) || len(c.store.Exposed()) != 0 {
		t.Fatalf("rotate did not resolve the exposure")
	}
	out.Reset()
	c.handle(ctx, "dismiss "+exposed[0].ID)
	if !strings.Contains(out.String(), "no exposed secret") {
		t.Fatalf("dismiss after rotate: %q", out.String())
	}
}

func TestConsole_Misc(t *testing.T) {
	c, out, _ := newConsole(t, "")
	ctx := context.Background()

	c.handle(ctx, "mask")
	if !strings.Contains(out.String(), "clipboard is empty") {
		t.Fatalf("mask empty: %q", out.String())
	}
	out.Reset()
	c.handle(ctx, "rotate")
	if !strings.Contains(out.String(), "usage") {
		t.Fatalf("rotate without id: %q", out.String())
	}
	out.Reset()
	c.handle(ctx, "frobnicate")
	if !strings.Contains(out.String(), "unknown command") {
		t.Fatalf("unknown: %q", out.String())
	}
	c.handle(ctx, "start")
	if c.sess.State() != monitor.Running {
		t.Fatalf("start did not start the session")
	}
	c.handle(ctx, "stop")
	if c.sess.State() != monitor.Stopped {
		t.Fatalf("stop did not stop the session")
	}
	if !c.handle(ctx, "quit") {
		t.Fatalf("quit should end the loop")
	}
}

func TestDetectorNamesCompletion(t *testing.T) {
	names := strings.Join(detectorNames(), " ")
	for _, want := range []string{"aws-access-key-id", "anthropic-api-key", "jwts", "sshPrivateKeys"} {
		if !strings.Contains(names, want) {
			t.Fatalf("completion candidates missing %s: %s", want, names)
		}
	}
}

func TestConsole_AuditFailureIsLogged(t *testing.T) {
	t.Setenv(logging.EnvLevel, "warn")
	c, out, _ := newConsole(t, awsText)
	ctx := context.Background()

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	c.audit = audit.NewLog(filepath.Join(blocker, "audit.jsonl"))
	c.log = logging.New(logging.Options{Output: &logs})

	c.handle(ctx, "mask")
	c.handle(ctx, "restore")
	exposed := c.store.Exposed()
	if len(exposed) != 1 {
		t.Fatalf("expected one exposure, got %d", len(exposed))
	}
	out.Reset()
	c.handle(ctx, "rotate "+exposed[0].ID)
	if !strings.Contains(out.String(), "done") {
		t.Fatalf("rotate should still succeed: %q", out.String())
	}
	if !strings.Contains(logs.String(), "audit record not written") {
		t.Fatalf("expected a warning for the failed audit write, got %q", logs.String())
	}
}

func TestConsole_MaskCleanText(t *testing.T) {
	c, out, _ := newConsole(t, "nothing to see here")
	c.handle(context.Background(), "mask")
	if !strings.Contains(out.String(), report.NoSecretsFound) {
		t.Fatalf("mask clean: %q", out.String())
	}
}

type fakeSwitch struct{ starts, stops int }

func (f *fakeSwitch) Start() { f.starts++ }
func (f *fakeSwitch) Stop()  { f.stops++ }

func TestFollowEnabled_OnlyActsOnFlips(t *testing.T) {
	sw := &fakeSwitch{}
	onChange := followEnabled(sw, true)
	on, off := config.Defaults(), config.Defaults()
	off.Enabled = false

	// an unrelated edit while enabled must not restart a stopped session
	edited := on
	edited.PollInterval = 5 * time.Second
	onChange(edited)
	if sw.starts != 0 || sw.stops != 0 {
		t.Fatalf("unexpected switch on unrelated edit: %+v", sw)
	}
	onChange(off)
	onChange(off)
	if sw.stops != 1 {
		t.Fatalf("expected one stop, got %+v", sw)
	}
	onChange(on)
	onChange(on)
	if sw.starts != 1 {
		t.Fatalf("expected one start, got %+v", sw)
	}
}

func TestDetectorsTest(t *testing.T) {
	e := newEnv(t)
	out, _, err := e.run(t, awsText, "detectors", "test", "aws-access-key-id")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "AKIA████████████MPL1") {
		t.Fatalf("expected masked match:\n%s", out)
	}
	out, _, err = e.run(t, awsText, "detectors", "test", "jwts")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, report.NoSecretsFound) {
		t.Fatalf("jwt category should not match an AWS key:\n%s", out)
	}
	if _, _, err := e.run(t, awsText, "detectors", "test", "nope"); err == nil {
		t.Fatalf("expected unknown detector error")
	}
}

func TestAudit_TrailFromCLI(t *testing.T) {
	e := newEnv(t)
	evs := e.seed(t, 1)
	if _, _, err := e.run(t, "", "exposures", "rotate", evs[0].ID); err != nil {
		t.Fatal(err)
	}
	if _, _, err := e.run(t, "", "exposures", "clear", "--yes"); err != nil {
		t.Fatal(err)
	}
	out, _, err := e.run(t, "", "audit", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var recs []audit.Record
	if err := json.Unmarshal([]byte(out), &recs); err != nil {
		t.Fatalf("json: %v\n%s", err, out)
	}
	if len(recs) != 2 || recs[0].Action != audit.ActionCleared || recs[1].Action != audit.ActionRotated {
		t.Fatalf("unexpected trail %+v", recs)
	}
	if _, err := os.Stat(filepath.Join(e.dir, "audit.jsonl")); err != nil {
		t.Fatalf("trail not beside state file: %v", err)
	}

	if _, _, err := e.run(t, "", "audit", "clear"); err == nil {
		t.Fatalf("expected refusal without --yes")
	}
	if _, _, err := e.run(t, "", "audit", "clear", "--yes"); err != nil {
		t.Fatal(err)
	}
	out, _, _ = e.run(t, "", "audit")
	if !strings.Contains(out, "No activity recorded") {
		t.Fatalf("trail not cleared: %q", out)
	}
}
