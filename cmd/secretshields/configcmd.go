package secretshields

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/secretshields/secretshields/internal/config"
	"github.com/secretshields/secretshields/internal/detectors"
	"github.com/secretshields/secretshields/internal/paste"
	"github.com/secretshields/secretshields/internal/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgOutput          string
	cfgGlobal          bool
	cfgForce           bool
	cfgAutoMask        bool
	cfgPollMs          int
	cfgTTLSeconds      int
	cfgPasteMasking    string
	cfgDisableCats     string
	cfgDisablePatterns string
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .secretshields.yml with the default settings",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	initCmd.Flags().StringVar(&cfgOutput, "output", config.LocalNames[0], "output file path")
	initCmd.Flags().BoolVar(&cfgGlobal, "global", false, "write the per-user config instead of a local file")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&cfgAutoMask, "auto-mask", true, "mask detected secrets without asking")
	initCmd.Flags().IntVar(&cfgPollMs, "poll-ms", int(config.DefaultPollInterval.Milliseconds()), "clipboard poll interval in milliseconds")
	initCmd.Flags().IntVar(&cfgTTLSeconds, "ttl-seconds", int(config.DefaultRestoreTTL.Seconds()), "restore window in seconds")
	initCmd.Flags().StringVar(&cfgPasteMasking, "paste-masking", string(paste.ModeOffer), "paste masking mode: offer | auto | off")
	initCmd.Flags().StringVar(&cfgDisableCats, "disable-categories", "", "comma-separated detector categories to turn off")
	initCmd.Flags().StringVar(&cfgDisablePatterns, "disable-patterns", "", "comma-separated pattern id globs to turn off")
	cfgCmd.AddCommand(initCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings after merging config files and flags",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
	cfgCmd.AddCommand(showCmd)
}

// defaultFileConfig renders the init flags as a complete file.
func defaultFileConfig() (config.FileConfig, error) {
	mode, ok := paste.ParseMode(cfgPasteMasking)
	if !ok {
		return config.FileConfig{}, fmt.Errorf("invalid --paste-masking %q", cfgPasteMasking)
	}
	if cfgPollMs <= 0 || cfgTTLSeconds <= 0 {
		return config.FileConfig{}, fmt.Errorf("--poll-ms and --ttl-seconds must be positive")
	}
	dets := make(map[string]bool)
	for _, c := range detectors.Categories() {
		dets[string(c)] = true
	}
	for _, c := range detectors.SplitList(cfgDisableCats) {
		if _, known := dets[c]; !known {
			return config.FileConfig{}, fmt.Errorf("unknown detector category %q", c)
		}
		dets[c] = false
	}
	cm := config.DefaultCountdownMinutes()
	return config.FileConfig{
		Enabled:           boolPtr(true),
		AutoMask:          boolPtr(cfgAutoMask),
		PollIntervalMs:    intPtr(cfgPollMs),
		RestoreTTLSeconds: intPtr(cfgTTLSeconds),
		CountdownMinutes: &config.CountdownConfig{
			Critical: intPtr(cm[types.SevCritical]),
			High:     intPtr(cm[types.SevHigh]),
			Medium:   intPtr(cm[types.SevMedium]),
		},
		Detectors:       dets,
		DisablePatterns: detectors.SplitList(cfgDisablePatterns),
		PasteMasking:    strPtr(string(mode)),
	}, nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	fc, err := defaultFileConfig()
	if err != nil {
		return err
	}
	out := cfgOutput
	if !filepath.IsAbs(out) && flagDir != "" {
		out = filepath.Join(flagDir, out)
	}
	if cfgGlobal {
		if out, err = config.GlobalPath(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(out); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", out)
	}
	if err := config.Save(out, fc); err != nil {
		return err
	}
	abs, _ := filepath.Abs(out)
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", abs)
	return nil
}

// effective is the YAML view of resolved settings.
type effective struct {
	Enabled          bool            `yaml:"enabled"`
	AutoMask         bool            `yaml:"autoMask"`
	PollIntervalMs   int64           `yaml:"pollIntervalMs"`
	RestoreTTL       string          `yaml:"restoreTTL"`
	CountdownMinutes map[string]int  `yaml:"countdownMinutes"`
	Detectors        map[string]bool `yaml:"detectors"`
	DisablePatterns  []string        `yaml:"disablePatterns,omitempty"`
	EnablePatterns   []string        `yaml:"enablePatterns,omitempty"`
	PasteMasking     string          `yaml:"pasteMasking"`
	StatePath        string          `yaml:"statePath"`
	LogLevel         string          `yaml:"logLevel"`
	ActivePatterns   []string        `yaml:"activePatterns"`
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	s := loadSettings(newLogger("config"))
	e := effective{
		Enabled:          s.Enabled,
		AutoMask:         s.AutoMask,
		PollIntervalMs:   s.PollInterval.Milliseconds(),
		RestoreTTL:       s.RestoreTTL.String(),
		CountdownMinutes: map[string]int{},
		Detectors:        map[string]bool{},
		DisablePatterns:  s.DisablePatterns,
		EnablePatterns:   s.EnablePatterns,
		PasteMasking:     string(s.PasteMasking),
		StatePath:        s.StatePath,
		LogLevel:         s.LogLevel,
	}
	for _, sev := range types.Severities() {
		e.CountdownMinutes[string(sev)] = s.Countdown(sev)
	}
	for c, on := range s.Detectors {
		e.Detectors[string(c)] = on
	}
	set := s.EnabledPatterns()
	for _, p := range detectors.All() {
		if set.Enabled(p) {
			e.ActivePatterns = append(e.ActivePatterns, p.ID)
		}
	}
	sort.Strings(e.ActivePatterns)
	b, err := yaml.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), strings.TrimRight(string(b), "\n")+"\n")
	return err
}
