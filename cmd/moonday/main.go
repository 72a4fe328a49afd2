package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"moonday/internal/config"
	appLog "moonday/internal/log"
	"moonday/internal/lune"
	"moonday/internal/moonday"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Generation overrides; applied only when set on the command line.
	upToYear      int
	avoidPeakTime bool
	practiceTime  string
	reminder      bool
	reminderDays  int
	showExactTime bool
	timezone      string

	// now is swapped in tests.
	now = time.Now
)

var rootCmd = &cobra.Command{
	Use:   "moonday",
	Short: "Generate full and new moon calendars",
	Long: `moonday computes full and new moon peaks up to a given year and
writes them as all-day calendar events.

With --avoid-peak-time, a moonday whose peak is closer to the practice
time of the previous or next day is moved to that day and marked with
"−" or "+".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			appLog.SetLevel(appLog.LevelDebug)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		appLog.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to config file (defaults are used when empty)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	pf.IntVar(&upToYear, "up-to-year", 0, "Generate moondays up to the end of this year")
	pf.BoolVar(&avoidPeakTime, "avoid-peak-time", false, "Shift moondays towards the closest practice time")
	pf.StringVar(&practiceTime, "practice-time", "", "Daily practice time, HH:mm in 30-minute steps")
	pf.BoolVar(&reminder, "reminder", false, "Attach a reminder to each moonday")
	pf.IntVar(&reminderDays, "reminder-days", 0, "Days before the moonday to remind (1 or 2)")
	pf.BoolVar(&showExactTime, "show-exact-time", false, "Append the peak time to event titles")
	pf.StringVar(&timezone, "timezone", "", "IANA timezone or UTC offset (e.g. Asia/Seoul, +09:00)")

	rootCmd.AddCommand(generateCmd, previewCmd, inspectCmd, serveCmd, captureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		appLog.Sync()
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies command-line
// overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if configPath == "" {
		cfg = config.DefaultConfig()
	} else {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
		cfg = loaded
	}

	if !verbose {
		appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	}

	applyFlagOverrides(cmd, cfg)
	g := &cfg.Generation

	appLog.Debug("effective config",
		"config_path", configPath,
		"timezone", cfg.Timezone,
		"up_to_year", g.UpToYear,
		"avoid_peak_time", g.AvoidPeakTime,
		"practice_time", g.PracticeTime,
		"reminder", g.Reminder,
		"reminder_days_before", g.ReminderDaysBefore,
		"show_exact_time", g.ShowExactTime,
	)
	return cfg, nil
}

// applyFlagOverrides copies the generation flags set on the command line
// onto cfg. Serve mode reapplies it after every config reload.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	g := &cfg.Generation
	if flags.Changed("up-to-year") {
		g.UpToYear = upToYear
	}
	if flags.Changed("avoid-peak-time") {
		g.AvoidPeakTime = avoidPeakTime
	}
	if flags.Changed("practice-time") {
		g.PracticeTime = practiceTime
	}
	if flags.Changed("reminder") {
		g.Reminder = reminder
	}
	if flags.Changed("reminder-days") {
		g.ReminderDaysBefore = reminderDays
	}
	if flags.Changed("show-exact-time") {
		g.ShowExactTime = showExactTime
	}
	if flags.Changed("timezone") {
		cfg.Timezone = timezone
	}
}

func newGenerator() *moonday.Generator {
	return moonday.NewGenerator(lune.New())
}
