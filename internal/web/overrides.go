package web

import (
	"net/url"
	"strconv"

	"moonday/internal/config"
	"moonday/internal/moonday"
)

var overrideKeys = []string{
	"up_to_year",
	"avoid_peak_time",
	"practice_time",
	"reminder",
	"reminder_days_before",
	"show_exact_time",
	"timezone",
}

func hasOverrides(q url.Values) bool {
	for _, k := range overrideKeys {
		if q.Has(k) {
			return true
		}
	}
	return false
}

// applyOverrides copies query parameters onto cfg. Unparseable values are
// reported as configuration errors.
func applyOverrides(cfg *config.Config, q url.Values) error {
	g := &cfg.Generation

	if v := q.Get("up_to_year"); q.Has("up_to_year") {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &moonday.ConfigurationError{Field: "up_to_year", Value: v, Reason: "not a year", Err: err}
		}
		g.UpToYear = n
	}
	if err := parseBool(q, "avoid_peak_time", &g.AvoidPeakTime); err != nil {
		return err
	}
	if q.Has("practice_time") {
		g.PracticeTime = q.Get("practice_time")
	}
	if err := parseBool(q, "reminder", &g.Reminder); err != nil {
		return err
	}
	if v := q.Get("reminder_days_before"); q.Has("reminder_days_before") {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &moonday.ConfigurationError{Field: "reminder_days_before", Value: v, Reason: "not a number", Err: err}
		}
		g.ReminderDaysBefore = n
	}
	if err := parseBool(q, "show_exact_time", &g.ShowExactTime); err != nil {
		return err
	}
	if q.Has("timezone") {
		cfg.Timezone = q.Get("timezone")
	}
	return nil
}

func parseBool(q url.Values, key string, dst *bool) error {
	if !q.Has(key) {
		return nil
	}
	v := q.Get(key)
	b, err := strconv.ParseBool(v)
	if err != nil {
		return &moonday.ConfigurationError{Field: key, Value: v, Reason: "not a boolean", Err: err}
	}
	*dst = b
	return nil
}
