package ics

import (
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "moonday/internal/log"
	"moonday/internal/model"
)

const triggerLayout = "20060102T150405Z"

// ExportOptions identifies the calendar being exported.
type ExportOptions struct {
	// Name is shown by calendar clients (X-WR-CALNAME).
	Name string
	// Domain scopes PRODID and event UIDs.
	Domain string
	// Timezone is advertised as X-WR-TIMEZONE when it names an IANA zone.
	Timezone string
	// Now stamps DTSTAMP. Zero means time.Now().
	Now time.Time
}

// Export renders descs as a VCALENDAR document. Every descriptor becomes an
// all-day VEVENT; a reminder becomes a display VALARM with an absolute
// trigger.
func Export(descs []model.EventDescriptor, opts ExportOptions) string {
	return build(descs, opts).Serialize()
}

// Write renders descs to w.
func Write(w io.Writer, descs []model.EventDescriptor, opts ExportOptions) error {
	_, err := io.WriteString(w, Export(descs, opts))
	return err
}

func build(descs []model.EventDescriptor, opts ExportOptions) *ical.Calendar {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Domain == "" {
		opts.Domain = "moonday.local"
	}

	cal := ical.NewCalendarFor(opts.Domain)
	cal.SetMethod(ical.MethodPublish)
	if opts.Name != "" {
		cal.SetName(opts.Name)
		cal.SetXWRCalName(opts.Name)
	}
	if isIANAZone(opts.Timezone) {
		cal.SetXWRTimezone(opts.Timezone)
	}

	for _, d := range descs {
		ev := cal.AddEvent(eventUID(opts.Domain, d))
		ev.SetDtStampTime(opts.Now)
		ev.SetAllDayStartAt(d.Start)
		ev.SetAllDayEndAt(d.Start.AddDate(0, 0, 1))
		ev.SetSummary(d.Title)
		ev.SetDescription(d.Description)

		if d.Reminder != nil {
			alarm := ev.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger(d.Reminder.TriggerBefore.UTC().Format(triggerLayout), ical.WithValue(string(ical.ValueDataTypeDateTime)))
			alarm.SetProperty(ical.ComponentPropertyDescription, d.Title)
		}
	}

	appLog.Debug("ics export built", "events", len(descs), "name", opts.Name, "timezone", opts.Timezone)
	return cal
}

// eventUID derives a stable UID from the source peak, so re-imported
// calendars update entries instead of duplicating them.
func eventUID(domain string, d model.EventDescriptor) string {
	peak := d.Peak
	if peak.IsZero() {
		peak = d.Start
	}
	name := strings.Join([]string{domain, d.Kind.String(), peak.UTC().Format(time.RFC3339)}, "/")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String() + "@" + domain
}

// isIANAZone rejects "Local" and fixed offsets such as "+09:00", which
// calendar clients cannot resolve.
func isIANAZone(name string) bool {
	if name == "" || name == "Local" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}
