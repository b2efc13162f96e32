package ical

import (
	"fmt"
	"log/slog"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/dukerupert/eventcal/internal/model"
	"github.com/dukerupert/eventcal/internal/recurrence"
)

// Options controls calendar-level properties of an export.
type Options struct {
	ProductID string
	Name      string
	Domain    string
	// Location is the zone all-day dates are expressed in.
	Location *time.Location
}

// Export renders events as a VCALENDAR document. Events without a start are
// skipped, and so are recurring events whose stored rule no longer decodes.
func Export(events []model.Event, opts Options, logger *slog.Logger) string {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.ProductID == "" {
		opts.ProductID = "-//eventcal//EN"
	}
	if opts.Domain == "" {
		opts.Domain = "eventcal"
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(opts.ProductID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	cal.SetXWRTimezone(opts.Location.String())

	for i := range events {
		e := &events[i]
		if e.StartDateTime == nil {
			continue
		}

		rrule := ""
		if e.HasRule() {
			params, err := e.RuleParams()
			if err != nil {
				logger.Warn("skip event with undecodable rule", "event_id", e.ID, "error", err)
				continue
			}
			rrule = recurrence.Format(e.Rule.Frequency, params)
		}

		vevent := cal.AddEvent(fmt.Sprintf("event-%d@%s", e.ID, opts.Domain))
		vevent.SetSummary(e.Name)
		vevent.SetDtStampTime(e.UpdatedAt)

		if e.AllDay {
			vevent.SetAllDayStartAt(e.StartDateTime.In(opts.Location))
			if e.EndDateTime != nil {
				vevent.SetAllDayEndAt(e.EndDateTime.In(opts.Location))
			}
		} else {
			vevent.SetStartAt(*e.StartDateTime)
			if e.EndDateTime != nil {
				vevent.SetEndAt(*e.EndDateTime)
			}
		}

		if rrule != "" {
			vevent.AddProperty(ics.ComponentPropertyRrule, rrule)
		}
	}

	return cal.Serialize()
}
