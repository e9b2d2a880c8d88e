// Package export renders the calendar as an iCalendar document so events can
// be pulled into phone and desktop calendars.
package export

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/example/campshare/internal/model"
)

// WriteICS serializes the events as all-day iCalendar entries. The DTEND of
// an all-day event is exclusive, so each event ends one day after its last
// calendar day.
func WriteICS(w io.Writer, events []model.Event, now time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Camp Share//Calendar//EN")

	for _, event := range events {
		entry := cal.AddEvent(event.ID + "@campshare")
		entry.SetDtStampTime(now)
		entry.SetAllDayStartAt(event.StartDate)
		entry.SetAllDayEndAt(event.EndDate.AddDate(0, 0, 1))
		entry.SetSummary(event.Title)
		if event.Description != "" {
			entry.SetDescription(event.Description)
		}
		entry.SetProperty(ics.ComponentPropertyCategories, string(event.Category))
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("export: serialize calendar: %w", err)
	}
	return nil
}
