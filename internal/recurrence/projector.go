package recurrence

import (
	"fmt"
	"time"

	"github.com/example/campshare/internal/model"
)

// PlaceholderColor is the neutral colour applied to suggestions so they are
// visually distinct from accepted events.
const PlaceholderColor = "#d3d3d3"

// Suggestion is a candidate event for next year derived from a historical
// retreat. Suggestions are ephemeral: they are recomputed from the event list
// and never persisted.
type Suggestion struct {
	ID            string
	SourceID      string
	Title         string
	Description   string
	StartDate     time.Time
	EndDate       time.Time
	Category      model.EventCategory
	Color         string
	RelativeLabel string
	// RolledOver is set when the source ordinal (e.g. a 5th Saturday) does not
	// exist in the target month and the projected date landed in the following
	// month.
	RolledOver bool
}

// Projector derives next-year retreat suggestions that preserve each source
// event's relative calendar position (Nth weekday of its month) rather than
// its absolute day-of-month.
type Projector struct {
	location *time.Location
}

// NewProjector constructs a Projector that evaluates dates in the provided
// location. If loc is nil, UTC is used.
func NewProjector(loc *time.Location) *Projector {
	if loc == nil {
		loc = time.UTC
	}
	return &Projector{location: loc}
}

// Project produces suggestions for the year after ref. Only retreat events
// whose start date falls in ref's calendar month (any year) are considered.
//
// Semantics:
//   - The projected start is the Nth occurrence of the source weekday in the
//     same month of the following year, where N is the source's week ordinal.
//   - When the target month has fewer occurrences of that weekday, the date
//     rolls past month-end into the next month; RolledOver marks the result.
//   - Two sources projecting onto the same start date produce one suggestion;
//     the first wins.
//
// Project is pure and deterministic for a fixed input.
func (p *Projector) Project(events []model.Event, ref time.Time) []Suggestion {
	loc := p.location
	if loc == nil {
		loc = time.UTC
	}

	ref = ref.In(loc)
	targetYear := ref.Year() + 1
	month := ref.Month()

	seen := make(map[string]struct{})
	suggestions := make([]Suggestion, 0)

	for _, event := range events {
		if event.Category != model.CategoryRetreat {
			continue
		}
		if event.StartDate.Month() != month {
			continue
		}

		duration := model.DaysBetween(event.StartDate, event.EndDate)
		if duration < 0 {
			duration = 0
		}

		weekday := event.StartDate.Weekday()
		ordinal := weekOrdinal(event.StartDate.Day())

		start := nthWeekdayOfMonth(targetYear, month, weekday, ordinal, loc)
		key := start.Format("2006-01-02")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		suggestions = append(suggestions, Suggestion{
			ID:            "recommendation-" + event.ID,
			SourceID:      event.ID,
			Title:         event.Title,
			Description:   event.Description,
			StartDate:     start,
			EndDate:       start.AddDate(0, 0, duration),
			Category:      model.CategoryRetreat,
			Color:         PlaceholderColor,
			RelativeLabel: relativeLabel(ordinal, weekday, month),
			RolledOver:    start.Month() != month,
		})
	}

	return suggestions
}

// weekOrdinal returns which occurrence of its weekday a day-of-month is
// (1 through 5).
func weekOrdinal(dayOfMonth int) int {
	return (dayOfMonth + 6) / 7
}

// nthWeekdayOfMonth finds the first matching weekday of the month and advances
// (ordinal-1) whole weeks. The result may land in the following month.
func nthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, ordinal int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+(ordinal-1)*7)
}

// relativeLabel renders a position like "2nd Saturday of August".
func relativeLabel(ordinal int, weekday time.Weekday, month time.Month) string {
	return fmt.Sprintf("%s %s of %s", ordinalSuffix(ordinal), weekday, month)
}

func ordinalSuffix(n int) string {
	suffixes := []string{"th", "st", "nd", "rd"}
	v := n % 100
	suffix := suffixes[0]
	switch {
	case (v-20)%10 >= 1 && (v-20)%10 <= 3:
		suffix = suffixes[(v-20)%10]
	case v >= 1 && v <= 3:
		suffix = suffixes[v]
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
