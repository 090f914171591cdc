// Package feed projects active entries into the read-only displays: the TV
// board feed (boarding/departing only) and the richer passenger queue view.
// Projections never mutate anything.
package feed

import (
	"time"

	"terminal-queue-backend/internal/model"
	"terminal-queue-backend/internal/queue"
)

// displayLayout is the human-readable timestamp format used on boards and
// passenger pages: full weekday, full month, day, year, 12-hour clock.
const displayLayout = "Monday, January 2, 2006 3:04 PM"

// DisplayAttrs maps a status to its board presentation.
type DisplayAttrs struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// displayAttrs is total over the status enum. Departed only ever shows up in
// history-derived contexts; the live feed never emits it.
var displayAttrs = map[model.EntryStatus]DisplayAttrs{
	model.StatusWaiting:   {Label: "Waiting", Icon: "hourglass"},
	model.StatusBoarding:  {Label: "Boarding", Icon: "door-open"},
	model.StatusDeparting: {Label: "Departing", Icon: "bus"},
	model.StatusDeparted:  {Label: "Departed", Icon: "check"},
}

// Display returns the presentation attributes for a status.
func Display(s model.EntryStatus) DisplayAttrs {
	if attrs, ok := displayAttrs[s]; ok {
		return attrs
	}
	return DisplayAttrs{Label: string(s), Icon: "question"}
}

// FormatTime renders a timestamp in the display layout, terminal-local.
func FormatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(displayLayout)
}

// BoardEntry is one row on the TV display.
type BoardEntry struct {
	Time        string `json:"time"`
	Route       string `json:"route"`
	Destination string `json:"destination"`
	Vehicle     string `json:"vehicle"`
	Status      string `json:"status"`
	Icon        string `json:"icon"`
}

// QueueEntry is one row on the passenger queue page. Unlike the board feed it
// includes waiting vehicles and the raw status value.
type QueueEntry struct {
	Position    int               `json:"position"`
	Vehicle     string            `json:"vehicle"`
	VehicleName string            `json:"vehicleName"`
	Driver      string            `json:"driver"`
	Status      model.EntryStatus `json:"status"`
	Display     DisplayAttrs      `json:"display"`
	EnteredAt   string            `json:"enteredAt"`
	BoardingAt  string            `json:"boardingAt,omitempty"`
}

// RouteSection groups feed rows under one route.
type RouteSection struct {
	Route       string       `json:"route"`
	Origin      string       `json:"origin"`
	Destination string       `json:"destination"`
	Board       []BoardEntry `json:"board,omitempty"`
	Queue       []QueueEntry `json:"queue,omitempty"`
}

// announced reports whether an entry appears on the public board. Waiting
// vehicles are not yet announced.
func announced(s model.EntryStatus) bool {
	return s == model.StatusBoarding || s == model.StatusDeparting
}

// BuildBoard builds the TV display feed: per route, the ordered
// boarding/departing entries. Entries for routes missing from entriesByRoute
// simply produce an empty section.
func BuildBoard(routes []model.Route, entriesByRoute map[int64][]model.ActiveEntry, now time.Time, loc *time.Location) []RouteSection {
	sections := make([]RouteSection, 0, len(routes))
	for _, route := range routes {
		section := RouteSection{
			Route:       route.Name,
			Origin:      route.Origin,
			Destination: route.Destination,
			Board:       []BoardEntry{},
		}

		for _, e := range queue.Order(entriesByRoute[route.ID]) {
			if !announced(e.Status) {
				continue
			}
			attrs := Display(e.Status)
			section.Board = append(section.Board, BoardEntry{
				Time:        FormatTime(entryAnnouncedAt(e, now), loc),
				Route:       route.Name,
				Destination: route.Destination,
				Vehicle:     e.Vehicle.PlateNumber,
				Status:      attrs.Label,
				Icon:        attrs.Icon,
			})
		}
		sections = append(sections, section)
	}
	return sections
}

// entryAnnouncedAt picks the timestamp shown next to a board row: the moment
// boarding started when known, otherwise the entry time.
func entryAnnouncedAt(e model.ActiveEntry, now time.Time) time.Time {
	if e.BoardingStartedAt != nil {
		return *e.BoardingStartedAt
	}
	if e.EnteredAt.IsZero() {
		return now
	}
	return e.EnteredAt
}

// BuildQueueView builds the passenger-facing view: per route, every active
// entry including waiting ones, in boarding order with queue positions.
func BuildQueueView(routes []model.Route, entriesByRoute map[int64][]model.ActiveEntry, loc *time.Location) []RouteSection {
	sections := make([]RouteSection, 0, len(routes))
	for _, route := range routes {
		section := RouteSection{
			Route:       route.Name,
			Origin:      route.Origin,
			Destination: route.Destination,
			Queue:       []QueueEntry{},
		}

		for i, e := range queue.Order(entriesByRoute[route.ID]) {
			row := QueueEntry{
				Position:    i + 1,
				Vehicle:     e.Vehicle.PlateNumber,
				VehicleName: e.Vehicle.VehicleName,
				Driver:      e.Driver.FullName(),
				Status:      e.Status,
				Display:     Display(e.Status),
				EnteredAt:   FormatTime(e.EnteredAt, loc),
			}
			if e.BoardingStartedAt != nil {
				row.BoardingAt = FormatTime(*e.BoardingStartedAt, loc)
			}
			section.Queue = append(section.Queue, row)
		}
		sections = append(sections, section)
	}
	return sections
}
