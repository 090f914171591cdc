// Package queue derives the per-route boarding order from active entries. The
// order is recomputed on every read; no rank is ever persisted.
package queue

import (
	"sort"

	"terminal-queue-backend/internal/model"
)

// statusRank orders live statuses departure-imminent first.
var statusRank = map[model.EntryStatus]int{
	model.StatusDeparting: 0,
	model.StatusBoarding:  1,
	model.StatusWaiting:   2,
}

// Rank returns the sort rank of a live status. Unknown statuses sort last.
func Rank(s model.EntryStatus) int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return len(statusRank)
}

// Order sorts active entries departure-imminent first, ties broken by
// ascending entry time (earliest in, first out within the same status). The
// input slice is sorted in place and returned.
func Order(entries []model.ActiveEntry) []model.ActiveEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := Rank(entries[i].Status), Rank(entries[j].Status)
		if ri != rj {
			return ri < rj
		}
		return entries[i].EnteredAt.Before(entries[j].EnteredAt)
	})
	return entries
}
