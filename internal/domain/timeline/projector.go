package timeline

import "sort"

// Project derives the current status from a set of live events: the status
// of the event with the latest event date, ties going to the most recently
// created one. It returns nil when there is no live event. Deleted events
// passed in are ignored.
func Project(events []Event) *Status {
	var (
		latest Event
		found  bool
	)
	for _, e := range events {
		if !e.Live() {
			continue
		}
		if !found || after(e, latest) {
			latest = e
			found = true
		}
	}
	if !found {
		return nil
	}
	s := StatusFor(latest.Kind)
	return &s
}

// SortByEventDate orders events latest first by event date, then creation.
func SortByEventDate(events []Event) {
	sort.SliceStable(events, func(i, j int) bool { return after(events[i], events[j]) })
}

// SortByCreation orders events most recently created first.
func SortByCreation(events []Event) {
	sort.SliceStable(events, func(i, j int) bool { return createdAfter(events[i], events[j]) })
}

func after(a, b Event) bool {
	if !a.EventDate.Equal(b.EventDate) {
		return a.EventDate.After(b.EventDate)
	}
	return createdAfter(a, b)
}

// createdAfter ranks by Seq, which the store assigns at insert while the
// application row is locked. CreatedAt only decides between unsequenced events.
func createdAfter(a, b Event) bool {
	if a.Seq != 0 && b.Seq != 0 {
		return a.Seq > b.Seq
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.Seq > b.Seq
}
