package hydrobricks

import (
	"sort"
	"time"
)

// Action is a date-triggered mutation applied to the graph between
// time steps (§4.11). Actions never run mid-step: the ActionsManager
// is invoked once per step, before Processor.Step, so no action ever
// observes a partial integration.
type Action interface {
	Apply(g *Graph, date MJD) error
}

// dateAction pairs a one-shot trigger date with the action it fires.
type dateAction struct {
	Date   MJD
	Action Action
}

// MonthDay is a (month, day) recurrence trigger, matched against the
// current date's calendar month/day every year.
type MonthDay struct {
	Month time.Month
	Day   int
}

type recurringAction struct {
	Triggers []MonthDay
	Action   Action
}

// ActionsManager holds both scheduling flavours spec.md §4.11 names:
// sporadic (date, action) pairs kept sorted by date with a single
// advancing cursor, and recursive (month, day) triggers checked every
// step.
type ActionsManager struct {
	sporadic  []dateAction
	cursor    int
	recurring []recurringAction
}

// NewActionsManager builds an empty manager.
func NewActionsManager() *ActionsManager { return &ActionsManager{} }

// ScheduleSporadic inserts a will insert a one-shot action keeping the
// internal list sorted by date regardless of insertion order (§8.8,
// E6) — a stable insertion sort since schedules are built once before
// a run starts and are not performance sensitive.
func (m *ActionsManager) ScheduleSporadic(date MJD, a Action) {
	idx := sort.Search(len(m.sporadic), func(i int) bool { return m.sporadic[i].Date > date })
	m.sporadic = append(m.sporadic, dateAction{})
	copy(m.sporadic[idx+1:], m.sporadic[idx:])
	m.sporadic[idx] = dateAction{Date: date, Action: a}
	if idx < m.cursor {
		m.cursor++
	}
}

// ScheduleRecurring registers a (month, day) triggered action.
func (m *ActionsManager) ScheduleRecurring(triggers []MonthDay, a Action) {
	m.recurring = append(m.recurring, recurringAction{Triggers: triggers, Action: a})
}

// Dates returns the sporadic schedule's trigger dates in the order
// they will fire, for tests checking the list stays sorted after
// arbitrary-order inserts (E6).
func (m *ActionsManager) Dates() []MJD {
	out := make([]MJD, len(m.sporadic))
	for i, e := range m.sporadic {
		out[i] = e.Date
	}
	return out
}

// Apply fires every sporadic action whose date is due and every
// recurring action whose (month, day) matches current.
func (m *ActionsManager) Apply(g *Graph, current MJD) error {
	for m.cursor < len(m.sporadic) && m.sporadic[m.cursor].Date <= current {
		if err := m.sporadic[m.cursor].Action.Apply(g, current); err != nil {
			return err
		}
		m.cursor++
	}
	_, month, day := current.Date()
	for _, r := range m.recurring {
		for _, t := range r.Triggers {
			if t.Month == month && t.Day == day {
				if err := r.Action.Apply(g, current); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}

// findLandCover looks up a named land-cover brick within an HRU.
func findLandCover(hru *HRU, name string) *LandCoverBrick {
	b, ok := hru.Brick(name)
	if !ok {
		return nil
	}
	lc, _ := b.(*LandCoverBrick)
	return lc
}
