package hydrobricks

import (
	"math"
	"testing"
	"time"
)

const testTolerance = 1e-9

// TestLandCoverChangeRenormalizes covers E5: a land-cover change action
// drops one HRU's glacier fraction and the remaining land cover takes
// up the freed area, with the fraction sum staying 1.
func TestLandCoverChangeRenormalizes(t *testing.T) {
	hru := NewHRU(2, 50, 0)
	glacier := NewLandCoverBrick("glacier", 0.5)
	ground := NewLandCoverBrick("ground", 0.5)
	hru.AddBrick(glacier)
	hru.AddBrick(ground)

	sub := NewSubBasin()
	sub.AddHRU(hru)
	g := &Graph{SubBasin: sub}

	action := NewLandCoverChange(2, "glacier", 10) // 10/50 = 0.2
	if err := action.Apply(g, 0); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if math.Abs(glacier.Fraction()-0.2) > testTolerance {
		t.Fatalf("expected glacier fraction 0.2, got %v", glacier.Fraction())
	}
	if math.Abs(ground.Fraction()-0.8) > testTolerance {
		t.Fatalf("expected ground fraction 0.8, got %v", ground.Fraction())
	}
	if sum := hru.LandCoverFractionSum(); math.Abs(sum-1) > testTolerance {
		t.Fatalf("expected land cover fractions to sum to 1, got %v", sum)
	}
}

func TestLandCoverChangeUnknownHRU(t *testing.T) {
	g := &Graph{SubBasin: NewSubBasin()}
	action := NewLandCoverChange(99, "ground", 10)
	if err := action.Apply(g, 0); err == nil {
		t.Fatal("expected an error for an unknown HRU id")
	}
}

// TestScheduleSporadicOrdering covers E6: inserting land-cover change
// actions in arbitrary chronological order produces a monotonically
// non-decreasing Dates() list after all inserts.
func TestScheduleSporadicOrdering(t *testing.T) {
	m := NewActionsManager()
	dates := []MJD{58850, 58840, 58845, 58830, 58860, 58845}
	for _, d := range dates {
		m.ScheduleSporadic(d, NewLandCoverChange(1, "ground", 1))
	}

	got := m.Dates()
	if len(got) != len(dates) {
		t.Fatalf("expected %d scheduled dates, got %d", len(dates), len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("dates not monotonically non-decreasing at index %d: %v", i, got)
		}
	}
}

// TestScheduleSporadicFiresOnceAndInOrder checks that Apply only fires
// actions whose date has been reached, and that the cursor advances
// monotonically as the simulation date advances.
func TestScheduleSporadicFiresOnceAndInOrder(t *testing.T) {
	hru := NewHRU(1, 100, 0)
	ground := NewLandCoverBrick("ground", 1.0)
	hru.AddBrick(ground)
	sub := NewSubBasin()
	sub.AddHRU(hru)
	g := &Graph{SubBasin: sub}

	m := NewActionsManager()
	var fired []int
	m.ScheduleSporadic(10, recordingAction{id: 1, log: &fired})
	m.ScheduleSporadic(5, recordingAction{id: 2, log: &fired})
	m.ScheduleSporadic(20, recordingAction{id: 3, log: &fired})

	if err := m.Apply(g, 5); err != nil {
		t.Fatalf("Apply at 5: %v", err)
	}
	if len(fired) != 1 || fired[0] != 2 {
		t.Fatalf("expected only action 2 to fire at date 5, got %v", fired)
	}

	if err := m.Apply(g, 12); err != nil {
		t.Fatalf("Apply at 12: %v", err)
	}
	if len(fired) != 2 || fired[1] != 1 {
		t.Fatalf("expected action 1 to fire by date 12, got %v", fired)
	}

	if err := m.Apply(g, 12); err != nil {
		t.Fatalf("re-Apply at 12: %v", err)
	}
	if len(fired) != 2 {
		t.Fatalf("expected no action to re-fire at the same date, got %v", fired)
	}
}

type recordingAction struct {
	id  int
	log *[]int
}

func (a recordingAction) Apply(g *Graph, date MJD) error {
	*a.log = append(*a.log, a.id)
	return nil
}

// TestScheduleRecurringFiresOnMatchingMonthDay checks that a recurring
// action fires every year its trigger (month, day) is reached.
func TestScheduleRecurringFiresOnMatchingMonthDay(t *testing.T) {
	g := &Graph{SubBasin: NewSubBasin()}
	m := NewActionsManager()
	var fired []int
	m.ScheduleRecurring([]MonthDay{{Month: time.April, Day: 1}}, recordingAction{id: 1, log: &fired})

	d1, err := ParseISODate("2020-04-01")
	if err != nil {
		t.Fatalf("ParseISODate: %v", err)
	}
	if err := m.Apply(g, d1); err != nil {
		t.Fatalf("Apply on trigger date: %v", err)
	}
	if len(fired) != 1 {
		t.Fatalf("expected the recurring action to fire on its trigger date, got %v", fired)
	}

	d2, err := ParseISODate("2020-04-02")
	if err != nil {
		t.Fatalf("ParseISODate: %v", err)
	}
	if err := m.Apply(g, d2); err != nil {
		t.Fatalf("Apply off trigger date: %v", err)
	}
	if len(fired) != 1 {
		t.Fatalf("expected the recurring action not to fire off its trigger date, got %v", fired)
	}

	d3, err := ParseISODate("2021-04-01")
	if err != nil {
		t.Fatalf("ParseISODate: %v", err)
	}
	if err := m.Apply(g, d3); err != nil {
		t.Fatalf("Apply on next year's trigger date: %v", err)
	}
	if len(fired) != 2 {
		t.Fatalf("expected the recurring action to fire again the following year, got %v", fired)
	}
}
