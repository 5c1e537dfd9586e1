package hydrobricks

import (
	"math"
	"testing"
)

func TestContainerApplyConstraintsClampsNegativeContent(t *testing.T) {
	c := NewContainer("bucket")
	c.SetContent(1)

	out := NewToOutletFlux("out", MaterialWater)
	out.SetRate(10) // would drain 10mm over 1 day from a 1mm bucket
	c.AttachOutgoing(out)

	if err := c.ApplyConstraints(1); err != nil {
		t.Fatalf("ApplyConstraints: %v", err)
	}
	if out.Rate() > 1+1e-9 {
		t.Fatalf("expected the outgoing rate to be capped near the available content, got %v", out.Rate())
	}
}

func TestContainerApplyConstraintsReducesOverflowToCapacity(t *testing.T) {
	c := NewContainer("bucket")
	c.SetCapacity(10)
	c.SetContent(8)

	in := NewToContainerFlux("in", MaterialWater, NewContainer("downstream"))
	in.SetRate(10) // would push content to 18mm over 1 day
	c.AttachIncomingDynamic(in)

	if err := c.ApplyConstraints(1); err != nil {
		t.Fatalf("ApplyConstraints: %v", err)
	}
	if in.Rate() > 2+1e-9 {
		t.Fatalf("expected the incoming rate to be capped at the remaining headroom, got %v", in.Rate())
	}
}

func TestContainerApplyConstraintsErrorsWithoutOverflow(t *testing.T) {
	c := NewContainer("bucket")
	c.SetCapacity(10)
	c.AddStatic(20) // a forcing alone overfills a bounded brick with no overflow

	if err := c.ApplyConstraints(1); err == nil {
		t.Fatal("expected an error when a forcing directly overfills a bounded container with no overflow")
	}
}

func TestContainerApplyConstraintsSkipsInfiniteContainers(t *testing.T) {
	c := NewContainer("ice")
	c.SetInfinite(true)
	c.SetContent(0)

	out := NewToOutletFlux("melt", MaterialIce)
	out.SetRate(1000)
	c.AttachOutgoing(out)

	if err := c.ApplyConstraints(1); err != nil {
		t.Fatalf("ApplyConstraints: %v", err)
	}
	if out.Rate() != 1000 {
		t.Fatalf("expected an infinite container to leave rates untouched, got %v", out.Rate())
	}
}

func TestContainerFinalizeCommitsAndClampsNearZero(t *testing.T) {
	c := NewContainer("bucket")
	c.SetContent(1)
	c.AddDynamic(-1.000000001) // a hair below zero within Finalize's epsilon

	if err := c.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if c.Content() != 0 {
		t.Fatalf("expected content clamped to 0, got %v", c.Content())
	}
}

func TestContainerFinalizeErrorsOnRealNegativeContent(t *testing.T) {
	c := NewContainer("bucket")
	c.SetContent(1)
	c.AddDynamic(-5)

	if err := c.Finalize(); err == nil {
		t.Fatal("expected Finalize to reject a genuinely negative content")
	}
}

func TestParseSolverKind(t *testing.T) {
	cases := map[string]SolverKind{
		"euler_explicit": SolverEuler,
		"heun_explicit":  SolverHeun,
		"rk4":            SolverRK4,
	}
	for name, want := range cases {
		got, err := ParseSolverKind(name)
		if err != nil {
			t.Fatalf("ParseSolverKind(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseSolverKind(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := ParseSolverKind("bogus"); err == nil {
		t.Fatal("expected an error for an unrecognised solver name")
	}
}

func TestParseStepUnit(t *testing.T) {
	u, err := ParseStepUnit("hour")
	if err != nil {
		t.Fatalf("ParseStepUnit: %v", err)
	}
	if math.Abs(u.Days()-1.0/24) > 1e-12 {
		t.Fatalf("expected an hour step to be 1/24 of a day, got %v", u.Days())
	}
	if _, err := ParseStepUnit("fortnight"); err == nil {
		t.Fatal("expected an error for an unrecognised step unit")
	}
}
