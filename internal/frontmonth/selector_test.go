package frontmonth

import (
	"testing"
	"time"
)

var base = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func TestSelector_FirstContractBecomesActive(t *testing.T) {
	s := New(5*time.Minute, nil)

	if got := s.Observe("ESZ5", "ES", 10, base); got != Accepted {
		t.Errorf("Observe = %v, want Accepted", got)
	}

	active, ok := s.Active("ES")
	if !ok || active != "ESZ5" {
		t.Errorf("Active = %q, %v, want ESZ5, true", active, ok)
	}
}

func TestSelector_NonFrontSkipped(t *testing.T) {
	s := New(5*time.Minute, nil)

	s.Observe("ESZ5", "ES", 100, base)

	// Lower-volume contract for the same ticker is skipped.
	if got := s.Observe("ESH6", "ES", 10, base.Add(time.Second)); got != SkippedNonFront {
		t.Errorf("Observe = %v, want SkippedNonFront", got)
	}

	active, _ := s.Active("ES")
	if active != "ESZ5" {
		t.Errorf("Active = %q, want ESZ5", active)
	}
}

func TestSelector_SwitchOnVolumeOvertake(t *testing.T) {
	s := New(5*time.Minute, nil)

	var switches []string
	s.OnSwitch = func(ticker, prev, next string) {
		switches = append(switches, prev+">"+next)
	}

	s.Observe("ESZ5", "ES", 100, base)

	// ESH6 volume overtakes ESZ5; the overtaking trade itself is accepted.
	if got := s.Observe("ESH6", "ES", 500, base.Add(time.Second)); got != Accepted {
		t.Errorf("Observe = %v, want Accepted after overtake", got)
	}

	active, _ := s.Active("ES")
	if active != "ESH6" {
		t.Errorf("Active = %q, want ESH6", active)
	}

	// Initial selection plus the overtake.
	if len(switches) != 2 || switches[1] != "ESZ5>ESH6" {
		t.Errorf("switches = %v, want [>ESZ5 ESZ5>ESH6]", switches)
	}
}

func TestSelector_OldVolumeEvicted(t *testing.T) {
	s := New(5*time.Minute, nil)

	s.Observe("ESZ5", "ES", 1000, base)

	// Six minutes later ESZ5's burst has aged out of the window, so a
	// modest ESH6 print takes over.
	later := base.Add(6 * time.Minute)
	if got := s.Observe("ESH6", "ES", 10, later); got != Accepted {
		t.Errorf("Observe = %v, want Accepted after eviction", got)
	}

	active, _ := s.Active("ES")
	if active != "ESH6" {
		t.Errorf("Active = %q, want ESH6", active)
	}
}

func TestSelector_SpreadRejected(t *testing.T) {
	s := New(5*time.Minute, nil)

	if got := s.Observe("ESZ5-ESH6", "ES", 10, base); got != RejectedSpread {
		t.Errorf("Observe = %v, want RejectedSpread", got)
	}

	// Spread volume never influences selection.
	if _, ok := s.Active("ES"); ok {
		t.Error("Active should be undecided after only spread trades")
	}
}

func TestSelector_TickersIndependent(t *testing.T) {
	s := New(5*time.Minute, nil)

	s.Observe("ESZ5", "ES", 100, base)
	s.Observe("NQZ5", "NQ", 50, base)

	if got := s.Observe("NQZ5", "NQ", 10, base.Add(time.Second)); got != Accepted {
		t.Errorf("Observe NQZ5 = %v, want Accepted", got)
	}

	esActive, _ := s.Active("ES")
	nqActive, _ := s.Active("NQ")
	if esActive != "ESZ5" || nqActive != "NQZ5" {
		t.Errorf("Active = %q/%q, want ESZ5/NQZ5", esActive, nqActive)
	}
}

func TestIsSpread(t *testing.T) {
	if !IsSpread("ESZ5-ESH6") {
		t.Error("dash-delimited symbol should be a spread")
	}
	if !IsSpread("ESZ5:ESH6") {
		t.Error("colon-delimited symbol should be a spread")
	}
	if IsSpread("ESZ5") {
		t.Error("outright symbol should not be a spread")
	}
}
