package sim

import "testing"

func TestFurnaceConstructionInvariant(t *testing.T) {
	c := testClock()
	if _, err := NewFurnaceVariable(c, 0, 5, 5); err == nil {
		t.Errorf("expected error for min == max")
	}
	if _, err := NewFurnaceVariable(nil, 0, 0, 100); err == nil {
		t.Errorf("expected error for nil clock")
	}
}

func TestFurnaceRejectsInvalidFuel(t *testing.T) {
	c := testClock()
	f, _ := NewFurnaceVariable(c, 0, 0, 100)

	if _, err := f.AddFuel(0, 10, "nothing"); err == nil {
		t.Errorf("expected error for non-positive quantity")
	}
	if _, err := f.AddFuel(10, 0, "instant"); err == nil {
		t.Errorf("expected error for non-positive duration")
	}
	if _, err := f.AddFuelWeighted(-5, 10, 1, "negative"); err == nil {
		t.Errorf("expected error for negative quantity")
	}
}

func TestFurnaceConsumesLinearly(t *testing.T) {
	c := testClock()
	f, _ := NewFurnaceVariable(c, 0, 0, 100)

	if _, err := f.AddFuel(20, 10, "porridge"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.Value(); got != 20 {
		t.Errorf("expected full contribution 20 before any time passed, got %v", got)
	}

	c.Advance(5, 1)
	if got := f.Value(); got != 10 {
		t.Errorf("expected half the fuel consumed after 5 units, got %v", got)
	}

	c.Advance(10, 1)
	if got := f.Value(); got != 0 {
		t.Errorf("expected base value after full consumption, got %v", got)
	}
	if f.FuelCount() != 0 {
		t.Errorf("expected exhausted fuel to be popped, count=%d", f.FuelCount())
	}
}

func TestFurnaceBurnsFastestFuelFirst(t *testing.T) {
	c := testClock()
	f, _ := NewFurnaceVariable(c, 0, 0, 100)

	// Slow burner: 10 over 10 units (rate 1). Fast burner: 20 over 5
	// units (rate 4). The fast one must be consumed first.
	slow, _ := f.AddFuel(10, 10, "rye bread")
	fast, _ := f.AddFuel(20, 5, "pastry")

	c.Advance(2, 1)
	if got := f.Value(); got != 10+12 {
		t.Errorf("expected slow fuel untouched and fast fuel at 12, got %v", got)
	}
	if slow.Progress() != 0 {
		t.Errorf("slow fuel must not burn while a faster one remains, progress=%v", slow.Progress())
	}

	c.Advance(3, 1)
	if got := f.Value(); got != 10 {
		t.Errorf("expected only the slow fuel to remain, got %v", got)
	}
	if !fast.CanBeRemoved() {
		t.Errorf("expected the fast fuel to be fully consumed")
	}

	c.Advance(5, 1)
	if got := f.Value(); got != 5 {
		t.Errorf("expected the slow fuel half burned, got %v", got)
	}
}

func TestFurnaceExplicitWeightOverridesBurnRate(t *testing.T) {
	c := testClock()
	f, _ := NewFurnaceVariable(c, 0, 0, 100)

	// The fast burner would win by rate, but the explicit weight pins the
	// slow one to the front of the queue.
	slow, _ := f.AddFuelWeighted(10, 10, -100, "priority ration")
	fast, _ := f.AddFuel(20, 5, "pastry")

	c.Advance(10, 1)
	f.Value()
	if !slow.CanBeRemoved() {
		t.Errorf("expected the weighted fuel to burn first")
	}
	if fast.Progress() != 0 {
		t.Errorf("expected the other fuel untouched, progress=%v", fast.Progress())
	}
}

func TestFurnaceCarriesRemainderAcrossFuels(t *testing.T) {
	c := testClock()
	f, _ := NewFurnaceVariable(c, 0, 0, 100)

	f.AddFuelWeighted(5, 2, -100, "kindling")
	second, _ := f.AddFuelWeighted(10, 10, -1, "log")

	// A single query spanning the first fuel's exhaustion: 2 units finish
	// the kindling, the remaining 2 carry into the log.
	c.Advance(4, 1)
	if got := f.Value(); got != 8 {
		t.Errorf("expected 10*(1-2/10) = 8 after remainder carry, got %v", got)
	}
	if second.Progress() != 2 {
		t.Errorf("expected carried progress 2 on the second fuel, got %v", second.Progress())
	}
	if f.FuelCount() != 1 {
		t.Errorf("expected one fuel left, count=%d", f.FuelCount())
	}
}

func TestFurnaceFuelAddedAfterIdleTimeIsUntouched(t *testing.T) {
	c := testClock()
	f, _ := NewFurnaceVariable(c, 0, 0, 100)

	// Virtual time passes with nothing to consume, then a fuel arrives.
	// The idle gap belongs to the empty queue, not to the new fuel.
	f.Value()
	c.Advance(5, 1)
	meal, _ := f.AddFuel(20, 10, "late lunch")

	if got := f.Value(); got != 20 {
		t.Errorf("expected the fresh fuel untouched, got %v", got)
	}
	if meal.Progress() != 0 {
		t.Errorf("expected zero progress on the fresh fuel, got %v", meal.Progress())
	}

	c.Advance(5, 1)
	if got := f.Value(); got != 10 {
		t.Errorf("expected half consumed 5 units after serving, got %v", got)
	}
}

func TestFurnaceIdleGapNotChargedToQueuedFuel(t *testing.T) {
	c := testClock()
	f, _ := NewFurnaceVariable(c, 0, 0, 100)

	// An older fuel absorbs the gap; the one added after the gap still
	// starts from zero progress.
	f.AddFuel(10, 10, "rye bread")
	c.Advance(4, 1)
	late, _ := f.AddFuelWeighted(20, 5, 100, "pastry")

	if got := f.Value(); got != 6+20 {
		t.Errorf("expected the gap spent on the old fuel only, got %v", got)
	}
	if late.Progress() != 0 {
		t.Errorf("expected the late fuel untouched, progress=%v", late.Progress())
	}
}

func TestFurnaceTotalNeverIncreasesWithoutNewFuel(t *testing.T) {
	c := testClock()
	f, _ := NewFurnaceVariable(c, 0, 0, 100)
	f.AddFuel(30, 12, "stew")
	f.AddFuel(15, 3, "snack")

	prev := f.Value()
	for i := 0; i < 20; i++ {
		c.Advance(1, 1)
		got := f.Value()
		if got > prev {
			t.Fatalf("fuel total increased from %v to %v at step %d", prev, got, i)
		}
		if got < 0 {
			t.Fatalf("fuel total went negative: %v", got)
		}
		prev = got
	}
	if prev != 0 {
		t.Errorf("expected everything consumed after 20 units, got %v", prev)
	}
}

func TestFurnaceClampAndBase(t *testing.T) {
	c := testClock()
	f, _ := NewFurnaceVariable(c, 10, 0, 25)
	f.AddFuel(40, 10, "overfull")

	if got := f.Value(); got != 25 {
		t.Errorf("expected clamp to max, got %v", got)
	}

	c.Advance(10, 1)
	if got := f.Value(); got != 10 {
		t.Errorf("expected base value once empty, got %v", got)
	}

	ratio, ok := f.Ratio()
	if !ok || ratio != 0.4 {
		t.Errorf("expected ratio 0.4, got %v ok=%v", ratio, ok)
	}
}
