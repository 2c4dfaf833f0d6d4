package market

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestGenerateShape(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	g := NewGenerator(7)
	g.Now = func() time.Time { return now }

	for name, want := range map[string]int{"1H": 60, "1d": 24, "1W": 7, "1M": 30, "1Y": 12, "": 24} {
		p, err := LookupPeriod(name)
		if err != nil {
			t.Fatalf("LookupPeriod(%q): %v", name, err)
		}
		c := g.Generate(p)
		if len(c.Points) != want {
			t.Fatalf("%q: %d points, want %d", name, len(c.Points), want)
		}
		if !c.Points[len(c.Points)-1].Timestamp.Equal(now) {
			t.Fatalf("%q: last point must be stamped now", name)
		}
		if got := c.Points[1].Timestamp.Sub(c.Points[0].Timestamp); got != p.Interval {
			t.Fatalf("%q: interval %v, want %v", name, got, p.Interval)
		}
		for _, pt := range c.Points {
			if pt.Price < MinPrice || pt.Price > MaxPrice {
				t.Fatalf("%q: price %f out of range", name, pt.Price)
			}
		}
		first := c.Points[0].Price
		change := (c.Current - first) / first * 100
		if math.Abs(math.Abs(change)-c.ChangePercent) > 1e-9 || c.Positive != (change >= 0) {
			t.Fatalf("%q: change %f positive %v, computed %f", name, c.ChangePercent, c.Positive, change)
		}
	}

	if _, err := LookupPeriod("5Y"); !errors.Is(err, ErrUnknownPeriod) {
		t.Fatalf("want ErrUnknownPeriod, got %v", err)
	}
}

func TestGenerateDeterministicPerSeed(t *testing.T) {
	p, _ := LookupPeriod("1W")
	fixed := func() time.Time { return time.Unix(0, 0) }
	a, b := NewGenerator(42), NewGenerator(42)
	a.Now, b.Now = fixed, fixed
	ca, cb := a.Generate(p), b.Generate(p)
	for i := range ca.Points {
		if ca.Points[i] != cb.Points[i] {
			t.Fatalf("point %d differs: %v vs %v", i, ca.Points[i], cb.Points[i])
		}
	}
}

func TestTick(t *testing.T) {
	g := NewGenerator(1)
	p, _ := LookupPeriod("1H")
	c := g.Generate(p)
	orig := c
	origLast := c.Points[len(c.Points)-1]
	for i := 0; i < 100; i++ {
		next := g.Tick(c)
		last := next.Points[len(next.Points)-1].Price
		if math.Abs(last-c.Current) > TickRange/2+1e-9 {
			t.Fatalf("tick moved %f", last-c.Current)
		}
		if last < MinPrice || last > MaxPrice {
			t.Fatalf("tick escaped range: %f", last)
		}
		if next.Current != last {
			t.Fatalf("current not refreshed")
		}
		c = next
	}
	if len(c.Points) != 60 {
		t.Fatalf("tick must not grow the series")
	}
	if orig.Points[len(orig.Points)-1] != origLast {
		t.Fatalf("tick mutated its input")
	}
	if empty := g.Tick(Chart{}); len(empty.Points) != 0 {
		t.Fatalf("tick on empty chart")
	}
}

func TestLiveContinuesSeries(t *testing.T) {
	g := NewGenerator(7)
	p, _ := LookupPeriod("1D")
	first := g.Live(p)
	second := g.Live(p)
	if len(first.Points) != len(second.Points) {
		t.Fatalf("live series changed length: %d -> %d", len(first.Points), len(second.Points))
	}
	n := len(first.Points)
	for i := 0; i < n-1; i++ {
		if first.Points[i] != second.Points[i] {
			t.Fatalf("point %d rewritten by live tick", i)
		}
	}
	if math.Abs(second.Current-first.Current) > TickRange/2+1e-9 {
		t.Fatalf("live tick moved %f", second.Current-first.Current)
	}

	other, _ := LookupPeriod("1W")
	if w := g.Live(other); w.Period != "1W" || len(w.Points) != other.Points {
		t.Fatalf("live chart for second period: %+v", w)
	}
}
