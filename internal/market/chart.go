// Package market simulates the coin price chart shown on the landing page.
// Prices are a bounded random walk; nothing here is backed by real market
// data.
package market

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

var ErrUnknownPeriod = errors.New("unknown chart period")

const (
	StartPrice = 45.67
	MinPrice   = 35.0
	MaxPrice   = 55.0
	// TickRange is the widest move a single live update makes.
	TickRange = 0.8
)

// Period describes one selectable chart range.
type Period struct {
	Name       string
	Points     int
	Interval   time.Duration
	Volatility float64
}

var periods = map[string]Period{
	"1H": {Name: "1H", Points: 60, Interval: time.Minute, Volatility: 0.5},
	"1D": {Name: "1D", Points: 24, Interval: time.Hour, Volatility: 1},
	"1W": {Name: "1W", Points: 7, Interval: 24 * time.Hour, Volatility: 2},
	"1M": {Name: "1M", Points: 30, Interval: 24 * time.Hour, Volatility: 3},
	"1Y": {Name: "1Y", Points: 12, Interval: 30 * 24 * time.Hour, Volatility: 5},
}

// DefaultPeriod is used when the caller does not pick one.
const DefaultPeriod = "1D"

// LookupPeriod resolves a period name case-insensitively.  Empty means
// DefaultPeriod.
func LookupPeriod(name string) (Period, error) {
	if name == "" {
		name = DefaultPeriod
	}
	p, ok := periods[strings.ToUpper(name)]
	if !ok {
		return Period{}, ErrUnknownPeriod
	}
	return p, nil
}

type Point struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Chart is a generated price series, oldest point first.  ChangePercent is
// the absolute move from the first to the last point; Positive carries the
// sign.
type Chart struct {
	Period        string  `json:"period"`
	Points        []Point `json:"points"`
	Current       float64 `json:"current"`
	ChangePercent float64 `json:"changePercent"`
	Positive      bool    `json:"positive"`
}

func clamp(v float64) float64 {
	return math.Max(MinPrice, math.Min(MaxPrice, v))
}

func (c *Chart) refresh() {
	if len(c.Points) == 0 {
		return
	}
	first, last := c.Points[0].Price, c.Points[len(c.Points)-1].Price
	c.Current = last
	change := (last - first) / first * 100
	c.ChangePercent = math.Abs(change)
	c.Positive = change >= 0
}

// Generator produces charts.  It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	Now func() time.Time

	liveMu sync.Mutex
	live   map[string]Chart
}

// NewGenerator seeds the walk; equal seeds give equal charts.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// step returns a uniform move in [-width/2, width/2).
func (g *Generator) step(width float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return (g.rnd.Float64() - 0.5) * width
}

// Generate builds a fresh chart for p ending at the current time.
func (g *Generator) Generate(p Period) Chart {
	now := g.now().UTC()
	c := Chart{Period: p.Name, Points: make([]Point, 0, p.Points)}
	price := StartPrice
	for i := p.Points - 1; i >= 0; i-- {
		price = clamp(price + g.step(p.Volatility))
		c.Points = append(c.Points, Point{Price: price, Timestamp: now.Add(-time.Duration(i) * p.Interval)})
	}
	c.refresh()
	return c
}

// Tick moves the last point of c as a live update would and restamps it.
func (g *Generator) Tick(c Chart) Chart {
	if len(c.Points) == 0 {
		return c
	}
	out := c
	out.Points = append([]Point(nil), c.Points...)
	last := &out.Points[len(out.Points)-1]
	last.Price = clamp(last.Price + g.step(TickRange))
	last.Timestamp = g.now().UTC()
	out.refresh()
	return out
}

// Live returns the running chart of p after one more tick.  The first call
// for a period starts it from Generate.
func (g *Generator) Live(p Period) Chart {
	g.liveMu.Lock()
	defer g.liveMu.Unlock()
	c, ok := g.live[p.Name]
	if ok {
		c = g.Tick(c)
	} else {
		c = g.Generate(p)
	}
	if g.live == nil {
		g.live = make(map[string]Chart)
	}
	g.live[p.Name] = c
	out := c
	out.Points = append([]Point(nil), c.Points...)
	return out
}
