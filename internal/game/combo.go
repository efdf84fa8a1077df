// internal/game/combo.go
//
// Combo multiplier state machine. Clears grow the multiplier; idle time past
// the decay window shrinks it one step at a time. Driven purely by the
// elapsed-time deltas the tick driver feeds in, never by the wall clock.

package game

// ComboParams configures multiplier growth and decay.
type ComboParams struct {
	DecayWindowMs float64
	GrowthPerStep float64
	Start         float64
	Max           float64
}

// DefaultComboParams are the tuning used by the server profile.
func DefaultComboParams() ComboParams {
	return ComboParams{
		DecayWindowMs: 4000,
		GrowthPerStep: 0.5,
		Start:         1.0,
		Max:           3.0,
	}
}

// Combo tracks multiplier state for one run.
type Combo struct {
	params     ComboParams
	step       int
	multiplier float64
	idleMs     float64
}

// NewCombo returns a combo machine at its starting multiplier.
func NewCombo(p ComboParams) *Combo {
	return &Combo{params: p, multiplier: p.Start}
}

// OnClear registers an accepted word clear: one growth step, idle reset.
func (c *Combo) OnClear() {
	c.step++
	c.multiplier = c.params.Start + c.params.GrowthPerStep*float64(c.step-1)
	if c.multiplier > c.params.Max {
		c.multiplier = c.params.Max
	}
	c.idleMs = 0
}

// Tick accumulates idle time and decays one step once the window elapses.
func (c *Combo) Tick(elapsedMs float64) {
	c.idleMs += elapsedMs
	if c.idleMs <= c.params.DecayWindowMs || c.step == 0 {
		return
	}
	c.step--
	steps := c.step - 1
	if steps < 0 {
		steps = 0
	}
	c.multiplier = c.params.Start + c.params.GrowthPerStep*float64(steps)
	if c.multiplier < c.params.Start {
		c.multiplier = c.params.Start
	}
	if c.multiplier > c.params.Max {
		c.multiplier = c.params.Max
	}
	c.idleMs = 0
}

// Step returns the current combo step.
func (c *Combo) Step() int { return c.step }

// Multiplier returns the current multiplier, always within [Start, Max].
func (c *Combo) Multiplier() float64 { return c.multiplier }

// Effective returns base * multiplier, the factor applied to word scores.
func (c *Combo) Effective(base float64) float64 { return base * c.multiplier }

// Reset returns the machine to its initial state (used by Restart).
func (c *Combo) Reset() {
	c.step = 0
	c.multiplier = c.params.Start
	c.idleMs = 0
}
