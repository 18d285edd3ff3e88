package usecase

import (
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
)

// Defaults for engine tuning. All of them can be overridden through Config.
const (
	// DefaultHorizonYears bounds eager propagation to two years past the
	// current date; periods beyond it are deferred until requested.
	DefaultHorizonYears = 2

	// DefaultFullRecalcSpanMonths flags batch impacts reaching further than
	// two years into the past as requiring a full recalculation.
	DefaultFullRecalcSpanMonths = 24
)

// DefaultFullRecalcAmount flags batch impacts moving more than 100,000.00
// as requiring a full recalculation.
const DefaultFullRecalcAmount domain.Money = 100_000_00

// Config tunes the engine. Zero values fall back to the defaults above.
type Config struct {
	HorizonYears         int
	FullRecalcAmount     domain.Money
	FullRecalcSpanMonths int
	// Today supplies the current day; injected by tests for determinism.
	Today func() domain.Date
}

func (c Config) withDefaults() Config {
	if c.HorizonYears <= 0 {
		c.HorizonYears = DefaultHorizonYears
	}

	if c.FullRecalcAmount <= 0 {
		c.FullRecalcAmount = DefaultFullRecalcAmount
	}

	if c.FullRecalcSpanMonths <= 0 {
		c.FullRecalcSpanMonths = DefaultFullRecalcSpanMonths
	}

	if c.Today == nil {
		c.Today = domain.Today
	}

	return c
}

// horizon is the furthest future date eagerly maintained.
func (c Config) horizon() domain.Date {
	return c.Today().AddYears(c.HorizonYears)
}
