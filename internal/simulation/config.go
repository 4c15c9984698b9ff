package simulation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Default values match the control panel defaults.
const (
	DefaultHorizonDays        = 100
	DefaultInitialInventory   = 20
	DefaultRestockProbability = 0.30
	DefaultRestockAmount      = 6
	DefaultSeed               = 533
)

// MaxHorizonDays bounds the number of simulated days in one run.
const MaxHorizonDays = 1_000_000

// ErrInvalidConfig is matched by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid simulation config")

// SimulationConfig holds the inputs of a single run. It is treated as an
// immutable value; Simulate never modifies it.
type SimulationConfig struct {
	HorizonDays        int
	InitialInventory   int
	RestockProbability float64
	RestockAmount      int
	Demand             DemandDistribution
	Seed               int64
}

// DefaultConfig returns the configuration the control panel starts with.
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		HorizonDays:        DefaultHorizonDays,
		InitialInventory:   DefaultInitialInventory,
		RestockProbability: DefaultRestockProbability,
		RestockAmount:      DefaultRestockAmount,
		Demand:             DefaultDemand(),
		Seed:               DefaultSeed,
	}
}

// FieldError describes one rejected configuration field.
type FieldError struct {
	Field  string
	Reason string
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Reason
}

// InvalidConfigError lists every field that failed validation.
type InvalidConfigError struct {
	Fields []FieldError
}

func (e *InvalidConfigError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidConfig, strings.Join(parts, "; "))
}

// Is reports ErrInvalidConfig so callers can use errors.Is.
func (e *InvalidConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Validate checks every field and returns an *InvalidConfigError naming all
// failures, or nil.
func (c SimulationConfig) Validate() error {
	var fields []FieldError
	add := func(field, format string, args ...any) {
		fields = append(fields, FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	if c.HorizonDays <= 0 {
		add("horizon_days", "horizon_days=%d must be > 0", c.HorizonDays)
	} else if c.HorizonDays > MaxHorizonDays {
		add("horizon_days", "horizon_days=%d exceeds %d", c.HorizonDays, MaxHorizonDays)
	}
	if c.InitialInventory < 0 {
		add("initial_inventory", "initial_inventory=%d must be >= 0", c.InitialInventory)
	}
	if math.IsNaN(c.RestockProbability) || c.RestockProbability < 0 || c.RestockProbability > 1 {
		add("restock_probability", "restock_probability=%g outside [0,1]", c.RestockProbability)
	}
	if c.RestockAmount < 0 {
		add("restock_amount", "restock_amount=%d must be >= 0", c.RestockAmount)
	} else if c.restockOverflows() {
		add("restock_amount", "restock_amount=%d over %d days overflows inventory", c.RestockAmount, c.HorizonDays)
	}
	if c.Demand == nil {
		add("demand_distribution", "demand distribution is required")
	} else if err := c.Demand.validate(); err != nil {
		add("demand_distribution", "%s", err.Error())
	}

	if len(fields) == 0 {
		return nil
	}
	return &InvalidConfigError{Fields: fields}
}

// restockOverflows reports whether InitialInventory plus a restock on every
// night of the horizon would exceed math.MaxInt.
func (c SimulationConfig) restockOverflows() bool {
	if c.RestockAmount <= 0 || c.HorizonDays <= 0 || c.HorizonDays > MaxHorizonDays || c.InitialInventory < 0 {
		return false
	}
	return c.RestockAmount > (math.MaxInt-c.InitialInventory)/c.HorizonDays
}

// Key returns a canonical string for the configuration. Two configs with the
// same key produce identical results.
func (c SimulationConfig) Key() string {
	demand := "<nil>"
	if c.Demand != nil {
		demand = c.Demand.ID()
	}
	return fmt.Sprintf("days=%d|initial=%d|prob=%s|amount=%d|demand=%s|seed=%d",
		c.HorizonDays,
		c.InitialInventory,
		formatProbability(c.RestockProbability),
		c.RestockAmount,
		demand,
		c.Seed,
	)
}

func formatProbability(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}
