package domain

import "github.com/andresuchdata/invsim/internal/simulation"

// SimulationParams is the configuration echoed back to clients.
type SimulationParams struct {
	Days               int     `json:"days"`
	InitialInventory   int     `json:"initial_inventory"`
	RestockProbability float64 `json:"restock_prob"`
	RestockAmount      int     `json:"restock_amount"`
	Seed               int64   `json:"seed"`
	Distribution       string  `json:"distribution"`
}

// NewSimulationParams flattens a simulation config for JSON responses.
func NewSimulationParams(cfg simulation.SimulationConfig) SimulationParams {
	params := SimulationParams{
		Days:               cfg.HorizonDays,
		InitialInventory:   cfg.InitialInventory,
		RestockProbability: cfg.RestockProbability,
		RestockAmount:      cfg.RestockAmount,
		Seed:               cfg.Seed,
	}
	if cfg.Demand != nil {
		params.Distribution = cfg.Demand.ID()
	}
	return params
}

// SimulationTable is the full day-by-day output of one run.
type SimulationTable struct {
	Params         SimulationParams       `json:"params"`
	Records        []simulation.DayRecord `json:"records"`
	FinalInventory int                    `json:"final_inventory"`
	Summary        simulation.Summary     `json:"summary"`
}

// SeriesData feeds the line chart.
type SeriesData struct {
	Variable simulation.Variable `json:"variable"`
	Label    string              `json:"label"`
	Days     []int               `json:"days"`
	Values   []int               `json:"values"`
}

// HistogramData feeds the histogram of the selected variable.
type HistogramData struct {
	Variable  simulation.Variable  `json:"variable"`
	Label     string               `json:"label"`
	Histogram simulation.Histogram `json:"histogram"`
}

// SimulationDashboard aggregates everything the control panel renders.
type SimulationDashboard struct {
	Params    SimulationParams   `json:"params"`
	Summary   simulation.Summary `json:"summary"`
	Series    SeriesData         `json:"series"`
	Histogram HistogramData      `json:"histogram"`
}

// SweepRun is the outcome of one seed in a sweep.
type SweepRun struct {
	Seed    int64              `json:"seed"`
	Summary simulation.Summary `json:"summary"`
}

// SweepStats summarizes a metric across sweep runs.
type SweepStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// SweepResult collects per-seed summaries, ordered as the seeds were given.
type SweepResult struct {
	Params       SimulationParams `json:"params"`
	Runs         []SweepRun       `json:"runs"`
	FillRate     SweepStats       `json:"fill_rate"`
	TotalMissed  SweepStats       `json:"total_missed"`
	StockoutDays SweepStats       `json:"stockout_days"`
}

// ControlRange describes the bounds a UI control offers for a parameter.
type ControlRange struct {
	Param   string  `json:"param"`
	Label   string  `json:"label"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// VariableOption is one selectable chart variable.
type VariableOption struct {
	Value simulation.Variable `json:"value"`
	Label string              `json:"label"`
}

// SimulationDefaults describes the control panel: default values, slider
// ranges, and the available variables and distributions.
type SimulationDefaults struct {
	Params         SimulationParams `json:"params"`
	Controls       []ControlRange   `json:"controls"`
	Variables      []VariableOption `json:"variables"`
	Distributions  []string         `json:"distributions"`
	HistogramBins  int              `json:"histogram_bins"`
	MaxHorizonDays int              `json:"max_horizon_days"`
	MaxSweepSeeds  int              `json:"max_sweep_seeds"`
}

// Controls returns the control panel slider ranges, using
// defaults for the starting values.
func Controls(defaults SimulationParams) []ControlRange {
	return []ControlRange{
		{Param: "days", Label: "Number of days", Min: 30, Max: 365, Step: 1, Default: float64(defaults.Days)},
		{Param: "initial_inventory", Label: "Initial inventory", Min: 0, Max: 100, Step: 1, Default: float64(defaults.InitialInventory)},
		{Param: "restock_prob", Label: "Probability of overnight restock", Min: 0.01, Max: 0.99, Step: 0.01, Default: defaults.RestockProbability},
		{Param: "restock_amount", Label: "Restock amount", Min: 1, Max: 20, Step: 1, Default: float64(defaults.RestockAmount)},
	}
}

// VariableOptions lists the chart variables with their labels.
func VariableOptions() []VariableOption {
	vars := simulation.Variables()
	out := make([]VariableOption, 0, len(vars))
	for _, v := range vars {
		out = append(out, VariableOption{Value: v, Label: v.Label()})
	}
	return out
}
