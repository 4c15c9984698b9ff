package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/andresuchdata/invsim/internal/cache"
	"github.com/andresuchdata/invsim/internal/config"
	"github.com/andresuchdata/invsim/internal/domain"
	"github.com/andresuchdata/invsim/internal/simulation"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoSeeds      = errors.New("sweep requires at least one seed")
	ErrTooManySeeds = errors.New("too many sweep seeds")
)

// Options tunes a SimulationService.
type Options struct {
	Defaults       simulation.SimulationConfig
	HistogramBins  int
	SweepWorkers   int
	MaxSweepSeeds  int
	// MaxHorizonDays caps HorizonDays below simulation.MaxHorizonDays.
	MaxHorizonDays int
}

// OptionsFromConfig resolves the configured defaults into Options.
func OptionsFromConfig(cfg config.SimulationConfig) (Options, error) {
	demand, err := simulation.ParseDistribution(cfg.Distribution)
	if err != nil {
		return Options{}, fmt.Errorf("default distribution: %w", err)
	}

	defaults := simulation.SimulationConfig{
		HorizonDays:        cfg.HorizonDays,
		InitialInventory:   cfg.InitialInventory,
		RestockProbability: cfg.RestockProbability,
		RestockAmount:      cfg.RestockAmount,
		Demand:             demand,
		Seed:               cfg.Seed,
	}
	opts := Options{
		Defaults:       defaults,
		HistogramBins:  cfg.HistogramBins,
		SweepWorkers:   cfg.SweepWorkers,
		MaxSweepSeeds:  cfg.MaxSweepSeeds,
		MaxHorizonDays: cfg.MaxHorizonDays,
	}
	if err := opts.validate(defaults); err != nil {
		return Options{}, fmt.Errorf("default simulation config: %w", err)
	}

	return opts, nil
}

// validate runs the config checks plus the configured horizon limit.
func (o Options) validate(cfg simulation.SimulationConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if o.MaxHorizonDays > 0 && cfg.HorizonDays > o.MaxHorizonDays {
		return &simulation.InvalidConfigError{Fields: []simulation.FieldError{{
			Field:  "horizon_days",
			Reason: fmt.Sprintf("horizon_days=%d exceeds the configured limit of %d", cfg.HorizonDays, o.MaxHorizonDays),
		}}}
	}
	return nil
}

type SimulationService struct {
	cache cache.ResultCache
	opts  Options
}

func NewSimulationService(cacheImpl cache.ResultCache, opts Options) *SimulationService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopResultCache()
	}
	if opts.Defaults.Demand == nil {
		opts.Defaults = simulation.DefaultConfig()
	}
	if opts.HistogramBins <= 0 {
		opts.HistogramBins = simulation.DefaultHistogramBins
	}
	if opts.SweepWorkers <= 0 {
		opts.SweepWorkers = 1
	}
	if opts.MaxHorizonDays <= 0 || opts.MaxHorizonDays > simulation.MaxHorizonDays {
		opts.MaxHorizonDays = simulation.MaxHorizonDays
	}
	return &SimulationService{cache: cacheImpl, opts: opts}
}

// Defaults returns the configuration used for omitted parameters.
func (s *SimulationService) Defaults() simulation.SimulationConfig {
	return s.opts.Defaults
}

// MaxSweepSeeds returns the largest accepted sweep, or 0 when unbounded.
func (s *SimulationService) MaxSweepSeeds() int {
	return s.opts.MaxSweepSeeds
}

// DescribeDefaults returns the control panel description.
func (s *SimulationService) DescribeDefaults() domain.SimulationDefaults {
	params := domain.NewSimulationParams(s.opts.Defaults)
	return domain.SimulationDefaults{
		Params:         params,
		Controls:       domain.Controls(params),
		Variables:      domain.VariableOptions(),
		Distributions:  simulation.KnownDistributions(),
		HistogramBins:  s.opts.HistogramBins,
		MaxHorizonDays: s.opts.MaxHorizonDays,
		MaxSweepSeeds:  s.opts.MaxSweepSeeds,
	}
}

// Run returns the result for cfg, consulting the cache first. Cache failures
// are logged and never fail the call.
func (s *SimulationService) Run(ctx context.Context, cfg simulation.SimulationConfig) (*simulation.Result, error) {
	if err := s.opts.validate(cfg); err != nil {
		return nil, err
	}

	if result, ok, err := s.cache.Get(ctx, cfg); err == nil && ok {
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("simulation: cache get failed")
	}

	result, err := simulation.Simulate(cfg)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cfg, result); err != nil {
		log.Warn().Err(err).Msg("simulation: cache set failed")
	}

	return result, nil
}

// Table returns the full output of one run with its summary.
func (s *SimulationService) Table(ctx context.Context, cfg simulation.SimulationConfig) (*domain.SimulationTable, error) {
	result, err := s.Run(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &domain.SimulationTable{
		Params:         domain.NewSimulationParams(cfg),
		Records:        result.Records,
		FinalInventory: result.FinalInventory,
		Summary:        simulation.Summarize(result),
	}, nil
}

// Series returns the selected column for the line chart.
func (s *SimulationService) Series(ctx context.Context, cfg simulation.SimulationConfig, v simulation.Variable) (*domain.SeriesData, error) {
	result, err := s.Run(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return buildSeries(result, v)
}

// Histogram bins the selected column. Non-positive bins uses the configured
// bin count.
func (s *SimulationService) Histogram(ctx context.Context, cfg simulation.SimulationConfig, v simulation.Variable, bins int) (*domain.HistogramData, error) {
	result, err := s.Run(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s.buildHistogram(result, v, bins)
}

// Dashboard returns series, histogram and summary for one run.
func (s *SimulationService) Dashboard(ctx context.Context, cfg simulation.SimulationConfig, v simulation.Variable, bins int) (*domain.SimulationDashboard, error) {
	result, err := s.Run(ctx, cfg)
	if err != nil {
		return nil, err
	}

	series, err := buildSeries(result, v)
	if err != nil {
		return nil, err
	}

	histogram, err := s.buildHistogram(result, v, bins)
	if err != nil {
		return nil, err
	}

	return &domain.SimulationDashboard{
		Params:    domain.NewSimulationParams(cfg),
		Summary:   simulation.Summarize(result),
		Series:    *series,
		Histogram: *histogram,
	}, nil
}

// Sweep simulates cfg once per seed. Runs execute concurrently, bounded by
// the configured worker count; each run owns its own generator, so the
// output matches running the seeds one by one.
func (s *SimulationService) Sweep(ctx context.Context, cfg simulation.SimulationConfig, seeds []int64) (*domain.SweepResult, error) {
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}
	if s.opts.MaxSweepSeeds > 0 && len(seeds) > s.opts.MaxSweepSeeds {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManySeeds, len(seeds), s.opts.MaxSweepSeeds)
	}
	if err := s.opts.validate(cfg); err != nil {
		return nil, err
	}

	runs := make([]domain.SweepRun, len(seeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.SweepWorkers)
	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			runCfg := cfg
			runCfg.Seed = seed
			result, err := simulation.Simulate(runCfg)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			runs[i] = domain.SweepRun{Seed: seed, Summary: simulation.Summarize(result)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug().Int("seeds", len(seeds)).Int("workers", s.opts.SweepWorkers).Msg("simulation: sweep finished")

	return &domain.SweepResult{
		Params:       domain.NewSimulationParams(cfg),
		Runs:         runs,
		FillRate:     sweepStats(runs, func(r domain.SweepRun) float64 { return r.Summary.FillRate }),
		TotalMissed:  sweepStats(runs, func(r domain.SweepRun) float64 { return float64(r.Summary.TotalMissed) }),
		StockoutDays: sweepStats(runs, func(r domain.SweepRun) float64 { return float64(r.Summary.StockoutDays) }),
	}, nil
}

// FlushCache drops every cached simulation result.
func (s *SimulationService) FlushCache(ctx context.Context) error {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("flush result cache: %w", err)
	}
	log.Info().Msg("simulation: result cache flushed")
	return nil
}

// SeedRange returns count consecutive seeds starting at start.
func SeedRange(start int64, count int) []int64 {
	if count <= 0 {
		return nil
	}
	seeds := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		seeds = append(seeds, start+int64(i))
	}
	return seeds
}

func buildSeries(result *simulation.Result, v simulation.Variable) (*domain.SeriesData, error) {
	values, err := result.Series(v)
	if err != nil {
		return nil, err
	}

	days := make([]int, 0, len(result.Records))
	for _, rec := range result.Records {
		days = append(days, rec.Day)
	}

	return &domain.SeriesData{
		Variable: v,
		Label:    v.Label(),
		Days:     days,
		Values:   values,
	}, nil
}

func (s *SimulationService) buildHistogram(result *simulation.Result, v simulation.Variable, bins int) (*domain.HistogramData, error) {
	values, err := result.Series(v)
	if err != nil {
		return nil, err
	}
	if bins <= 0 {
		bins = s.opts.HistogramBins
	}

	return &domain.HistogramData{
		Variable:  v,
		Label:     v.Label(),
		Histogram: simulation.BuildHistogram(values, bins),
	}, nil
}

func sweepStats(runs []domain.SweepRun, metric func(domain.SweepRun) float64) domain.SweepStats {
	if len(runs) == 0 {
		return domain.SweepStats{}
	}

	stats := domain.SweepStats{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, r := range runs {
		v := metric(r)
		sum += v
		stats.Min = math.Min(stats.Min, v)
		stats.Max = math.Max(stats.Max, v)
	}
	stats.Mean = sum / float64(len(runs))
	return stats
}
