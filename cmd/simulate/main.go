// cmd/simulate/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/invsim/internal/cache"
	"github.com/andresuchdata/invsim/internal/config"
	"github.com/andresuchdata/invsim/internal/service"
	"github.com/andresuchdata/invsim/internal/simulation"
	"github.com/andresuchdata/invsim/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func simulationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "days",
			Usage:   "Number of simulated days",
			Value:   simulation.DefaultHorizonDays,
			EnvVars: []string{"SIM_HORIZON_DAYS"},
		},
		&cli.IntFlag{
			Name:    "initial-inventory",
			Usage:   "Stock on hand at the start of day 1",
			Value:   simulation.DefaultInitialInventory,
			EnvVars: []string{"SIM_INITIAL_INVENTORY"},
		},
		&cli.Float64Flag{
			Name:    "restock-prob",
			Usage:   "Probability of an overnight restock",
			Value:   simulation.DefaultRestockProbability,
			EnvVars: []string{"SIM_RESTOCK_PROBABILITY"},
		},
		&cli.IntFlag{
			Name:    "restock-amount",
			Usage:   "Units added by a restock",
			Value:   simulation.DefaultRestockAmount,
			EnvVars: []string{"SIM_RESTOCK_AMOUNT"},
		},
		&cli.Int64Flag{
			Name:    "seed",
			Usage:   "Random number seed",
			Value:   simulation.DefaultSeed,
			EnvVars: []string{"SIM_SEED"},
		},
		&cli.StringFlag{
			Name:    "distribution",
			Usage:   "Demand distribution (discreteUniform0to8, discreteUniform3to5, poisson, poisson:<lambda>, constant:<n>)",
			Value:   simulation.DistributionUniform0to8,
			EnvVars: []string{"SIM_DISTRIBUTION"},
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format: table, csv or json",
			Value: formatTable,
		},
	}
}

// configFromFlags builds a simulation config from the shared flags.
func configFromFlags(c *cli.Context) (simulation.SimulationConfig, error) {
	demand, err := simulation.ParseDistribution(c.String("distribution"))
	if err != nil {
		return simulation.SimulationConfig{}, err
	}

	cfg := simulation.SimulationConfig{
		HorizonDays:        c.Int("days"),
		InitialInventory:   c.Int("initial-inventory"),
		RestockProbability: c.Float64("restock-prob"),
		RestockAmount:      c.Int("restock-amount"),
		Demand:             demand,
		Seed:               c.Int64("seed"),
	}
	return cfg, cfg.Validate()
}

func newService(cfg *config.Config) *service.SimulationService {
	opts, err := service.OptionsFromConfig(cfg.Simulation)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("invalid simulation defaults, using built-in defaults")
		opts = service.Options{
			Defaults:       simulation.DefaultConfig(),
			SweepWorkers:   cfg.Simulation.SweepWorkers,
			MaxSweepSeeds:  cfg.Simulation.MaxSweepSeeds,
			MaxHorizonDays: cfg.Simulation.MaxHorizonDays,
		}
	}
	return service.NewSimulationService(cache.NewNoopResultCache(), opts)
}

func runAction(c *cli.Context) error {
	cfg, err := configFromFlags(c)
	if err != nil {
		return err
	}

	svc := newService(config.Load())
	table, err := svc.Table(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	return writeTable(c.App.Writer, c.String("format"), table, c.Bool("summary"))
}

func sweepAction(c *cli.Context) error {
	cfg, err := configFromFlags(c)
	if err != nil {
		return err
	}

	svc := newService(config.Load())
	count := c.Int("seeds")
	if limit := svc.MaxSweepSeeds(); limit > 0 && count > limit {
		return fmt.Errorf("%w: %d > %d", service.ErrTooManySeeds, count, limit)
	}
	seeds := service.SeedRange(c.Int64("start-seed"), count)
	sweep, err := svc.Sweep(c.Context, cfg, seeds)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	return writeSweep(c.App.Writer, c.String("format"), sweep)
}

func cacheFlushAction(c *cli.Context) error {
	cacheCfg := config.Load().Cache
	cacheCfg.Enabled = true
	if url := c.String("redis-url"); url != "" {
		cacheCfg.RedisURL = url
	}

	resultCache, err := cache.NewResultCache(cacheCfg)
	if err != nil {
		return fmt.Errorf("connect result cache: %w", err)
	}
	defer resultCache.Close()

	svc := service.NewSimulationService(resultCache, service.Options{})
	if err := svc.FlushCache(c.Context); err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, "result cache flushed")
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "simulate",
		Usage: "Run the periodic-review inventory simulation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Configure(c.App.ErrWriter, "console", c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Simulate one configuration and print the day-by-day table",
				Flags: append(simulationFlags(),
					&cli.BoolFlag{
						Name:  "summary",
						Usage: "Print summary statistics after the table",
					},
				),
				Action: runAction,
			},
			{
				Name:  "sweep",
				Usage: "Simulate one configuration across consecutive seeds",
				Flags: append(simulationFlags(),
					&cli.IntFlag{
						Name:  "seeds",
						Usage: "Number of seeds to simulate",
						Value: 10,
					},
					&cli.Int64Flag{
						Name:  "start-seed",
						Usage: "First seed of the sweep",
						Value: 1,
					},
				),
				Action: sweepAction,
			},
			{
				Name:  "cache",
				Usage: "Manage the Redis result cache",
				Subcommands: []*cli.Command{
					{
						Name:  "flush",
						Usage: "Delete every cached simulation result",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "redis-url",
								Usage:   "Redis URL, overrides REDIS_URL and REDIS_HOST/REDIS_PORT",
								EnvVars: []string{"REDIS_URL"},
							},
						},
						Action: cacheFlushAction,
					},
				},
			},
		},
	}
}

func main() {
	// .env values must be visible before flags read their EnvVars
	_ = godotenv.Load()

	app := newApp()
	if err := app.RunContext(context.Background(), os.Args); err != nil {
		logger.Log.Error().Err(err).Msg("simulate failed")
		os.Exit(1)
	}
}
