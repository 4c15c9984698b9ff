package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andresuchdata/invsim/internal/cache"
	"github.com/andresuchdata/invsim/internal/domain"
	"github.com/andresuchdata/invsim/internal/service"
	"github.com/andresuchdata/invsim/internal/simulation"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"simulate"}, args...))
	return out.String(), err
}

func TestRun_CSV(t *testing.T) {
	out, err := runApp(t, "run",
		"--days", "3",
		"--initial-inventory", "3",
		"--restock-prob", "0",
		"--distribution", "constant:5",
		"--format", "csv",
	)
	require.NoError(t, err)

	want := strings.Join([]string{
		"day,begin_of_day,end_of_day,missed,demand,restock",
		"1,3,0,2,5,0",
		"2,0,0,5,5,0",
		"3,0,0,5,5,0",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestRun_JSONMatchesSimulate(t *testing.T) {
	out, err := runApp(t, "run", "--format", "json")
	require.NoError(t, err)

	var table domain.SimulationTable
	require.NoError(t, json.Unmarshal([]byte(out), &table))

	want, err := simulation.Simulate(simulation.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, want.Records, table.Records)
}

func TestRun_TableWithSummary(t *testing.T) {
	out, err := runApp(t, "run", "--days", "30", "--summary")
	require.NoError(t, err)

	assert.Contains(t, out, "BegOfDay")
	assert.Contains(t, out, "Fill rate")
	assert.Contains(t, out, "Stockout days")
}

func TestRun_InvalidConfig(t *testing.T) {
	_, err := runApp(t, "run", "--days", "0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, simulation.ErrInvalidConfig))

	_, err = runApp(t, "run", "--distribution", "lognormal")
	assert.True(t, errors.Is(err, simulation.ErrUnknownDistribution))

	_, err = runApp(t, "run", "--format", "xml")
	assert.Error(t, err)
}

func TestRun_HorizonLimits(t *testing.T) {
	_, err := runApp(t, "run", "--days", "9000000000000000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, simulation.ErrInvalidConfig))

	// above the SIM_MAX_HORIZON_DAYS default of 3650
	_, err = runApp(t, "run", "--days", "4000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, simulation.ErrInvalidConfig))

	_, err = runApp(t, "run", "--restock-amount", "9000000000000000000")
	assert.True(t, errors.Is(err, simulation.ErrInvalidConfig))
}

func TestSweep_TooManySeeds(t *testing.T) {
	_, err := runApp(t, "sweep", "--seeds", "9000000000000000000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrTooManySeeds))
}

func TestCacheFlush(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	cfg := simulation.DefaultConfig()
	result, err := simulation.Simulate(cfg)
	require.NoError(t, err)
	require.NoError(t, cache.NewRedisResultCache(client, time.Minute).Set(ctx, cfg, result))
	require.NoError(t, mr.Set("unrelated", "keep"))

	out, err := runApp(t, "cache", "flush", "--redis-url", "redis://"+mr.Addr())
	require.NoError(t, err)
	assert.Contains(t, out, "result cache flushed")
	assert.False(t, mr.Exists(cache.BuildResultKey(cfg)))
	assert.True(t, mr.Exists("unrelated"))
}

func TestCacheFlush_Unreachable(t *testing.T) {
	_, err := runApp(t, "cache", "flush", "--redis-url", "redis://127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect result cache")
}

func TestSweep_CSV(t *testing.T) {
	out, err := runApp(t, "sweep", "--seeds", "4", "--start-seed", "10", "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[1], "10,"))
	assert.True(t, strings.HasPrefix(lines[4], "13,"))
}
