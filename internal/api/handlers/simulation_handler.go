package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/invsim/internal/service"
	"github.com/andresuchdata/invsim/internal/simulation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// errBadParam marks query parameters that could not be parsed.
var errBadParam = errors.New("invalid query parameter")

// statusClientClosedRequest is reported when the client goes away mid-request.
const statusClientClosedRequest = 499

type SimulationHandler struct {
	service *service.SimulationService
}

func NewSimulationHandler(service *service.SimulationService) *SimulationHandler {
	return &SimulationHandler{service: service}
}

// parseConfig overlays the query string on the service defaults.
func (h *SimulationHandler) parseConfig(c *gin.Context) (simulation.SimulationConfig, error) {
	cfg := h.service.Defaults()

	parseInt := func(param string, dst *int) error {
		value := strings.TrimSpace(c.Query(param))
		if value == "" {
			return nil
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", errBadParam, param, value)
		}
		*dst = v
		return nil
	}

	if err := parseInt("days", &cfg.HorizonDays); err != nil {
		return cfg, err
	}
	if err := parseInt("initial_inventory", &cfg.InitialInventory); err != nil {
		return cfg, err
	}
	if err := parseInt("restock_amount", &cfg.RestockAmount); err != nil {
		return cfg, err
	}

	if value := strings.TrimSpace(c.Query("restock_prob")); value != "" {
		p, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return cfg, fmt.Errorf("%w: restock_prob=%q", errBadParam, value)
		}
		cfg.RestockProbability = p
	}

	if value := strings.TrimSpace(c.Query("seed")); value != "" {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("%w: seed=%q", errBadParam, value)
		}
		cfg.Seed = seed
	}

	if value := strings.TrimSpace(c.Query("distribution")); value != "" {
		demand, err := simulation.ParseDistribution(value)
		if err != nil {
			return cfg, err
		}
		cfg.Demand = demand
	}

	return cfg, nil
}

func (h *SimulationHandler) parseBins(c *gin.Context) (int, error) {
	value := strings.TrimSpace(c.Query("bins"))
	if value == "" {
		return 0, nil
	}
	bins, err := strconv.Atoi(value)
	if err != nil || bins <= 0 {
		return 0, fmt.Errorf("%w: bins=%q", errBadParam, value)
	}
	return bins, nil
}

func (h *SimulationHandler) parseSeeds(c *gin.Context, base int64) ([]int64, error) {
	if raw := strings.TrimSpace(c.Query("seeds")); raw != "" {
		parts := strings.Split(raw, ",")
		seeds := make([]int64, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			seed, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: seeds=%q", errBadParam, raw)
			}
			seeds = append(seeds, seed)
		}
		return seeds, nil
	}

	count, err := strconv.Atoi(c.DefaultQuery("seed_count", "10"))
	if err != nil || count <= 0 {
		return nil, fmt.Errorf("%w: seed_count=%q", errBadParam, c.Query("seed_count"))
	}
	if limit := h.service.MaxSweepSeeds(); limit > 0 && count > limit {
		return nil, fmt.Errorf("%w: %d > %d", service.ErrTooManySeeds, count, limit)
	}
	return service.SeedRange(base, count), nil
}

// respondError maps input errors to 400, client cancellation to 499 and
// everything else to 500.
func respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, context.Canceled):
		status = statusClientClosedRequest
		log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("request cancelled by client")
	case errors.Is(err, errBadParam),
		errors.Is(err, simulation.ErrInvalidConfig),
		errors.Is(err, simulation.ErrUnknownDistribution),
		errors.Is(err, simulation.ErrUnknownVariable),
		errors.Is(err, service.ErrNoSeeds),
		errors.Is(err, service.ErrTooManySeeds):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

func (h *SimulationHandler) GetDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.DescribeDefaults())
}

func (h *SimulationHandler) GetSimulation(c *gin.Context) {
	cfg, err := h.parseConfig(c)
	if err != nil {
		respondError(c, "invalid simulation parameters", err)
		return
	}

	table, err := h.service.Table(c.Request.Context(), cfg)
	if err != nil {
		respondError(c, "failed to run simulation", err)
		return
	}

	c.JSON(http.StatusOK, table)
}

func (h *SimulationHandler) GetSeries(c *gin.Context) {
	cfg, err := h.parseConfig(c)
	if err != nil {
		respondError(c, "invalid simulation parameters", err)
		return
	}
	variable, err := simulation.ParseVariable(c.Query("variable"))
	if err != nil {
		respondError(c, "invalid variable", err)
		return
	}

	series, err := h.service.Series(c.Request.Context(), cfg, variable)
	if err != nil {
		respondError(c, "failed to build series", err)
		return
	}

	c.JSON(http.StatusOK, series)
}

func (h *SimulationHandler) GetHistogram(c *gin.Context) {
	cfg, err := h.parseConfig(c)
	if err != nil {
		respondError(c, "invalid simulation parameters", err)
		return
	}
	variable, err := simulation.ParseVariable(c.Query("variable"))
	if err != nil {
		respondError(c, "invalid variable", err)
		return
	}
	bins, err := h.parseBins(c)
	if err != nil {
		respondError(c, "invalid bins", err)
		return
	}

	histogram, err := h.service.Histogram(c.Request.Context(), cfg, variable, bins)
	if err != nil {
		respondError(c, "failed to build histogram", err)
		return
	}

	c.JSON(http.StatusOK, histogram)
}

func (h *SimulationHandler) GetDashboard(c *gin.Context) {
	cfg, err := h.parseConfig(c)
	if err != nil {
		respondError(c, "invalid simulation parameters", err)
		return
	}
	variable, err := simulation.ParseVariable(c.Query("variable"))
	if err != nil {
		respondError(c, "invalid variable", err)
		return
	}
	bins, err := h.parseBins(c)
	if err != nil {
		respondError(c, "invalid bins", err)
		return
	}

	dashboard, err := h.service.Dashboard(c.Request.Context(), cfg, variable, bins)
	if err != nil {
		respondError(c, "failed to build dashboard", err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *SimulationHandler) GetSweep(c *gin.Context) {
	cfg, err := h.parseConfig(c)
	if err != nil {
		respondError(c, "invalid simulation parameters", err)
		return
	}
	seeds, err := h.parseSeeds(c, cfg.Seed)
	if err != nil {
		respondError(c, "invalid seeds", err)
		return
	}

	sweep, err := h.service.Sweep(c.Request.Context(), cfg, seeds)
	if err != nil {
		respondError(c, "failed to run sweep", err)
		return
	}

	c.JSON(http.StatusOK, sweep)
}
