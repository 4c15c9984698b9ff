package simulation

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// Distribution identifiers accepted by ParseDistribution.
const (
	DistributionUniform0to8 = "discreteUniform0to8"
	DistributionUniform3to5 = "discreteUniform3to5"
	DistributionPoisson     = "poisson"
	DistributionConstant    = "constant"
)

// DefaultPoissonLambda matches the mean of the default 0..8 uniform demand.
const DefaultPoissonLambda = 4.0

// maxPoissonLambda bounds the product-of-uniforms sampler; exp(-lambda)
// underflows well before float64 runs out of range.
const maxPoissonLambda = 500.0

var ErrUnknownDistribution = errors.New("unknown demand distribution")

// DemandDistribution draws one day's demand. The set of implementations is
// closed to this package.
type DemandDistribution interface {
	// ID is a stable identifier including parameters.
	ID() string
	sample(rng *rand.Rand) int
	validate() error
}

// DiscreteUniform draws integers uniformly from [Lo, Hi].
type DiscreteUniform struct {
	Lo int
	Hi int
}

func (d DiscreteUniform) ID() string {
	return fmt.Sprintf("discreteUniform%dto%d", d.Lo, d.Hi)
}

func (d DiscreteUniform) sample(rng *rand.Rand) int {
	return d.Lo + rng.Intn(d.Hi-d.Lo+1)
}

func (d DiscreteUniform) validate() error {
	if d.Lo < 0 || d.Hi < d.Lo {
		return fmt.Errorf("uniform bounds [%d,%d] must satisfy 0 <= lo <= hi", d.Lo, d.Hi)
	}
	return nil
}

// Poisson draws from a Poisson distribution with mean Lambda.
type Poisson struct {
	Lambda float64
}

func (p Poisson) ID() string {
	return "poisson:" + strconv.FormatFloat(p.Lambda, 'g', -1, 64)
}

// sample uses Knuth's multiplication method.
func (p Poisson) sample(rng *rand.Rand) int {
	limit := math.Exp(-p.Lambda)
	k := 0
	prod := rng.Float64()
	for prod > limit {
		k++
		prod *= rng.Float64()
	}
	return k
}

func (p Poisson) validate() error {
	if math.IsNaN(p.Lambda) || p.Lambda <= 0 || p.Lambda > maxPoissonLambda {
		return fmt.Errorf("poisson lambda=%g outside (0,%g]", p.Lambda, maxPoissonLambda)
	}
	return nil
}

// Constant demands the same quantity every day.
type Constant struct {
	Value int
}

func (c Constant) ID() string {
	return DistributionConstant + ":" + strconv.Itoa(c.Value)
}

func (c Constant) sample(*rand.Rand) int {
	return c.Value
}

func (c Constant) validate() error {
	if c.Value < 0 {
		return fmt.Errorf("constant demand=%d must be >= 0", c.Value)
	}
	return nil
}

// DefaultDemand is the distribution used when none is selected.
func DefaultDemand() DemandDistribution {
	return DiscreteUniform{Lo: 0, Hi: 8}
}

// KnownDistributions lists the identifiers offered to clients.
func KnownDistributions() []string {
	return []string{
		DistributionUniform0to8,
		DistributionUniform3to5,
		DistributionPoisson,
		DistributionConstant + ":<n>",
	}
}

// ParseDistribution maps an identifier to its distribution. An empty
// identifier selects the default.
func ParseDistribution(id string) (DemandDistribution, error) {
	raw := strings.TrimSpace(id)
	switch strings.ToLower(raw) {
	case "", strings.ToLower(DistributionUniform0to8), "uniform0to8":
		return DiscreteUniform{Lo: 0, Hi: 8}, nil
	case strings.ToLower(DistributionUniform3to5), "uniform3to5":
		return DiscreteUniform{Lo: 3, Hi: 5}, nil
	case DistributionPoisson:
		return Poisson{Lambda: DefaultPoissonLambda}, nil
	}

	name, param, ok := strings.Cut(raw, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDistribution, id)
	}

	switch strings.ToLower(name) {
	case DistributionConstant:
		v, err := strconv.Atoi(param)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrUnknownDistribution, id, err)
		}
		return Constant{Value: v}, nil
	case DistributionPoisson:
		lambda, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrUnknownDistribution, id, err)
		}
		return Poisson{Lambda: lambda}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDistribution, id)
}
