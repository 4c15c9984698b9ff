package simulation

// DefaultHistogramBins is the bin count used by the control panel.
const DefaultHistogramBins = 30

// Bin counts values in [Lower, Upper). The last bin of a histogram also
// includes Upper.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type Histogram struct {
	Bins  []Bin `json:"bins"`
	Total int   `json:"total"`
}

// BuildHistogram splits [min, max] of values into equal-width bins. A
// non-positive bins falls back to DefaultHistogramBins. When every value is
// equal the histogram has a single bin of width one.
func BuildHistogram(values []int, bins int) Histogram {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	if len(values) == 0 {
		return Histogram{Bins: []Bin{}}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	if lo == hi {
		return Histogram{
			Bins:  []Bin{{Lower: float64(lo), Upper: float64(lo + 1), Count: len(values)}},
			Total: len(values),
		}
	}

	width := float64(hi-lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = float64(lo) + float64(i)*width
		out[i].Upper = float64(lo) + float64(i+1)*width
	}
	out[bins-1].Upper = float64(hi)

	for _, v := range values {
		idx := int(float64(v-lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}

	return Histogram{Bins: out, Total: len(values)}
}
