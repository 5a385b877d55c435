package colorseg

import (
	"gonum.org/v1/gonum/floats"
)

const (
	// BinsPerChannel is the number of quantization cells per color channel.
	BinsPerChannel = 8

	// NumBins is the total number of cells in the 3D histogram.
	NumBins = BinsPerChannel * BinsPerChannel * BinsPerChannel

	// binWidth is the channel width covered by one cell (256 / 8).
	binWidth = 256 / BinsPerChannel
)

// Quantize returns the histogram cell of a color, one coordinate per
// channel, each in [0, BinsPerChannel).
func Quantize(c RGB) (r, g, b int) {
	return int(c.R) / binWidth, int(c.G) / binWidth, int(c.B) / binWidth
}

// binIndex flattens a cell coordinate into the bins array.
func binIndex(r, g, b int) int {
	return (r*BinsPerChannel+g)*BinsPerChannel + b
}

// ColorHistogram accumulates color samples into a quantized 8x8x8 histogram.
// Its zero value is an empty histogram ready for use. A ColorHistogram is
// turned into a read-only ColorDistribution with Finish.
type ColorHistogram struct {
	bins [NumBins]float64
	nb   int
}

// Add counts one color sample: the cell (c.R/32, c.G/32, c.B/32) and the
// sample count are each incremented by one.
func (h *ColorHistogram) Add(c RGB) {
	r, g, b := Quantize(c)
	h.bins[binIndex(r, g, b)]++
	h.nb++
}

// Count returns the number of samples added so far.
func (h *ColorHistogram) Count() int {
	return h.nb
}

// Bin returns the raw count of cell (r, g, b).
func (h *ColorHistogram) Bin(r, g, b int) float64 {
	return h.bins[binIndex(r, g, b)]
}

// Reset empties the histogram.
func (h *ColorHistogram) Reset() {
	*h = ColorHistogram{}
}

// Finish divides every cell by the sample count and returns the resulting
// probability mass function. The histogram itself is left untouched, so
// a distribution is only ever normalized once. Finishing an empty
// histogram fails with ErrEmptyRegion.
func (h *ColorHistogram) Finish() (ColorDistribution, error) {
	if h.nb == 0 {
		return ColorDistribution{}, ErrEmptyRegion
	}
	d := ColorDistribution{bins: h.bins, nb: h.nb}
	floats.Scale(1/float64(h.nb), d.bins[:])
	return d, nil
}

// ColorDistribution is a finished color histogram: relative frequencies
// over the 512 quantized colors, summing to one. It is a value type and
// read-only; copies share nothing.
type ColorDistribution struct {
	bins [NumBins]float64
	nb   int
}

// Count returns the number of samples the distribution was built from.
func (d ColorDistribution) Count() int {
	return d.nb
}

// Bin returns the frequency of cell (r, g, b).
func (d ColorDistribution) Bin(r, g, b int) float64 {
	return d.bins[binIndex(r, g, b)]
}

// Sum returns the total mass of the distribution, 1 up to rounding for any
// finished distribution.
func (d ColorDistribution) Sum() float64 {
	return floats.Sum(d.bins[:])
}

// Distance returns the chi-square style dissimilarity
//
//	sum over cells of (a-b)^2 / (a+b)
//
// skipping cells that are empty in both distributions. It is symmetric,
// never negative, and zero only for identical distributions.
func (d ColorDistribution) Distance(other ColorDistribution) float64 {
	var dist float64
	for i, a := range d.bins {
		b := other.bins[i]
		sum := a + b
		if sum == 0 {
			continue
		}
		diff := a - b
		dist += diff * diff / sum
	}
	return dist
}
