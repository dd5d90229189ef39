package flexure

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Dispersion returns the per-pixel wavelength increment of wave.
// Element i holds wave[i+1]-wave[i] for i>0; element 0 replicates
// element 1 so the result keeps the input length.
func Dispersion(wave []float64) []float64 {
	n := len(wave)
	disp := make([]float64, n)
	if n < 2 {
		return disp
	}
	for i := 1; i < n; i++ {
		disp[i] = wave[i] - wave[i-1]
	}
	disp[0] = disp[1]

	return disp
}

// GaussianSmooth convolves flux with a Gaussian kernel of the given
// sigma (in pixels), reflecting the signal at both boundaries. A
// non-positive or negligible sigma returns a copy of the input.
func GaussianSmooth(flux []float64, sigma float64) []float64 {
	out := make([]float64, len(flux))
	if sigma < 1e-3 {
		copy(out, flux)
		return out
	}

	// Truncate the kernel at ~4 sigma.
	half := int(4*sigma + 0.5)
	if half < 1 {
		half = 1
	}
	kernel := make([]float64, 2*half+1)
	var sum float64
	for k := -half; k <= half; k++ {
		w := math.Exp(-0.5 * float64(k) * float64(k) / (sigma * sigma))
		kernel[k+half] = w
		sum += w
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	n := len(flux)
	for i := 0; i < n; i++ {
		var acc float64
		for k := -half; k <= half; k++ {
			j := i + k
			// Reflect at the boundaries.
			if j < 0 {
				j = -j - 1
			}
			if j >= n {
				j = 2*n - j - 1
			}
			if j < 0 {
				j = 0
			}
			acc += kernel[k+half] * flux[j]
		}
		out[i] = acc
	}

	return out
}

// Rebin resamples flux, defined on wave, onto newWave while conserving
// integrated flux. Pixel edges are taken at the midpoints between
// samples; the cumulative integral over the old edges is interpolated
// at the new edges and differenced. Flux outside the input range is
// treated as zero.
func Rebin(wave, flux, newWave []float64) []float64 {
	oldEdges := binEdges(wave)
	newEdges := binEdges(newWave)

	// Cumulative integral of flux over the old bins.
	cum := make([]float64, len(oldEdges))
	for i := 0; i < len(flux); i++ {
		cum[i+1] = cum[i] + flux[i]*(oldEdges[i+1]-oldEdges[i])
	}

	out := make([]float64, len(newWave))
	for j := range out {
		lo := interpClamped(oldEdges, cum, newEdges[j])
		hi := interpClamped(oldEdges, cum, newEdges[j+1])
		width := newEdges[j+1] - newEdges[j]
		if width != 0 {
			out[j] = (hi - lo) / width
		}
	}

	return out
}

// binEdges returns len(x)+1 pixel edges at the midpoints between
// samples, extrapolating half a pixel past each end.
func binEdges(x []float64) []float64 {
	n := len(x)
	edges := make([]float64, n+1)
	if n == 1 {
		edges[0] = x[0] - 0.5
		edges[1] = x[0] + 0.5
		return edges
	}
	for i := 1; i < n; i++ {
		edges[i] = 0.5 * (x[i-1] + x[i])
	}
	edges[0] = x[0] - 0.5*(x[1]-x[0])
	edges[n] = x[n-1] + 0.5*(x[n-1]-x[n-2])

	return edges
}

// CorrelateSame cross-correlates a against v and returns the central
// len(a) lags, matching the "same"-mode discrete correlation: element
// m sums a[k]*v[k-lag] over valid k with lag = m - len(v)/2, so the
// zero-lag value sits at index len(v)/2.
func CorrelateSame(a, v []float64) []float64 {
	n := len(v)
	out := make([]float64, n)
	mid := n / 2
	for m := 0; m < n; m++ {
		lag := m - mid
		var acc float64
		for k := 0; k < len(a); k++ {
			j := k - lag
			if j >= 0 && j < n {
				acc += a[k] * v[j]
			}
		}
		out[m] = acc
	}

	return out
}

// FitPolynomial least-squares fits a polynomial of the given degree to
// the points (x, y) and returns its coefficients in ascending powers.
func FitPolynomial(x, y []float64, degree int) ([]float64, error) {
	if len(x) != len(y) || len(x) <= degree {
		return nil, ErrShortInput
	}

	a := mat.NewDense(len(x), degree+1, nil)
	for i, xi := range x {
		p := 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, p)
			p *= xi
		}
	}
	b := mat.NewVecDense(len(y), y)

	var qr mat.QR
	qr.Factorize(a)
	var c mat.VecDense
	if err := qr.SolveVecTo(&c, false, b); err != nil {
		return nil, err
	}

	out := make([]float64, degree+1)
	for j := range out {
		out[j] = c.AtVec(j)
	}

	return out, nil
}

// linspace returns n evenly spaced samples from lo to hi inclusive.
func linspace(lo, hi float64, n int) []float64 {
	dst := make([]float64, n)
	if n == 1 {
		dst[0] = lo
		return dst
	}

	return floats.Span(dst, lo, hi)
}

// interpLinear evaluates the piecewise-linear interpolant through
// (x, y) at xq, extrapolating the boundary segments beyond the ends.
// x must be strictly increasing.
func interpLinear(x, y []float64, xq float64) float64 {
	n := len(x)
	if n == 1 {
		return y[0]
	}
	i := sort.SearchFloat64s(x, xq)
	if i <= 0 {
		i = 1
	}
	if i >= n {
		i = n - 1
	}
	t := (xq - x[i-1]) / (x[i] - x[i-1])

	return y[i-1] + t*(y[i]-y[i-1])
}

// interpClamped evaluates the piecewise-linear interpolant through
// (x, y) at xq, clamping to the boundary values outside the range.
func interpClamped(x, y []float64, xq float64) float64 {
	if xq <= x[0] {
		return y[0]
	}
	if xq >= x[len(x)-1] {
		return y[len(y)-1]
	}

	return interpLinear(x, y, xq)
}

// median returns the median of s, NaN for empty input.
func median(s []float64) float64 {
	n := len(s)
	if n == 0 {
		return math.NaN()
	}
	tmp := make([]float64, n)
	copy(tmp, s)
	sort.Float64s(tmp)
	if n%2 == 1 {
		return tmp[n/2]
	}

	return 0.5 * (tmp[n/2-1] + tmp[n/2])
}
