// Package lines detects emission lines in one-dimensional spectra.
//
// Detect locates significant local maxima above a robust noise
// threshold and characterizes each with an amplitude, a sub-pixel
// center, a Gaussian-equivalent width, and a validity flag. The flexure
// corrector consumes exactly this contract to match sky-emission
// features between an observation and an archival reference.
package lines

import (
	"math"
	"sort"
)

// fwhmFactor converts a Gaussian sigma to its full width at half
// maximum, 2*sqrt(2*ln 2).
var fwhmFactor = 2 * math.Sqrt(2*math.Log(2))

// Line is one detected emission line.
//
// Fields:
//   - Amp   — background-subtracted peak amplitude.
//   - Cent  — sub-pixel center position, in pixels.
//   - Width — Gaussian-equivalent sigma, in pixels.
//   - Good  — false for lines too close to the spectrum edges or with
//     a degenerate width estimate.
type Line struct {
	Amp   float64
	Cent  float64
	Width float64
	Good  bool
}

// Options tunes the detector.
//
// Fields:
//   - SigThresh — detection threshold in units of the robust noise
//     estimate above the continuum (default 5).
//   - EdgeGap   — pixels at each end of the spectrum within which a
//     detection is flagged invalid (default 4).
type Options struct {
	SigThresh float64
	EdgeGap   int
}

// DefaultOptions returns the standard detector tuning.
func DefaultOptions() Options {
	return Options{SigThresh: 5, EdgeGap: 4}
}

// Detect finds emission lines in flux. The continuum is estimated by
// the median and the noise by the scaled median absolute deviation;
// every local maximum exceeding continuum + SigThresh*noise becomes a
// candidate. Centers are refined with a three-point parabola and widths
// measured from the half-maximum crossings. Results are ordered by
// center position.
func Detect(flux []float64, o Options) []Line {
	if o.SigThresh <= 0 {
		o.SigThresh = 5
	}
	if o.EdgeGap <= 0 {
		o.EdgeGap = 4
	}
	if len(flux) < 3 {
		return nil
	}

	continuum := median(flux)
	noise := mad(flux, continuum)
	if noise == 0 {
		// Flat spectra with isolated spikes still deserve a floor.
		noise = 1e-10
	}
	thresh := continuum + o.SigThresh*noise

	var out []Line
	for i := 1; i < len(flux)-1; i++ {
		if flux[i] < thresh || flux[i] < flux[i-1] || flux[i] <= flux[i+1] {
			continue
		}

		line := characterize(flux, i, continuum)
		line.Good = line.Good &&
			line.Cent >= float64(o.EdgeGap) &&
			line.Cent <= float64(len(flux)-1-o.EdgeGap)
		out = append(out, line)
	}

	sort.Slice(out, func(a, b int) bool { return out[a].Cent < out[b].Cent })

	return out
}

// characterize refines the candidate peak at index i.
func characterize(flux []float64, i int, continuum float64) Line {
	// Three-point parabolic refinement of the center and amplitude.
	y0, y1, y2 := flux[i-1], flux[i], flux[i+1]
	denom := y0 - 2*y1 + y2
	dx := 0.0
	if denom != 0 {
		dx = 0.5 * (y0 - y2) / denom
	}
	if dx > 0.5 {
		dx = 0.5
	} else if dx < -0.5 {
		dx = -0.5
	}
	amp := y1 - 0.25*(y0-y2)*dx - continuum

	// Half-maximum crossings on either side of the peak.
	half := continuum + amp/2
	left, right := float64(i), float64(i)
	for j := i; j > 0; j-- {
		if flux[j-1] <= half {
			left = float64(j-1) + (half-flux[j-1])/(flux[j]-flux[j-1])
			break
		}
		left = float64(j - 1)
	}
	for j := i; j < len(flux)-1; j++ {
		if flux[j+1] <= half {
			right = float64(j) + (flux[j]-half)/(flux[j]-flux[j+1])
			break
		}
		right = float64(j + 1)
	}

	width := (right - left) / fwhmFactor

	return Line{
		Amp:   amp,
		Cent:  float64(i) + dx,
		Width: width,
		Good:  amp > 0 && width > 0,
	}
}

// median returns the median of xs without mutating it.
func median(xs []float64) float64 {
	tmp := make([]float64, len(xs))
	copy(tmp, xs)
	sort.Float64s(tmp)
	n := len(tmp)
	if n%2 == 1 {
		return tmp[n/2]
	}

	return 0.5 * (tmp[n/2-1] + tmp[n/2])
}

// mad returns the scaled median absolute deviation around center,
// a robust stand-in for the standard deviation.
func mad(xs []float64, center float64) float64 {
	dev := make([]float64, len(xs))
	for i, x := range xs {
		dev[i] = math.Abs(x - center)
	}

	return 1.4826 * median(dev)
}
