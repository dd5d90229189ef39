package flexure

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/specalign/lines"
	"github.com/katalvlaran/specalign/master"
	"github.com/katalvlaran/specalign/msgs"
)

// New builds a Corrector: it resolves the archive sky spectrum from
// the options (explicit ArchiveSpec wins, otherwise the spectrograph
// arm picks a default) and loads it. Relative archive names are
// resolved against SkyDir.
func New(opts Options) (*Corrector, error) {
	if opts.MaxShift <= 0 {
		opts.MaxShift = DefaultOptions().MaxShift
	}
	if opts.Method == "" {
		opts.Method = DefaultOptions().Method
	}
	if opts.Method != MethodBoxcar && opts.Method != MethodOptimal {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, opts.Method)
	}

	log := opts.Log
	if log == nil {
		log = msgs.Default()
	}
	detect := opts.Detect
	if detect == nil {
		detect = func(flux []float64) []lines.Line {
			return lines.Detect(flux, lines.DefaultOptions())
		}
	}

	file := opts.ArchiveSpec
	if file == "" {
		switch opts.Spectrograph {
		case "kast_blue", "lris_blue":
			file = ArchiveKastBlue
		default:
			file = ArchiveParanal
		}
	}
	path := file
	if !filepath.IsAbs(path) && opts.SkyDir != "" {
		path = filepath.Join(opts.SkyDir, path)
	}
	if !master.Exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrNoArchive, path)
	}

	log.Info("Using %s for the archival sky spectrum", file)
	wave, flux, err := master.LoadSpectrum(path)
	if err != nil {
		return nil, err
	}

	return &Corrector{
		opts:    opts,
		log:     log,
		detect:  detect,
		archive: Spectrum{Wave: wave, Flux: flux},
		file:    path,
	}, nil
}

// Run estimates and applies the flexure shift for each object in turn.
// Objects that cannot be corrected for a recoverable reason (too
// little spectral overlap, missing extraction, no usable emission
// lines) are logged and skipped; any other failure aborts the run.
// Results keep the input order of the corrected objects.
func (c *Corrector) Run(objs []*SpecObj) ([]Result, error) {
	results := make([]Result, 0, len(objs))
	for _, obj := range objs {
		res, err := c.correct(obj)
		if err != nil {
			if errors.Is(err, ErrInsufficientOverlap) ||
				errors.Is(err, ErrUnsupportedMethod) ||
				errors.Is(err, ErrNoLines) {
				c.log.Warn("Skipping flexure for %s: %v", obj.Name, err)
				continue
			}
			return nil, err
		}
		results = append(results, res)
	}

	return results, nil
}

// correct runs the full flexure estimate for one object: match the
// archive resolution to the object, rebin both sky spectra onto the
// overlap window, cross-correlate, fit the correlation peak, then
// shift every extraction's wavelength solution.
func (c *Corrector) correct(obj *SpecObj) (Result, error) {
	ext, ok := obj.Extractions[c.opts.Method]
	if !ok || ext == nil {
		return Result{}, fmt.Errorf("%w: object %s has no %q extraction",
			ErrUnsupportedMethod, obj.Name, c.opts.Method)
	}
	if len(ext.Wave) < 2 || len(ext.Wave) != len(ext.Sky) {
		return Result{}, fmt.Errorf("%w: object %s", ErrShortInput, obj.Name)
	}

	arxFlux, smoothSig, err := c.matchResolution(ext)
	if err != nil {
		return Result{}, err
	}

	// Rebin both spectra onto the object samples inside the common
	// wavelength range.
	lo, hi := overlapRange(c.archive.Wave, ext.Wave)
	first, last := boundIndices(ext.Wave, lo, hi)
	if last-first <= minOverlap {
		return Result{}, fmt.Errorf("%w: %d samples for object %s",
			ErrInsufficientOverlap, last-first, obj.Name)
	}
	keepWave := ext.Wave[first:last]
	arxReb := Rebin(c.archive.Wave, arxFlux, keepWave)
	objReb := Rebin(ext.Wave, ext.Sky, keepWave)

	shift, fit, subpix, corrWin, center, err := c.measureShift(arxReb, objReb)
	if err != nil {
		return Result{}, fmt.Errorf("object %s: %w", obj.Name, err)
	}
	c.log.Info("Flexure correction of %.3f pixels for %s", shift, obj.Name)

	for _, e := range obj.Extractions {
		if e != nil && len(e.Wave) > 1 {
			e.Wave = applyShift(e.Wave, shift)
		}
	}

	return Result{
		Object:       obj.Name,
		PolyFit:      fit,
		Shift:        shift,
		Subpix:       subpix,
		Corr:         corrWin,
		CorrCenter:   center,
		SmoothSigPix: smoothSig,
		ArxSpec:      Spectrum{Wave: keepWave, Flux: arxReb},
		SkySpec:      Spectrum{Wave: applyShift(keepWave, shift), Flux: objReb},
	}, nil
}

// matchResolution compares the strongest emission lines of the object
// and archive spectra and, when the object lines are broader, smooths
// a copy of the archive flux with the quadrature-difference Gaussian.
// It returns the archive flux to correlate against and the smoothing
// sigma in archive pixels (0 when none was applied).
func (c *Corrector) matchResolution(ext *Extraction) ([]float64, float64, error) {
	arxLines := strongest(c.detect(c.archive.Flux), topLines)
	objLines := strongest(c.detect(ext.Sky), topLines)
	if len(arxLines) == 0 || len(objLines) == 0 {
		return nil, 0, ErrNoLines
	}

	arxDisp := Dispersion(c.archive.Wave)
	objDisp := Dispersion(ext.Wave)

	arxRes, arxSig2, arxPix := lineStats(arxLines, c.archive.Wave, arxDisp)
	objRes, objSig2, _ := lineStats(objLines, ext.Wave, objDisp)

	c.log.Work("Archive median spectral resolution %.1f, object %.1f",
		median(arxRes), median(objRes))

	medArx := median(arxSig2)
	medObj := median(objSig2)
	if medObj < medArx {
		c.log.Warn("Object spectrum has higher resolution than the archive; not smoothing")
		flux := make([]float64, len(c.archive.Flux))
		copy(flux, c.archive.Flux)
		return flux, 0, nil
	}

	// Quadrature difference of the line widths, expressed in archive
	// pixels.
	smoothSig := math.Sqrt(medObj - medArx)
	pixDisp := make([]float64, len(arxPix))
	for i, p := range arxPix {
		pixDisp[i] = arxDisp[p]
	}
	smoothSigPix := smoothSig / median(pixDisp)

	return GaussianSmooth(c.archive.Flux, smoothSigPix), smoothSigPix, nil
}

// lineStats returns, for each line, the spectral resolution
// lambda/FWHM, the squared line width in wavelength units, and the
// nearest pixel index of the line center.
func lineStats(ls []lines.Line, wave, disp []float64) (res, sig2 []float64, pix []int) {
	res = make([]float64, len(ls))
	sig2 = make([]float64, len(ls))
	pix = make([]int, len(ls))
	for i, l := range ls {
		p := int(l.Cent + 0.5)
		if p < 0 {
			p = 0
		}
		if p >= len(wave) {
			p = len(wave) - 1
		}
		pix[i] = p
		res[i] = wave[p] / (disp[p] * fwhmFactor * l.Width)
		w := disp[p] * l.Width
		sig2[i] = w * w
	}

	return res, sig2, pix
}

// strongest returns up to n valid lines of ls, ordered by descending
// amplitude.
func strongest(ls []lines.Line, n int) []lines.Line {
	valid := make([]lines.Line, 0, len(ls))
	for _, l := range ls {
		if l.Good {
			valid = append(valid, l)
		}
	}
	sort.Slice(valid, func(i, j int) bool { return valid[i].Amp > valid[j].Amp })
	if len(valid) > n {
		valid = valid[:n]
	}

	return valid
}

// overlapRange returns the intersection [lo, hi] of the wavelength
// ranges of a and b.
func overlapRange(a, b []float64) (lo, hi float64) {
	lo = math.Max(a[0], b[0])
	hi = math.Min(a[len(a)-1], b[len(b)-1])

	return lo, hi
}

// boundIndices returns the half-open index range of the samples of
// wave inside [lo, hi]. wave must be increasing.
func boundIndices(wave []float64, lo, hi float64) (first, last int) {
	first = sort.SearchFloat64s(wave, lo)
	last = sort.Search(len(wave), func(i int) bool { return wave[i] > hi })
	if last < first {
		last = first
	}

	return first, last
}

// measureShift cross-correlates the rebinned archive against the
// rebinned object sky, locates the maximum inside the configured lag
// window, and refines it with a degree-2 fit over seven lags. The
// returned shift is the sub-pixel peak position relative to zero lag.
func (c *Corrector) measureShift(arx, obj []float64) (shift float64, fit, subpix, corrWin []float64, center float64, err error) {
	corr := CorrelateSame(arx, obj)
	n := len(corr)
	mid := n / 2

	lo := mid - c.opts.MaxShift
	hi := mid + c.opts.MaxShift
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	peak := lo + floats.MaxIdx(corr[lo:hi])

	// Seven lags centered on the maximum, clamped to the valid range.
	start := peak - 3
	if start < 0 {
		start = 0
	}
	if start > n-7 {
		start = n - 7
	}
	subpix = linspace(float64(start), float64(start+6), 7)
	corrWin = make([]float64, 7)
	copy(corrWin, corr[start:start+7])

	fit, err = FitPolynomial(subpix, corrWin, 2)
	if err != nil {
		return 0, nil, nil, nil, 0, err
	}
	if fit[2] >= 0 || math.IsNaN(fit[2]) {
		return 0, nil, nil, nil, 0, ErrBadFit
	}
	vertex := -0.5 * fit[1] / fit[2]
	if vertex < float64(lo) || vertex > float64(hi-1) {
		return 0, nil, nil, nil, 0, fmt.Errorf("%w: peak at lag %.2f outside window", ErrBadFit, vertex-float64(mid))
	}

	return vertex - float64(mid), fit, subpix, corrWin, float64(mid), nil
}

// applyShift returns a new wavelength vector with the pixel shift
// applied: the solution is re-evaluated on a normalized pixel axis
// offset by shift/(npix-1), extrapolating linearly at the ends.
func applyShift(wave []float64, shift float64) []float64 {
	npix := len(wave)
	x := linspace(0, 1, npix)
	dx := shift / float64(npix-1)
	out := make([]float64, npix)
	for i := range out {
		out[i] = interpLinear(x, wave, x[i]+dx)
	}

	return out
}
