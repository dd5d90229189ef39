package flexure_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/specalign/flexure"
	"github.com/katalvlaran/specalign/master"
	"github.com/katalvlaran/specalign/msgs"
	"github.com/katalvlaran/specalign/parset"
)

func quiet() *msgs.Logger {
	return msgs.New(msgs.Options{Verbosity: msgs.Silent})
}

// syntheticSky builds a sky spectrum with a flat continuum and five
// Gaussian emission lines of sigma 1.5 pixels on a unit-dispersion
// wavelength grid starting at 6000 Angstroms.
func syntheticSky(npix int) (wave, flux []float64) {
	centers := []float64{120, 300, 450, 620, 800}
	amps := []float64{90, 70, 80, 60, 100}

	wave = make([]float64, npix)
	flux = make([]float64, npix)
	for i := range wave {
		wave[i] = 6000 + float64(i)
		flux[i] = 10
		for j, c := range centers {
			x := (float64(i) - c) / 1.5
			flux[i] += amps[j] * math.Exp(-0.5*x*x)
		}
	}

	return wave, flux
}

// shiftedSky returns the sky flux sampled two pixels later, so its
// features appear two pixels earlier than in the source.
func shiftedSky(flux []float64, shift int) []float64 {
	out := make([]float64, len(flux))
	for i := range out {
		j := i + shift
		if j >= len(flux) {
			j = len(flux) - 1
		}
		out[i] = flux[j]
	}

	return out
}

// writeArchive saves a synthetic archive sky spectrum under dir.
func writeArchive(t *testing.T, dir, name string) (wave, flux []float64) {
	t.Helper()
	wave, flux = syntheticSky(1000)
	fr := &master.Frame{Type: "Sky", Log: quiet()}
	err := fr.Save([][]float64{wave, flux}, []string{"WAVE", "FLUX"},
		master.SaveOptions{Outfile: filepath.Join(dir, name), Overwrite: true})
	require.NoError(t, err)

	return wave, flux
}

func skyObject(name string, wave, sky []float64) *flexure.SpecObj {
	w := append([]float64(nil), wave...)
	s := append([]float64(nil), sky...)

	return &flexure.SpecObj{
		Name: name,
		Extractions: map[string]*flexure.Extraction{
			flexure.MethodBoxcar: {Wave: w, Sky: s},
		},
	}
}

// TestCorrector_RecoversKnownShift injects a two-pixel offset between
// object and archive sky and checks the estimate and the corrected
// wavelength solution.
func TestCorrector_RecoversKnownShift(t *testing.T) {
	dir := t.TempDir()
	wave, flux := writeArchive(t, dir, flexure.ArchiveParanal)

	corr, err := flexure.New(flexure.Options{SkyDir: dir, Log: quiet()})
	require.NoError(t, err)

	obj := skyObject("obj1", wave, shiftedSky(flux, 2))
	results, err := corr.Run([]*flexure.SpecObj{obj})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "obj1", res.Object)
	assert.InDelta(t, 2.0, res.Shift, 0.2)

	require.Len(t, res.PolyFit, 3)
	assert.Negative(t, res.PolyFit[2], "peak fit must be concave")
	assert.Len(t, res.Subpix, 7)
	assert.Len(t, res.Corr, 7)
	assert.Equal(t, float64(len(res.ArxSpec.Wave)/2), res.CorrCenter)

	// Unit dispersion, so the corrected solution is the original plus
	// the shift everywhere, including the extrapolated ends.
	cw := obj.Extractions[flexure.MethodBoxcar].Wave
	for _, i := range []int{0, 1, 500, 998, 999} {
		assert.InDelta(t, wave[i]+res.Shift, cw[i], 1e-6, "pixel %d", i)
	}
	for i := range res.SkySpec.Wave {
		require.InDelta(t, res.ArxSpec.Wave[i]+res.Shift, res.SkySpec.Wave[i], 1e-6)
	}
}

// TestCorrector_SmoothsCoarserObject broadens the object lines and
// checks the archive gets Gaussian-matched before correlation while
// the shift estimate survives.
func TestCorrector_SmoothsCoarserObject(t *testing.T) {
	dir := t.TempDir()
	wave, flux := writeArchive(t, dir, flexure.ArchiveParanal)

	corr, err := flexure.New(flexure.Options{SkyDir: dir, Log: quiet()})
	require.NoError(t, err)

	broad := flexure.GaussianSmooth(shiftedSky(flux, 2), 1.2)
	results, err := corr.Run([]*flexure.SpecObj{skyObject("broad", wave, broad)})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.InDelta(t, 1.2, res.SmoothSigPix, 0.4)
	assert.InDelta(t, 2.0, res.Shift, 0.3)
}

// TestCorrector_SkipsThinOverlap verifies an object whose wavelength
// range barely touches the archive is skipped while the remaining
// objects still get corrected.
func TestCorrector_SkipsThinOverlap(t *testing.T) {
	dir := t.TempDir()
	wave, flux := writeArchive(t, dir, flexure.ArchiveParanal)

	corr, err := flexure.New(flexure.Options{SkyDir: dir, Log: quiet()})
	require.NoError(t, err)

	// 50 samples inside the archive range: at the skip threshold.
	thinWave := make([]float64, 1000)
	for i := range thinWave {
		thinWave[i] = 6950 + float64(i)
	}
	thin := skyObject("thin", thinWave, shiftedSky(flux, 2))
	good := skyObject("good", wave, shiftedSky(flux, 2))

	results, err := corr.Run([]*flexure.SpecObj{thin, good})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].Object)
}

// TestCorrector_SkipsMissingExtraction verifies an object without the
// configured extraction is skipped, not fatal.
func TestCorrector_SkipsMissingExtraction(t *testing.T) {
	dir := t.TempDir()
	wave, flux := writeArchive(t, dir, flexure.ArchiveParanal)

	corr, err := flexure.New(flexure.Options{SkyDir: dir, Log: quiet()})
	require.NoError(t, err)

	obj := &flexure.SpecObj{
		Name: "optimal-only",
		Extractions: map[string]*flexure.Extraction{
			flexure.MethodOptimal: {Wave: wave, Sky: shiftedSky(flux, 2)},
		},
	}
	results, err := corr.Run([]*flexure.SpecObj{obj})
	require.NoError(t, err)
	assert.Empty(t, results)
}

// TestNew_RejectsUnknownMethod verifies an unrecognized extraction
// method fails construction.
func TestNew_RejectsUnknownMethod(t *testing.T) {
	_, err := flexure.New(flexure.Options{Method: "slitcen", Log: quiet()})
	assert.ErrorIs(t, err, flexure.ErrUnsupportedMethod)
}

// TestNew_MissingArchive verifies construction fails when no archive
// file exists at the resolved path.
func TestNew_MissingArchive(t *testing.T) {
	_, err := flexure.New(flexure.Options{SkyDir: t.TempDir(), Log: quiet()})
	assert.ErrorIs(t, err, flexure.ErrNoArchive)
}

// TestNew_ArchiveSelection verifies the spectrograph arm picks the
// default archive and an explicit name overrides it.
func TestNew_ArchiveSelection(t *testing.T) {
	dir := t.TempDir()
	writeArchive(t, dir, flexure.ArchiveParanal)
	writeArchive(t, dir, flexure.ArchiveKastBlue)
	writeArchive(t, dir, "custom_sky.fits")

	cases := []struct {
		name    string
		opts    flexure.Options
		archive string
	}{
		{"kast blue arm", flexure.Options{Spectrograph: "kast_blue"}, flexure.ArchiveKastBlue},
		{"lris blue arm", flexure.Options{Spectrograph: "lris_blue"}, flexure.ArchiveKastBlue},
		{"red arm default", flexure.Options{Spectrograph: "shane_kast_red"}, flexure.ArchiveParanal},
		{"no arm", flexure.Options{}, flexure.ArchiveParanal},
		{"explicit override", flexure.Options{Spectrograph: "kast_blue", ArchiveSpec: "custom_sky.fits"}, "custom_sky.fits"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.opts.SkyDir = dir
			tc.opts.Log = quiet()
			corr, err := flexure.New(tc.opts)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tc.archive), corr.ArchiveFile())
			assert.NotEmpty(t, corr.Archive().Wave)
		})
	}
}

// TestPar_SchemaAndConversion exercises the configuration schema and
// its conversion to corrector options.
func TestPar_SchemaAndConversion(t *testing.T) {
	p := flexure.Par()

	opts, err := flexure.FromParSet(p)
	require.NoError(t, err)
	assert.Equal(t, flexure.MethodBoxcar, opts.Method)
	assert.Equal(t, 20, opts.MaxShift)
	assert.Empty(t, opts.ArchiveSpec)

	require.NoError(t, p.Set("spec", parset.String(flexure.MethodOptimal)))
	require.NoError(t, p.Set("max_shift", parset.Int(35)))
	require.NoError(t, p.Set("archive_spec", parset.String("custom_sky.fits")))

	opts, err = flexure.FromParSet(p)
	require.NoError(t, err)
	assert.Equal(t, flexure.MethodOptimal, opts.Method)
	assert.Equal(t, 35, opts.MaxShift)
	assert.Equal(t, "custom_sky.fits", opts.ArchiveSpec)

	// The schema rejects unknown extraction methods outright.
	err = p.Set("spec", parset.String("slitcen"))
	assert.ErrorIs(t, err, parset.ErrInvalidValue)

	// Non-positive shifts pass the schema but fail conversion.
	require.NoError(t, p.Set("max_shift", parset.Int(-3)))
	_, err = flexure.FromParSet(p)
	assert.ErrorIs(t, err, parset.ErrInvalidValue)
}
