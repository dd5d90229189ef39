package master_test

import (
	"path/filepath"
	"testing"

	"github.com/katalvlaran/specalign/master"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFrame_SaveLoadRoundTrip writes two vectors and reads them back by
// extension name, including the provenance header.
func TestFrame_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	f := &master.Frame{Type: "Flexure", Dir: dir, Key: "A_1_01", ReuseMasters: true}

	wave := []float64{5000, 5000.5, 5001, 5001.5}
	flux := []float64{1, 10, 100, 1.5}
	require.NoError(t, f.Save([][]float64{wave, flux}, []string{"WAVE", "FLUX"},
		master.SaveOptions{
			Overwrite: true,
			RawFiles:  []string{"b_001.fits", "b_002.fits"},
			Steps:     []string{"extract", "flexure"},
		}))

	data, hdr, err := f.Load([]string{"FLUX", "WAVE"}, "")
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.Equal(t, flux, data[0], "extensions are returned in requested order")
	assert.Equal(t, wave, data[1])

	require.NotNil(t, hdr)
	assert.Equal(t, "Flexure", hdr["FRAMETYP"])
	assert.Equal(t, "extract,flexure", hdr["STEPS"])
	assert.Equal(t, []string{"b_001.fits", "b_002.fits"}, master.ParseRawFiles(hdr))
}

// TestFrame_LoadSentinels verifies the uniform nothing-loaded sentinel
// for disabled reuse and for a missing file.
func TestFrame_LoadSentinels(t *testing.T) {
	dir := t.TempDir()

	// Reuse disabled.
	f := &master.Frame{Type: "Flexure", Dir: dir}
	data, hdr, err := f.Load([]string{"A", "B", "C"}, "")
	require.NoError(t, err)
	assert.Nil(t, hdr)
	require.Len(t, data, 3, "sentinel is sized to the request")
	for _, d := range data {
		assert.Nil(t, d)
	}

	// Reuse enabled but no file on disk.
	f.ReuseMasters = true
	data, hdr, err = f.Load([]string{"A"}, "")
	require.NoError(t, err)
	assert.Nil(t, hdr)
	require.Len(t, data, 1)
	assert.Nil(t, data[0])
}

// TestFrame_MissingExtension verifies ErrNoExtension for unknown names.
func TestFrame_MissingExtension(t *testing.T) {
	dir := t.TempDir()
	f := &master.Frame{Type: "Arc", Dir: dir, ReuseMasters: true}
	require.NoError(t, f.Save([][]float64{{1, 2}}, []string{"WAVE"},
		master.SaveOptions{Overwrite: true}))

	_, _, err := f.Load([]string{"TILT"}, "")
	assert.ErrorIs(t, err, master.ErrNoExtension)
}

// TestFrame_NoOverwrite verifies that Save leaves an existing file
// untouched unless overwriting is requested.
func TestFrame_NoOverwrite(t *testing.T) {
	dir := t.TempDir()
	f := &master.Frame{Type: "Arc", Dir: dir, ReuseMasters: true}

	require.NoError(t, f.Save([][]float64{{1, 2}}, []string{"WAVE"},
		master.SaveOptions{Overwrite: true}))
	require.NoError(t, f.Save([][]float64{{9, 9}}, []string{"WAVE"},
		master.SaveOptions{Overwrite: false}))

	data, _, err := f.Load([]string{"WAVE"}, "")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, data[0], "original content must survive")
}

// TestLoadSpectrum reads a (wave, flux) pair back from an archive-style
// file and rejects mismatched vectors.
func TestLoadSpectrum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sky_test.fits")

	f := &master.Frame{Type: "Sky", Dir: dir}
	wave := []float64{6000, 6001, 6002}
	flux := []float64{3, 2, 1}
	require.NoError(t, f.Save([][]float64{wave, flux}, []string{"WAVE", "FLUX"},
		master.SaveOptions{Outfile: path, Overwrite: true}))

	w, fl, err := master.LoadSpectrum(path)
	require.NoError(t, err)
	assert.Equal(t, wave, w)
	assert.Equal(t, flux, fl)

	assert.True(t, master.Exists(path))
	assert.False(t, master.Exists(filepath.Join(dir, "absent.fits")))
}
