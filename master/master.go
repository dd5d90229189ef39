package master

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/katalvlaran/specalign/msgs"
)

var (
	// ErrNoExtension indicates a requested extension name is absent
	// from the loaded file.
	ErrNoExtension = errors.New("master: extension not found")

	// ErrBadSpectrum indicates a spectrum file without matching
	// wavelength and flux vectors.
	ErrBadSpectrum = errors.New("master: malformed spectrum file")
)

// Frame addresses one master calibration product on disk and carries
// the reuse policy for loading it back.
//
// Fields:
//   - Type — frame type, part of the file name (e.g. "Flexure").
//   - Dir  — master-frame directory; defaults to the working directory.
//   - Key  — frame key, part of the file name (e.g. "A_1_01");
//     defaults to "master".
//   - ReuseMasters — permit Load to read existing files; when false,
//     Load always reports nothing loaded.
//   - Log — message sink; defaults to msgs.Default().
type Frame struct {
	Type         string
	Dir          string
	Key          string
	ReuseMasters bool
	Log          *msgs.Logger
}

// SaveOptions controls Frame.Save.
type SaveOptions struct {
	// Outfile overrides the default FilePath destination.
	Outfile string

	// Overwrite permits replacing an existing file; when false and the
	// destination exists, Save warns and returns without writing.
	Overwrite bool

	// RawFiles lists the processed raw files behind the product; they
	// are recorded as zero-padded F cards in the primary header.
	RawFiles []string

	// Steps lists the completed reduction steps, recorded comma-joined
	// in the STEPS card.
	Steps []string
}

func (f *Frame) log() *msgs.Logger {
	if f.Log != nil {
		return f.Log
	}

	return msgs.Default()
}

// FileName returns the default file name, Master<Type>_<Key>.fits.
func (f *Frame) FileName() string {
	key := f.Key
	if key == "" {
		key = "master"
	}

	return fmt.Sprintf("Master%s_%s.fits", f.Type, key)
}

// FilePath returns the full default path of the frame file.
func (f *Frame) FilePath() string {
	return filepath.Join(f.Dir, f.FileName())
}

// Save writes the data vectors to a FITS file, one image extension per
// vector, with frame type, steps, and raw-file provenance recorded in
// the primary header.
func (f *Frame) Save(data [][]float64, extnames []string, o SaveOptions) error {
	if len(data) != len(extnames) {
		return fmt.Errorf("master: %d data arrays for %d extension names",
			len(data), len(extnames))
	}

	outfile := o.Outfile
	if outfile == "" {
		outfile = f.FilePath()
	}
	if _, err := os.Stat(outfile); err == nil && !o.Overwrite {
		f.log().Warn("Master file exists: %s; set Overwrite to replace it", outfile)

		return nil
	}

	f.log().Info("Saving master frame to %s", outfile)

	primary := []string{
		card("FRAMETYP", f.Type, "Master calibration frame type", true),
		card("STEPS", strings.Join(o.Steps, ","), "Completed reduction steps", true),
	}
	if n := len(o.RawFiles); n > 0 {
		ndig := 1
		for m := n; m >= 10; m /= 10 {
			ndig++
		}
		for i, name := range o.RawFiles {
			primary = append(primary,
				card(fmt.Sprintf("F%0*d", ndig, i+1), name, "Processed raw file", true))
		}
	}

	out, err := os.Create(outfile)
	if err != nil {
		return fmt.Errorf("master: creating %s: %w", outfile, err)
	}
	defer out.Close()

	if err := writeFITS(out, primary, extnames, data); err != nil {
		return fmt.Errorf("master: writing %s: %w", outfile, err)
	}
	f.log().Info("Master frame written to %s", outfile)

	return nil
}

// Load reads the named extensions from the frame file (or from ifile if
// non-empty) and returns one data vector per requested name plus the
// primary header. Disabled reuse and a missing file both yield the
// uniform nothing-loaded sentinel: a slice of nil vectors sized to the
// request, a nil header, and no error.
func (f *Frame) Load(extnames []string, ifile string) ([][]float64, Header, error) {
	empty := make([][]float64, len(extnames))

	if !f.ReuseMasters {
		f.log().Warn("Master frames will not be reused")

		return empty, nil, nil
	}

	path := ifile
	if path == "" {
		path = f.FilePath()
	}
	if _, err := os.Stat(path); err != nil {
		f.log().Warn("No Master %s frame found: %s", f.Type, path)

		return empty, nil, nil
	}

	f.log().Info("Loading Master %s frame: %s", f.Type, path)
	units, err := loadFile(path)
	if err != nil {
		return nil, nil, err
	}

	data := make([][]float64, len(extnames))
	for i, name := range extnames {
		u := findUnit(units, name)
		if u == nil {
			return nil, nil, fmt.Errorf("%w: %q in %s", ErrNoExtension, name, path)
		}
		data[i] = u.Data
	}

	return data, units[0].Header, nil
}

// Exists reports whether path names an existing regular file. The
// archive-resolution step of flexure correction delegates its resource
// existence check here.
func Exists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

// LoadSpectrum reads a (wavelength, flux) spectrum from a FITS file.
// Extensions named WAVE and FLUX are preferred; otherwise the first two
// data-carrying units are taken in order. The two vectors must have
// equal non-zero length.
func LoadSpectrum(path string) (wave, flux []float64, err error) {
	units, err := loadFile(path)
	if err != nil {
		return nil, nil, err
	}

	if u := findUnit(units, "WAVE"); u != nil {
		if v := findUnit(units, "FLUX"); v != nil {
			wave, flux = u.Data, v.Data
		}
	}
	if wave == nil {
		var carrying []*unit
		for _, u := range units {
			if len(u.Data) > 0 {
				carrying = append(carrying, u)
			}
		}
		if len(carrying) < 2 {
			return nil, nil, fmt.Errorf("%w: %s has %d data units, want 2",
				ErrBadSpectrum, path, len(carrying))
		}
		wave, flux = carrying[0].Data, carrying[1].Data
	}

	if len(wave) == 0 || len(wave) != len(flux) {
		return nil, nil, fmt.Errorf("%w: %s wavelength and flux lengths differ",
			ErrBadSpectrum, path)
	}

	return wave, flux, nil
}

// ParseRawFiles recovers the raw-file list recorded by Save from a
// primary header, ordered by the numeric suffix of the F cards.
func ParseRawFiles(h Header) []string {
	type entry struct {
		i    int
		name string
	}
	var entries []entry
	for k, v := range h {
		if !strings.HasPrefix(k, "F") {
			continue
		}
		i, err := strconv.Atoi(k[1:])
		if err != nil {
			continue
		}
		entries = append(entries, entry{i: i, name: v})
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].i < entries[b].i })

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}

	return out
}

// loadFile opens and parses every unit of a FITS file.
func loadFile(path string) ([]*unit, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("master: opening %s: %w", path, err)
	}
	defer in.Close()

	units, err := readFITS(in)
	if err != nil {
		return nil, fmt.Errorf("master: reading %s: %w", path, err)
	}

	return units, nil
}

// findUnit returns the unit with the given extension name, or nil.
func findUnit(units []*unit, name string) *unit {
	for _, u := range units {
		if strings.EqualFold(u.Name(), name) {
			return u
		}
	}

	return nil
}
