package flexure

import (
	"fmt"

	"github.com/katalvlaran/specalign/parset"
)

// Par declares the configuration schema of the flexure corrector.
// Keys:
//   - spec         — extraction supplying the sky spectrum (boxcar or
//     optimal).
//   - max_shift    — half-width of the correlation search window in
//     pixels.
//   - archive_spec — explicit archive sky file, overriding the
//     spectrograph default.
func Par() *parset.ParSet {
	return parset.MustNew([]parset.Def{
		{
			Key:     "spec",
			Default: parset.String(MethodBoxcar),
			Options: []parset.Value{parset.String(MethodBoxcar), parset.String(MethodOptimal)},
			Kinds:   []parset.Kind{parset.KindString},
			Descr:   "Extraction whose sky spectrum drives the flexure estimate",
		},
		{
			Key:     "max_shift",
			Default: parset.Int(DefaultOptions().MaxShift),
			Kinds:   []parset.Kind{parset.KindInt},
			Descr:   "Maximum allowed flexure shift in pixels",
		},
		{
			Key:   "archive_spec",
			Kinds: []parset.Kind{parset.KindString},
			Descr: "Archive sky spectrum to correlate against; unset picks a default for the spectrograph",
		},
	},
		parset.WithSection("flexure"),
		parset.WithSectionComment("Parameters for the wavelength flexure correction."),
	)
}

// FromParSet converts a parameter set built by Par (possibly modified
// from configuration) into corrector Options. Unset keys keep their
// zero-value defaults.
func FromParSet(p *parset.ParSet) (Options, error) {
	opts := DefaultOptions()

	v, err := p.Get("spec")
	if err != nil {
		return Options{}, err
	}
	if s, ok := v.(parset.String); ok {
		opts.Method = string(s)
	}

	v, err = p.Get("max_shift")
	if err != nil {
		return Options{}, err
	}
	if i, ok := v.(parset.Int); ok {
		if i <= 0 {
			return Options{}, fmt.Errorf("%w: max_shift must be positive, got %d", parset.ErrInvalidValue, int64(i))
		}
		opts.MaxShift = int(i)
	}

	v, err = p.Get("archive_spec")
	if err != nil {
		return Options{}, err
	}
	if s, ok := v.(parset.String); ok {
		opts.ArchiveSpec = string(s)
	}

	return opts, nil
}
