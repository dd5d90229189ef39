package parset_test

import (
	"strings"
	"testing"

	"github.com/katalvlaran/specalign/parset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flexureSchema builds a fresh schema used by the config tests; calling
// it twice yields two structurally identical sets.
func flexureSchema(t *testing.T) *parset.ParSet {
	t.Helper()

	inner, err := parset.New([]parset.Def{
		{Key: "max_shift", Default: parset.Int(20),
			Kinds: []parset.Kind{parset.KindInt},
			Descr: "Maximum allowed flexure shift in pixels"},
		{Key: "spec", Default: parset.String("boxcar"),
			Options: []parset.Value{parset.String("boxcar"), parset.String("optimal")},
			Descr:   "Extraction to use for the sky spectrum"},
		{Key: "archive_spec",
			Kinds: []parset.Kind{parset.KindString},
			Descr: "Archival sky spectrum file"},
	})
	require.NoError(t, err)

	p, err := parset.New([]parset.Def{
		{Key: "flexure", Value: inner, Descr: "Flexure correction parameters"},
	})
	require.NoError(t, err)

	return p
}

// TestConfigLines_Structure checks the rendered section layout: bracket
// depth, indentation, and key order.
func TestConfigLines_Structure(t *testing.T) {
	p := flexureSchema(t)
	lines := p.ConfigLines(parset.ConfigOptions{SectionName: "reduce"})
	require.NotEmpty(t, lines)

	assert.Equal(t, "[reduce]", lines[0])
	assert.Contains(t, lines, "    [[flexure]]")
	assert.Contains(t, lines, "        max_shift = 20")
	assert.Contains(t, lines, "        spec = boxcar")
	assert.Contains(t, lines, "        archive_spec = None")
}

// TestConfigLines_Descriptions checks that descriptions are emitted as
// wrapped '#' comments no wider than the fixed column budget.
func TestConfigLines_Descriptions(t *testing.T) {
	p := parset.MustNew([]parset.Def{
		{Key: "k", Value: parset.Int(1),
			Descr: "A deliberately verbose description of this parameter that " +
				"cannot possibly fit on a single seventy-two column line of output"},
	})
	lines := p.ConfigLines(parset.ConfigOptions{SectionName: "s", IncludeDescr: true})

	var comments []string
	for _, l := range lines {
		if strings.Contains(l, "#") {
			assert.LessOrEqual(t, len(l), 72, "comment lines must fit the column budget")
			comments = append(comments, l)
		}
	}
	assert.Greater(t, len(comments), 1, "long description must wrap to several lines")
}

// TestConfigLines_ExcludeDefaults verifies that default-valued keys are
// omitted on request.
func TestConfigLines_ExcludeDefaults(t *testing.T) {
	p := parset.MustNew([]parset.Def{
		{Key: "kept", Value: parset.Int(7), Default: parset.Int(1)},
		{Key: "dropped", Default: parset.Int(2)},
	})
	lines := p.ConfigLines(parset.ConfigOptions{SectionName: "s", ExcludeDefaults: true})

	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "kept = 7")
	assert.NotContains(t, joined, "dropped")
}

// TestConfigLines_IndexedList verifies that a list of nested sets is
// rendered as zero-padded indexed sub-sections keeping lexicographic
// and numeric order consistent.
func TestConfigLines_IndexedList(t *testing.T) {
	items := make(parset.List, 11)
	for i := range items {
		items[i] = parset.MustNew([]parset.Def{{Key: "n", Value: parset.Int(int64(i))}})
	}
	p := parset.MustNew([]parset.Def{
		{Key: "slit", Value: items, Descr: "Per-slit parameters"},
	})

	lines := p.ConfigLines(parset.ConfigOptions{SectionName: "s"})
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "[[slit01]]", "11 items need two-digit zero-padded indices")
	assert.Contains(t, joined, "[[slit11]]")
	assert.NotContains(t, joined, "[[slit1]]\n", "unpadded index must not appear")
}

// TestConfigLines_EmptySection verifies that a section carrying no
// content renders to nothing.
func TestConfigLines_EmptySection(t *testing.T) {
	p := parset.MustNew([]parset.Def{
		{Key: "k", Default: parset.Int(1)},
	})
	lines := p.ConfigLines(parset.ConfigOptions{SectionName: "s", ExcludeDefaults: true})
	assert.Empty(t, lines, "nothing but the header must collapse to no output")
}

// TestParseConfig_Tree checks section nesting and assignment capture.
func TestParseConfig_Tree(t *testing.T) {
	root, err := parset.ParseConfig([]string{
		"# top comment",
		"[reduce]",
		"    [[flexure]]",
		"        max_shift = 30",
		"",
		"        spec = optimal",
	})
	require.NoError(t, err)

	reduce := root.Sub("reduce")
	require.NotNil(t, reduce)
	flex := reduce.Sub("flexure")
	require.NotNil(t, flex)

	raw, ok := flex.Val("max_shift")
	assert.True(t, ok)
	assert.Equal(t, "30", raw)
}

// TestParseConfig_Malformed covers syntax errors.
func TestParseConfig_Malformed(t *testing.T) {
	for _, tc := range []struct {
		name  string
		lines []string
	}{
		{"unbalanced brackets", []string{"[[name]"}},
		{"assignment outside section", []string{"a = 1"}},
		{"depth jump", []string{"[a]", "[[[b]]]"}},
		{"no equals", []string{"[a]", "just text"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parset.ParseConfig(tc.lines)
			assert.ErrorIs(t, err, parset.ErrConfigSyntax)
		})
	}
}

// TestConfigRoundTrip renders a set with non-default explicit values,
// parses the lines back, and applies them to a fresh schema-matching
// set: every explicitly-set value must be reproduced exactly.
func TestConfigRoundTrip(t *testing.T) {
	src := flexureSchema(t)
	flex := src.MustGet("flexure").(*parset.ParSet)
	require.NoError(t, flex.Set("max_shift", parset.Int(35)))
	require.NoError(t, flex.Set("spec", parset.String("optimal")))
	require.NoError(t, flex.Set("archive_spec", parset.String("paranal_sky.fits")))

	lines := src.ConfigLines(parset.ConfigOptions{SectionName: "reduce", IncludeDescr: true})
	require.NotEmpty(t, lines)

	root, err := parset.ParseConfig(lines)
	require.NoError(t, err)

	dst := flexureSchema(t)
	require.NoError(t, dst.SetFromConfig(root.Sub("reduce")))

	got := dst.MustGet("flexure").(*parset.ParSet)
	assert.Equal(t, parset.Int(35), got.MustGet("max_shift"))
	assert.Equal(t, parset.String("optimal"), got.MustGet("spec"))
	assert.Equal(t, parset.String("paranal_sky.fits"), got.MustGet("archive_spec"))
}

// TestConfigRoundTrip_Sequences verifies sequence values survive the
// render/parse cycle.
func TestConfigRoundTrip_Sequences(t *testing.T) {
	mk := func() *parset.ParSet {
		return parset.MustNew([]parset.Def{
			{Key: "windows", Kinds: []parset.Kind{parset.KindFloats}},
			{Key: "orders", Kinds: []parset.Kind{parset.KindInts}},
		})
	}

	src := mk()
	require.NoError(t, src.Set("windows", parset.Floats{5560.5, 6300, 6363.75}))
	require.NoError(t, src.Set("orders", parset.Ints{3, 4, 5}))

	lines := src.ConfigLines(parset.ConfigOptions{SectionName: "sky"})
	root, err := parset.ParseConfig(lines)
	require.NoError(t, err)

	dst := mk()
	require.NoError(t, dst.SetFromConfig(root.Sub("sky")))
	assert.Equal(t, parset.Floats{5560.5, 6300, 6363.75}, dst.MustGet("windows"))
	assert.Equal(t, parset.Ints{3, 4, 5}, dst.MustGet("orders"))
}

// TestSetFromConfig_IndexedList verifies values are routed into list
// entries by their zero-padded section suffix.
func TestSetFromConfig_IndexedList(t *testing.T) {
	mk := func() *parset.ParSet {
		items := parset.List{
			parset.MustNew([]parset.Def{{Key: "n", Kinds: []parset.Kind{parset.KindInt}}}),
			parset.MustNew([]parset.Def{{Key: "n", Kinds: []parset.Kind{parset.KindInt}}}),
		}

		return parset.MustNew([]parset.Def{{Key: "slit", Value: items}})
	}

	src := mk()
	lst := src.MustGet("slit").(parset.List)
	require.NoError(t, lst[0].Set("n", parset.Int(10)))
	require.NoError(t, lst[1].Set("n", parset.Int(11)))

	lines := src.ConfigLines(parset.ConfigOptions{SectionName: "s"})
	root, err := parset.ParseConfig(lines)
	require.NoError(t, err)

	dst := mk()
	require.NoError(t, dst.SetFromConfig(root.Sub("s")))
	got := dst.MustGet("slit").(parset.List)
	assert.Equal(t, parset.Int(10), got[0].MustGet("n"))
	assert.Equal(t, parset.Int(11), got[1].MustGet("n"))
}

// TestWriteConfig_NoSection verifies ErrNoSection when plain values are
// written without a top-level name.
func TestWriteConfig_NoSection(t *testing.T) {
	p := parset.MustNew([]parset.Def{{Key: "k", Value: parset.Int(1)}})

	var sb strings.Builder
	assert.ErrorIs(t, p.WriteConfig(&sb, parset.ConfigOptions{}), parset.ErrNoSection)
	assert.NoError(t, p.WriteConfig(&sb, parset.ConfigOptions{SectionName: "s"}))
	assert.Contains(t, sb.String(), "[s]")
}
