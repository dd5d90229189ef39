package pardb_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/specalign/pardb"
	"github.com/katalvlaran/specalign/parset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowSet builds one parameter set of the shared test schema.
func rowSet(t *testing.T, shift float64, spec string, windows parset.Floats) *parset.ParSet {
	t.Helper()

	p, err := parset.New([]parset.Def{
		{Key: "shift", Value: parset.Float(shift),
			Kinds: []parset.Kind{parset.KindInt, parset.KindFloat}},
		{Key: "spec", Value: parset.String(spec),
			Kinds: []parset.Kind{parset.KindString}},
		{Key: "windows", Value: windows,
			Kinds: []parset.Kind{parset.KindFloats}},
	})
	require.NoError(t, err)

	return p
}

// TestNew_SchemaMismatch verifies that differing key sets are rejected
// even when counts match.
func TestNew_SchemaMismatch(t *testing.T) {
	a := parset.MustNew([]parset.Def{{Key: "x", Value: parset.Int(1)}})
	b := parset.MustNew([]parset.Def{{Key: "y", Value: parset.Int(1)}})

	_, err := pardb.New([]*parset.ParSet{a, b})
	assert.ErrorIs(t, err, pardb.ErrSchemaMismatch)

	// Differing counts.
	c := parset.MustNew([]parset.Def{
		{Key: "x", Value: parset.Int(1)},
		{Key: "z", Value: parset.Int(2)},
	})
	_, err = pardb.New([]*parset.ParSet{a, c})
	assert.ErrorIs(t, err, pardb.ErrSchemaMismatch)
}

// TestNew_ColumnInference checks the storage chosen for numeric,
// string, and sequence columns.
func TestNew_ColumnInference(t *testing.T) {
	sets := []*parset.ParSet{
		rowSet(t, 1.5, "boxcar", parset.Floats{1, 2, 3}),
		rowSet(t, -0.25, "optimal", parset.Floats{4, 5, 6}),
	}
	db, err := pardb.New(sets)
	require.NoError(t, err)
	assert.Equal(t, 2, db.NSets())
	assert.Equal(t, 3, db.NPar())

	fs, err := db.Floats("shift")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -0.25}, fs, "numeric scalars unify to float64")

	col, err := db.Col("spec")
	require.NoError(t, err)
	assert.Equal(t, pardb.ColString, col.Kind)
	assert.Equal(t, len("optimal"), col.Width, "string width is the max observed")

	col, err = db.Col("windows")
	require.NoError(t, err)
	assert.Equal(t, pardb.ColArray, col.Kind)
	assert.Equal(t, 3, col.Shape, "array shape comes from the first row")
}

// TestNew_UnsetNumericPolicy verifies the explicit NaN policy: unset
// numeric entries are rejected by default and NaN-filled on request.
func TestNew_UnsetNumericPolicy(t *testing.T) {
	mk := func() *parset.ParSet {
		return parset.MustNew([]parset.Def{
			{Key: "shift", Kinds: []parset.Kind{parset.KindInt, parset.KindFloat}},
		})
	}
	full := mk()
	require.NoError(t, full.Set("shift", parset.Float(2)))
	empty := mk()

	_, err := pardb.New([]*parset.ParSet{full, empty})
	assert.ErrorIs(t, err, pardb.ErrUnsetNumeric, "default policy rejects unset numerics")

	db, err := pardb.New([]*parset.ParSet{full, empty}, pardb.WithNaNFill())
	require.NoError(t, err)
	fs, err := db.Floats("shift")
	require.NoError(t, err)
	assert.Equal(t, 2.0, fs[0])
	assert.True(t, math.IsNaN(fs[1]), "opt-in policy stores NaN")
}

// TestNew_MixedKindsGoOpaque verifies that keys declaring both scalar
// and sequence kinds fall back to opaque storage.
func TestNew_MixedKindsGoOpaque(t *testing.T) {
	p := parset.MustNew([]parset.Def{
		{Key: "v", Value: parset.Float(1),
			Kinds: []parset.Kind{parset.KindFloat, parset.KindFloats}},
	})
	db, err := pardb.New([]*parset.ParSet{p})
	require.NoError(t, err)

	col, err := db.Col("v")
	require.NoError(t, err)
	assert.Equal(t, pardb.ColOpaque, col.Kind)
	assert.Equal(t, parset.Float(1), col.Values[0])
}

// TestNew_ArrayShapeMismatch verifies fixed-shape enforcement.
func TestNew_ArrayShapeMismatch(t *testing.T) {
	sets := []*parset.ParSet{
		rowSet(t, 1, "a", parset.Floats{1, 2, 3}),
		rowSet(t, 2, "b", parset.Floats{1, 2}),
	}
	_, err := pardb.New(sets)
	assert.ErrorIs(t, err, pardb.ErrSchemaMismatch)
}

// TestRow reconstructs a row as parset values.
func TestRow(t *testing.T) {
	db, err := pardb.New([]*parset.ParSet{
		rowSet(t, 1.5, "boxcar", parset.Floats{7, 8, 9}),
	})
	require.NoError(t, err)

	row, err := db.Row(0)
	require.NoError(t, err)
	assert.Equal(t, parset.Float(1.5), row[0])
	assert.Equal(t, parset.String("boxcar"), row[1])
	assert.Equal(t, parset.Floats{7, 8, 9}, row[2])

	_, err = db.Row(1)
	assert.Error(t, err)
}

// TestAppend verifies append-only merging and its compatibility checks.
func TestAppend(t *testing.T) {
	a, err := pardb.New([]*parset.ParSet{rowSet(t, 1, "a", parset.Floats{1, 2, 3})})
	require.NoError(t, err)
	b, err := pardb.New([]*parset.ParSet{rowSet(t, 2, "bb", parset.Floats{4, 5, 6})})
	require.NoError(t, err)

	require.NoError(t, a.Append(b))
	assert.Equal(t, 2, a.NSets())

	fs, err := a.Floats("shift")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, fs)

	col, err := a.Col("spec")
	require.NoError(t, err)
	assert.Equal(t, 2, col.Width, "width widens to the appended maximum")

	// Incompatible array shape.
	c, err := pardb.New([]*parset.ParSet{rowSet(t, 3, "c", parset.Floats{1})})
	require.NoError(t, err)
	assert.ErrorIs(t, a.Append(c), pardb.ErrSchemaMismatch)
}
