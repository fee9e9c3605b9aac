package sqlcl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeEmptyAndNoRows(t *testing.T) {
	for _, kind := range []Kind{KindEmpty, KindNoRows} {
		for _, scalar := range []bool{false, true} {
			out := &Output{Kind: kind}

			v, err := out.Shape(scalar)

			assert.NoError(t, err)
			assert.Nil(t, v)
		}
	}
}

func TestShapeError(t *testing.T) {
	out := &Output{Kind: KindError, Err: "ORA-00942: table or view does not exist"}

	v, err := out.Shape(false)

	assert.Nil(t, v)
	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "ORA-00942: table or view does not exist", qerr.Text)
	assert.Equal(t, qerr.Text, qerr.Error())
}

func TestShapeMessageIgnoresScalarFlag(t *testing.T) {
	out := &Output{Kind: KindMessage, Lines: []string{"PL/SQL procedure successfully completed."}}

	for _, scalar := range []bool{false, true} {
		v, err := out.Shape(scalar)

		require.NoError(t, err)
		assert.Equal(t, []string{"PL/SQL procedure successfully completed."}, v)
	}
}

func TestShapeTableRows(t *testing.T) {
	out := &Output{Kind: KindTable, Table: &Table{
		Header: []string{"ID", "NAME"},
		Rows:   []Row{{"ID": "1", "NAME": "x"}},
	}}

	v, err := out.Shape(false)

	require.NoError(t, err)
	assert.Equal(t, []Row{{"ID": "1", "NAME": "x"}}, v)
}

func TestShapeTableScalar(t *testing.T) {
	out := &Output{Kind: KindTable, Table: &Table{
		Header: []string{"ID", "NAME"},
		Rows:   []Row{{"ID": "1", "NAME": "x"}, {"ID": "2", "NAME": "y"}},
	}}

	v, err := out.Shape(true)

	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestShapeTableScalarNoRows(t *testing.T) {
	out := &Output{Kind: KindTable, Table: &Table{Header: []string{"ID"}}}

	v, err := out.Shape(true)

	require.NoError(t, err)
	assert.Nil(t, v)
}
