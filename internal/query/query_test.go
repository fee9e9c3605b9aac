package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStripsBlankLines(t *testing.T) {
	got := Normalize("select id\r\n\r\nfrom t\n   \nwhere id = 1;")

	assert.Equal(t, "select id\nfrom t\nwhere id = 1;\n", got)
}

func TestNormalizeBlankOnlyFragments(t *testing.T) {
	for _, fragments := range [][]string{
		{},
		{""},
		{"\n\n"},
		{"   ", "\t", "\r\n"},
	} {
		assert.Equal(t, "", Normalize(fragments...), "fragments %q", fragments)
	}
}

func TestNormalizeJoinsFragmentsInOrder(t *testing.T) {
	got := Normalize("select 1 from dual;", "select 2 from dual;")

	assert.Equal(t, "select 1 from dual;\nselect 2 from dual;\n", got)
}

func TestNormalizePreservesIndentation(t *testing.T) {
	got := Normalize("begin\n  null;\nend;\n/")

	assert.Equal(t, "begin\n  null;\nend;\n/\n", got)
}

func TestIdentifyKind(t *testing.T) {
	cases := []struct {
		script string
		want   Kind
	}{
		{"select * from t", DQL},
		{"WITH x AS (select 1 from dual) select * from x", DQL},
		{"insert into t values (1)", DML},
		{"update t set a = 1", DML},
		{"delete from t", DML},
		{"merge into t using s on (t.id = s.id)", DML},
		{"create table t (id number)", DDL},
		{"drop table t", DDL},
		{"begin null; end;", PLSQL},
		{"declare x number; begin null; end;", PLSQL},
		{"-- a comment\nselect 1 from dual", DQL},
	}

	for _, c := range cases {
		kind, err := IdentifyKind(c.script)
		require.NoError(t, err, "script %q", c.script)
		assert.Equal(t, c.want, kind, "script %q", c.script)
	}
}

func TestIdentifyKindUnknown(t *testing.T) {
	for _, script := range []string{"", "-- only a comment", "frobnicate the database"} {
		_, err := IdentifyKind(script)
		assert.Error(t, err, "script %q", script)
	}
}

func TestKindIsSafe(t *testing.T) {
	assert.True(t, DQL.IsSafe())
	assert.False(t, DML.IsSafe())
	assert.False(t, DDL.IsSafe())
	assert.False(t, PLSQL.IsSafe())
}
