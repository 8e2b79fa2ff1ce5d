package symbol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternIdentity(t *testing.T) {
	tbl := NewTable()
	a := tbl.Intern("foo")
	b := tbl.Intern("foo")
	require.Same(t, a, b)

	c := tbl.Intern("bar")
	require.NotSame(t, a, c)
	require.Equal(t, "foo", a.Name())
	require.Equal(t, "foo", a.String())
}

func TestTablesAreIndependent(t *testing.T) {
	t1, t2 := NewTable(), NewTable()
	a := t1.Intern("foo")
	b := t2.Intern("foo")
	require.NotSame(t, a, b)
	require.Equal(t, a.Name(), b.Name())
}
