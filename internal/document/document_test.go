package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_AssignsIdentityAndVersion(t *testing.T) {
	d := New("hello")
	require.NotEmpty(t, d.ID())
	require.Equal(t, uint64(1), d.Version())
	require.Equal(t, 5, d.Len())
}

func TestWithText_KeepsIdentityBumpsVersion(t *testing.T) {
	d := NewWithID("doc-1", "a")
	next := d.WithText("ab")
	require.Equal(t, "doc-1", next.ID())
	require.Equal(t, uint64(2), next.Version())
	require.Equal(t, "a", d.Text(), "original snapshot must not change")
}

func TestLineAt(t *testing.T) {
	d := NewWithID("x", "# Title\nbody\n")
	require.Equal(t, 3, d.LineCount())

	l := d.LineAt(0)
	require.Equal(t, 1, l.Number)
	require.Equal(t, "# Title", l.Text)

	l = d.LineAt(7) // the newline belongs to line 1
	require.Equal(t, 1, l.Number)

	l = d.LineAt(10)
	require.Equal(t, 2, l.Number)
	require.Equal(t, 8, l.From)
	require.Equal(t, 12, l.To)
	require.Equal(t, "body", l.Text)

	l = d.LineAt(13)
	require.Equal(t, 3, l.Number)
	require.Equal(t, "", l.Text)
}

func TestLineAt_ClampsOutOfRange(t *testing.T) {
	d := NewWithID("x", "ab\ncd")
	require.Equal(t, 1, d.LineAt(-5).Number)
	require.Equal(t, 2, d.LineAt(500).Number)
}

func TestEmptyDocumentHasOneLine(t *testing.T) {
	d := NewWithID("x", "")
	require.Equal(t, 1, d.LineCount())
	l := d.Line(1)
	require.Equal(t, 0, l.From)
	require.Equal(t, 0, l.To)
}

func TestReplace(t *testing.T) {
	d := NewWithID("x", "hello world")
	next := d.Replace(6, 11, "there")
	require.Equal(t, "hello there", next.Text())

	next = d.Replace(11, 6, "!") // reversed bounds are normalised
	require.Equal(t, "hello !", next.Text())

	next = d.Replace(-3, 0, ">")
	require.Equal(t, ">hello world", next.Text())
}

func TestSlice_Clamps(t *testing.T) {
	d := NewWithID("x", "abc")
	require.Equal(t, "bc", d.Slice(1, 99))
	require.Equal(t, "", d.Slice(2, 1))
}
