package htmlreport

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("disk full")

// shortWriter accepts n bytes and then fails
type shortWriter struct {
	buf strings.Builder
	n   int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if w.buf.Len()+len(p) > w.n {
		return 0, errDiskFull
	}
	return w.buf.Write(p)
}

func TestHTMLWriter_Markup(t *testing.T) {
	var buf strings.Builder
	hw := NewHTMLWriter(&buf)

	require.NoError(t, hw.Paragraph("a < b & c"))
	require.NoError(t, hw.OpenTable(StyleCoverageTable))
	require.NoError(t, hw.OpenHead())
	require.NoError(t, hw.OpenRow())
	require.NoError(t, hw.OpenCell(""))
	require.NoError(t, hw.Text("Class"))
	require.NoError(t, hw.CloseCell())
	require.NoError(t, hw.CloseRow())
	require.NoError(t, hw.CloseHead())
	require.NoError(t, hw.OpenBody())
	require.NoError(t, hw.OpenRow())
	require.NoError(t, hw.OpenCell("ctr"))
	require.NoError(t, hw.Span(StyleElClass, "<Foo>"))
	require.NoError(t, hw.Code("00ff"))
	require.NoError(t, hw.CloseCell())
	require.NoError(t, hw.CloseRow())
	require.NoError(t, hw.CloseBody())
	require.NoError(t, hw.CloseTable())
	require.NoError(t, hw.Close())

	want := `<p>a &lt; b &amp; c</p>` +
		`<table class="coveragetable"><thead><tr><td>Class</td></tr></thead>` +
		`<tbody><tr><td class="ctr"><span class="el_class">&lt;Foo&gt;</span><code>00ff</code></td></tr></tbody></table>`
	assert.Equal(t, want, buf.String())
}

func TestHTMLWriter_Unbalanced(t *testing.T) {
	var buf strings.Builder
	hw := NewHTMLWriter(&buf)

	require.NoError(t, hw.OpenTable(""))
	err := hw.CloseRow()
	require.ErrorIs(t, err, ErrUnbalanced)

	err = hw.Close()
	require.ErrorIs(t, err, ErrUnbalanced)
	assert.Contains(t, err.Error(), "<table>")
}

func TestHTMLWriter_StickyError(t *testing.T) {
	w := &shortWriter{n: 10}
	hw := NewHTMLWriter(w)

	require.NoError(t, hw.Text("0123456789"))
	err := hw.Paragraph("overflow")
	require.ErrorIs(t, err, errDiskFull)

	// later calls report the same failure and write nothing
	require.ErrorIs(t, hw.Text("x"), errDiskFull)
	require.ErrorIs(t, hw.CloseTable(), errDiskFull)
	require.ErrorIs(t, hw.Close(), errDiskFull)
	require.ErrorIs(t, hw.Err(), errDiskFull)
	assert.Equal(t, "0123456789", w.buf.String())
}
