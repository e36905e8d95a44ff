package htmlreport

import (
	"errors"
	"strings"
)

// recordingSink captures every structural call as a compact string
type recordingSink struct {
	ops []string
}

func (r *recordingSink) add(op string) error {
	r.ops = append(r.ops, op)
	return nil
}

func (r *recordingSink) Paragraph(text string) error  { return r.add("p:" + text) }
func (r *recordingSink) OpenTable(style string) error { return r.add("table:" + style) }
func (r *recordingSink) CloseTable() error            { return r.add("/table") }
func (r *recordingSink) OpenHead() error              { return r.add("thead") }
func (r *recordingSink) CloseHead() error             { return r.add("/thead") }
func (r *recordingSink) OpenBody() error              { return r.add("tbody") }
func (r *recordingSink) CloseBody() error             { return r.add("/tbody") }
func (r *recordingSink) OpenRow() error               { return r.add("tr") }
func (r *recordingSink) CloseRow() error              { return r.add("/tr") }
func (r *recordingSink) OpenCell(style string) error  { return r.add("td:" + style) }
func (r *recordingSink) CloseCell() error             { return r.add("/td") }
func (r *recordingSink) Span(style, text string) error {
	return r.add("span:" + style + ":" + text)
}
func (r *recordingSink) Code(text string) error { return r.add("code:" + text) }
func (r *recordingSink) Text(text string) error { return r.add("text:" + text) }

// count returns how many recorded ops start with prefix
func (r *recordingSink) count(prefix string) int {
	n := 0
	for _, op := range r.ops {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}

var errSinkFull = errors.New("sink full")

// failingSink accepts limit calls and then fails every call
type failingSink struct {
	recordingSink
	limit int
	calls int
}

func (f *failingSink) add(op string) error {
	f.calls++
	if f.calls > f.limit {
		return errSinkFull
	}
	return f.recordingSink.add(op)
}

func (f *failingSink) Paragraph(text string) error  { return f.add("p:" + text) }
func (f *failingSink) OpenTable(style string) error { return f.add("table:" + style) }
func (f *failingSink) CloseTable() error            { return f.add("/table") }
func (f *failingSink) OpenHead() error              { return f.add("thead") }
func (f *failingSink) CloseHead() error             { return f.add("/thead") }
func (f *failingSink) OpenBody() error              { return f.add("tbody") }
func (f *failingSink) CloseBody() error             { return f.add("/tbody") }
func (f *failingSink) OpenRow() error               { return f.add("tr") }
func (f *failingSink) CloseRow() error              { return f.add("/tr") }
func (f *failingSink) OpenCell(style string) error  { return f.add("td:" + style) }
func (f *failingSink) CloseCell() error             { return f.add("/td") }
func (f *failingSink) Span(style, text string) error {
	return f.add("span:" + style + ":" + text)
}
func (f *failingSink) Code(text string) error { return f.add("code:" + text) }
func (f *failingSink) Text(text string) error { return f.add("text:" + text) }
