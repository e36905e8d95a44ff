package htmlreport

import (
	"errors"
	"fmt"
	"html"
	"io"
)

// Sink receives the structural markup operations a page emits. Every call may
// fail with the error of the underlying destination.
type Sink interface {
	Paragraph(text string) error
	OpenTable(style string) error
	CloseTable() error
	OpenHead() error
	CloseHead() error
	OpenBody() error
	CloseBody() error
	OpenRow() error
	CloseRow() error
	OpenCell(style string) error
	CloseCell() error
	Span(style, text string) error
	Code(text string) error
	Text(text string) error
}

// ErrUnbalanced is returned when an element is closed out of order or left open.
var ErrUnbalanced = errors.New("unbalanced html element")

// HTMLWriter is a Sink that writes escaped HTML to an io.Writer.
// The first write failure is kept and returned by every later call.
type HTMLWriter struct {
	w    io.Writer
	open []string
	err  error
}

// NewHTMLWriter creates a writer emitting markup to w
func NewHTMLWriter(w io.Writer) *HTMLWriter {
	return &HTMLWriter{w: w}
}

// Err returns the first error the writer hit, if any
func (hw *HTMLWriter) Err() error {
	return hw.err
}

// Close verifies every opened element has been closed
func (hw *HTMLWriter) Close() error {
	if hw.err != nil {
		return hw.err
	}
	if len(hw.open) > 0 {
		return fmt.Errorf("%w: <%s> still open", ErrUnbalanced, hw.open[len(hw.open)-1])
	}
	return nil
}

func (hw *HTMLWriter) write(s string) error {
	if hw.err != nil {
		return hw.err
	}
	if _, err := io.WriteString(hw.w, s); err != nil {
		hw.err = err
	}
	return hw.err
}

func (hw *HTMLWriter) openTag(tag, style string) error {
	s := "<" + tag + ">"
	if style != "" {
		s = fmt.Sprintf(`<%s class="%s">`, tag, html.EscapeString(style))
	}
	if err := hw.write(s); err != nil {
		return err
	}
	hw.open = append(hw.open, tag)
	return nil
}

func (hw *HTMLWriter) closeTag(tag string) error {
	if hw.err != nil {
		return hw.err
	}
	n := len(hw.open)
	if n == 0 || hw.open[n-1] != tag {
		return fmt.Errorf("%w: </%s>", ErrUnbalanced, tag)
	}
	hw.open = hw.open[:n-1]
	return hw.write("</" + tag + ">")
}

// leaf writes a complete element with escaped text content
func (hw *HTMLWriter) leaf(tag, style, text string) error {
	if err := hw.openTag(tag, style); err != nil {
		return err
	}
	if err := hw.Text(text); err != nil {
		return err
	}
	return hw.closeTag(tag)
}

func (hw *HTMLWriter) Paragraph(text string) error { return hw.leaf("p", "", text) }

func (hw *HTMLWriter) OpenTable(style string) error { return hw.openTag("table", style) }

func (hw *HTMLWriter) CloseTable() error { return hw.closeTag("table") }

// OpenHead opens the header row group; header cells are plain cells inside it
func (hw *HTMLWriter) OpenHead() error { return hw.openTag("thead", "") }

func (hw *HTMLWriter) CloseHead() error { return hw.closeTag("thead") }

func (hw *HTMLWriter) OpenBody() error { return hw.openTag("tbody", "") }

func (hw *HTMLWriter) CloseBody() error { return hw.closeTag("tbody") }

func (hw *HTMLWriter) OpenRow() error { return hw.openTag("tr", "") }

func (hw *HTMLWriter) CloseRow() error { return hw.closeTag("tr") }

func (hw *HTMLWriter) OpenCell(style string) error { return hw.openTag("td", style) }

func (hw *HTMLWriter) CloseCell() error { return hw.closeTag("td") }

func (hw *HTMLWriter) Span(style, text string) error { return hw.leaf("span", style, text) }

func (hw *HTMLWriter) Code(text string) error { return hw.leaf("code", "", text) }

func (hw *HTMLWriter) Text(text string) error { return hw.write(html.EscapeString(text)) }
