package htmlreport

import (
	"fmt"
	"sort"
	"time"

	"github.com/goforwind/jacoco/pkg/data"
)

const (
	msgSessions        = "This coverage report is based on execution data from the following sessions:"
	msgNoSessions      = "No session information available."
	msgExecutionData   = "Execution data for the following classes is considered in this report:"
	msgNoExecutionData = "No execution data available."
)

// SessionsPageDescriptor identifies the sessions page within the report
var SessionsPageDescriptor = PageDescriptor{
	FileName:     ".sessions.html",
	Label:        "Sessions",
	ElementStyle: StyleElSession,
}

// SessionsPage lists the sessions and the class execution data a report is based on.
// A page is not safe for concurrent use; render separate pages from separate goroutines.
type SessionsPage struct {
	sessions      []data.SessionInfo
	executionData []data.ExecutionData // private copy sorted by name
	ctx           *Context
}

// NewSessionsPage creates the page. Sessions are shown in the given order,
// execution data sorted by class name; executionData itself is left untouched.
// A nil ctx, or one without FormatTime, formats with DefaultDateLayout in the local zone.
func NewSessionsPage(sessions []data.SessionInfo, executionData []data.ExecutionData, ctx *Context) *SessionsPage {
	if ctx == nil {
		ctx = DefaultContext()
	} else if ctx.FormatTime == nil {
		c := *ctx
		c.FormatTime = LayoutFormatter(DefaultDateLayout, time.Local)
		ctx = &c
	}

	sorted := make([]data.ExecutionData, len(executionData))
	copy(sorted, executionData)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	return &SessionsPage{
		sessions:      sessions,
		executionData: sorted,
		ctx:           ctx,
	}
}

// Descriptor returns SessionsPageDescriptor
func (p *SessionsPage) Descriptor() PageDescriptor {
	return SessionsPageDescriptor
}

// Content emits the session section followed by the execution data section.
// The first sink error stops rendering and is returned.
func (p *SessionsPage) Content(sink Sink) error {
	if len(p.sessions) == 0 {
		if err := sink.Paragraph(msgNoSessions); err != nil {
			return err
		}
	} else {
		if err := sink.Paragraph(msgSessions); err != nil {
			return err
		}
		if err := p.sessionTable(sink); err != nil {
			return err
		}
	}

	if len(p.executionData) == 0 {
		return sink.Paragraph(msgNoExecutionData)
	}
	if err := sink.Paragraph(msgExecutionData); err != nil {
		return err
	}
	return p.executionDataTable(sink)
}

func (p *SessionsPage) sessionTable(sink Sink) error {
	if err := openTable(sink, "Session", "Start Time", "Dump Time"); err != nil {
		return err
	}
	for _, s := range p.sessions {
		if err := sink.OpenRow(); err != nil {
			return err
		}
		if err := spanCell(sink, StyleElSession, s.ID); err != nil {
			return err
		}
		if err := textCell(sink, p.formatTimestamp(s.StartTimeStamp)); err != nil {
			return err
		}
		if err := textCell(sink, p.formatTimestamp(s.DumpTimeStamp)); err != nil {
			return err
		}
		if err := sink.CloseRow(); err != nil {
			return err
		}
	}
	return closeTable(sink)
}

func (p *SessionsPage) executionDataTable(sink Sink) error {
	if err := openTable(sink, "Class", "Id"); err != nil {
		return err
	}
	for _, e := range p.executionData {
		if err := sink.OpenRow(); err != nil {
			return err
		}
		if err := spanCell(sink, StyleElClass, e.Name); err != nil {
			return err
		}
		if err := sink.OpenCell(""); err != nil {
			return err
		}
		if err := sink.Code(FormatID(e.ID)); err != nil {
			return err
		}
		if err := sink.CloseCell(); err != nil {
			return err
		}
		if err := sink.CloseRow(); err != nil {
			return err
		}
	}
	return closeTable(sink)
}

func (p *SessionsPage) formatTimestamp(ms int64) string {
	return p.ctx.FormatTime(time.UnixMilli(ms))
}

// FormatID renders a class id as 16 lowercase hex digits of its unsigned
// 64-bit pattern, the form used to cross-reference ids across the report.
func FormatID(id int64) string {
	return fmt.Sprintf("%016x", uint64(id))
}

// openTable starts a coverage table with a header row and opens its body
func openTable(sink Sink, headers ...string) error {
	if err := sink.OpenTable(StyleCoverageTable); err != nil {
		return err
	}
	if err := sink.OpenHead(); err != nil {
		return err
	}
	if err := sink.OpenRow(); err != nil {
		return err
	}
	for _, h := range headers {
		if err := textCell(sink, h); err != nil {
			return err
		}
	}
	if err := sink.CloseRow(); err != nil {
		return err
	}
	if err := sink.CloseHead(); err != nil {
		return err
	}
	return sink.OpenBody()
}

func closeTable(sink Sink) error {
	if err := sink.CloseBody(); err != nil {
		return err
	}
	return sink.CloseTable()
}

func textCell(sink Sink, text string) error {
	if err := sink.OpenCell(""); err != nil {
		return err
	}
	if err := sink.Text(text); err != nil {
		return err
	}
	return sink.CloseCell()
}

func spanCell(sink Sink, style, text string) error {
	if err := sink.OpenCell(""); err != nil {
		return err
	}
	if err := sink.Span(style, text); err != nil {
		return err
	}
	return sink.CloseCell()
}
