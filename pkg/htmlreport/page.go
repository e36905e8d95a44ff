package htmlreport

import (
	"bufio"
	"fmt"
	"html/template"
	"io"
	"time"
)

// DefaultDateLayout renders instants in the medium date-time form, e.g. "Mar 4, 2010 1:02:03 PM"
const DefaultDateLayout = "Jan 2, 2006 3:04:05 PM"

// PageDescriptor carries the static identity of a page type
type PageDescriptor struct {
	FileName     string // output file name, also used as link target
	Label        string // human readable label for navigation
	ElementStyle string // style category for CSS scoping and anchors
}

// Page is a single document of the report
type Page interface {
	Descriptor() PageDescriptor
	Content(sink Sink) error
}

// Context holds report wide settings shared by all pages
type Context struct {
	FormatTime func(time.Time) string // nil means DefaultDateLayout in the local zone
	Parent     *PageDescriptor // optional page linked from the breadcrumb
	Title      string
	Footer     string
}

// DefaultContext formats timestamps in the local time zone with DefaultDateLayout
func DefaultContext() *Context {
	return &Context{
		FormatTime: LayoutFormatter(DefaultDateLayout, time.Local),
		Title:      "Coverage Report",
		Footer:     "Created with jacoco-report",
	}
}

// LayoutFormatter returns a time formatter using layout in loc
func LayoutFormatter(layout string, loc *time.Location) func(time.Time) string {
	return func(t time.Time) string {
		return t.In(loc).Format(layout)
	}
}

var pageTemplate = template.Must(template.New("page").Parse(pageTemplateText))

type pageData struct {
	Title           string
	Footer          string
	Page            PageDescriptor
	Parent          *PageDescriptor
	BreadcrumbStyle string
	FooterStyle     string
}

func newPageData(page PageDescriptor, ctx *Context) pageData {
	return pageData{
		Title:           ctx.Title,
		Footer:          ctx.Footer,
		Page:            page,
		Parent:          ctx.Parent,
		BreadcrumbStyle: StyleBreadcrumb,
		FooterStyle:     StyleFooter,
	}
}

// WritePage writes page into folder under its descriptor's file name
func WritePage(folder *OutputFolder, page Page, ctx *Context) (err error) {
	f, err := folder.Create(page.Descriptor().FileName)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close page: %w", cerr)
		}
	}()

	w := bufio.NewWriterSize(f, 64*1024)
	if err := RenderPage(w, page, ctx); err != nil {
		return err
	}
	return w.Flush()
}

// RenderPage writes the complete document for page to w: header and
// breadcrumb, the page content, then the footer.
func RenderPage(w io.Writer, page Page, ctx *Context) error {
	if ctx == nil {
		ctx = DefaultContext()
	}
	data := newPageData(page.Descriptor(), ctx)

	if err := pageTemplate.ExecuteTemplate(w, "header", data); err != nil {
		return fmt.Errorf("write page header: %w", err)
	}

	hw := NewHTMLWriter(w)
	if err := page.Content(hw); err != nil {
		return fmt.Errorf("write page content: %w", err)
	}
	if err := hw.Close(); err != nil {
		return fmt.Errorf("write page content: %w", err)
	}

	if err := pageTemplate.ExecuteTemplate(w, "footer", data); err != nil {
		return fmt.Errorf("write page footer: %w", err)
	}
	return nil
}

const pageTemplateText = `{{define "header"}}<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Page.Label}}{{if .Title}} - {{.Title}}{{end}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            background: #f5f5f5;
            color: #333;
            margin: 0;
            padding: 20px;
        }
        .breadcrumb {
            background: #fff;
            border-bottom: 1px solid #ddd;
            padding: 8px 12px;
            margin-bottom: 16px;
        }
        .breadcrumb a { color: #0366d6; text-decoration: none; }
        table.coveragetable {
            border-collapse: collapse;
            background: #fff;
            margin-bottom: 16px;
        }
        table.coveragetable thead td {
            background: #f0f0f0;
            font-weight: 600;
            border-bottom: 2px solid #ddd;
        }
        table.coveragetable td {
            padding: 6px 12px;
            border-bottom: 1px solid #eee;
        }
        code { font-family: 'SF Mono', Monaco, 'Cascadia Code', monospace; }
        .el_session, .el_class { white-space: nowrap; }
        .footer { margin-top: 24px; color: #666; font-size: 0.85em; }
    </style>
</head>
<body>
<div class="{{.BreadcrumbStyle}}" id="breadcrumb">{{if .Parent}}<a href="{{.Parent.FileName}}" class="{{.Parent.ElementStyle}}">{{.Parent.Label}}</a> &gt; {{end}}<span class="{{.Page.ElementStyle}}">{{.Page.Label}}</span></div>
<h1>{{.Page.Label}}</h1>
{{end}}{{define "footer"}}
<div class="{{.FooterStyle}}">{{.Footer}}</div>
</body>
</html>
{{end}}`
