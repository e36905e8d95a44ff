package htmlreport

// CSS class names attached to rendered elements. Page element styles double as
// the category token the report uses for scoping and anchors.
const (
	StyleCoverageTable = "coveragetable"
	StyleBreadcrumb    = "breadcrumb"
	StyleFooter        = "footer"

	StyleElSession = "el_session"
	StyleElClass   = "el_class"
	StyleElReport  = "el_report"
)
