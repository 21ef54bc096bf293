// Package export turns rendered contracts into HTML, plain text, PDF and DOCX files.
package export

import (
	"errors"
	"time"

	"contractview/internal/render"
)

// Format represents the export output format
type Format string

const (
	FormatHTML Format = "html"
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// ParseFormat maps a query parameter to a Format; empty means HTML.
func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case "":
		return FormatHTML, nil
	case FormatHTML, FormatText, FormatPDF, FormatDOCX:
		return Format(value), nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Request contains parameters for an export operation
type Request struct {
	Name      string
	Revision  string // empty for the stored head
	SessionID string // empty renders every mention with its default
	Format    Format
}

// Rendered is a contract after it went through the renderer.
type Rendered struct {
	Name       string
	Title      string
	Revision   string
	RenderedAt time.Time
	Tree       *render.Element
}

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrUnsupportedFormat is returned for formats other than html, text, pdf and docx.
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrDOCXDependencyMissing indicates DOCX export runtime dependencies are unavailable.
	ErrDOCXDependencyMissing = errors.New("export docx dependency missing")
)
