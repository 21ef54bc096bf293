package export

import (
	"context"
	"fmt"

	"contractview/internal/metrics"
	"contractview/internal/render"
)

// Source renders a stored contract, optionally at a past revision and with a
// session's mention values.
type Source interface {
	RenderContract(ctx context.Context, name, revision, sessionID string) (Rendered, error)
}

// Service provides contract export functionality
type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// Export generates an export in the requested format
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	rendered, err := s.source.RenderContract(ctx, req.Name, req.Revision, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("render contract: %w", err)
	}
	result, err := Build(ctx, rendered, req.Format)
	metrics.Export(string(req.Format), err)
	return result, err
}

// Build formats an already rendered contract.
func Build(ctx context.Context, rendered Rendered, format Format) (*Result, error) {
	title := rendered.Title
	if title == "" {
		title = rendered.Name
	}

	if format == FormatText {
		return &Result{
			Data:     []byte(render.PlainText(rendered.Tree) + "\n"),
			Filename: sanitizeFilename(title) + ".txt",
			MimeType: "text/plain; charset=utf-8",
		}, nil
	}

	html, err := Page(rendered)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	switch format {
	case FormatHTML:
		return &Result{
			Data:     []byte(html),
			Filename: sanitizeFilename(title) + ".html",
			MimeType: "text/html; charset=utf-8",
		}, nil
	case FormatPDF:
		return exportPDF(ctx, html, title)
	case FormatDOCX:
		return exportDOCX(ctx, html, title)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
