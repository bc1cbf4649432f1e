package reports

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/JaimeStill/meridian/pkg/render"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	layoutGlob    = "templates/layout.html"
	layoutName    = "layout"
	maxStateLevel = 5
)

// Artifact is a rendered report ready for upload.
type Artifact struct {
	Data        []byte
	ContentType string
	Pages       int
}

// Renderer produces report artifacts from aggregated data.
type Renderer struct {
	templates *render.TemplateSet
	converter render.Converter
}

// NewRenderer parses the embedded report templates and pairs them with the
// converter used for PDF output.
func NewRenderer(converter render.Converter) (*Renderer, error) {
	views := make([]string, len(types))
	for i, t := range types {
		views[i] = templatePath(t)
	}

	ts, err := render.NewTemplateSet(templateFS, layoutGlob, views, funcs)
	if err != nil {
		return nil, fmt.Errorf("load report templates: %w", err)
	}

	return &Renderer{templates: ts, converter: converter}, nil
}

type document struct {
	Type Type
	Data *ReportData
}

// HTML renders the template for t.
func (r *Renderer) HTML(t Type, data *ReportData) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.templates.Render(&buf, layoutName, templatePath(t), document{Type: t, Data: data}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}

// Render encodes data in the report's format. PDF output is converted from
// the rendered template and validated before it is returned.
func (r *Renderer) Render(ctx context.Context, rpt *Report, data *ReportData) (*Artifact, error) {
	switch rpt.Format {
	case FormatPDF:
		markup, err := r.HTML(rpt.Type, data)
		if err != nil {
			return nil, err
		}

		pdf, err := r.converter.Convert(ctx, markup)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConvertFailed, err)
		}

		pages, err := render.ValidatePDF(pdf)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConvertFailed, err)
		}

		return &Artifact{Data: pdf, ContentType: rpt.Format.ContentType(), Pages: pages}, nil

	case FormatJSON:
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
		}
		return &Artifact{Data: body, ContentType: rpt.Format.ContentType()}, nil

	case FormatExcel:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, rpt.Format)

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, rpt.Format)
	}
}

func templatePath(t Type) string {
	return "templates/" + string(t) + ".html"
}

var funcs = template.FuncMap{
	"title": func(t Type) string {
		words := strings.Split(string(t), "_")
		for i, w := range words {
			if w != "" {
				words[i] = strings.ToUpper(w[:1]) + w[1:]
			}
		}
		return strings.Join(words, " ")
	},
	"timestamp": func(t time.Time) string {
		return t.Format("January 2, 2006 15:04 MST")
	},
	"barWidth": func(level int) int {
		return min(max(level, 0), maxStateLevel) * 100 / maxStateLevel
	},
	"hasRecommendations": func(rows []ReportRow) bool {
		for _, row := range rows {
			if len(row.Recommendations) > 0 {
				return true
			}
		}
		return false
	},
}
