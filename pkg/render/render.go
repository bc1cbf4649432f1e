// Package render turns report data into documents: HTML templates are parsed
// once at startup and rendered markup is converted to PDF by a Converter.
package render

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

// ErrTemplateNotFound indicates the requested view was not registered.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateSet holds pre-parsed view templates, each cloned from a shared
// layout so views can override the layout's blocks.
type TemplateSet struct {
	views map[string]*template.Template
}

// NewTemplateSet parses the layouts matched by layoutGlob and clones them for
// each view file in views. Parsing happens once so template errors surface at
// startup.
func NewTemplateSet(fsys fs.FS, layoutGlob string, views []string, funcs template.FuncMap) (*TemplateSet, error) {
	layouts, err := template.New("").Funcs(funcs).ParseFS(fsys, layoutGlob)
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}

	set := make(map[string]*template.Template, len(views))
	for _, view := range views {
		t, err := layouts.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %s: %w", view, err)
		}
		if _, err := t.ParseFS(fsys, view); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", view, err)
		}
		set[view] = t
	}

	return &TemplateSet{views: set}, nil
}

// Render executes layout from the template set registered for view.
func (ts *TemplateSet) Render(w io.Writer, layout, view string, data any) error {
	t, ok := ts.views[view]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, view)
	}
	return t.ExecuteTemplate(w, layout, data)
}

// Has reports whether view is registered.
func (ts *TemplateSet) Has(view string) bool {
	_, ok := ts.views[view]
	return ok
}
