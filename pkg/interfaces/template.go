package interfaces

import (
	"io"
)

// TemplateRenderer abstracts the template engine used to render reference
// pages. Hosts can supply their own engine; the generator ships an
// html/template default.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}
