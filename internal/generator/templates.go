package generator

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/goliatone/go-annocat/pkg/interfaces"
)

//go:embed templates/*.tmpl
var defaultTemplatesFS embed.FS

// NewDefaultRenderer returns a TemplateRenderer backed by html/template and the
// embedded reference site templates. Hosts can swap in their own engine through
// the generator dependencies.
func NewDefaultRenderer() interfaces.TemplateRenderer {
	return &goTemplateRenderer{}
}

type goTemplateRenderer struct {
	once sync.Once
	tpl  *template.Template
	err  error
}

func (r *goTemplateRenderer) ensureTemplates() (*template.Template, error) {
	r.once.Do(func() {
		r.tpl, r.err = template.New("annocat-site").
			Funcs(rendererFuncs()).
			ParseFS(defaultTemplatesFS, "templates/*.tmpl")
	})
	return r.tpl, r.err
}

func (r *goTemplateRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	tpl, err := r.ensureTemplates()
	if err != nil {
		return "", err
	}
	target := tpl.Lookup(name)
	if target == nil {
		target = tpl.Lookup(name + ".tmpl")
	}
	if target == nil {
		return "", fmt.Errorf("template %q not found", name)
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := target.Execute(writer, data); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

func (r *goTemplateRenderer) RenderString(content string, data any, out ...io.Writer) (string, error) {
	tpl, err := template.New("inline").Funcs(rendererFuncs()).Parse(content)
	if err != nil {
		return "", err
	}

	var writer io.Writer
	var buffer *bytes.Buffer
	if len(out) > 0 && out[0] != nil {
		writer = out[0]
	} else {
		buffer = &bytes.Buffer{}
		writer = buffer
	}

	if err := tpl.Execute(writer, data); err != nil {
		return "", err
	}
	if buffer != nil {
		return buffer.String(), nil
	}
	return "", nil
}

func rendererFuncs() template.FuncMap {
	return template.FuncMap{
		"safeHTML": func(value any) template.HTML { return toHTML(value) },
		"fenceClass": func(language string) string {
			language = strings.TrimSpace(language)
			if language == "" {
				return ""
			}
			return "language-" + language
		},
	}
}

func toHTML(value any) template.HTML {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case template.HTML:
		return v
	case string:
		return template.HTML(v)
	default:
		return template.HTML(fmt.Sprint(v))
	}
}
