package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"path"
	"strconv"
	"strings"

	"propmedia/services/web/internal/access"
	"propmedia/services/web/internal/entity"
	"propmedia/services/web/internal/session"
)

//go:embed templates
var templateFS embed.FS

// Page is the data every page template receives. Content is page specific.
type Page struct {
	Title      string
	User       *entity.User
	Loading    bool
	Flashes    []session.Flash
	Categories []entity.Category
	Stream     string
	Content    interface{}
}

// Renderer holds one parsed template set per page, each sharing the layout
// and partials.
type Renderer struct {
	base  *template.Template
	pages map[string]*template.Template
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add":             func(a, b int) int { return a + b },
		"sub":             func(a, b int) int { return a - b },
		"canModerate":     access.CanModerate,
		"canCreatePost":   access.CanCreatePost,
		"canManagePosts":  access.CanManagePosts,
		"canViewContacts": access.CanViewContacts,
		"pageURL":         pageURL,
	}
}

func NewRenderer() (*Renderer, error) {
	base, err := template.New("layout").Funcs(templateFuncs()).ParseFS(templateFS, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{base: base, pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		tmpl, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := tmpl.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		r.pages[strings.TrimSuffix(path.Base(file), ".html")] = tmpl
	}
	return r, nil
}

// Page renders a full page into a buffer so a template error never leaves a
// half written response.
func (r *Renderer) Page(name string, data Page) ([]byte, error) {
	tmpl, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", name)
	}
	if data.Categories == nil {
		data.Categories = entity.Categories
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Partial renders one shared fragment, e.g. a post grid for a live update.
func (r *Renderer) Partial(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.base.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// pageURL sets the page query parameter on base, which may already carry
// a query string.
func pageURL(base string, page int) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
