// Package views holds the embedded HTML templates of the web interface.
package views

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templates embed.FS

// New returns the template engine. Template names are paths relative to the
// templates directory without the extension, e.g. "contacts/list".
func New() *html.Engine {
	root, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return html.NewFileSystem(http.FS(root), ".html")
}
