package frontend

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// The admin shell inlines its script and stylesheet, so both tag kinds get a
// nonce attribute injected at load time.
var (
	scriptTagRegex = regexp.MustCompile(`<script([^>]*)>`)
	styleTagRegex  = regexp.MustCompile(`<style([^>]*)>`)
)

// LoadIndexTemplate reads index.html from the embedded filesystem and turns
// it into a template with nonce placeholders on every inline asset
func LoadIndexTemplate(distFS fs.FS) (*template.Template, error) {
	indexFile, err := distFS.Open("index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to open index.html: %w", err)
	}
	defer indexFile.Close()

	htmlContent, err := io.ReadAll(indexFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read index.html: %w", err)
	}

	tmpl, err := template.New("index").Parse(injectNoncePlaceholders(string(htmlContent)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}

	return tmpl, nil
}

func injectNoncePlaceholders(html string) string {
	html = scriptTagRegex.ReplaceAllString(html, `<script nonce="{{.Nonce}}"$1>`)
	html = styleTagRegex.ReplaceAllString(html, `<style nonce="{{.Nonce}}"$1>`)
	return html
}

// RenderIndex writes the shell with the request's CSP nonce filled in. The
// response is never cacheable because the nonce is per-request.
func RenderIndex(c *gin.Context, tmpl *template.Template, nonce string) error {
	var buf bytes.Buffer

	if err := tmpl.Execute(&buf, map[string]interface{}{"Nonce": nonce}); err != nil {
		return fmt.Errorf("failed to execute index template: %w", err)
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	return nil
}
