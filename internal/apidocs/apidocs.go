// Package apidocs serves the OpenAPI description of the API and a Swagger UI
// page that renders it.
//
// The document is written by hand in openapi.yaml and compiled into the
// binary, so the docs always match the build that serves them.
package apidocs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var document []byte

// swaggerUIVersion pins the swagger-ui-dist release loaded from the CDN.
const swaggerUIVersion = "5.17.14"

var page = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@{{.Version}}/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui" data-spec-url="{{.SpecURL}}"></div>
  <script src="https://unpkg.com/swagger-ui-dist@{{.Version}}/swagger-ui-bundle.js"></script>
  <script>
    const root = document.getElementById("swagger-ui");
    window.ui = SwaggerUIBundle({ url: root.dataset.specUrl, domNode: root });
  </script>
</body>
</html>
`))

// Docs holds the parsed document in both encodings.
type Docs struct {
	title    string
	yamlBody []byte
	jsonBody []byte
}

// New parses the embedded document. It fails only if openapi.yaml is not
// valid YAML, which the package tests catch.
func New() (*Docs, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(document, &doc); err != nil {
		return nil, fmt.Errorf("apidocs: parsing openapi.yaml: %w", err)
	}

	jsonBody, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("apidocs: encoding openapi.json: %w", err)
	}

	title := "API"
	if info, ok := doc["info"].(map[string]any); ok {
		if t, ok := info["title"].(string); ok {
			title = t
		}
	}

	return &Docs{title: title, yamlBody: document, jsonBody: jsonBody}, nil
}

// Routes returns a router meant to be mounted at basePath:
//
//	GET basePath               → Swagger UI
//	GET basePath/openapi.json  → the document as JSON
//	GET basePath/openapi.yaml  → the document as written
func (d *Docs) Routes(basePath string) http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page.Execute(w, map[string]string{
			"Title":   d.title,
			"Version": swaggerUIVersion,
			"SpecURL": basePath + "/openapi.json",
		})
	})
	r.Get("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(d.jsonBody)
	})
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(d.yamlBody)
	})

	return r
}
