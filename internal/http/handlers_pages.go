package httpx

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	domainauth "github.com/target/portal-auth/internal/domain/auth"
)

// pageTemplate is a placeholder shell; the portal UI is served elsewhere.
var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body data-path="{{.Path}}" data-class="{{.Class}}">
{{- if .Identity}}
<p>Signed in as {{.Identity.Email}} ({{.Identity.Role}})</p>
<form method="post" action="/session/destroy"><button type="submit">Sign out</button></form>
{{- else}}
<p>Not signed in</p>
{{- end}}
</body>
</html>
`))

type pageData struct {
	Title    string
	Path     string
	Class    domainauth.RouteClass
	Identity *domainauth.Claims
}

// PageHandlers renders the guarded page shell.
type PageHandlers struct {
	Routes domainauth.RouteTable
	Logger *slog.Logger
}

// Page renders any page route. It runs behind RequirePageAccess.
func (h *PageHandlers) Page(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	data := pageData{
		Title:    "Portal",
		Path:     r.URL.Path,
		Class:    h.Routes.Classify(r.URL.Path),
		Identity: identity,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		logger := h.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.ErrorContext(r.Context(), "render page failed", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
