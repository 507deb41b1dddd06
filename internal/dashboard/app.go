// Package dashboard serves the dependency networks of one generations file
// over HTTP: an HTML index plus JSON and DOT endpoints per generation.
package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"ednelkit/domain/network"
	"ednelkit/internal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*
var templateFS embed.FS

// App holds the loaded structures and the router serving them
type App struct {
	router     *chi.Mux
	templates  *template.Template
	logger     *internal.Logger
	structures []*network.Structure
	byID       map[string]*network.Structure
}

// NewApp builds the viewer over structures in file order
func NewApp(structures []*network.Structure, logger *internal.Logger) (*App, error) {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}

	funcMap := template.FuncMap{
		"family": network.Family,
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:     chi.NewRouter(),
		templates:  tmpl,
		logger:     logger,
		structures: structures,
		byID:       make(map[string]*network.Structure, len(structures)),
	}
	for _, s := range structures {
		app.byID[s.Generation] = s
	}

	app.setupMiddleware()
	app.setupRoutes()
	return app, nil
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)

	a.router.Route("/api/generations", func(r chi.Router) {
		r.Get("/", a.handleGenerations)
		r.Get("/{gen}/structure", a.handleStructure)
		r.Get("/{gen}/structure.dot", a.handleStructureDOT)
		r.Get("/{gen}/variables/{variable}/table", a.handleTable)
	})
}

// ServeHTTP lets the app be mounted or tested without a listener
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Start serves on the given port until the listener fails
func (a *App) Start(port string) error {
	addr := ":" + port
	a.logger.Info("structure viewer listening on http://localhost%s", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// lookup resolves a generation id, accepting both "7" and "007"
func (a *App) lookup(id string) (*network.Structure, bool) {
	if s, ok := a.byID[id]; ok {
		return s, true
	}
	gen, err := network.ParseGeneration(id)
	if err != nil {
		return nil, false
	}
	for _, s := range a.structures {
		if other, err := network.ParseGeneration(s.Generation); err == nil && other == gen {
			return s, true
		}
	}
	return nil, false
}

func (a *App) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, name, data); err != nil {
		a.logger.Error("template %s failed: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
