package dashboard

import (
	"encoding/json"
	"net/http"

	"ednelkit/domain/network"

	"github.com/go-chi/chi/v5"
)

type nodeView struct {
	Name     string  `json:"name"`
	Family   string  `json:"family"`
	Color    string  `json:"color"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	HasTable bool    `json:"has_table"`
}

type edgeView struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

type structureView struct {
	Generation string     `json:"generation"`
	Nodes      []nodeView `json:"nodes"`
	Edges      []edgeView `json:"edges"`
}

type tableView struct {
	Variable string          `json:"variable"`
	Columns  []string        `json:"columns"`
	Rows     [][]interface{} `json:"rows"`
}

type indexGeneration struct {
	ID        string
	Variables []string
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	gens := make([]indexGeneration, len(a.structures))
	for i, s := range a.structures {
		gens[i] = indexGeneration{ID: s.Generation, Variables: s.Variables()}
	}
	a.renderTemplate(w, "index.html", map[string]interface{}{
		"Generations": gens,
	})
}

func (a *App) handleGenerations(w http.ResponseWriter, r *http.Request) {
	ids := make([]string, len(a.structures))
	for i, s := range a.structures {
		ids[i] = s.Generation
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"generations": ids})
}

func (a *App) handleStructure(w http.ResponseWriter, r *http.Request) {
	s, ok := a.structureParam(w, r)
	if !ok {
		return
	}

	names := s.Nodes()
	colors := network.FamilyColors(names)
	positions := network.Layout(s)

	view := structureView{Generation: s.Generation, Nodes: make([]nodeView, len(names)), Edges: []edgeView{}}
	for i, name := range names {
		_, hasTable := s.Table(name)
		p := positions[name]
		view.Nodes[i] = nodeView{
			Name:     name,
			Family:   network.Family(name),
			Color:    colors[name],
			X:        p.X,
			Y:        p.Y,
			HasTable: hasTable,
		}
	}
	for _, e := range s.Edges() {
		view.Edges = append(view.Edges, edgeView{From: e.From, To: e.To, Kind: e.Kind.String()})
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *App) handleStructureDOT(w http.ResponseWriter, r *http.Request) {
	s, ok := a.structureParam(w, r)
	if !ok {
		return
	}
	b, err := network.MarshalDOT(s)
	if err != nil {
		a.logger.Error("dot rendering failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to render graph")
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Write(b)
}

func (a *App) handleTable(w http.ResponseWriter, r *http.Request) {
	s, ok := a.structureParam(w, r)
	if !ok {
		return
	}
	variable := chi.URLParam(r, "variable")
	t, ok := s.Table(variable)
	if !ok {
		writeError(w, http.StatusNotFound, "variable "+variable+" has no table in generation "+s.Generation)
		return
	}

	sorted := t.Sorted()
	view := tableView{Variable: sorted.Variable, Columns: sorted.Header(), Rows: make([][]interface{}, len(sorted.Rows))}
	for i, row := range sorted.Rows {
		cells := make([]interface{}, 0, len(row.Values)+1)
		for _, v := range row.Values {
			cells = append(cells, v)
		}
		view.Rows[i] = append(cells, row.Probability)
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *App) structureParam(w http.ResponseWriter, r *http.Request) (*network.Structure, bool) {
	id := chi.URLParam(r, "gen")
	s, ok := a.lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown generation "+id)
	}
	return s, ok
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"error": message})
}
