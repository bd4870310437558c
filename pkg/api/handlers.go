package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/dendro/pkg/buildinfo"
	"github.com/matzehuels/dendro/pkg/errors"
	"github.com/matzehuels/dendro/pkg/pipeline"
	"github.com/matzehuels/dendro/pkg/registry"
	"github.com/matzehuels/dendro/pkg/render"
	"github.com/matzehuels/dendro/pkg/render/sink"
	"github.com/matzehuels/dendro/pkg/result"
)

// CacheHeader reports whether a response came from the pipeline cache.
const CacheHeader = "X-Dendro-Cache"

var contentTypes = map[string]string{
	pipeline.FormatSVG:         "image/svg+xml",
	pipeline.FormatPNG:         "image/png",
	pipeline.FormatJSON:        "application/json",
	pipeline.FormatDOT:         "text/vnd.graphviz",
	pipeline.FormatNodelinkSVG: "image/svg+xml",
	pipeline.FormatNodelinkPNG: "image/png",
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Current(),
		"widgets": s.registry.Len(),
	})
}

// handleCluster clusters an inline dataset and returns the serialized run.
func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Dataset == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "dataset is required"))
		return
	}
	if err := opts.ValidateForCluster(); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := opts.Dataset.Build()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cres, hit, err := s.runner.ClusterWithCacheInfo(r.Context(), m, "", opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set(CacheHeader, cacheStatus(hit))
	writeJSON(w, http.StatusOK, result.FromCluster(cres, m.Labels(), opts.ClusterOptions()))
}

// handleRender runs the whole pipeline and returns a single artifact.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(opts.Formats) != 1 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "request exactly one format, got %d", len(opts.Formats)))
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set(CacheHeader, cacheStatus(res.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Artifacts[format])
}

type widgetResponse struct {
	ID        string        `json:"id"`
	Items     int           `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Selection []int         `json:"selection"`
	Node      int           `json:"node"`
	Scene     *render.Scene `json:"scene,omitempty"`
}

func newWidgetResponse(e *registry.Entry, withScene bool) widgetResponse {
	st := e.State()
	resp := widgetResponse{
		ID:        e.ID,
		Items:     e.Items,
		CreatedAt: e.CreatedAt,
		ExpiresAt: e.ExpiresAt(),
		Selection: st.Selected,
		Node:      st.Node,
	}
	if withScene {
		resp.Scene = e.Scene()
	}
	return resp
}

// handleCreateWidget lays out a dataset and registers it as a live widget.
func (s *Server) handleCreateWidget(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Prepare(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.registry.Create(r.Context(), res.Layout.Dendrogram, res.Layout.Grid, opts.SceneOptions())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/widgets/"+e.ID)
	writeJSON(w, http.StatusCreated, newWidgetResponse(e, true))
}

// handleGetWidget returns the widget's scene as JSON, or drawn when
// ?format=svg|png is given.
func (s *Server) handleGetWidget(w http.ResponseWriter, r *http.Request) {
	e, err := s.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	switch format := r.URL.Query().Get("format"); format {
	case "", pipeline.FormatJSON:
		writeJSON(w, http.StatusOK, newWidgetResponse(e, true))
	case pipeline.FormatSVG:
		w.Header().Set("Content-Type", contentTypes[format])
		w.Write(sink.RenderSVG(e.Scene(), sink.WithInteraction()))
	case pipeline.FormatPNG:
		data, err := sink.RenderPNG(e.Scene())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentTypes[format])
		w.Write(data)
	default:
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidFormat, "widgets are drawn as json, svg or png, not %q", format))
	}
}

func (s *Server) handleDestroyWidget(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Destroy(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type clickRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type selectRequest struct {
	// Node is the internal node to select; null clears the selection.
	Node *int `json:"node"`
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req clickRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.registry.Click(r.Context(), id, req.X, req.Y); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeWidget(w, r, id)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req selectRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var err error
	if req.Node == nil {
		err = s.registry.Clear(r.Context(), id)
	} else {
		_, err = s.registry.Select(r.Context(), id, *req.Node)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeWidget(w, r, id)
}

// writeWidget answers an interaction with the widget's new state.
func (s *Server) writeWidget(w http.ResponseWriter, r *http.Request, id string) {
	e, err := s.registry.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWidgetResponse(e, false))
}
