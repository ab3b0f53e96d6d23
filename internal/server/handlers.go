package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/patchbaylabs/patchbay/pkg/buildinfo"
	"github.com/patchbaylabs/patchbay/pkg/canvas"
	"github.com/patchbaylabs/patchbay/pkg/errors"
	"github.com/patchbaylabs/patchbay/pkg/render"
	"github.com/patchbaylabs/patchbay/pkg/store"
)

// statePayload is the document state envelope shared by REST
// responses and WebSocket state frames.
type statePayload struct {
	Op          string              `json:"op,omitempty"`
	ID          string              `json:"id"`
	Name        string              `json:"name,omitempty"`
	Revision    uint64              `json:"revision"`
	Nodes       []canvas.Node       `json:"nodes"`
	Connections []canvas.Connection `json:"connections"`
	CanUndo     bool                `json:"canUndo"`
	CanRedo     bool                `json:"canRedo"`
}

func stateOf(ds *docSession) statePayload {
	doc := ds.sess.Document()
	return statePayload{
		ID:          ds.id,
		Name:        ds.name,
		Revision:    ds.sess.Revision(),
		Nodes:       doc.Nodes,
		Connections: doc.Connections,
		CanUndo:     ds.sess.CanUndo(),
		CanRedo:     ds.sess.CanRedo(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if infos == nil {
		infos = []store.Info{}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string           `json:"name"`
		Document *canvas.Document `json:"document"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, errors.Wrap(errors.CodeInvalidInput, err, "parse request body"))
			return
		}
	}
	if err := errors.ValidateDocumentName(body.Name); err != nil {
		writeError(w, err)
		return
	}

	doc := canvas.Document{}
	if body.Document != nil {
		doc = *body.Document
		if err := doc.Validate(); err != nil {
			writeError(w, errors.Wrap(errors.CodeInvalidDocument, err, "validate document"))
			return
		}
	}

	rec := &store.Record{
		ID:       uuid.NewString(),
		Name:     body.Name,
		Document: doc,
	}
	if err := s.store.Put(r.Context(), rec); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("document created", "docID", rec.ID, "name", rec.Name)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ds, err := s.registry.get(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if hash, err := store.DocumentHash(ds.sess.Document()); err == nil {
		w.Header().Set("ETag", `"`+hash+`"`)
	}
	writeJSON(w, http.StatusOK, stateOf(ds))
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	ds, err := s.registry.get(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Nodes       []canvas.Node       `json:"nodes"`
		Connections []canvas.Connection `json:"connections"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errors.Wrap(errors.CodeInvalidInput, err, "parse request body"))
		return
	}
	doc := canvas.Document{Nodes: body.Nodes, Connections: body.Connections}
	if err := doc.Validate(); err != nil {
		writeError(w, errors.Wrap(errors.CodeInvalidDocument, err, "validate document"))
		return
	}

	// Both collections land as a single history entry.
	ds.sess.StartAction()
	ds.sess.SetNodes(func([]canvas.Node) []canvas.Node { return doc.Nodes })
	ds.sess.SetConnections(func([]canvas.Connection) []canvas.Connection { return doc.Connections })
	ds.sess.EndAction()

	writeJSON(w, http.StatusOK, stateOf(ds))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "docID")
	s.registry.drop(id)
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("document deleted", "docID", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.handleHistory(w, r, func(ds *docSession) bool { return ds.sess.Undo() })
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.handleHistory(w, r, func(ds *docSession) bool { return ds.sess.Redo() })
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, step func(*docSession) bool) {
	ds, err := s.registry.get(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		writeError(w, err)
		return
	}
	step(ds)
	writeJSON(w, http.StatusOK, stateOf(ds))
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	ds, err := s.registry.get(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, errors.Wrap(errors.CodeInvalidInput, err, "parse request body"))
		return
	}

	ds.sess.Select(body.IDs)
	group, ok := ds.sess.CreateGroupFromSelection()
	if !ok {
		writeError(w, errors.New(errors.CodeInvalidInput, "grouping requires at least two groupable nodes"))
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Group canvas.Node `json:"group"`
		statePayload
	}{Group: group, statePayload: stateOf(ds)})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ds, err := s.registry.get(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		writeError(w, err)
		return
	}
	doc := ds.sess.Document()

	switch chi.URLParam(r, "format") {
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(render.ToDOT(doc, render.Options{})))
	case "svg":
		svg, err := render.RenderSVG(r.Context(), doc)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	case "png":
		png, err := render.RenderPNG(r.Context(), doc, 2.0)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	case "pdf":
		pdf, err := render.RenderPDF(r.Context(), doc)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	}
}
