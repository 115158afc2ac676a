package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ItsPalash13/AdvanceDB/internal/catalog"
	"github.com/ItsPalash13/AdvanceDB/internal/engine"
	"github.com/ItsPalash13/AdvanceDB/internal/storage"
)

// queryRequest is the body of POST /api/query and /api/explain.
type queryRequest struct {
	SQL string `json:"sql"`
}

// queryResponse carries a statement result. Rows are stringified
// cell-by-cell; NULL becomes JSON null.
type queryResponse struct {
	Columns  []string    `json:"columns,omitempty"`
	Rows     [][]*string `json:"rows,omitempty"`
	Affected int         `json:"affected,omitempty"`
	Message  string      `json:"message,omitempty"`
}

type columnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
	NotNull    bool   `json:"not_null,omitempty"`
}

type tableInfo struct {
	Name    string         `json:"name"`
	Columns []columnInfo   `json:"columns"`
	Stats   *storage.Stats `json:"stats,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQueryRequest(w, r)
	if !ok {
		return
	}

	result, err := s.session.Execute(req.SQL)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}

	resp := queryResponse{
		Columns:  result.Columns,
		Affected: result.Affected,
		Message:  result.Message,
	}
	for _, row := range result.Rows {
		out := make([]*string, len(row))
		for i, v := range row {
			if v.IsNull {
				continue
			}
			text := v.String()
			out[i] = &text
		}
		resp.Rows = append(resp.Rows, out)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQueryRequest(w, r)
	if !ok {
		return
	}

	plan, err := s.session.Explain(req.SQL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"plan": plan})
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	var tables []tableInfo
	for _, name := range s.session.Store().Tables() {
		info, err := s.tableInfo(name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		tables = append(tables, info)
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	info, err := s.tableInfo(name)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) tableInfo(name string) (tableInfo, error) {
	schema, err := s.session.Store().Schema(name)
	if err != nil {
		return tableInfo{}, err
	}

	info := tableInfo{Name: name}
	for _, col := range schema.Columns {
		info.Columns = append(info.Columns, columnInfo{
			Name:       col.Name,
			Type:       col.Type.String(),
			PrimaryKey: col.PrimaryKey,
			NotNull:    col.NotNull,
		})
	}
	if s.store != nil {
		stats, err := s.store.Stats(name)
		if err != nil {
			return tableInfo{}, err
		}
		info.Stats = &stats
	}
	return info, nil
}

func decodeQueryRequest(w http.ResponseWriter, r *http.Request) (queryRequest, bool) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return req, false
	}
	if req.SQL == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing \"sql\" field"))
		return req, false
	}
	return req, true
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNoSuchTable),
		errors.Is(err, storage.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicateKey),
		errors.Is(err, storage.ErrTableExists):
		return http.StatusConflict
	case errors.Is(err, engine.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, storage.ErrTreeCorrupt),
		errors.Is(err, storage.ErrReadPage),
		errors.Is(err, storage.ErrWritePage),
		errors.Is(err, storage.ErrSync):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
