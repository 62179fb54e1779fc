package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ukaji3/sheetstore-go/pkg/sheetstore"
	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/models"
	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/output"
)

// errInvalidBody indicates a request body that is not the expected JSON.
var errInvalidBody = errors.New("invalid request body")

type createSheetRequest struct {
	Columns *[]models.ColumnSpec `json:"columns"`
}

type createSheetResponse struct {
	SheetID string `json:"sheet_id"`
}

type setCellRequest struct {
	Column *string         `json:"column"`
	Row    *int64          `json:"row"`
	Value  json.RawMessage `json:"value"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreateSheet(w http.ResponseWriter, r *http.Request) {
	var req createSheetRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Columns == nil {
		s.respondError(w, r, fmt.Errorf("%w: missing field columns", errInvalidBody))
		return
	}

	id, err := s.registry.CreateSheet(*req.Columns)
	if err != nil {
		s.logger.Warn("sheet creation rejected", "error", err)
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, createSheetResponse{SheetID: id})
}

func (s *Server) handleSetCell(w http.ResponseWriter, r *http.Request) {
	sheet, err := s.lookupSheet(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var req setCellRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	switch {
	case req.Column == nil:
		err = fmt.Errorf("%w: missing field column", errInvalidBody)
	case req.Row == nil:
		err = fmt.Errorf("%w: missing field row", errInvalidBody)
	case len(req.Value) == 0:
		err = fmt.Errorf("%w: missing field value", errInvalidBody)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := sheet.SetCell(*req.Column, *req.Row, req.Value); err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleGetSheet(w http.ResponseWriter, r *http.Request) {
	sheet, err := s.lookupSheet(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	content, err := sheet.ReadAll(s.opts.Read)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, content)
}

func (s *Server) handleExportSheet(w http.ResponseWriter, r *http.Request) {
	sheet, err := s.lookupSheet(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	content, err := sheet.ReadAll(s.opts.Read)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// render fully before writing so failures can still answer with JSON
	var buf bytes.Buffer
	if err := output.WriteXLSX(&buf, sheet.Schema().Columns(), content); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, sheet.ID()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) lookupSheet(r *http.Request) (*sheetstore.Sheet, error) {
	id := r.PathValue("sheetid")
	if err := sheetstore.ValidateSheetID(id); err != nil {
		return nil, err
	}
	return s.registry.Sheet(id)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := output.ToJSON(v, s.opts.Pretty)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()

	if status == http.StatusInternalServerError {
		// details stay in the log
		s.logger.Error("internal error", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}

	s.respondJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps core errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sheetstore.ErrInvariantViolation):
		return http.StatusInternalServerError
	case errors.Is(err, sheetstore.ErrUnknownSheet):
		return http.StatusNotFound
	case errors.Is(err, errInvalidBody),
		errors.Is(err, sheetstore.ErrInvalidSheetID),
		errors.Is(err, output.ErrExceedsLimit):
		return http.StatusBadRequest
	}

	var schemaErr *sheetstore.SchemaError
	var cellErr *sheetstore.CellError
	if errors.As(err, &schemaErr) || errors.As(err, &cellErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
