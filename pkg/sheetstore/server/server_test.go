package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/ukaji3/sheetstore-go/pkg/sheetstore"
	"github.com/ukaji3/sheetstore-go/pkg/sheetstore/models"
	"github.com/xuri/excelize/v2"
)

const validPostPayload = `{
	"columns": [
		{"name": "A", "type": "boolean"},
		{"name": "B", "type": "int"},
		{"name": "C", "type": "double"},
		{"name": "D", "type": "string"}
	]
}`

func newTestServer(t *testing.T, read sheetstore.Options) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(sheetstore.NewRegistry(), Options{Read: read, Logger: logger}).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var obj map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &obj); err != nil {
		t.Fatalf("Response is not a JSON object: %v (%s)", err, w.Body.String())
	}
	return obj
}

func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Errorf("Expected status %d, got %d (%s)", status, w.Code, w.Body.String())
	}
	obj := decodeObject(t, w)
	if len(obj) != 1 {
		t.Errorf("Expected only an error key, got %v", obj)
	}
	if _, ok := obj["error"].(string); !ok {
		t.Errorf("Expected string error, got %v", obj["error"])
	}
}

func createSheet(t *testing.T, h http.Handler, payload string) string {
	t.Helper()
	w := do(t, h, http.MethodPost, "/sheet", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("Create sheet failed with %d: %s", w.Code, w.Body.String())
	}
	obj := decodeObject(t, w)
	id, ok := obj["sheet_id"].(string)
	if !ok || len(obj) != 1 {
		t.Fatalf("Expected only sheet_id in response, got %v", obj)
	}
	return id
}

func setCell(t *testing.T, h http.Handler, id, column string, row int64, value interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, _ := json.Marshal(value)
	body := fmt.Sprintf(`{"column": %q, "row": %d, "value": %s}`, column, row, raw)
	return do(t, h, http.MethodPost, "/sheet/"+id, body)
}

func TestCreateSheet(t *testing.T) {
	h := newTestServer(t, sheetstore.DefaultOptions())
	id := createSheet(t, h, validPostPayload)
	if err := sheetstore.ValidateSheetID(id); err != nil {
		t.Errorf("Issued id %q is invalid: %v", id, err)
	}

	// zero columns is allowed
	createSheet(t, h, `{"columns": []}`)
}

func TestCreateSheetErrors(t *testing.T) {
	h := newTestServer(t, sheetstore.DefaultOptions())

	tests := []struct {
		name string
		body string
	}{
		{"no payload", ""},
		{"invalid json", "{{}{}}{}{{{{'yoohoo!!!dikjnmqwiodnw"},
		{"valid json invalid format", `{"this is": "technically valid json"}`},
		{"duplicates", `{"columns": [{"name": "A", "type": "string"}, {"name": "A", "type": "boolean"}]}`},
		{"bad type", `{"columns": [{"name": "A", "type": "text"}]}`},
		{"quote in name", `{"columns": [{"name": "A\"", "type": "int"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/sheet", tt.body)
			assertErrorResponse(t, w, http.StatusBadRequest)
		})
	}
}

func TestSetCell(t *testing.T) {
	h := newTestServer(t, sheetstore.DefaultOptions())
	id := createSheet(t, h, validPostPayload)

	tests := []struct {
		name   string
		column string
		row    int64
		value  interface{}
		status int
	}{
		{"simple", "B", 5, 42, http.StatusOK},
		{"update", "B", 5, 43, http.StatusOK},
		{"invalid type", "A", 5, 42, http.StatusBadRequest},
		{"invalid column", "abracadabra", 5, 42, http.StatusBadRequest},
		{"lookup", "B", 6, `lookup("B", 4)`, http.StatusOK},
		{"self referential", "B", 7, `lookup("B", 7)`, http.StatusBadRequest},
		{"lookup wrong type", "B", 8, `lookup("A", 5)`, http.StatusBadRequest},
		{"lookup unknown column", "B", 8, `lookup("B2", 4)`, http.StatusBadRequest},
		{"malformed lookup", "B", 8, `lookup("B", )`, http.StatusBadRequest},
		{"negative row", "B", -1, 1, http.StatusBadRequest},
		{"null value", "D", 1, nil, http.StatusBadRequest},
		{"lookup over literal", "B", 5, `lookup("B", 4)`, http.StatusOK},
		{"literal over lookup", "B", 5, 42, http.StatusOK},
	}

	for _, tt := range tests {
		w := setCell(t, h, id, tt.column, tt.row, tt.value)
		if w.Code != tt.status {
			t.Errorf("%s: expected status %d, got %d (%s)", tt.name, tt.status, w.Code, w.Body.String())
			continue
		}
		if tt.status != http.StatusOK {
			assertErrorResponse(t, w, tt.status)
			continue
		}
		if obj := decodeObject(t, w); len(obj) != 0 {
			t.Errorf("%s: expected empty object, got %v", tt.name, obj)
		}
	}
}

func TestSetCellRequestErrors(t *testing.T) {
	h := newTestServer(t, sheetstore.DefaultOptions())
	id := createSheet(t, h, validPostPayload)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"unknown sheet", "/sheet/6ba7b810-9dad-11d1-80b4-00c04fd430c8", `{"column": "B", "row": 5, "value": 42}`, http.StatusNotFound},
		{"malformed sheet id", "/sheet/abCDefGHijklMnOPqrst1234", `{"column": "B", "row": 5, "value": 42}`, http.StatusBadRequest},
		{"missing column", "/sheet/" + id, `{"row": 5, "value": 42}`, http.StatusBadRequest},
		{"missing row", "/sheet/" + id, `{"column": "B", "value": 42}`, http.StatusBadRequest},
		{"missing value", "/sheet/" + id, `{"column": "B", "row": 5}`, http.StatusBadRequest},
		{"fractional row", "/sheet/" + id, `{"column": "B", "row": 1.5, "value": 42}`, http.StatusBadRequest},
		{"not json", "/sheet/" + id, `column=B`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, tt.path, tt.body)
			assertErrorResponse(t, w, tt.status)
		})
	}
}

func TestLookupCycles(t *testing.T) {
	h := newTestServer(t, sheetstore.DefaultOptions())
	id := createSheet(t, h, validPostPayload)

	steps := []struct {
		row    int64
		value  string
		status int
	}{
		{5, `lookup("B", 4)`, http.StatusOK},
		{4, `lookup("B", 3)`, http.StatusOK},
		{4, `lookup("B", 5)`, http.StatusBadRequest},
		{3, `lookup("B", 5)`, http.StatusBadRequest},
		{3, `lookup("B", 2)`, http.StatusOK},
	}

	for i, step := range steps {
		w := setCell(t, h, id, "B", step.row, step.value)
		if w.Code != step.status {
			t.Errorf("Step %d: expected status %d, got %d (%s)", i, step.status, w.Code, w.Body.String())
		}
	}
}

func TestGetSheet(t *testing.T) {
	payload := `{"columns": [
		{"name": "A", "type": "string"},
		{"name": "B", "type": "boolean"},
		{"name": "C", "type": "string"}
	]}`

	tests := []struct {
		name     string
		omit     bool
		expected string
	}{
		{
			name:     "with nulls",
			omit:     false,
			expected: `{"columns":{"A":[{"row":1,"value":"hello!!!!"},{"row":2,"value":"goodbye!"}],"B":[{"row":0,"value":true},{"row":1,"value":true},{"row":2,"value":true}],"C":[{"row":1,"value":"hello!!!!"},{"row":2,"value":"goodbye!"},{"row":3,"value":null}]}}`,
		},
		{
			name:     "without nulls",
			omit:     true,
			expected: `{"columns":{"A":[{"row":1,"value":"hello!!!!"},{"row":2,"value":"goodbye!"}],"B":[{"row":0,"value":true},{"row":1,"value":true},{"row":2,"value":true}],"C":[{"row":1,"value":"hello!!!!"},{"row":2,"value":"goodbye!"}]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, sheetstore.Options{OmitUnresolved: tt.omit})
			id := createSheet(t, h, payload)

			writes := []struct {
				column string
				row    int64
				value  interface{}
				ok     bool
			}{
				{"A", 1, "hello!", true},
				{"A", 1, "hello!!!!", true},
				{"A", 2, "goodbye!", true},
				{"A", 1, 60, false},
				{"B", 0, true, true},
				{"B", 1, `lookup("B", 0)`, true},
				{"B", 2, `lookup("B", 1)`, true},
				{"B", 2, `blahlookup("B", 50)`, false},
				{"B", 0, `lookup("B", 2)`, false},
				{"C", 1, `lookup("A", 1)`, true},
				{"C", 2, `lookup("A", 2)`, true},
				{"C", 3, `lookup("A", 3)`, true},
			}
			for _, wr := range writes {
				w := setCell(t, h, id, wr.column, wr.row, wr.value)
				if (w.Code == http.StatusOK) != wr.ok {
					t.Fatalf("set %s%d=%v: status %d (%s)", wr.column, wr.row, wr.value, w.Code, w.Body.String())
				}
			}

			w := do(t, h, http.MethodGet, "/sheet/"+id, "")
			if w.Code != http.StatusOK {
				t.Fatalf("Get sheet failed with %d: %s", w.Code, w.Body.String())
			}

			var got, expected interface{}
			json.Unmarshal(w.Body.Bytes(), &got)
			json.Unmarshal([]byte(tt.expected), &expected)
			if !reflect.DeepEqual(got, expected) {
				t.Errorf("Get sheet = %s, expected %s", w.Body.String(), tt.expected)
			}
		})
	}
}

func TestGetSheetErrors(t *testing.T) {
	h := newTestServer(t, sheetstore.DefaultOptions())

	assertErrorResponse(t, do(t, h, http.MethodGet, "/sheet/6ba7b810-9dad-11d1-80b4-00c04fd430c8", ""), http.StatusNotFound)
	assertErrorResponse(t, do(t, h, http.MethodGet, "/sheet/nope", ""), http.StatusBadRequest)
}

func TestTrailingSlash(t *testing.T) {
	h := newTestServer(t, sheetstore.DefaultOptions())

	w := do(t, h, http.MethodPost, "/sheet/", validPostPayload)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /sheet/ failed with %d: %s", w.Code, w.Body.String())
	}
	id := decodeObject(t, w)["sheet_id"].(string)

	if w := do(t, h, http.MethodGet, "/sheet/"+id+"/", ""); w.Code != http.StatusOK {
		t.Errorf("GET with trailing slash failed with %d", w.Code)
	}
}

func TestExportSheet(t *testing.T) {
	h := newTestServer(t, sheetstore.DefaultOptions())
	id := createSheet(t, h, `{"columns": [{"name": "n", "type": "int"}, {"name": "s", "type": "string"}]}`)

	setCell(t, h, id, "n", 0, 5)
	setCell(t, h, id, "n", 2, `lookup("n", 0)`)
	setCell(t, h, id, "s", 1, "hi")

	w := do(t, h, http.MethodGet, "/sheet/"+id+"/xlsx", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Export failed with %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Unexpected content type %q", ct)
	}

	f, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatalf("Failed to open exported workbook: %v", err)
	}
	defer f.Close()

	for cell, expected := range map[string]string{"A1": "n", "B1": "s", "A2": "5", "A4": "5", "B3": "hi"} {
		value, err := f.GetCellValue("Sheet1", cell)
		if err != nil {
			t.Errorf("GetCellValue(%s) failed: %v", cell, err)
			continue
		}
		if value != expected {
			t.Errorf("Cell %s = %q, expected %q", cell, value, expected)
		}
	}
}

func TestExportSheetRowLimit(t *testing.T) {
	h := newTestServer(t, sheetstore.DefaultOptions())
	id := createSheet(t, h, `{"columns": [{"name": "n", "type": "int"}]}`)
	setCell(t, h, id, "n", 5000000, 1)

	assertErrorResponse(t, do(t, h, http.MethodGet, "/sheet/"+id+"/xlsx", ""), http.StatusBadRequest)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{sheetstore.ErrUnknownSheet, http.StatusNotFound},
		{sheetstore.NewCellError(models.CellRef{Column: "a"}, sheetstore.ErrInvariantViolation), http.StatusInternalServerError},
		{sheetstore.NewCellError(models.CellRef{Column: "a"}, sheetstore.ErrCycleDetected), http.StatusBadRequest},
		{sheetstore.NewSchemaError("x", sheetstore.ErrDuplicateColumnName), http.StatusBadRequest},
		{errInvalidBody, http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.expected {
			t.Errorf("statusFor(%v) = %d, expected %d", tt.err, got, tt.expected)
		}
	}
}

func TestServeShutsDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(sheetstore.NewRegistry(), Options{Logger: logger})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/sheet", "application/json", bytes.NewReader([]byte(validPostPayload)))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatalf("Serve did not return after cancel")
	}
}
