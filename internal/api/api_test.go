package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"structuralign/pkg/cache"
	"structuralign/pkg/pipeline"
	"structuralign/pkg/runstore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := runstore.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
	return NewServer(runner, store, nil)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHandleCreateRun_RequiresInput(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(createRunRequest{})
	req := httptest.NewRequest("POST", "/runs/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleCreateRun_RejectsBothInputs(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(createRunRequest{InputModel: "a.model", InputDB: "b.db"})
	req := httptest.NewRequest("POST", "/runs/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleGetRun_NotFound(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest("GET", "/runs/does-not-exist", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != 404 {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleCreateRun_AcceptsValidRequest(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(createRunRequest{InputModel: "building.model"})
	req := httptest.NewRequest("POST", "/runs/", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != 202 {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	var resp createRunResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" || resp.Status != "running" {
		t.Errorf("response = %+v, want non-empty id and status=running", resp)
	}
}
