package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"webpanel/internal/panel"
	"webpanel/pkg/types"
)

type call struct {
	verb string
	id   string
}

type mockService struct {
	instances map[string]types.InstanceStatus
	active    string
	status    types.StatusResponse
	ready     bool
	err       error
	purged    int
	calls     []call
	lastFind  types.FindRequest
	lastOpen  types.OpenRequest
}

func newMockService() *mockService {
	return &mockService{instances: map[string]types.InstanceStatus{}, active: "wv_default", ready: true}
}

func (m *mockService) resolve(id string) string {
	if id == "" {
		return m.active
	}
	return id
}

func (m *mockService) record(verb, id string) error {
	m.calls = append(m.calls, call{verb: verb, id: id})
	if m.err != nil {
		return m.err
	}
	if _, ok := m.instances[m.resolve(id)]; !ok {
		return panel.ErrInstanceNotFound(m.resolve(id))
	}
	return nil
}

func (m *mockService) List() types.InstancesResponse {
	out := types.InstancesResponse{Active: m.active}
	for _, st := range m.instances {
		out.Instances = append(out.Instances, st)
	}
	return out
}

func (m *mockService) Get(id string) (types.InstanceStatus, error) {
	st, ok := m.instances[m.resolve(id)]
	if !ok {
		return types.InstanceStatus{}, panel.ErrInstanceNotFound(m.resolve(id))
	}
	return st, nil
}

func (m *mockService) Open(_ context.Context, req types.OpenRequest) (types.InstanceStatus, error) {
	m.lastOpen = req
	m.calls = append(m.calls, call{verb: "open", id: req.ID})
	if m.err != nil {
		return types.InstanceStatus{}, m.err
	}
	id := m.resolve(req.ID)
	st := types.InstanceStatus{ID: id, State: "initializing", URL: req.URL, Mode: req.Mode}
	m.instances[id] = st
	return st, nil
}

func (m *mockService) Navigate(_ context.Context, id, url string) (types.InstanceStatus, error) {
	m.calls = append(m.calls, call{verb: "navigate", id: id})
	if m.err != nil {
		return types.InstanceStatus{}, m.err
	}
	st := m.instances[m.resolve(id)]
	st.ID = m.resolve(id)
	st.URL = url
	m.instances[st.ID] = st
	return st, nil
}

func (m *mockService) Focus(_ context.Context, id string) error { return m.record("focus", id) }
func (m *mockService) ToggleFindBar(_ context.Context, id string) error {
	return m.record("findbar_toggle", id)
}
func (m *mockService) Find(_ context.Context, id string, req types.FindRequest) error {
	m.lastFind = req
	return m.record("find", id)
}
func (m *mockService) FindNext(_ context.Context, id string) error  { return m.record("find_next", id) }
func (m *mockService) FindPrev(_ context.Context, id string) error  { return m.record("find_prev", id) }
func (m *mockService) CloseFind(_ context.Context, id string) error { return m.record("find_close", id) }
func (m *mockService) Close(_ context.Context, id string) error {
	if err := m.record("close", id); err != nil {
		return err
	}
	delete(m.instances, id)
	return nil
}
func (m *mockService) Purge(context.Context) (int, error) { return m.purged, m.err }
func (m *mockService) Status() types.StatusResponse       { return m.status }
func (m *mockService) Ready() bool                        { return m.ready }

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var e types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body %q: %v", w.Body.String(), err)
	}
	return e
}
