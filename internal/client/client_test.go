package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webpanel/pkg/types"
)

type seen struct {
	method, path, ct string
	body             map[string]any
}

func newServer(t *testing.T, status int, reply any) (*Client, *[]seen) {
	t.Helper()
	var got []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := seen{method: r.Method, path: r.URL.EscapedPath(), ct: r.Header.Get("Content-Type")}
		_ = json.NewDecoder(r.Body).Decode(&s.body)
		got = append(got, s)
		if status == http.StatusNoContent {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/"), &got
}

func TestEmptyIDUsesActiveRoutes(t *testing.T) {
	c, got := newServer(t, http.StatusOK, types.InstanceStatus{ID: "wv_default"})
	ctx := context.Background()
	require.NoError(t, c.FindNext(ctx, ""))
	require.NoError(t, c.ToggleFindBar(ctx, ""))
	st, err := c.Navigate(ctx, "", "example.com")
	require.NoError(t, err)
	assert.Equal(t, "wv_default", st.ID)

	paths := []string{}
	for _, s := range *got {
		paths = append(paths, s.path)
	}
	assert.Equal(t, []string{"/active/find/next", "/active/findbar/toggle", "/active/navigate"}, paths)
	assert.Equal(t, "example.com", (*got)[2].body["url"])
	assert.Equal(t, "application/json", (*got)[2].ct)
}

func TestInstanceIDIsEscaped(t *testing.T) {
	c, got := newServer(t, http.StatusOK, types.InstanceStatus{})
	require.NoError(t, c.Find(context.Background(), "a b", types.FindRequest{Query: "x", HighlightAll: true}))
	require.Len(t, *got, 1)
	assert.Equal(t, "/instances/a%20b/find", (*got)[0].path)
	assert.Equal(t, true, (*got)[0].body["highlight_all"])
}

func TestErrorPayloadBecomesAPIError(t *testing.T) {
	c, _ := newServer(t, http.StatusNotFound, types.ErrorResponse{Error: "instance not found: x", Code: 404})
	err := c.FindPrev(context.Background(), "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode())
	assert.Equal(t, "instance not found: x", apiErr.Message)
}

func TestCloseAcceptsNoContent(t *testing.T) {
	c, got := newServer(t, http.StatusNoContent, nil)
	require.NoError(t, c.Close(context.Background(), "docs"))
	assert.Equal(t, http.MethodDelete, (*got)[0].method)
	assert.Equal(t, "/instances/docs", (*got)[0].path)
}

func TestListAndPurge(t *testing.T) {
	c, _ := newServer(t, http.StatusOK, map[string]any{
		"instances": []types.InstanceStatus{{ID: "a"}},
		"active":    "a",
		"purged":    2,
	})
	ctx := context.Background()
	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", list.Active)
	require.Len(t, list.Instances, 1)
	n, err := c.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
