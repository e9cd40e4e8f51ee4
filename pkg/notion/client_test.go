package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "secret-token", "2022-06-28")
}

func selectSchemaHandler(t *testing.T, options []string, patched *int) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/databases/db1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			opts := make([]map[string]string, 0, len(options))
			for _, o := range options {
				opts = append(opts, map[string]string{"name": o})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"properties": map[string]interface{}{
					"Category": map[string]interface{}{
						"select": map[string]interface{}{"options": opts},
					},
				},
			})
		case http.MethodPatch:
			*patched++
			w.Write([]byte(`{}`))
		}
	})
	return mux
}

func TestAddSelectOptionIdempotentCaseInsensitive(t *testing.T) {
	patched := 0
	client := newTestClient(t, selectSchemaHandler(t, []string{"Work", "Reading"}, &patched))

	// Existing name in a different casing: reported success, no write.
	require.NoError(t, client.AddSelectOption(context.Background(), "db1", "Category", "WORK"))
	assert.Zero(t, patched)

	require.NoError(t, client.AddSelectOption(context.Background(), "db1", "Category", "reading"))
	assert.Zero(t, patched)

	// A genuinely new name patches the schema once.
	require.NoError(t, client.AddSelectOption(context.Background(), "db1", "Category", "Recipes"))
	assert.Equal(t, 1, patched)
}

func TestListSelectOptionsMissingProperty(t *testing.T) {
	patched := 0
	client := newTestClient(t, selectSchemaHandler(t, nil, &patched))

	_, err := client.ListSelectOptions(context.Background(), "db1", "Nope")
	assert.Error(t, err)
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"validation_error"}`))
	}))

	_, err := client.CreatePage(context.Background(), "db1", Properties{"Title": TitleProperty("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation_error")
}

func TestClientSendsAuthHeaders(t *testing.T) {
	var gotAuth, gotVersion string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Notion-Version")
		w.Write([]byte(`{"results":[]}`))
	}))

	_, err := client.QueryDatabase(context.Background(), "db1", Query{PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "2022-06-28", gotVersion)
}
