package weaviate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	adapter "swiftvisa/backend/internal/adapter/weaviate"
	"swiftvisa/backend/internal/segment"
)

func mockWeaviate(t *testing.T, handler http.HandlerFunc) (*weaviate.Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	cfg := weaviate.Config{Host: ts.Listener.Addr().String(), Scheme: "http"}
	client, err := weaviate.NewClient(cfg)
	assert.NoError(t, err)
	return client, ts
}

func TestStore_StoreChunk(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		assert.Equal(t, "/v1/objects", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "PolicyChunk", body["class"])
		props := body["properties"].(map[string]interface{})
		assert.Equal(t, "minors need guardian consent", props["text"])
		assert.Equal(t, "visa_policy.txt", props["document"])
		assert.Equal(t, 7.0, props["vectorId"])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "1"})
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	chunk := segment.Chunk{
		Document: "visa_policy.txt",
		Sequence: 2,
		Text:     "minors need guardian consent",
	}
	err := store.StoreChunk(context.Background(), chunk, 7, []float32{0.1, 0.2})
	assert.NoError(t, err)
}

func TestStore_Reset(t *testing.T) {
	var calls []string
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == "DELETE" && r.URL.Path == "/v1/schema/PolicyChunk":
			w.WriteHeader(http.StatusOK)
		case r.Method == "GET" && r.URL.Path == "/v1/schema/PolicyChunk":
			// Class is gone after the delete.
			w.WriteHeader(http.StatusNotFound)
		case r.Method == "POST" && r.URL.Path == "/v1/schema":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	err := store.Reset(context.Background())
	assert.NoError(t, err)

	// The class is dropped first, then the schema is recreated so the next
	// StoreChunk finds a clean class.
	assert.Contains(t, calls, "DELETE /v1/schema/PolicyChunk")
	assert.Contains(t, calls, "POST /v1/schema")
	assert.Less(t,
		indexOf(calls, "DELETE /v1/schema/PolicyChunk"),
		indexOf(calls, "POST /v1/schema"))
}

func indexOf(calls []string, want string) int {
	for i, c := range calls {
		if c == want {
			return i
		}
	}
	return -1
}

func TestStore_Search(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		assert.Equal(t, "/v1/graphql", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		resp := map[string]interface{}{
			"data": map[string]interface{}{
				"Get": map[string]interface{}{
					"PolicyChunk": []interface{}{
						map[string]interface{}{
							"text":     "closest chunk",
							"document": "visa_policy.txt",
							"sequence": 4.0,
							"vectorId": 4.0,
							"_additional": map[string]interface{}{
								"distance": 0.12,
							},
						},
						map[string]interface{}{
							"text":     "second chunk",
							"document": "visa_policy.txt",
							"sequence": 9.0,
							"vectorId": 9.0,
							"_additional": map[string]interface{}{
								"distance": 0.4,
							},
						},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	results, err := store.Search(context.Background(), []float32{0.1, 0.2}, 2)
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "closest chunk", results[0].Text)
	assert.Equal(t, 4, results[0].VectorID)
	assert.Equal(t, 0, results[0].Rank)
	assert.Equal(t, float32(0.12), results[0].Distance)
	assert.Equal(t, 1, results[1].Rank)
	assert.Equal(t, 9, results[1].VectorID)
}

func TestStore_Search_GraphQLError(t *testing.T) {
	client, ts := mockWeaviate(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/meta" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "1.19.0"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		resp := map[string]interface{}{
			"errors": []interface{}{
				map[string]interface{}{"message": "class not found"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})
	defer ts.Close()

	store := adapter.NewStore(client)
	_, err := store.Search(context.Background(), []float32{0.1}, 5)
	assert.Error(t, err)
}
