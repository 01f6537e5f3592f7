package vendorapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListProducts_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantIDs  []string
		wantName string
	}{
		{
			name:     "bare array",
			body:     `[{"id":1,"name":"Business Cards"},{"id":2,"name":"Flyers"}]`,
			wantIDs:  []string{"1", "2"},
			wantName: "Business Cards",
		},
		{
			name:     "products envelope",
			body:     `{"total":2,"products":[{"id":"bc-1","name":"Business Cards"},{"id":"fl-2","name":"Flyers"}]}`,
			wantIDs:  []string{"bc-1", "fl-2"},
			wantName: "Business Cards",
		},
		{
			name:     "single product object",
			body:     `{"id":7,"name":"Roll Labels","sku":"RL-7"}`,
			wantIDs:  []string{"7"},
			wantName: "Roll Labels",
		},
		{
			name:    "duplicate ids collapse",
			body:    `[{"id":1,"name":"A"},{"id":1,"name":"A again"},{"id":2,"name":"B"}]`,
			wantIDs: []string{"1", "2"},
		},
		{
			name:    "elements without ids are dropped",
			body:    `[{"name":"no id"},{"id":3,"name":"C"}]`,
			wantIDs: []string{"3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/product", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server)
			refs, err := client.ListProducts(context.Background())
			require.NoError(t, err)

			ids := make([]string, len(refs))
			for i, ref := range refs {
				ids[i] = ref.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
			if tt.wantName != "" {
				assert.Equal(t, tt.wantName, refs[0].Name)
			}
		})
	}
}

func TestClient_ListProducts_FallbackCrawl(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/product", func(w http.ResponseWriter, r *http.Request) {
		// Unrecognized shape forces the crawl.
		_, _ = w.Write([]byte(`{"message":"use the storefront API"}`))
	})
	mux.HandleFunc("/storefront/en/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"cat-1"},{"id":"cat-2"}]`))
	})
	mux.HandleFunc("/storefront/en/categories/cat-1/subcategories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"sub-1"}]`))
	})
	mux.HandleFunc("/storefront/en/categories/cat-2/subcategories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"sub-2"},{"id":"sub-3"}]`))
	})
	mux.HandleFunc("/storefront/en/subcategories/sub-1/products", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":10,"name":"Stickers"},{"id":11,"name":"Magnets"}]`))
	})
	mux.HandleFunc("/storefront/en/subcategories/sub-2/products", func(w http.ResponseWriter, r *http.Request) {
		// Overlaps with sub-1 to exercise dedupe.
		_, _ = w.Write([]byte(`[{"id":11,"name":"Magnets"},{"id":12,"name":"Posters"}]`))
	})
	mux.HandleFunc("/storefront/en/subcategories/sub-3/products", func(w http.ResponseWriter, r *http.Request) {
		// A broken branch is skipped, not fatal.
		w.WriteHeader(http.StatusForbidden)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)
	refs, err := client.ListProducts(context.Background())
	require.NoError(t, err)

	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	assert.Equal(t, []string{"10", "11", "12"}, ids)
}

func TestClient_ListProducts_EmptyAfterFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/product", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/storefront/en/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)
	refs, err := client.ListProducts(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCatalog)
	assert.Nil(t, refs)
}

func TestClient_ListProducts_CategoryEndpointError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/product", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/storefront/en/categories", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)
	_, err := client.ListProducts(context.Background())
	assert.ErrorIs(t, err, ErrRequestFailed)
}
