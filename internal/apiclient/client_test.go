package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rogerio-castellano/product-catalog/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method      string
	path        string
	contentType string
	body        map[string]any
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var reqs []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, contentType: r.Header.Get("Content-Type")}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			require.NoError(t, json.Unmarshal(data, &rec.body))
		}
		reqs = append(reqs, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, &reqs
}

func TestList(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `[{"id":1,"name":"Pen","quantity":10,"price":2.5}]`)
	c := NewClient(srv.URL + "/api/products")

	products, err := c.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []catalog.Product{{ID: "1", Name: "Pen", Quantity: 10, Price: 2.5}}, products)
	require.Len(t, *reqs, 1)
	assert.Equal(t, http.MethodGet, (*reqs)[0].method)
	assert.Equal(t, "/api/products", (*reqs)[0].path)
}

func TestGet(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"id":7,"name":"X","quantity":3,"price":5.5}`)
	c := NewClient(srv.URL + "/api/products/")

	p, err := c.Get(context.Background(), "7")
	require.NoError(t, err)

	assert.Equal(t, catalog.Product{ID: "7", Name: "X", Quantity: 3, Price: 5.5}, p)
	assert.Equal(t, "/api/products/7", (*reqs)[0].path)
}

func TestGet_NotFound(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusNotFound, `{"error":"Not found"}`)
	c := NewClient(srv.URL + "/api/products")

	_, err := c.Get(context.Background(), "42")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "Not found")
}

func TestCreate_SendsPeriodDecimalPrice(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusCreated, `{"id":1}`)
	c := NewClient(srv.URL + "/api/products")

	err := c.Create(context.Background(), catalog.ProductInput{Name: "Pen", Quantity: 2, Price: 199.99})
	require.NoError(t, err)

	got := (*reqs)[0]
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/api/products", got.path)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, map[string]any{"name": "Pen", "quantity": float64(2), "price": 199.99}, got.body)
}

func TestUpdate(t *testing.T) {
	srv, reqs := newTestServer(t, http.StatusOK, `{"ok":true}`)
	c := NewClient(srv.URL + "/api/products")

	err := c.Update(context.Background(), "7", catalog.ProductInput{Name: "X", Quantity: 3, Price: 5.5})
	require.NoError(t, err)

	got := (*reqs)[0]
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/api/products/7", got.path)
	assert.NotContains(t, got.body, "id")
}

func TestUpdate_ServerError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusInternalServerError, `boom`)
	c := NewClient(srv.URL + "/api/products")

	err := c.Update(context.Background(), "7", catalog.ProductInput{Name: "X"})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestList_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).List(context.Background())
	require.Error(t, err)
}
