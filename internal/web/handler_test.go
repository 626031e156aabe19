package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogerio-castellano/product-catalog/internal/apiclient"
	"github.com/rogerio-castellano/product-catalog/internal/catalog"
	api "github.com/rogerio-castellano/product-catalog/internal/http"
	"github.com/rogerio-castellano/product-catalog/internal/http/handlers"
	"github.com/rogerio-castellano/product-catalog/internal/models"
	"github.com/rogerio-castellano/product-catalog/internal/repo"
)

type fixture struct {
	repo *repo.InMemoryProductRepository
	ctrl *catalog.Controller
	ui   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	products := repo.NewInMemoryProductRepository()
	handlers.SetProductRepo(products)

	backend := httptest.NewServer(api.NewRouter(api.RouterConfig{Logger: zerolog.Nop()}))
	t.Cleanup(backend.Close)

	page := NewPage()
	ctrl := catalog.NewController(apiclient.NewClient(backend.URL+"/api/products"), page, zerolog.Nop())
	return &fixture{
		repo: products,
		ctrl: ctrl,
		ui:   NewHandler(ctrl, page, zerolog.Nop()).Routes(),
	}
}

func (f *fixture) get(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	f.ui.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func (f *fixture) post(t *testing.T, path string, form url.Values) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.ui.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestIndex_RendersProducts(t *testing.T) {
	f := newFixture(t)
	_, err := f.repo.Create(context.Background(), models.Product{Name: "Pen", Quantity: 10, Price: 2.5})
	require.NoError(t, err)

	body := f.get(t)

	assert.Contains(t, body, `id="products-table"`)
	assert.Contains(t, body, "<td>Pen</td>")
	assert.Contains(t, body, "<td>R$ 2,50</td>")
	assert.Contains(t, body, `data-id="1"`)
	assert.Contains(t, body, "Novo produto")
}

func TestSubmit_CreatesProduct(t *testing.T) {
	f := newFixture(t)

	f.post(t, "/ui/products", url.Values{"name": {"Caneta"}, "quantity": {"4"}, "price": {"199,99"}})

	all, err := f.repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Caneta", all[0].Name)
	assert.Equal(t, 4, all[0].Quantity)
	assert.InDelta(t, 199.99, all[0].Price, 1e-9)

	body := f.get(t)
	assert.Contains(t, body, "<td>R$ 199,99</td>")
	assert.NotContains(t, body, `class="alert"`)
}

func TestSubmit_InvalidPriceAlertsOnce(t *testing.T) {
	f := newFixture(t)

	f.post(t, "/ui/products", url.Values{"name": {"X"}, "quantity": {"1"}, "price": {"abc"}})

	all, err := f.repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)

	body := f.get(t)
	assert.Contains(t, body, `class="alert"`)
	assert.Contains(t, body, "Use formato 199,99")
	assert.Contains(t, body, `value="abc"`)

	assert.NotContains(t, f.get(t), `class="alert"`)
}

func TestEdit_PopulatesFormAndUpdates(t *testing.T) {
	f := newFixture(t)
	p, err := f.repo.Create(context.Background(), models.Product{Name: "X", Quantity: 3, Price: 5.5})
	require.NoError(t, err)

	f.post(t, "/ui/products/1/edit", nil)

	body := f.get(t)
	assert.Contains(t, body, "Editar produto #1")
	assert.Contains(t, body, `value="5,5"`)
	assert.Contains(t, body, "window.scrollTo")
	assert.NotContains(t, f.get(t), "window.scrollTo")

	f.post(t, "/ui/products", url.Values{"name": {"X"}, "quantity": {"3"}, "price": {"6,75"}})

	got, err := f.repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 6.75, got.Price, 1e-9)

	all, err := f.repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)

	mode, _ := f.ctrl.Mode()
	assert.Equal(t, catalog.ModeCreate, mode)
}

func TestEdit_UnknownProduct(t *testing.T) {
	f := newFixture(t)

	f.post(t, "/ui/products/99/edit", nil)

	body := f.get(t)
	assert.Contains(t, body, catalog.MsgFetchFailed)
	assert.Contains(t, body, "Novo produto")
}

func TestCancel_ReturnsToCreate(t *testing.T) {
	f := newFixture(t)
	_, err := f.repo.Create(context.Background(), models.Product{Name: "X", Quantity: 3, Price: 5.5})
	require.NoError(t, err)

	f.post(t, "/ui/products/1/edit", nil)
	f.post(t, "/ui/products/cancel", nil)

	body := f.get(t)
	assert.Contains(t, body, "Novo produto")
	assert.NotContains(t, body, `value="5,5"`)
}

func TestIndex_LoadFailure(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	backend.Close()

	page := NewPage()
	ctrl := catalog.NewController(apiclient.NewClient(backend.URL), page, zerolog.Nop())
	ui := NewHandler(ctrl, page, zerolog.Nop()).Routes()

	rec := httptest.NewRecorder()
	ui.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), catalog.MsgLoadFailed)
}

// countingAPI records list calls on top of a fixed product set.
type countingAPI struct {
	products []catalog.Product
	listErr  error
	lists    int
}

func (a *countingAPI) List(ctx context.Context) ([]catalog.Product, error) {
	a.lists++
	if a.listErr != nil {
		return nil, a.listErr
	}
	return a.products, nil
}

func (a *countingAPI) Get(ctx context.Context, id catalog.ID) (catalog.Product, error) {
	return catalog.Product{}, errors.New("not found")
}

func (a *countingAPI) Create(ctx context.Context, in catalog.ProductInput) error {
	a.products = append([]catalog.Product{{ID: "1", Name: in.Name, Quantity: in.Quantity, Price: in.Price}}, a.products...)
	return nil
}

func (a *countingAPI) Update(ctx context.Context, id catalog.ID, in catalog.ProductInput) error {
	return nil
}

func newCountingFixture(a *countingAPI) *fixture {
	page := NewPage()
	ctrl := catalog.NewController(a, page, zerolog.Nop())
	return &fixture{ctrl: ctrl, ui: NewHandler(ctrl, page, zerolog.Nop()).Routes()}
}

func TestSubmit_PageViewAfterSaveDoesNotReloadAgain(t *testing.T) {
	a := &countingAPI{}
	f := newCountingFixture(a)

	f.post(t, "/ui/products", url.Values{"name": {"Pen"}, "quantity": {"1"}, "price": {"2,5"}})
	assert.Equal(t, 1, a.lists)

	body := f.get(t)
	assert.Equal(t, 1, a.lists)
	assert.Contains(t, body, "<td>R$ 2,50</td>")

	f.get(t)
	assert.Equal(t, 2, a.lists)
}

func TestSubmit_ReloadFailureAlertsOnce(t *testing.T) {
	a := &countingAPI{listErr: errors.New("connection refused")}
	f := newCountingFixture(a)

	f.post(t, "/ui/products", url.Values{"name": {"Pen"}, "quantity": {"1"}, "price": {"2,5"}})

	body := f.get(t)
	assert.Equal(t, 1, a.lists)
	assert.Equal(t, 1, strings.Count(body, `class="alert"`))
	assert.Contains(t, body, catalog.MsgLoadFailed)
}

func TestSubmit_InvalidPriceStillReloadsOnView(t *testing.T) {
	a := &countingAPI{}
	f := newCountingFixture(a)

	f.post(t, "/ui/products", url.Values{"name": {"Pen"}, "quantity": {"1"}, "price": {"1e400"}})
	assert.Zero(t, a.lists)

	body := f.get(t)
	assert.Equal(t, 1, a.lists)
	assert.Contains(t, body, "Use formato 199,99")
}
