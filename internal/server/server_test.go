package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"fipe/consulta/internal/app"
	"fipe/consulta/internal/domain"
	"fipe/consulta/internal/view"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFipe struct{}

func (stubFipe) ListBrands(ctx context.Context, c domain.VehicleCategory) ([]domain.SelectableOption, error) {
	return []domain.SelectableOption{{Code: "21", Label: "Fiat"}}, nil
}

func (stubFipe) ListModels(ctx context.Context, c domain.VehicleCategory, brand string) ([]domain.SelectableOption, error) {
	return []domain.SelectableOption{{Code: "5940", Label: "Palio 1.0"}}, nil
}

func (stubFipe) ListYears(ctx context.Context, c domain.VehicleCategory, brand, model string) ([]domain.SelectableOption, error) {
	return []domain.SelectableOption{{Code: "2013-1", Label: "2013 Gasolina"}}, nil
}

func (stubFipe) GetQuote(ctx context.Context, s domain.Selection) (*domain.PriceQuote, error) {
	return &domain.PriceQuote{
		Brand: "Fiat", Model: "Palio 1.0", ModelYear: "2013", Fuel: "Gasolina",
		FipeCode: "001267-0", ReferenceMonth: "agosto de 2024", Value: "R$ 25.000,00",
	}, nil
}

type stubPrices struct {
	err error
}

func (s stubPrices) Lookup(ctx context.Context, code string) (*domain.ReferencePrice, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.ReferencePrice{Price: "R$ 25.000,00", Brand: "Fiat", Model: "Palio", Year: "2013"}, nil
}

type memorySlot struct {
	data    []byte
	pingErr error
}

func (m *memorySlot) Load(ctx context.Context) ([]byte, error) { return m.data, nil }
func (m *memorySlot) Save(ctx context.Context, data []byte) error {
	m.data = append([]byte(nil), data...)
	return nil
}
func (m *memorySlot) Ping(ctx context.Context) error { return m.pingErr }

func newTestRouter(prices stubPrices, slot *memorySlot) http.Handler {
	a := app.New(stubFipe{}, prices, slot, time.Minute)
	return NewRouter(a, 0, "/erro.html")
}

func post(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code, path)
	require.Equal(t, "/", rec.Header().Get("Location"), path)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func pageState(t *testing.T, h http.Handler) view.Page {
	t.Helper()
	rec := get(h, "/api/estado")
	require.Equal(t, http.StatusOK, rec.Code)
	var page view.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	return page
}

func TestServer_CascadeAndFavorites(t *testing.T) {
	h := newTestRouter(stubPrices{}, &memorySlot{})

	post(t, h, "/consulta/tipo", url.Values{"tipoVeiculo": {"carros"}})
	post(t, h, "/consulta/marca", url.Values{"marca": {"21"}})
	post(t, h, "/consulta/modelo", url.Values{"modelo": {"5940"}})
	post(t, h, "/consulta", url.Values{"ano": {"2013-1"}})

	rec := get(h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "Fiat Palio 1.0", doc.Find("#resultado h4").Text())
	assert.Equal(t, "R$ 25.000,00", doc.Find("#resultado .valor").Text())
	assert.Equal(t, "2013-1", doc.Find("#ano option[selected]").AttrOr("value", ""))

	post(t, h, "/favoritos", nil)
	page := pageState(t, h)
	require.Equal(t, 1, page.Favorites.Count)
	assert.Equal(t, &view.Banner{Severity: "success", Message: "Veículo adicionado aos favoritos!"}, page.Banner)

	post(t, h, "/favoritos", nil)
	page = pageState(t, h)
	assert.Equal(t, 1, page.Favorites.Count)
	assert.Equal(t, "Este veículo já está nos favoritos.", page.Banner.Message)

	id := page.Favorites.Items[0].ID
	post(t, h, "/favoritos/"+id+"/atualizar", nil)
	assert.Equal(t, "Favorito atualizado!", pageState(t, h).Banner.Message)

	post(t, h, "/notificacao/fechar", nil)
	assert.Nil(t, pageState(t, h).Banner)

	post(t, h, "/favoritos/"+id+"/remover", nil)
	page = pageState(t, h)
	assert.True(t, page.Favorites.Empty)
	assert.Equal(t, "Favorito removido!", page.Banner.Message)
}

func TestServer_ClearNeedsConfirmation(t *testing.T) {
	slot := &memorySlot{data: []byte(`[{"id":"a","CodigoFipe":"001267-0","Marca":"Fiat"}]`)}
	h := newTestRouter(stubPrices{}, slot)

	post(t, h, "/favoritos/limpar", nil)
	assert.Equal(t, 1, pageState(t, h).Favorites.Count)

	post(t, h, "/favoritos/limpar", url.Values{"confirm": {"yes"}})
	page := pageState(t, h)
	assert.True(t, page.Favorites.Empty)
	assert.Equal(t, "Favoritos limpos!", page.Banner.Message)
}

func TestServer_QuoteWithMissingFields(t *testing.T) {
	h := newTestRouter(stubPrices{}, &memorySlot{})

	post(t, h, "/consulta", url.Values{"ano": {"2013-1"}})
	page := pageState(t, h)
	assert.Nil(t, page.Result)
	assert.Equal(t, &view.Banner{Severity: "error", Message: "Por favor, preencha todos os campos."}, page.Banner)
}

func TestServer_PriceLookup(t *testing.T) {
	h := newTestRouter(stubPrices{}, &memorySlot{})

	rec := get(h, "/preco/001267-0")
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "R$ 25.000,00", doc.Find(".valor").Text())
}

func TestServer_PriceLookupFailureRedirects(t *testing.T) {
	h := newTestRouter(stubPrices{err: domain.ErrUpstream}, &memorySlot{})

	rec := get(h, "/preco/000000-0")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/erro.html", rec.Header().Get("Location"))
	assert.Nil(t, pageState(t, h).Banner)

	rec = get(h, "/erro.html")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Não foi possível consultar o preço")
}

func TestServer_Health(t *testing.T) {
	slot := &memorySlot{}
	h := newTestRouter(stubPrices{}, slot)

	rec := get(h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	slot.pingErr = errors.New("connection refused")
	rec = get(h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"storage":"disconnected"`)
}

func TestServer_Metrics(t *testing.T) {
	h := newTestRouter(stubPrices{}, &memorySlot{})

	rec := get(h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}
