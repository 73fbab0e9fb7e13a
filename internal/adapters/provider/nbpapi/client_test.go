package nbpapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/adapters/provider/nbpapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tablePayload = `[
  {
    "table": "A",
    "no": "007/A/NBP/2024",
    "effectiveDate": "2024-01-10",
    "rates": [
      {"currency": "euro", "code": "EUR", "mid": 4.3434},
      {"currency": "dolar amerykański", "code": "USD", "mid": 3.9687}
    ]
  }
]`

func TestClient_FetchCurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchangerates/tables/A", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(tablePayload))
	}))
	defer server.Close()

	client := nbpapi.NewClient("nbp", server.URL)
	rates, err := client.FetchCurrent(context.Background())
	require.NoError(t, err)
	require.Len(t, rates, 2)

	eur := rates[0]
	assert.Equal(t, "nbp", eur.ProviderName)
	assert.Equal(t, "EUR", eur.CurrencyCode)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), eur.Date)
	assert.Equal(t, "4.3434", eur.To.String())
	assert.Equal(t, "1", eur.From.String())
	assert.NotEmpty(t, eur.Details)
}

func TestClient_FetchForDateRange_BuildsRangeURL(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(tablePayload))
	}))
	defer server.Close()

	client := nbpapi.NewClient("nbp", server.URL)
	from := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
	_, err := client.FetchForDateRange(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, "/exchangerates/tables/A/2024-01-08/2024-01-12", gotPath)
}

func TestClient_NotFoundMeansEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := nbpapi.NewClient("nbp", server.URL)
	rates, err := client.FetchCurrent(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rates)
}

func TestClient_ServerErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := nbpapi.NewClient("nbp", server.URL)
	_, err := client.FetchCurrent(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
