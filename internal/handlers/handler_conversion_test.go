package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/fx_rates_app/internal/apperrors"
	"github.com/SscSPs/fx_rates_app/internal/core/domain"
	portssvc "github.com/SscSPs/fx_rates_app/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_app/internal/dto"
	"github.com/SscSPs/fx_rates_app/internal/handlers"
	"github.com/SscSPs/fx_rates_app/internal/metrics"
	"github.com/SscSPs/fx_rates_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ConversionService ---
type MockConversionService struct {
	mock.Mock
}

func (m *MockConversionService) Convert(ctx context.Context, fromCurrency, toCurrency string, amount decimal.Decimal, date *time.Time) (*domain.Conversion, error) {
	args := m.Called(ctx, fromCurrency, toCurrency, amount, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversion), args.Error(1)
}

var _ portssvc.ConversionSvcFacade = (*MockConversionService)(nil)

type ConversionHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockConversionService
}

func (suite *ConversionHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.mockService = new(MockConversionService)

	cfg := &config.Config{ConvertRateLimit: "300-M"}
	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)
	container := &portssvc.ServiceContainer{Conversion: suite.mockService}

	handlers.RegisterRoutes(suite.router, cfg, container, m, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

func (suite *ConversionHandlerTestSuite) TestConvert_Success() {
	expected := &domain.Conversion{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "EUR",
		Amount:           decimal.NewFromInt(10),
		Value:            decimal.RequireFromString("9.30"),
		Strategy:         domain.StrategyDifferent,
		EffectiveDate:    time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	suite.mockService.On("Convert", mock.Anything, "USD", "EUR", mock.MatchedBy(func(a decimal.Decimal) bool {
		return a.Equal(decimal.NewFromInt(10))
	}), (*time.Time)(nil)).Return(expected, nil).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/convert?from=USD&to=EUR&amount=10", nil)
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ConversionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("USD", resp.From)
	suite.Equal("EUR", resp.To)
	suite.Equal("9.3", resp.Value.String())
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *ConversionHandlerTestSuite) TestConvert_PassesExplicitDate() {
	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	expected := &domain.Conversion{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "PLN",
		Amount:           decimal.NewFromInt(10),
		Value:            decimal.RequireFromString("39.50"),
		Strategy:         domain.StrategyToDefault,
		EffectiveDate:    day,
	}
	suite.mockService.On("Convert", mock.Anything, "USD", "PLN", mock.Anything, mock.MatchedBy(func(d *time.Time) bool {
		return d != nil && d.Equal(day)
	})).Return(expected, nil).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/convert?from=USD&to=PLN&amount=10&date=2024-01-05", nil)
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockService.AssertExpectations(suite.T())
}

func (suite *ConversionHandlerTestSuite) TestConvert_MissingParamsRejected() {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/convert?from=USD", nil)
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockService.AssertNotCalled(suite.T(), "Convert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ConversionHandlerTestSuite) TestConvert_NoRateIs404() {
	suite.mockService.On("Convert", mock.Anything, "GBP", "PLN", mock.Anything, (*time.Time)(nil)).
		Return(nil, fmt.Errorf("%w: no latest rate for GBP", apperrors.ErrNotFound)).Once()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/convert?from=GBP&to=PLN&amount=5", nil)
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ConversionHandlerTestSuite) TestHealthEndpoint() {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func TestConversionHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ConversionHandlerTestSuite))
}
