package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/voyage/internal/geocoding"
	"github.com/UnknownOlympus/voyage/internal/metrics"
	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/UnknownOlympus/voyage/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*geocoding.Client, *mocks.Provider, *metrics.Metrics) {
	t.Helper()

	provider := mocks.NewProvider(t)
	m := metrics.NewMetrics(prometheus.NewRegistry())

	return geocoding.NewClient(provider, "test", m, slog.Default()), provider, m
}

func TestClient_SearchByText(t *testing.T) {
	ctx := t.Context()

	t.Run("short query never reaches the provider", func(t *testing.T) {
		client, _, m := newTestClient(t)

		places, err := client.SearchByText(ctx, "Мо")

		require.NoError(t, err)
		assert.NotNil(t, places)
		assert.Empty(t, places)
		assert.InDelta(t, 1, testutil.ToFloat64(m.LookupRequests.WithLabelValues("search", "skipped")), 0)
	})

	t.Run("query length is counted in characters", func(t *testing.T) {
		client, provider, _ := newTestClient(t)
		provider.On("Search", ctx, "Мос").Return([]models.Place{}, nil).Once()

		_, err := client.SearchByText(ctx, "Мос")

		require.NoError(t, err)
	})

	t.Run("results are returned in provider order", func(t *testing.T) {
		client, provider, m := newTestClient(t)
		expected := []models.Place{
			{ID: "1", DisplayName: "Москва"},
			{ID: "2", DisplayName: "Московский"},
		}
		provider.On("Search", ctx, "Моск").Return(expected, nil).Once()

		places, err := client.SearchByText(ctx, "Моск")

		require.NoError(t, err)
		assert.Equal(t, expected, places)
		assert.InDelta(t, 1, testutil.ToFloat64(m.LookupRequests.WithLabelValues("search", "success")), 0)
		assert.InDelta(t, 0, testutil.ToFloat64(m.InFlightRequests), 0)
	})

	t.Run("empty provider response is not a failure", func(t *testing.T) {
		client, provider, m := newTestClient(t)
		provider.On("Search", ctx, "nowhere").Return(nil, geocoding.ErrNominatimEmptyResponse).Once()

		places, err := client.SearchByText(ctx, "nowhere")

		require.NoError(t, err)
		assert.Empty(t, places)
		assert.InDelta(t, 1, testutil.ToFloat64(m.LookupRequests.WithLabelValues("search", "empty")), 0)
	})

	t.Run("provider failure degrades to empty results", func(t *testing.T) {
		client, provider, m := newTestClient(t)
		provider.On("Search", ctx, "Тверская").Return(nil, assert.AnError).Once()

		places, err := client.SearchByText(ctx, "Тверская")

		require.ErrorIs(t, err, geocoding.ErrLookupFailed)
		require.ErrorIs(t, err, assert.AnError)
		assert.NotNil(t, places)
		assert.Empty(t, places)
		assert.InDelta(t, 1, testutil.ToFloat64(m.LookupRequests.WithLabelValues("search", "failure")), 0)
	})
}

func TestClient_ReverseLookup(t *testing.T) {
	ctx := t.Context()
	point := models.GeoPoint{Longitude: 37.62, Latitude: 55.75}

	t.Run("success", func(t *testing.T) {
		client, provider, m := newTestClient(t)
		provider.On("Reverse", ctx, point).Return("Красная площадь", nil).Once()

		name, err := client.ReverseLookup(ctx, point)

		require.NoError(t, err)
		assert.Equal(t, "Красная площадь", name)
		assert.InDelta(t, 1, testutil.ToFloat64(m.LookupRequests.WithLabelValues("reverse", "success")), 0)
	})

	t.Run("failure", func(t *testing.T) {
		client, provider, m := newTestClient(t)
		provider.On("Reverse", ctx, mock.Anything).Return("", assert.AnError).Once()

		name, err := client.ReverseLookup(ctx, point)

		require.ErrorIs(t, err, geocoding.ErrLookupFailed)
		assert.Empty(t, name)
		assert.InDelta(t, 1, testutil.ToFloat64(m.LookupRequests.WithLabelValues("reverse", "failure")), 0)
	})

	t.Run("empty result", func(t *testing.T) {
		client, provider, m := newTestClient(t)
		provider.On("Reverse", ctx, point).Return("", geocoding.ErrEmptyResponse).Once()

		_, err := client.ReverseLookup(ctx, point)

		require.ErrorIs(t, err, geocoding.ErrLookupFailed)
		assert.InDelta(t, 1, testutil.ToFloat64(m.LookupRequests.WithLabelValues("reverse", "empty")), 0)
	})
}
