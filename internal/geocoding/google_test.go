package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/voyage/internal/geocoding"
	"github.com/UnknownOlympus/voyage/internal/models"
	"github.com/UnknownOlympus/voyage/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestGoogleSearch(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, "ru,kz", "ru", slog.Default())
	ctx := t.Context()

	newRequest := func(address string) *maps.GeocodingRequest {
		return &maps.GeocodingRequest{
			Address:    address,
			Language:   "ru",
			Components: map[maps.Component]string{maps.ComponentCountry: "ru"},
		}
	}

	t.Run("api returns error", func(t *testing.T) {
		address := "some invalid place"

		mockClient.On("Geocode", ctx, newRequest(address)).Return(nil, assert.AnError).Once()

		_, err := provider.Search(ctx, address)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		mockClient.AssertExpectations(t)
	})

	t.Run("api return empty response", func(t *testing.T) {
		address := "some invalid place"

		mockClient.On("Geocode", ctx, newRequest(address)).Return(nil, nil).Once()

		places, err := provider.Search(ctx, address)

		require.Nil(t, places)
		require.ErrorIs(t, err, geocoding.ErrEmptyResponse)
		mockClient.AssertExpectations(t)
	})

	t.Run("successfull search", func(t *testing.T) {
		address := "Красная площадь"
		mockReponse := []maps.GeocodingResult{
			{
				PlaceID:          "abc",
				FormattedAddress: "Красная площадь, Москва, Россия",
				Geometry:         maps.AddressGeometry{Location: maps.LatLng{Lat: 55.75, Lng: 37.62}},
			},
			{
				PlaceID:          "def",
				FormattedAddress: "Красная площадь, Суздаль, Россия",
				Geometry:         maps.AddressGeometry{Location: maps.LatLng{Lat: 56.42, Lng: 40.44}},
			},
		}

		mockClient.On("Geocode", ctx, newRequest(address)).Return(mockReponse, nil).Once()

		places, err := provider.Search(ctx, address)

		require.NoError(t, err)
		require.Len(t, places, 2)
		assert.Equal(t, "abc", places[0].ID)
		assert.Equal(t, "Красная площадь, Москва, Россия", places[0].DisplayName)
		assert.InEpsilon(t, 55.75, places[0].Point.Latitude, 0.01)
		assert.InEpsilon(t, 37.62, places[0].Point.Longitude, 0.01)
		mockClient.AssertExpectations(t)
	})
}

func TestGoogleSearchWithoutCountry(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, "", "", slog.Default())
	ctx := t.Context()

	req := &maps.GeocodingRequest{Address: "Baker Street"}
	mockClient.On("Geocode", ctx, req).Return([]maps.GeocodingResult{{FormattedAddress: "Baker St"}}, nil).Once()

	places, err := provider.Search(ctx, "Baker Street")

	require.NoError(t, err)
	assert.Len(t, places, 1)
}

func TestGoogleReverse(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, "ru", "ru", slog.Default())
	ctx := t.Context()
	point := models.GeoPoint{Longitude: 37.62, Latitude: 55.75}
	req := &maps.GeocodingRequest{LatLng: &maps.LatLng{Lat: 55.75, Lng: 37.62}, Language: "ru"}

	t.Run("api returns error", func(t *testing.T) {
		mockClient.On("ReverseGeocode", ctx, req).Return(nil, assert.AnError).Once()

		name, err := provider.Reverse(ctx, point)

		require.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, name)
	})

	t.Run("empty formatted address", func(t *testing.T) {
		mockClient.On("ReverseGeocode", ctx, req).Return([]maps.GeocodingResult{{}}, nil).Once()

		_, err := provider.Reverse(ctx, point)

		require.ErrorIs(t, err, geocoding.ErrEmptyResponse)
	})

	t.Run("successfull reverse", func(t *testing.T) {
		mockClient.On("ReverseGeocode", ctx, req).Return([]maps.GeocodingResult{
			{FormattedAddress: "Красная площадь, 1"},
			{FormattedAddress: "Москва"},
		}, nil).Once()

		name, err := provider.Reverse(ctx, point)

		require.NoError(t, err)
		assert.Equal(t, "Красная площадь, 1", name)
	})
}
