package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_SetupErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unsupported geocoder",
			env:     map[string]string{"VOYAGE_GEOCODER_TYPE": "yandex"},
			wantErr: "failed to create geocoding provider",
		},
		{
			name:    "mapbox without token",
			env:     map[string]string{"VOYAGE_ROUTER_TYPE": "mapbox"},
			wantErr: "failed to create router",
		},
		{
			name:    "bad geolocation",
			env:     map[string]string{"VOYAGE_GEOLOCATION": "somewhere"},
			wantErr: "failed to configure geolocation",
		},
		{
			name:    "webhook without URL",
			env:     map[string]string{"VOYAGE_NOTIFIER_TYPE": "webhook"},
			wantErr: "failed to create order sender",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("VOYAGE_DOTENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
			t.Setenv("VOYAGE_ENV", "local")
			for _, key := range []string{"VOYAGE_ROUTER_KEY", "VOYAGE_PLANS_FILE", "WEBHOOK_URL"} {
				t.Setenv(key, "")
			}
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			err := run(ctx, cancel)

			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
