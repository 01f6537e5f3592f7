package vendorapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{
			name: "valid config",
			config: &Config{
				ClientID:     "test_client_id",
				ClientSecret: "test_client_secret",
				APIBaseURL:   "https://api.example.com/v1",
			},
			wantErr: nil,
		},
		{
			name: "missing client id",
			config: &Config{
				ClientSecret: "test_client_secret",
				APIBaseURL:   "https://api.example.com/v1",
			},
			wantErr: ErrConfigMissingClientID,
		},
		{
			name: "missing client secret",
			config: &Config{
				ClientID:   "test_client_id",
				APIBaseURL: "https://api.example.com/v1",
			},
			wantErr: ErrConfigMissingClientSecret,
		},
		{
			name: "missing API base",
			config: &Config{
				ClientID:     "test_client_id",
				ClientSecret: "test_client_secret",
			},
			wantErr: ErrConfigMissingAPIBase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			// Check defaults are set
			assert.Equal(t, 30*time.Second, tt.config.Timeout)
			assert.Equal(t, 4, tt.config.MaxAttempts)
			assert.Equal(t, 500*time.Millisecond, tt.config.BackoffBase)
			assert.Equal(t, 200*time.Millisecond, tt.config.RequestDelay)
			assert.Equal(t, "en", tt.config.Locale)
		})
	}
}

func TestConfig_Validate_TrimsTrailingSlash(t *testing.T) {
	config := &Config{
		ClientID:     "id",
		ClientSecret: "secret",
		APIBaseURL:   "https://api.example.com/v1/",
	}
	assert.NoError(t, config.Validate())
	assert.Equal(t, "https://api.example.com/v1", config.APIBaseURL)
}

func TestConfig_Validate_DerivesAuthURL(t *testing.T) {
	t.Run("derived from API base host", func(t *testing.T) {
		config := &Config{
			ClientID:     "id",
			ClientSecret: "secret",
			APIBaseURL:   "https://api.example.com/v1",
		}
		assert.NoError(t, config.Validate())
		assert.Equal(t, "https://api.example.com/oauth/token", config.AuthURL)
	})

	t.Run("explicit auth URL wins", func(t *testing.T) {
		config := &Config{
			ClientID:     "id",
			ClientSecret: "secret",
			APIBaseURL:   "https://api.example.com/v1",
			AuthURL:      "https://auth.example.com/token",
		}
		assert.NoError(t, config.Validate())
		assert.Equal(t, "https://auth.example.com/token", config.AuthURL)
	})
}
