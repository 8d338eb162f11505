package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("FAVORITES_BACKEND", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenRouter, cfg.AI.Provider)
	assert.Equal(t, "google/gemini-2.0-flash-001", cfg.ProviderModel())
	assert.Empty(t, cfg.ProviderAPIKey())
	assert.True(t, cfg.Recipe.ValidateInput)
	assert.Equal(t, 10, cfg.Recipe.MinIngredientsLength)
	assert.Equal(t, 50, cfg.Recipe.MaxServings)
	assert.Equal(t, BackendSQLite, cfg.Favorites.Backend)
	assert.Equal(t, 1, cfg.Favorites.ToastLimit)
	assert.Equal(t, 30*time.Minute, cfg.Favorites.SessionTTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AI_PROVIDER", " Gemini ")
	t.Setenv("GEMINI_API_KEY", "g-key-123456789")
	t.Setenv("FAVORITES_BACKEND", "memory")
	t.Setenv("RECIPE_VALIDATE_INPUT", "false")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "g-key-123456789", cfg.ProviderAPIKey())
	assert.Equal(t, "gemini-2.0-flash", cfg.ProviderModel())
	assert.Equal(t, BackendMemory, cfg.Favorites.Backend)
	assert.False(t, cfg.Recipe.ValidateInput)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"provider", "AI_PROVIDER", "anthropic"},
		{"favorites backend", "FAVORITES_BACKEND", "mongo"},
		{"postgres without dsn", "FAVORITES_BACKEND", "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "", MaskAPIKey(""))
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "sk-o...cdef", MaskAPIKey("sk-or-v1-abcdef"))
}
