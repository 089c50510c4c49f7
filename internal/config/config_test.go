package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/srtk/pkg/models"
)

func TestFromViper_Defaults(t *testing.T) {
	viper.Reset()
	SetDefaults()

	cfg, err := FromViper()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, 0.1, cfg.Engine.Defaults.FreqMin)
	assert.Equal(t, 100.0, cfg.Engine.Defaults.FreqMax)
	assert.Equal(t, 1000, cfg.Engine.Defaults.FreqNum)
	require.NotNil(t, cfg.Engine.Defaults.FreqLog)
	assert.True(t, *cfg.Engine.Defaults.FreqLog)
	assert.Equal(t, models.Vs, cfg.Engine.Defaults.VzKey)
	assert.Equal(t, []float64{30}, cfg.Engine.Defaults.VzDepths)
	assert.Equal(t, models.Vs, cfg.Engine.Defaults.QwlKey)
	assert.Equal(t, models.Vs, cfg.Engine.Defaults.KappaKey)
	assert.Equal(t, 10000.0, cfg.Engine.QwlMaxDepth)
	assert.Equal(t, 4, cfg.Engine.Workers)
}

func TestFromViper_Overrides(t *testing.T) {
	viper.Reset()
	SetDefaults()
	viper.Set("LOG_LEVEL", "debug")
	viper.Set("VZ_DEPTHS", "5, 10,30")
	viper.Set("FREQ_LOG", false)
	viper.Set("ENGINE_WORKERS", 16)

	cfg, err := FromViper()
	require.NoError(t, err)

	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, []float64{5, 10, 30}, cfg.Engine.Defaults.VzDepths)
	assert.False(t, *cfg.Engine.Defaults.FreqLog)
	assert.Equal(t, 16, cfg.Engine.Workers)
}

func TestFromViper_Errors(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"LOG_LEVEL", "loud"},
		{"VZ_DEPTHS", "30,abc"},
		{"VZ_DEPTHS", "-5"},
		{"VZ_DEPTHS", " , "},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			viper.Reset()
			SetDefaults()
			viper.Set(tt.key, tt.value)

			_, err := FromViper()
			assert.Error(t, err)
		})
	}
}

func TestGetStringOrDefault(t *testing.T) {
	viper.Reset()
	assert.Equal(t, "fallback", GetStringOrDefault("S3_BUCKET", "fallback"))

	viper.Set("S3_BUCKET", "profiles")
	assert.Equal(t, "profiles", GetStringOrDefault("S3_BUCKET", "fallback"))
}
