package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("IMPORT_MAX_FILE_SIZE_MB", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(5*1024*1024), cfg.Import.MaxFileSize)
	assert.Equal(t, "8080", cfg.App.Port)
}

func TestLoad_ProductionNeedsSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsNonPositiveImportLimit(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("IMPORT_MAX_FILE_SIZE_MB", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://a.test", "https://b.test"}, splitOrigins(" http://a.test/ , https://b.test,,"))
}
