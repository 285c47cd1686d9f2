package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nehe.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
title = "Custom"
width = 1024
depth_format = "d32_float"
vsync = false
max_frames = 10
`)
	cfg := DefaultConfig()
	require.NoError(t, LoadConfig(path, &cfg))
	assert.Equal(t, "Custom", cfg.Title)
	assert.Equal(t, int32(1024), cfg.Width)
	assert.Equal(t, int32(480), cfg.Height, "unset keys keep the default")
	assert.False(t, cfg.VSync)
	assert.Equal(t, 10, cfg.MaxFrames)
	assert.Equal(t, "Data", cfg.DataDir)

	format, err := cfg.DepthTextureFormat()
	require.NoError(t, err)
	assert.Equal(t, gpu.TextureFormatD32Float, format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigStrict(t *testing.T) {
	path := writeConfig(t, "title = \"x\"\nwidht = 3\n")
	cfg := DefaultConfig()
	err := LoadConfig(path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "widht")
}

func TestLoadConfigErrors(t *testing.T) {
	cfg := DefaultConfig()
	err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), &cfg)
	var ioErr *core.IOError
	assert.ErrorAs(t, err, &ioErr)

	path := writeConfig(t, "width = \"wide\"\n")
	assert.Error(t, LoadConfig(path, &cfg))
}

func TestDepthTextureFormat(t *testing.T) {
	for _, tt := range []struct {
		name    string
		want    gpu.TextureFormat
		wantErr bool
	}{
		{"", gpu.TextureFormatInvalid, false},
		{"none", gpu.TextureFormatInvalid, false},
		{"d16_unorm", gpu.TextureFormatD16Unorm, false},
		{"d24_unorm_s8_uint", gpu.TextureFormatD24UnormS8Uint, false},
		{"b8g8r8a8_unorm", gpu.TextureFormatInvalid, true},
		{"bogus", gpu.TextureFormatInvalid, true},
	} {
		cfg := AppConfig{DepthFormat: tt.name}
		got, err := cfg.DepthTextureFormat()
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	cfg.Height = -1
	assert.Error(t, cfg.Validate())
	cfg = DefaultConfig()
	cfg.MaxFrames = -2
	assert.Error(t, cfg.Validate())
}
