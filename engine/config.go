package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/nehe/engine/core"
	"github.com/spaghettifunk/nehe/engine/gpu"
)

/**
 * @brief Settings for a lesson run. Lessons supply the defaults; a TOML file
 * may override any of them.
 */
type AppConfig struct {
	// The window title.
	Title string `toml:"title"`
	// Window starting width in screen coordinates.
	Width int32 `toml:"width"`
	// Window starting height in screen coordinates.
	Height int32 `toml:"height"`
	// DepthFormat names the format of the depth texture the harness keeps at
	// the backbuffer size, for example "d16_unorm". Empty or "none" means no
	// depth texture.
	DepthFormat string `toml:"depth_format"`
	VSync       bool   `toml:"vsync"`
	Fullscreen  bool   `toml:"fullscreen"`
	LogLevel    string `toml:"log_level"`
	// Headless runs against an in-memory device instead of opening a window.
	Headless bool `toml:"headless"`
	// MaxFrames stops the run after that many frames. Zero runs until quit.
	MaxFrames int `toml:"max_frames"`
	// DataDir is the directory lesson resources are resolved against.
	DataDir string `toml:"data_dir"`
}

// DefaultConfig is the window every lesson starts from.
func DefaultConfig() AppConfig {
	return AppConfig{
		Title:    "NeHe's OpenGL Framework",
		Width:    640,
		Height:   480,
		VSync:    true,
		LogLevel: "info",
		DataDir:  "Data",
	}
}

// LoadConfig decodes the TOML file at path over cfg. Keys that do not map to
// a field are an error.
func LoadConfig(path string, cfg *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return &core.IOError{Path: path, Err: err}
	}
	defer f.Close()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("config %s: %s", path, strict.String())
		}
		var decode *toml.DecodeError
		if errors.As(err, &decode) {
			row, col := decode.Position()
			return fmt.Errorf("config %s:%d:%d: %w", path, row, col, err)
		}
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

func (c AppConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Width, c.Height)
	}
	if c.MaxFrames < 0 {
		return fmt.Errorf("invalid frame limit %d", c.MaxFrames)
	}
	if _, err := c.DepthTextureFormat(); err != nil {
		return err
	}
	return nil
}

// DepthTextureFormat returns the format named by DepthFormat, or
// TextureFormatInvalid when no depth texture was asked for, either by an
// empty name or "none".
func (c AppConfig) DepthTextureFormat() (gpu.TextureFormat, error) {
	format, err := gpu.ParseTextureFormat(c.DepthFormat)
	if err != nil || format == gpu.TextureFormatInvalid {
		return gpu.TextureFormatInvalid, err
	}
	if !format.IsDepth() {
		return gpu.TextureFormatInvalid, fmt.Errorf("%s is not a depth format", format)
	}
	return format, nil
}
