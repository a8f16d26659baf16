// Package config loads the engine configuration from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/oncue/engine/core"
	"github.com/spaghettifunk/oncue/engine/math"
)

type Config struct {
	Application ApplicationConfig `toml:"application"`
	Renderer    RendererConfig    `toml:"renderer"`
	Logging     LoggingConfig     `toml:"logging"`
}

type ApplicationConfig struct {
	// The application name, also passed to the renderer backend.
	Name string `toml:"name"`
	// Starting size of the default framebuffer.
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
	// Frame rate cap. 0 runs uncapped.
	TargetFPS uint32 `toml:"target_fps"`
	// Stop after this many frames. 0 runs until interrupted.
	MaxFrames uint64 `toml:"max_frames"`
}

type RendererConfig struct {
	// Instances per submission. 0 selects the built-in default.
	BatchCapacity    uint32     `toml:"batch_capacity"`
	MaxRenderTargets uint32     `toml:"max_render_targets"`
	ClearColour      [4]float32 `toml:"clear_colour"`
	// Colour a render target shows when it is cut out of a view cycle.
	FallbackColour [4]float32 `toml:"fallback_colour"`
	Bloom          bool       `toml:"bloom"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// upper bound of the per-instance uniform arrays
const maxBatchCapacity = 4096

func Default() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:      "oncue",
			Width:     1280,
			Height:    720,
			TargetFPS: 60,
		},
		Renderer: RendererConfig{
			BatchCapacity:    256,
			MaxRenderTargets: 16,
			ClearColour:      [4]float32{0.1, 0.1, 0.12, 1},
			FallbackColour:   [4]float32{0, 0, 0, 1},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the file at path on top of the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("func Load - failed to read %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("func Parse - %s: %w", strict.String(), core.ErrInvalidConfig)
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("func Parse - line %d column %d: %s: %w", row, col, derr.Error(), core.ErrInvalidConfig)
		}
		return nil, fmt.Errorf("func Parse - %s: %w", err, core.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Application.Width == 0 || c.Application.Height == 0 {
		return fmt.Errorf("func Validate - application size %dx%d: %w", c.Application.Width, c.Application.Height, core.ErrInvalidConfig)
	}
	if c.Renderer.BatchCapacity > maxBatchCapacity {
		return fmt.Errorf("func Validate - renderer.batch_capacity %d exceeds %d: %w", c.Renderer.BatchCapacity, maxBatchCapacity, core.ErrInvalidConfig)
	}
	if c.Renderer.MaxRenderTargets == 0 {
		return fmt.Errorf("func Validate - renderer.max_render_targets must be > 0: %w", core.ErrInvalidConfig)
	}
	for _, v := range append(c.Renderer.ClearColour[:], c.Renderer.FallbackColour[:]...) {
		if v < 0 || v > 1 {
			return fmt.Errorf("func Validate - colour component %f outside [0, 1]: %w", v, core.ErrInvalidConfig)
		}
	}
	return nil
}

// Marshal encodes the configuration back to TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func (r RendererConfig) Clear() math.Vec4 {
	return math.NewVec4(r.ClearColour[0], r.ClearColour[1], r.ClearColour[2], r.ClearColour[3])
}

func (r RendererConfig) Fallback() math.Vec4 {
	return math.NewVec4(r.FallbackColour[0], r.FallbackColour[1], r.FallbackColour[2], r.FallbackColour[3])
}
