// Package config handles glbtool configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/pkg/glb"
	"github.com/Faultbox/glbforge/pkg/texture"
)

// ErrInvalidConfig reports a configuration value outside its allowed range.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all glbtool settings.
type Config struct {
	Export  ExportConfig  `yaml:"export" toml:"export"`
	Texture TextureConfig `yaml:"texture" toml:"texture"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ExportConfig selects what the builder writes for each mesh.
type ExportConfig struct {
	Normals   bool    `yaml:"normals" toml:"normals"`
	UVs       bool    `yaml:"uvs" toml:"uvs"`
	Tangents  bool    `yaml:"tangents" toml:"tangents"`
	Colors    bool    `yaml:"colors" toml:"colors"`
	Strict    bool    `yaml:"strict" toml:"strict"`
	Generator string  `yaml:"generator" toml:"generator"`
	Copyright string  `yaml:"copyright,omitempty" toml:"copyright,omitempty"`
	Metallic  float32 `yaml:"metallic" toml:"metallic"`   // default material metallic factor
	Roughness float32 `yaml:"roughness" toml:"roughness"` // default material roughness factor
}

// TextureConfig holds settings for synthesized textures.
type TextureConfig struct {
	Size        int    `yaml:"size" toml:"size"`
	JPEGQuality int    `yaml:"jpeg_quality" toml:"jpeg_quality"`
	Format      string `yaml:"format" toml:"format"` // png or jpeg
}

// OutputConfig holds where generated files go.
type OutputConfig struct {
	Dir  string `yaml:"dir" toml:"dir"`
	Name string `yaml:"name" toml:"name"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
	JSON    bool   `yaml:"json" toml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Normals:   true,
			UVs:       true,
			Tangents:  true,
			Colors:    true,
			Generator: glb.DefaultGenerator,
			Metallic:  0,
			Roughness: 0.5,
		},
		Texture: TextureConfig{
			Size:        256,
			JPEGQuality: texture.DefaultJPEGQuality,
			Format:      "png",
		},
		Output: OutputConfig{
			Dir:  ".",
			Name: "demo.glb",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Export.Metallic < 0 || c.Export.Metallic > 1 {
		return fmt.Errorf("export.metallic %v not in [0,1]: %w", c.Export.Metallic, ErrInvalidConfig)
	}
	if c.Export.Roughness < 0 || c.Export.Roughness > 1 {
		return fmt.Errorf("export.roughness %v not in [0,1]: %w", c.Export.Roughness, ErrInvalidConfig)
	}
	if c.Texture.Size < 1 || c.Texture.Size > 8192 {
		return fmt.Errorf("texture.size %d not in [1,8192]: %w", c.Texture.Size, ErrInvalidConfig)
	}
	if c.Texture.JPEGQuality < 1 || c.Texture.JPEGQuality > 100 {
		return fmt.Errorf("texture.jpeg_quality %d not in [1,100]: %w", c.Texture.JPEGQuality, ErrInvalidConfig)
	}
	f, err := texture.ParseFormat(c.Texture.Format)
	if err != nil {
		return fmt.Errorf("texture.format: %w: %w", ErrInvalidConfig, err)
	}
	if f == texture.WebP {
		return fmt.Errorf("texture.format webp cannot be embedded: %w", ErrInvalidConfig)
	}
	if c.Output.Name == "" {
		return fmt.Errorf("output.name is empty: %w", ErrInvalidConfig)
	}
	return nil
}

// ImageFormat returns the parsed texture format, falling back to PNG.
func (c *Config) ImageFormat() texture.Format {
	f, err := texture.ParseFormat(c.Texture.Format)
	if err != nil {
		return texture.PNG
	}
	return f
}

// MeshOptions returns the attribute selection for glb.Builder.AddMesh.
func (c *Config) MeshOptions() glb.MeshOptions {
	return glb.MeshOptions{
		Normals:  c.Export.Normals,
		UVs:      c.Export.UVs,
		Tangents: c.Export.Tangents,
		Colors:   c.Export.Colors,
	}
}

// BuilderOptions returns the glb.Builder options for this configuration.
func (c *Config) BuilderOptions(log *zap.Logger) []glb.Option {
	opts := []glb.Option{
		glb.WithLogger(log),
		glb.WithStrict(c.Export.Strict),
		glb.WithGenerator(c.Export.Generator),
	}
	if c.Export.Copyright != "" {
		opts = append(opts, glb.WithCopyright(c.Export.Copyright))
	}
	return opts
}
