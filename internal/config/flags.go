package config

import "flag"

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config      string
	Debug       bool
	Out         string
	NoTangents  bool
	JPEGQuality int
}

// BindFlags registers the shared flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Out, "out", "", "Output directory")
	fs.BoolVar(&f.NoTangents, "no-tangents", false, "Do not export TANGENT attributes")
	fs.IntVar(&f.JPEGQuality, "jpeg-quality", 0, "JPEG quality for embedded textures (1-100)")
	return f
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Out != "" {
		cfg.Output.Dir = f.Out
	}
	if f.NoTangents {
		cfg.Export.Tangents = false
	}
	if f.JPEGQuality > 0 {
		cfg.Texture.JPEGQuality = f.JPEGQuality
	}
}
