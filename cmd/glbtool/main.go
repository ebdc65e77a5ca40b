// glbtool builds, inspects and checks glTF 2.0 binary (GLB) files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/internal/config"
	"github.com/Faultbox/glbforge/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	command, rest := args[0], args[1:]
	var err error
	switch command {
	case "demo":
		err = cmdDemo(rest, stdout, stderr)
	case "inspect", "info":
		err = cmdInspect(rest, stdout, stderr)
	case "validate", "check":
		err = cmdValidate(rest, stdout, stderr)
	case "extract", "x":
		err = cmdExtract(rest, stdout, stderr)
	case "watch":
		err = cmdWatch(rest, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}

	logger.Sync()
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `glbtool - glTF 2.0 binary (GLB) utility

Usage:
  glbtool <command> [options]

Commands:
  demo                        Write a showcase GLB to the output directory
  inspect [-v] <file.glb>     Show header, chunks and manifest summary
  validate <file.glb>...      Check container structure and manifest references
  extract [-webp] <file.glb>  Write embedded images to the output directory
  watch                       Rebuild the demo whenever the config file changes

Shared options:
  -config <path>   Config file (.yaml or .toml)
  -out <dir>       Output directory
  -debug           Debug logging
  -no-tangents     Skip TANGENT attributes
  -jpeg-quality N  JPEG quality for embedded textures

Examples:
  glbtool demo -out ./build
  glbtool inspect ./build/demo.glb
  glbtool extract -webp -out ./images ./build/demo.glb`)
}

// setup parses args into fs and returns the loaded config and a logger
// initialized from it.
func setup(fs *flag.FlagSet, args []string) (*config.Config, *config.Flags, *zap.Logger, error) {
	flags := config.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, err
	}
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := initLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, flags, log, nil
}

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	var fileCfg logger.FileConfig
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
		fileCfg.JSON = cfg.Logging.JSON
	}
	if err := logger.InitWithFileConfig(cfg.Logging.Level, fileCfg, true); err != nil {
		return nil, err
	}
	return logger.Log, nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}
