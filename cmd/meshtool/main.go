// meshtool is a CLI utility for inspecting, simplifying and previewing triangle meshes.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/meshreduce/internal/config"
	"github.com/Faultbox/meshreduce/internal/logger"
)

func main() {
	config.ParseFlags()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "info":
		err = cmdInfo(args)
	case "check":
		err = cmdCheck(args)
	case "decimate", "simplify":
		err = cmdDecimate(cfg, args)
	case "convert":
		err = cmdConvert(args)
	case "preview":
		err = cmdPreview(cfg, args)
	case "config":
		err = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - triangle mesh simplification utility

Usage:
  meshtool [-config file] [-debug] [-log-file file] <command> [options]

Commands:
  info <mesh>                        Show vertex, face and edge counts
  check <mesh>                       Validate mesh connectivity
  decimate -in <mesh> -out <mesh>    Simplify by edge collapse
  convert <in> <out>                 Convert between STL and OBJ
  preview <mesh> <image>             Render a PNG or WebP preview
  config [-save | -out file]         Print or save the effective config

Examples:
  meshtool info bunny.stl
  meshtool decimate -in bunny.stl -out bunny_lo.stl -max-error 0.01
  meshtool decimate -in scan.obj -out scan_lo.obj -target-faces 5000 -keep-boundary
  meshtool convert part.obj part.stl
  meshtool preview -yaw 45 bunny_lo.stl bunny_lo.webp
  meshtool -config project.yaml config -save`)
}
