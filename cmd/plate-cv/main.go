package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sleepydogo/plate-cv/internal/config"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("plate-cv - licence plate localization and digit segmentation")
	fmt.Println()
	fmt.Println("Usage: plate-cv <command> [options] [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  detect <image>            Find plates and print their boxes")
	fmt.Println("  extract <image>           Segment the best plate and write its digits")
	fmt.Println("  templates <image>...      Save digits of each image as labelled templates")
	fmt.Println("  organize <src> <dst>      Copy templates into one directory per label")
	fmt.Println("  batch <dir>               Process every image in a directory")
	fmt.Println("  serve                     Run the MCP server on stdin/stdout")
	fmt.Println("  version                   Print version information")
	fmt.Println("  help                      Print this help message")
	fmt.Println()
	fmt.Println("Run 'plate-cv <command> -h' for command options.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug    Enable debug logging\n", config.EnvLogLevel)
	fmt.Printf("  %s=N          Override batch worker count\n", config.EnvWorkers)
	fmt.Println()
	fmt.Printf("Default config file: %s\n", config.GetConfigPath())
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// Configure logging to stderr (stdout is for results and MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "--version", "-v", "version":
		fmt.Printf("plate-cv %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		usage()
		return
	case "detect":
		err = runDetect(args)
	case "extract":
		err = runExtract(args)
	case "templates":
		err = runTemplates(args)
	case "organize":
		err = runOrganize(args)
	case "batch":
		err = runBatch(args)
	case "serve":
		err = runServe(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}
