package main

import (
	"fmt"
	"os"

	"skipcut/util"
)

func main() {
	util.LoadEnv()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ls":
		handleLsCommand()
	case "open":
		handleOpenCommand()
	case "serve":
		handleServeCommand()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: skipcut <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  open <path>   Open a video in the interactive edit shell")
	fmt.Println("  serve <path>  Open a video and expose the remote-control HTTP API")
	fmt.Println("  ls            List previously opened videos")
	fmt.Println("  help          Show this help")
	fmt.Println()
	fmt.Println("Environment (or .env):")
	fmt.Println("  SKIPCUT_PORT             HTTP port for serve (default 8090)")
	fmt.Println("  SKIPCUT_CACHE_CAPACITY   Frame cache capacity (default 60)")
	fmt.Println("  SKIPCUT_HISTORY_DEPTH    Undo history depth (default 50)")
	fmt.Println("  SKIPCUT_PRELOAD_RADIUS   Frames preloaded around the playhead (default 5)")
	fmt.Println("  LOG_LEVEL, LOG_FORMAT    Logging level and format (text/json)")
}
