package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"trend-audio-remux/internal"
	"trend-audio-remux/internal/scratch"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg, err := internal.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	var (
		dirFlag = flag.String("dir", cfg.ScratchDir, "Scratch directory to sweep")
		ttlFlag = flag.Duration("ttl", cfg.ScratchTTL, "Delete service files older than this")
		dryRun  = flag.Bool("dry-run", false, "List expired files without deleting them")
	)
	flag.Parse()

	if *ttlFlag <= 0 {
		fmt.Println("Usage: sweep [-dir DIR] [-ttl 24h] [-dry-run]")
		fmt.Println()
		fmt.Println("  -ttl must be positive; SCRATCH_TTL=0 disables eviction")
		os.Exit(1)
	}

	dir, err := scratch.New(*dirFlag)
	if err != nil {
		fmt.Printf("Error opening scratch dir: %v\n", err)
		os.Exit(1)
	}

	var removed []string
	if *dryRun {
		removed, err = dir.Expired(*ttlFlag)
	} else {
		removed, err = dir.Sweep(*ttlFlag)
	}
	for _, p := range removed {
		fmt.Println(p)
	}
	if err != nil {
		fmt.Printf("Error sweeping %s: %v\n", dir.Root(), err)
		os.Exit(1)
	}
	verb := "removed"
	if *dryRun {
		verb = "would remove"
	}
	fmt.Printf("%s %d file(s) older than %s from %s\n", verb, len(removed), *ttlFlag, dir.Root())
}
