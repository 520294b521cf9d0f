package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Abin-1409/fuel-swift/internal/config"
	"github.com/Abin-1409/fuel-swift/internal/migrations"
)

func main() {
	config.LoadDotEnvUp(8)

	var (
		direction = flag.String("direction", "up", "up|down")
		steps     = flag.Int("steps", 0, "number of steps (0 = all)")
	)
	flag.Parse()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(2)
	}

	r, err := migrations.NewRunner(dbURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate init error:", err)
		os.Exit(1)
	}
	defer r.Close()

	switch *direction {
	case "up":
		err = r.Up(*steps)
	case "down":
		err = r.Down(*steps)
	default:
		fmt.Fprintln(os.Stderr, "invalid -direction, must be up|down")
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "migration error:", err)
		os.Exit(1)
	}

	fmt.Println("migrations:", *direction, "ok")
}
