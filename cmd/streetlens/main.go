package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/streetlens/internal/app"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	prefsPath := flag.String("prefs", "", "override preferences path (optional)")
	apiURL := flag.String("api", "", "exploration API base URL (optional, overrides config)")
	lang := flag.String("lang", "", "description language, e.g. en or zh (optional)")
	debug := flag.Bool("debug", false, "write debug-level entries to the log file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("streetlens", version)
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PrefsPath:  *prefsPath,
		APIURL:     *apiURL,
		Language:   *lang,
		Debug:      *debug,
		Version:    version,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "streetlens: %v\n", err)
		return 1
	}
	return 0
}
