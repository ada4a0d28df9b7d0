package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vsm/qualitycheck/internal/submit"
	"github.com/vsm/qualitycheck/pkg/logger"
)

// Default configuration constants.
const (
	defaultWorkers = 4
	defaultTimeout = 30 * time.Second
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		generate = flag.Int("generate", 0, "Also submit a generated batch with this many reports")
		repeat   = flag.Int("repeat", 0, "Reports in the generated batch reusing an earlier reportId")
		workers  = flag.Int("workers", defaultWorkers, "Number of concurrent submissions")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose  = flag.Bool("verbose", false, "Print the issues of every failed report")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		submit.ShowHelp(os.Stdout)
		return
	}

	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(submit.ExitError)
	}
	if !*verbose {
		_ = logger.SetLevelString("warn")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := submit.Run(ctx, &submit.Config{
		BaseURL:  *baseURL,
		Files:    flag.Args(),
		Generate: *generate,
		Repeat:   *repeat,
		Workers:  *workers,
		Timeout:  *timeout,
		Verbose:  *verbose,
	}, os.Stdout)
	stop()
	os.Exit(code)
}
