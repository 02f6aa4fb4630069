// Command chatprobe runs the AI Terminal chat smoke tests against a local
// generation server and prints a pass/fail summary. The process exits 0
// whether or not checks pass; only setup failures exit non-zero.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	termprobe "github.com/ai-terminal/termprobe"
	"github.com/ai-terminal/termprobe/ollama"
	"github.com/ai-terminal/termprobe/probe"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	verbose := flag.Bool("verbose", false, "log request/response detail to stderr")
	url := flag.String("url", "", "generation server base URL (overrides config and $OLLAMA_HOST)")
	model := flag.String("model", "", "model to test (default: first model the server reports)")
	transcript := flag.String("toml", "", "write a TOML transcript of the run to this file")
	flag.Parse()

	if *showVersion {
		fmt.Println("chatprobe", Version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := termprobe.LoadConfig()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = termprobe.DefaultConfig()
	}

	baseURL := *url
	if baseURL == "" {
		baseURL = termprobe.ResolveBaseURL(cfg)
	}

	client := ollama.NewClient(baseURL, cfg.ListTimeout(), cfg.GenerateTimeout(), cfg.ModelCacheTTL())
	defer client.Close()

	rec := termprobe.NewRecorder(os.Stdout)
	p := probe.New(client, rec, os.Stdout, cfg, *model)
	p.RunAll(context.Background())

	if *transcript != "" {
		if err := writeTranscript(*transcript, rec); err != nil {
			slog.Error("failed to write transcript", "path", *transcript, "error", err)
			os.Exit(1)
		}
	}
}

func writeTranscript(path string, rec *termprobe.Recorder) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return probe.WriteTranscript(f, rec.Results())
}
