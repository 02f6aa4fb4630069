// Command keyecho is a manual probe for raw keyboard input. It switches the
// controlling terminal into raw mode, echoes each key press, and quits on
// 'q'. The original terminal settings are restored on every exit path,
// including SIGINT/SIGTERM.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	termprobe "github.com/ai-terminal/termprobe"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("keyecho", Version)
		os.Exit(0)
	}

	cfg, err := termprobe.LoadConfig()
	if err != nil {
		slog.Warn("failed to load config, using defaults", "error", err)
		cfg = termprobe.DefaultConfig()
	}

	if err := run(cfg.PollInterval()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(pollInterval time.Duration) error {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open /dev/tty: %w", err)
	}
	defer tty.Close()

	oldState, err := term.MakeRaw(int(tty.Fd()))
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}

	// Restore must happen exactly once, whether the loop quits, errors,
	// or a signal arrives.
	var once sync.Once
	restore := func() {
		once.Do(func() {
			term.Restore(int(tty.Fd()), oldState)
			fmt.Fprint(tty, "\nTerminal restored.\n")
		})
	}
	defer restore()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		restore()
		os.Exit(0)
	}()

	fmt.Fprint(tty, "Testing keyboard input... Press 'q' to quit or any other key to test:\r\n")

	return echoKeys(&ttySource{tty: tty, interval: pollInterval}, tty)
}

// ttySource reads single bytes from the tty, using a read deadline as the
// poll window so empty windows surface as ok=false instead of blocking.
type ttySource struct {
	tty      *os.File
	interval time.Duration
}

func (s *ttySource) Next() (byte, bool, error) {
	if err := s.tty.SetReadDeadline(time.Now().Add(s.interval)); err != nil {
		return 0, false, err
	}
	var b [1]byte
	n, err := s.tty.Read(b[:])
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}
	return b[0], true, nil
}
