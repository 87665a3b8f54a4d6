package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/wippyai/browser-runtime/engine"
	"github.com/wippyai/browser-runtime/guest"
	"github.com/wippyai/browser-runtime/runtime"
)

const demoHTML = `<!DOCTYPE html><html><head></head><body><div id="error"></div></body></html>`

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to guest wasm file")
		htmlArg     = flag.String("html", "", "Initial document: a file path or inline HTML")
		entry       = flag.String("entry", "", "Guest entry export (default: run, then _start)")
		frames      = flag.Int("frames", 0, "Synthetic animation frames to deliver (-1 = unlimited)")
		demo        = flag.Bool("demo", false, "Run the built-in image demo guest")
		interactive = flag.Bool("i", false, "Inspect the final document in a TUI")
	)
	flag.Parse()

	if *wasmFile == "" && !*demo {
		fmt.Fprintln(os.Stderr, "Usage: run -wasm <file.wasm> [-html doc] [-entry name] [-frames N]")
		fmt.Fprintln(os.Stderr, "       run -demo [-i]")
		os.Exit(1)
	}

	if err := run(*wasmFile, *htmlArg, *entry, *frames, *demo, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(wasmFile, htmlArg, entry string, frames int, demo, interactive bool) error {
	ctx := context.Background()

	cfg, err := loadEnvConfig()
	if err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	logger, err := cfg.newLogger()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()
	engine.SetLogger(logger.Named("engine"))

	wasmBytes, err := guestBytes(wasmFile, demo)
	if err != nil {
		return err
	}
	html, err := initialHTML(htmlArg, demo)
	if err != nil {
		return err
	}

	sess, err := runtime.NewSession(ctx, runtime.SessionConfig{
		HTML:      html,
		Fetch:     cfg.fetchConfig(),
		MaxFrames: frames,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	if err := sess.Run(ctx, wasmBytes, entry); err != nil {
		return err
	}

	if interactive {
		return runInteractive(sess.Document)
	}
	fmt.Println(sess.HTML())
	return nil
}

func guestBytes(wasmFile string, demo bool) ([]byte, error) {
	if demo {
		return guest.BuildImageDemo(), nil
	}
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return nil, fmt.Errorf("read guest: %w", err)
	}
	return data, nil
}

// initialHTML treats -html as a file when one exists at that path, inline
// markup otherwise.
func initialHTML(htmlArg string, demo bool) (string, error) {
	if htmlArg == "" {
		if demo {
			return demoHTML, nil
		}
		return "", nil
	}
	if st, err := os.Stat(htmlArg); err == nil && !st.IsDir() {
		data, err := os.ReadFile(htmlArg)
		if err != nil {
			return "", fmt.Errorf("read document: %w", err)
		}
		return string(data), nil
	}
	return htmlArg, nil
}
