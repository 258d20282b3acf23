// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/agentberlin/webcloner/internal/batch"
	"github.com/agentberlin/webcloner/sandbox"
)

func runCapture(args []string) error {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)

	var common commonFlags
	common.register(fs)
	var output string
	var parallelism int
	fs.StringVar(&output, "output", ".", "Output directory for captured pages")
	fs.StringVar(&output, "o", ".", "Output directory (shorthand)")
	fs.IntVar(&parallelism, "parallelism", 2, "Number of concurrent captures")
	fs.IntVar(&parallelism, "p", 2, "Number of concurrent captures (shorthand)")

	fs.Usage = func() {
		fmt.Println(`Usage: webcloner capture [flags] <url> [url...]

Render each URL in headless Chrome and save the computed DOM.

Flags:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("at least one URL is required")
	}
	if err := os.MkdirAll(output, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}

	a, err := openApp(common)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results := batch.Capture(ctx, a, fs.Args(), parallelism, a.logger, func(r batch.Result) {
		if r.Err != nil {
			return
		}
		path := filepath.Join(output, sandbox.DownloadName(r.Page.FinalURL))
		if err := os.WriteFile(path, []byte(r.Page.HTML), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
			return
		}
		if !common.quiet {
			fmt.Printf("%s -> %s (%d bytes, %s)\n", r.URL, path, len(r.Page.HTML), r.Duration.Round(time.Millisecond))
			if fw := r.Page.Framework; fw != nil && fw.ClientRendered {
				fmt.Printf("  built with %s; the copy is a static snapshot of its rendered output\n", fw.Name)
			}
		}
	})

	if failed := batch.Failed(results); failed > 0 {
		return fmt.Errorf("%d of %d captures failed", failed, len(results))
	}
	return nil
}
