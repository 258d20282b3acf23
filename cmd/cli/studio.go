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
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	var common commonFlags
	common.register(fs)
	var output, baseURL string
	fs.StringVar(&output, "output", ".", "Output file or directory")
	fs.StringVar(&output, "o", ".", "Output file or directory (shorthand)")
	fs.StringVar(&baseURL, "base-url", "", "Page URL of a local HTML file")

	fs.Usage = func() {
		fmt.Println(`Usage: webcloner export [flags] <url|file>

Write a standalone HTML copy of a page with absolute asset references.

Flags:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("exactly one URL or file is required")
	}

	a, err := openApp(common)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.openSession(context.Background(), fs.Arg(0), baseURL)
	if err != nil {
		return err
	}
	res, err := a.Export(sess.ID())
	if err != nil {
		return err
	}

	path := output
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		path = filepath.Join(output, res.FileName)
	}
	if err := os.WriteFile(path, []byte(res.HTML), 0644); err != nil {
		return err
	}
	if !common.quiet {
		fmt.Printf("Exported %s\n", path)
	}
	return nil
}

func runStudio(args []string) error {
	fs := flag.NewFlagSet("studio", flag.ExitOnError)

	var common commonFlags
	common.register(fs)
	var output, baseURL string
	fs.StringVar(&output, "output", "", "Output file (default stdout)")
	fs.StringVar(&output, "o", "", "Output file (shorthand)")
	fs.StringVar(&baseURL, "base-url", "", "Page URL of a local HTML file")

	fs.Usage = func() {
		fmt.Println(`Usage: webcloner studio [flags] <url|file>

Build a page-builder project (body HTML, minified CSS, external assets).

Flags:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("exactly one URL or file is required")
	}

	a, err := openApp(common)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.openSession(context.Background(), fs.Arg(0), baseURL)
	if err != nil {
		return err
	}
	project, err := a.Studio(sess.ID())
	if err != nil {
		return err
	}
	for _, w := range project.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	var out io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(project)
}
