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
	"strings"

	"github.com/agentberlin/webcloner/editor"
	"github.com/agentberlin/webcloner/indexer"
)

func runTree(args []string) error {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)

	var common commonFlags
	common.register(fs)
	var mode, baseURL string
	var jsonOutput bool
	fs.StringVar(&mode, "mode", indexer.ModeStructural.String(), "Tree mode: structural or regions")
	fs.StringVar(&baseURL, "base-url", "", "Page URL of a local HTML file")
	fs.BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	fs.Usage = func() {
		fmt.Println(`Usage: webcloner tree [flags] <url|file>

Print the structure tree of a page.

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
	m, err := indexer.ParseMode(mode)
	if err != nil {
		return err
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

	var tree []*editor.TreeNode
	if m == indexer.ModeRegions {
		root, err := sess.Regions()
		if err != nil {
			return err
		}
		tree = []*editor.TreeNode{root}
	} else if tree, err = sess.View(); err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tree)
	}
	printTree(os.Stdout, tree, 0)
	return nil
}

func printTree(w io.Writer, nodes []*editor.TreeNode, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s  [%s]\n", strings.Repeat("  ", depth), n.Label, n.ID)
		printTree(w, n.Children, depth+1)
	}
}
