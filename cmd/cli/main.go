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

// WebCloner CLI
//
// Command-line interface for WebCloner. Captures pages, prints their
// structure tree and produces standalone or page-builder copies.
//
// Usage:
//
//	webcloner <command> [flags]
//
// Commands:
//
//	capture   Capture one or more URLs to HTML files
//	tree      Print the structure tree of a page
//	export    Write a standalone copy of a page
//	studio    Build a page-builder project for a page
//	history   List recent captures
//	version   Show version information
package main

import (
	"fmt"
	"os"

	"github.com/agentberlin/webcloner/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	var err error
	switch command {
	case "capture":
		err = runCapture(os.Args[2:])
	case "tree":
		err = runTree(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "studio":
		err = runStudio(os.Args[2:])
	case "history":
		err = runHistory(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Printf("WebCloner CLI %s (%s)\n", version.CurrentVersion, version.GoVersion())
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`WebCloner CLI - Capture and restructure web pages

Usage:
  webcloner <command> [flags]

Commands:
  capture   Capture one or more URLs to HTML files
  tree      Print the structure tree of a page
  export    Write a standalone copy of a page
  studio    Build a page-builder project for a page
  history   List recent captures
  version   Show version information
  help      Show this help message

Examples:
  # Capture two pages into ./pages
  webcloner capture -o ./pages https://example.com https://example.org

  # Print the region tree of a saved page
  webcloner tree --mode regions --base-url https://example.com page.html

  # Build a page-builder project
  webcloner studio -o project.json https://example.com

Use "webcloner <command> --help" for more information about a command.`)
}
