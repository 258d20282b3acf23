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
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"
)

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)

	var common commonFlags
	common.register(fs)
	var limit int
	var jsonOutput bool
	fs.IntVar(&limit, "limit", 20, "Maximum number of entries")
	fs.BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	fs.Usage = func() {
		fmt.Println(`Usage: webcloner history [flags]

List recent captures, newest first.

Flags:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := openApp(common)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.RecentCaptures(limit)
	if err != nil {
		return fmt.Errorf("failed to get captures: %v", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		fmt.Println("No captures found.")
		return nil
	}

	fmt.Printf("%-6s %-20s %-8s %-10s %-50s\n", "ID", "Date", "Status", "Duration", "URL")
	fmt.Println("-----------------------------------------------------------------------------------------------")
	for _, r := range records {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		date := time.Unix(r.CreatedAt, 0).Format("2006-01-02 15:04")
		fmt.Printf("%-6d %-20s %-8s %-10s %-50s\n", r.ID, date, status, formatDuration(r.DurationMs), truncate(r.URL, 50))
	}
	return nil
}

// truncate truncates a string to the specified length
func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

// formatDuration formats a duration in milliseconds to a human-readable string
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}
