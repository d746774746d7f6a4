package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/motivateai/rag/pkg/processor"
)

func main() {
	var (
		dir    string
		check  bool
		dryRun bool
	)

	flag.StringVar(&dir, "dir", "transcripts", "Directory containing transcript files")
	flag.BoolVar(&check, "check", false, "Report which files need formatting")
	flag.BoolVar(&dryRun, "dry-run", false, "Show what would change without saving")
	flag.Parse()

	// Check is the same as dry-run.
	dryRun = dryRun || check

	if dryRun {
		color.Blue("Checking transcripts in %s", dir)
	} else {
		color.Blue("Formatting transcripts in %s", dir)
	}

	results, err := processor.FormatDir(dir, dryRun)
	if err != nil {
		color.Red("%v", err)
		return
	}
	if len(results) == 0 {
		fmt.Printf("No .md files found in %s\n", dir)
		return
	}

	changed := 0
	for _, result := range results {
		name := filepath.Base(result.Path)
		switch {
		case result.Err != nil:
			color.Red("  [ERROR] %s: %v", name, result.Err)
		case result.Changed && dryRun:
			color.Yellow("  [DRY-RUN] %s would be formatted", name)
			changed++
		case result.Changed:
			color.Green("  [DONE] formatted %s", name)
			changed++
		default:
			fmt.Printf("  [SKIP] %s already formatted\n", name)
		}
	}

	if dryRun {
		fmt.Printf("\nCheck complete: %d/%d files would be formatted\n", changed, len(results))
	} else {
		fmt.Printf("\nComplete: formatted %d/%d files\n", changed, len(results))
	}
}
