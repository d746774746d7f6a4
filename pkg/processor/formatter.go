package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Raw transcripts often arrive as a single giant line. The formatter inserts
// blank lines after sentence boundaries so the splitter sees real paragraphs.
var (
	sentenceEnd  = regexp.MustCompile(`\. ([A-Z"])`)
	exclaimEnd   = regexp.MustCompile(`([!?]) ([A-Z"])`)
	manyNewlines = regexp.MustCompile(`\n{3,}`)
)

// formattedLineThreshold marks a file as already formatted.
const formattedLineThreshold = 50

// FormatText returns the content with sentence line breaks applied.
func FormatText(content string) string {
	content = sentenceEnd.ReplaceAllString(content, ".\n\n$1")
	content = exclaimEnd.ReplaceAllString(content, "$1\n\n$2")
	content = manyNewlines.ReplaceAllString(content, "\n\n")
	return content
}

// FormatFile rewrites a transcript in place. It reports whether the file was
// (or would be) changed. DryRun leaves the file untouched.
func FormatFile(path string, dryRun bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("error reading %s: %w", path, err)
	}
	content := string(data)

	if strings.Count(content, "\n") > formattedLineThreshold {
		return false, nil
	}

	formatted := FormatText(content)
	if formatted == content {
		return false, nil
	}

	if !dryRun {
		if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
			return false, fmt.Errorf("error writing %s: %w", path, err)
		}
	}
	return true, nil
}

// FormatResult is the outcome of formatting one file.
type FormatResult struct {
	Path    string
	Changed bool
	Err     error
}

// FormatDir formats every markdown transcript in dir, in filename order.
func FormatDir(dir string, dryRun bool) ([]FormatResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", dir, err)
	}
	sort.Strings(paths)

	results := make([]FormatResult, 0, len(paths))
	for _, path := range paths {
		changed, err := FormatFile(path, dryRun)
		results = append(results, FormatResult{Path: path, Changed: changed, Err: err})
	}
	return results, nil
}
