package models

import (
	"fmt"
	"strings"
)

// Filter restricts retrieval to chunks whose metadata field equals Value.
type Filter struct {
	Key   string
	Value string
}

// ParseFilter parses a "key:value" flag into a Filter. An empty string
// means no filter.
func ParseFilter(s string) (*Filter, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	key, value, ok := strings.Cut(s, ":")
	if !ok || strings.TrimSpace(key) == "" || strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("invalid filter %q: use key:value format", s)
	}
	return &Filter{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)}, nil
}

// Source is one citation attached to an answer. Citations are reported
// alongside the answer, never inline in the generated text.
type Source struct {
	Subject    string  `json:"subject"`
	Company    string  `json:"company"`
	Themes     string  `json:"themes"`
	Score      float64 `json:"score"`
	ChunkText  string  `json:"chunk_text"`
	ChunkIndex int     `json:"chunk_index"`
	SourceFile string  `json:"source_file"`
}

// QueryResult is the outcome of one retrieval-plus-generation round trip.
type QueryResult struct {
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	Retrieved int      `json:"retrieved"`
	Kept      int      `json:"kept"`
	BestScore float64  `json:"best_score"`
}
