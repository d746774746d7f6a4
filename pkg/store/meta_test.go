package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaString(t *testing.T) {
	md := map[string]any{
		"subject": "James Dyson",
		"count":   3,
	}

	assert.Equal(t, "James Dyson", metaString(md, "subject"))
	assert.Equal(t, "", metaString(md, "count"), "non-string values read as empty")
	assert.Equal(t, "", metaString(md, "missing"))
	assert.Equal(t, "", metaString(nil, "subject"))
}

func TestMetaInt(t *testing.T) {
	// chunk_index survives a JSON round trip as float64.
	md := map[string]any{
		"as_int":     7,
		"as_int64":   int64(8),
		"as_float64": float64(9),
		"as_string":  "10",
	}

	assert.Equal(t, 7, metaInt(md, "as_int"))
	assert.Equal(t, 8, metaInt(md, "as_int64"))
	assert.Equal(t, 9, metaInt(md, "as_float64"))
	assert.Equal(t, 0, metaInt(md, "as_string"))
	assert.Equal(t, 0, metaInt(md, "missing"))
	assert.Equal(t, 0, metaInt(nil, "as_int"))
}
