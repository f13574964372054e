package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOriginCode(t *testing.T) {
	tests := map[string]string{
		"Mumbai":         "MUM",
		"  pune ":        "PUN",
		"Zürich":         "ZUR",
		"São Paulo":      "SAO",
		"Ahmedabad-GIDC": "AHM",
		"1st Cross Rd":   "STC",
		"Go":             "GO",
		"12345":          FallbackOrigin,
		"":               FallbackOrigin,
	}
	for in, want := range tests {
		assert.Equal(t, want, OriginCode(in), "input %q", in)
	}
}

func TestLRNumberFormat(t *testing.T) {
	f := NewLRNumberFormat(0)
	assert.Equal(t, DefaultLRSequenceWidth, f.Width)

	created := time.Date(2026, 10, 16, 23, 0, 0, 0, time.UTC)
	prefix := f.Prefix("Mumbai", created)
	assert.Equal(t, "MUM-26", prefix)
	assert.Equal(t, "MUM-26-007", f.Format(prefix, 7))
	assert.Equal(t, "MUM-26-1234", f.Format(prefix, 1234), "sequence grows past the width")

	wide := NewLRNumberFormat(5)
	assert.Equal(t, "LR-26-00042", wide.Format(wide.Prefix("", created), 42))
}
