package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAvailability(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"empty", "", true},
		{"null", "null", true},
		{"empty tree", `{"op":"&","c":[],"showc":[]}`, true},
		{"from date passed", `{"op":"&","c":[{"type":"date","d":">=","t":1699999999}]}`, true},
		{"from date ahead", `{"op":"&","c":[{"type":"date","d":">=","t":1700000001}]}`, false},
		{"until date ahead", `{"op":"&","c":[{"type":"date","d":"<","t":1700000001}]}`, true},
		{"until date passed", `{"op":"&","c":[{"type":"date","d":"<","t":1700000000}]}`, false},
		{"any of", `{"op":"|","c":[{"type":"date","d":">=","t":1800000000},{"type":"date","d":"<","t":1800000000}]}`, true},
		{"not all", `{"op":"!&","c":[{"type":"date","d":">=","t":1600000000}]}`, false},
		{"not any", `{"op":"!|","c":[{"type":"date","d":">=","t":1800000000}]}`, true},
		{"nested", `{"op":"&","c":[{"type":"date","d":">=","t":1600000000},{"op":"|","c":[{"type":"date","d":"<","t":1600000000}]}]}`, false},
		{"unknown condition", `{"op":"&","c":[{"type":"grade","id":3,"min":50}]}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EvaluateAvailability(tc.raw, now)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateAvailabilityErrors(t *testing.T) {
	_, err := EvaluateAvailability("{not json", time.Now())
	assert.Error(t, err)

	_, err = EvaluateAvailability(`{"op":"^","c":[{"type":"date","d":"<","t":1}]}`, time.Now())
	assert.Error(t, err)
}
