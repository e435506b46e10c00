package db

import (
	"strings"
	"testing"
)

func TestTruncateError(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantLen int
	}{
		{name: "short message unchanged", message: "missing songstats_id", wantLen: 20},
		{name: "exactly at limit", message: strings.Repeat("x", 200), wantLen: 200},
		{name: "long message truncated", message: strings.Repeat("x", 500), wantLen: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateError(tt.message)
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
			if !strings.HasPrefix(tt.message, got) {
				t.Errorf("truncated message %q is not a prefix of the original", got)
			}
		})
	}
}
