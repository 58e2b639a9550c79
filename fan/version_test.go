package fan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckVersionAgainstRequirement(t *testing.T) {
	tests := []struct {
		name         string
		major, minor int
		wantErr      string
	}{
		{"exact match", 1, 2, ""},
		{"newer minor ok", 1, 5, ""},
		{"older minor rejected", 1, 1, "minor insufficient"},
		{"newer major rejected", 2, 0, "major mismatch"},
		{"older major rejected", 0, 9, "major mismatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkVersion(Info{Serial: "FAN0", Major: tt.major, Minor: tt.minor}, 1, 2)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
