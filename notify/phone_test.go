package notify

import (
	"errors"
	"testing"

	"homevia/apperr"

	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"already normalized", "+4915112345678", "+4915112345678", true},
		{"formatting stripped", "+49 (151) 123-456 78", "+4915112345678", true},
		{"dots stripped", "+49.151.1234.5678", "+4915112345678", true},
		{"missing plus", "4915112345678", "", false},
		{"plus not leading", "49+15112345678", "", false},
		{"too short", "+4912345", "", false},
		{"empty", "", "", false},
		{"letters only", "call me", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw)
			if !tt.ok {
				require.Error(t, err)
				require.True(t, errors.Is(err, apperr.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
