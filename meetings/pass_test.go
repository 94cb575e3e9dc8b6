package meetings

import (
	"errors"
	"strings"
	"testing"

	"homevia/apperr"

	"github.com/stretchr/testify/require"
)

func TestPassPayloadRoundTrip(t *testing.T) {
	payload := passPayload("m-123", "2026-09-10", "14:30")

	meetingID, err := VerifyPassPayload(payload)
	require.NoError(t, err)
	require.Equal(t, "m-123", meetingID)
}

func TestPassPayloadTamperDetected(t *testing.T) {
	payload := passPayload("m-123", "2026-09-10", "14:30")
	tampered := strings.Replace(payload, "m-123", "m-999", 1)

	_, err := VerifyPassPayload(tampered)
	require.True(t, errors.Is(err, apperr.ErrInvalidInput))
}

func TestPassPayloadMalformed(t *testing.T) {
	for _, payload := range []string{"", "no-separators", "a|b"} {
		_, err := VerifyPassPayload(payload)
		require.True(t, errors.Is(err, apperr.ErrInvalidInput), "payload %q", payload)
	}
}
