package sesskey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignerGenerateAndVerify(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	key, err := signer.Generate(42, "session-1")
	require.NoError(t, err)
	require.NotEmpty(t, key)

	require.NoError(t, signer.Verify(42, "session-1", key))
	require.Error(t, signer.Verify(43, "session-1", key))
	require.Error(t, signer.Verify(42, "session-2", key))
	require.Error(t, signer.Verify(42, "session-1", "garbage"))
}

func TestSignerExpired(t *testing.T) {
	signer := NewSigner("secret", time.Minute)
	issued := time.Unix(1_700_000_000, 0)
	signer.now = func() time.Time { return issued }
	key, err := signer.Generate(42, "session-1")
	require.NoError(t, err)

	signer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	require.Error(t, signer.Verify(42, "session-1", key))
}

func TestSignerRequiresSecretAndUser(t *testing.T) {
	_, err := NewSigner("", time.Hour).Generate(42, "s")
	require.Error(t, err)

	_, err = NewSigner("secret", time.Hour).Generate(0, "s")
	require.Error(t, err)
}
