package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("job-1", "reports/file.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	jobID, path, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, "reports/file.csv", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	base := time.Now()
	signer.now = func() time.Time { return base }
	token, _, err := signer.Generate("job-1", "reports/file.csv")
	require.NoError(t, err)

	signer.now = func() time.Time { return base.Add(2 * time.Minute) }

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	jobID, path, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, "reports/file.csv", path)
}

func TestSignedURLSignerRejectsForeignSecret(t *testing.T) {
	token, _, err := NewSignedURLSigner("secret-a", time.Hour).Generate("job-1", "a.csv")
	require.NoError(t, err)

	_, _, _, err = NewSignedURLSigner("secret-b", time.Hour).Parse(token, true)
	require.Error(t, err)
}

func TestSignedURLSignerRequiresInputs(t *testing.T) {
	_, _, err := NewSignedURLSigner("", time.Hour).Generate("job-1", "a.csv")
	require.Error(t, err)
	_, _, err = NewSignedURLSigner("secret", time.Hour).Generate("", "a.csv")
	require.Error(t, err)
}
