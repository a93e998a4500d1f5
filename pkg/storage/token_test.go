package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDownloadTokenRoundTrip(t *testing.T) {
	signer := NewDownloadTokenSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("2026-08-29/assignments_2026.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	rel, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "2026-08-29/assignments_2026.pdf", rel)
}

func TestDownloadTokenExpired(t *testing.T) {
	signer := NewDownloadTokenSigner("secret", -time.Hour)
	signer.ttl = time.Millisecond * 10
	token, _, err := signer.Generate("2026-08-29/report.csv")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, err = signer.Parse(token)
	require.Error(t, err)
}

func TestDownloadTokenTampered(t *testing.T) {
	signer := NewDownloadTokenSigner("secret", time.Hour)
	token, _, err := signer.Generate("2026-08-29/report.csv")
	require.NoError(t, err)

	_, err = signer.Parse(token + "ff")
	require.Error(t, err)
}

func TestArchiveSaveAndRead(t *testing.T) {
	archive, err := NewExportArchive(t.TempDir())
	require.NoError(t, err)

	rel, err := archive.Save("assignments_2026.csv", []byte("a,b,c"))
	require.NoError(t, err)

	data, err := archive.Read(rel)
	require.NoError(t, err)
	require.Equal(t, []byte("a,b,c"), data)

	_, err = archive.Read("../outside")
	require.Error(t, err)
}
