package secretbox

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	k := make([]byte, 32)
	for i := range k {
		k[i] = byte(i + 1)
	}
	return k
}

func TestSealOpen_RoundTrip(t *testing.T) {
	b, err := New(testKey())
	require.NoError(t, err)

	dsn := "postgres://user:p@ss@db:5432/app?sslmode=require"
	sealed, err := b.Seal(dsn)
	require.NoError(t, err)
	require.NotContains(t, sealed, "p@ss")

	got, err := b.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, dsn, got)

	again, err := b.Seal(dsn)
	require.NoError(t, err)
	require.NotEqual(t, sealed, again, "nonce must differ per seal")
}

func TestOpen_DetectsTamper(t *testing.T) {
	b, err := New(testKey())
	require.NoError(t, err)
	sealed, err := b.Seal("top secret")
	require.NoError(t, err)

	nonce, ct, _ := strings.Cut(sealed, "|")
	raw, err := base64.StdEncoding.DecodeString(ct)
	require.NoError(t, err)
	raw[0] ^= 0xff
	_, err = b.Open(nonce + "|" + base64.StdEncoding.EncodeToString(raw))
	require.Error(t, err)

	_, err = b.Open("no-separator")
	require.ErrorIs(t, err, ErrMalformed)

	other := testKey()
	other[0] = 99
	ob, err := New(other)
	require.NoError(t, err)
	_, err = ob.Open(sealed)
	require.Error(t, err)
}

func TestParseKey(t *testing.T) {
	k := testKey()
	for _, s := range []string{
		base64.StdEncoding.EncodeToString(k),
		base64.RawStdEncoding.EncodeToString(k),
		hex.EncodeToString(k),
	} {
		got, err := ParseKey(s)
		require.NoError(t, err, s)
		require.Equal(t, k, got)
	}

	got, err := ParseKey("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	require.Len(t, got, 32)

	_, err = ParseKey("short")
	require.Error(t, err)
}
