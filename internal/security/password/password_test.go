package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// cheap parameters keep the suite fast
var testParams = Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

func TestHashVerify_Argon2id(t *testing.T) {
	h, err := Hash(testParams, "correct horse")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=1024,t=1,p=1$"))

	require.True(t, Verify("correct horse", h))
	require.False(t, Verify("correct horsE", h))
	require.False(t, Verify("", h))
}

func TestHash_IsSalted(t *testing.T) {
	a, err := Hash(testParams, "same")
	require.NoError(t, err)
	b, err := Hash(testParams, "same")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestHash_EmptyPassword(t *testing.T) {
	_, err := Hash(testParams, "")
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerify_Bcrypt(t *testing.T) {
	h, err := bcrypt.GenerateFromPassword([]byte("legacy pass"), bcrypt.MinCost)
	require.NoError(t, err)

	require.True(t, Verify("legacy pass", string(h)))
	require.False(t, Verify("other", string(h)))
}

func TestVerify_RejectsUnknownFormats(t *testing.T) {
	// md5("secret") in hex: unsalted digests are never accepted
	require.False(t, Verify("secret", "5ebe2294ecd0e0f08eab7690d2a6ee69"))
	require.False(t, Verify("secret", ""))
	require.False(t, Verify("secret", "$argon2id$v=19$garbage"))
	require.False(t, Verify("secret", "$argon2id$v=18$m=1024,t=1,p=1$AAAA$AAAA"))
}

func TestPolicy(t *testing.T) {
	bl, err := ReadBlacklist(strings.NewReader("# common\nPassword123\n\n"))
	require.NoError(t, err)

	p := Policy{MinLength: 8, RequireDigit: true, Blacklist: bl}

	ok, reasons := p.Validate("short1")
	require.False(t, ok)
	require.Contains(t, reasons, "too_short")

	ok, reasons = p.Validate("password123")
	require.False(t, ok)
	require.Equal(t, []string{"blacklisted"}, reasons)

	ok, reasons = p.Validate("longenough")
	require.False(t, ok)
	require.Equal(t, []string{"missing_digit"}, reasons)

	ok, _ = p.Validate("longenough7")
	require.True(t, ok)
}

func TestBlacklist_Nil(t *testing.T) {
	var bl *Blacklist
	require.False(t, bl.Contains("anything"))

	empty, err := LoadBlacklist("")
	require.NoError(t, err)
	require.False(t, empty.Contains("anything"))
}
