package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newBcrypt(t *testing.T) Hasher {
	t.Helper()
	h, err := NewHasher(AlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func newArgon(t *testing.T) Hasher {
	t.Helper()
	h, err := NewHasher(AlgorithmArgon2id, 0)
	require.NoError(t, err)
	return h
}

func TestNewHasher_Unsupported(t *testing.T) {
	_, err := NewHasher("md5", 0)
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestHashVerify_RoundTrip(t *testing.T) {
	for name, h := range map[string]Hasher{"bcrypt": newBcrypt(t), "argon2id": newArgon(t)} {
		t.Run(name, func(t *testing.T) {
			for _, pw := range []string{"pw1", "correct horse battery staple", "пароль-🙂", " "} {
				enc, err := h.Hash(pw)
				require.NoError(t, err)
				require.NotEqual(t, pw, enc)
				require.True(t, h.Verify(pw, enc), "password %q must verify", pw)
				require.False(t, h.Verify(pw+"x", enc))
			}
		})
	}
}

func TestHash_IsSalted(t *testing.T) {
	for name, h := range map[string]Hasher{"bcrypt": newBcrypt(t), "argon2id": newArgon(t)} {
		t.Run(name, func(t *testing.T) {
			a, err := h.Hash("same")
			require.NoError(t, err)
			b, err := h.Hash("same")
			require.NoError(t, err)
			require.NotEqual(t, a, b)
		})
	}
}

func TestHash_Encodings(t *testing.T) {
	enc, err := newBcrypt(t).Hash("pw")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(enc, "$2"), enc)

	enc, err = newArgon(t).Hash("pw")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(enc, "$argon2id$v=19$m=65536,t=3,p=2$"), enc)
}

func TestVerify_AcceptsEitherAlgorithm(t *testing.T) {
	b, a := newBcrypt(t), newArgon(t)

	fromArgon, err := a.Hash("pw")
	require.NoError(t, err)
	fromBcrypt, err := b.Hash("pw")
	require.NoError(t, err)

	require.True(t, b.Verify("pw", fromArgon))
	require.True(t, a.Verify("pw", fromBcrypt))
}

func TestBcrypt_TooLong(t *testing.T) {
	_, err := newBcrypt(t).Hash(strings.Repeat("a", 73))
	require.ErrorIs(t, err, ErrPasswordTooLong)

	_, err = newBcrypt(t).Hash(strings.Repeat("a", 72))
	require.NoError(t, err)
}

func TestVerify_MalformedHashIsMismatch(t *testing.T) {
	h := newArgon(t)
	bad := []string{
		"",
		"plaintext",
		"$2a$10$tooshort",
		"$argon2id$v=19$m=65536,t=3,p=2$!!!$!!!",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=0,t=3,p=2$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=65536,t=3,p=999$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=99999999,t=3,p=2$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5",
	}
	for _, enc := range bad {
		require.NotPanics(t, func() {
			require.False(t, h.Verify("pw", enc), "hash %q", enc)
		})
	}
}
