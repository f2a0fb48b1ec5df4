package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCodecIssueAndParse(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("super-secret"), time.Hour)
	id := uuid.New()

	token, err := codec.Issue(id)
	require.NoError(t, err)

	parsed, err := codec.Parse(token)
	require.NoError(t, err)
	require.Equal(t, id, parsed)
}

func TestCodecParseWrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewCodec([]byte("right-secret"), time.Hour)
	token, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	verifier := NewCodec([]byte("wrong-secret"), time.Hour)
	_, err = verifier.Parse(token)
	require.Error(t, err)
}

func TestCodecParseMalformed(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("secret"), time.Hour)

	_, err := codec.Parse("not.a.jwt")
	require.Error(t, err)
}

func TestCodecParseExpired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	codec := NewCodec(secret, time.Hour)

	stale := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		SessionID: uuid.NewString(),
	})
	signed, err := stale.SignedString(secret)
	require.NoError(t, err)

	_, err = codec.Parse(signed)
	require.Error(t, err)
}

func TestCodecParseBadSessionID(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	codec := NewCodec(secret, time.Hour)

	odd := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		SessionID: "not-a-uuid",
	})
	signed, err := odd.SignedString(secret)
	require.NoError(t, err)

	_, err = codec.Parse(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewCodecPanicsOnMissingSecret(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { NewCodec(nil, time.Hour) })
	require.Panics(t, func() { NewCodec([]byte("secret"), 0) })
}
