package token_test

import (
	"encoding/base64"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-school-gateway/token"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func withFixedClock(t *testing.T) {
	t.Helper()
	token.NowTimeFunc = func() time.Time { return fixedNow }
	t.Cleanup(func() { token.NowTimeFunc = time.Now })
}

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	s, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func rawToken(payload string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}

func TestIsExpired(t *testing.T) {
	withFixedClock(t)

	t.Run("exp in the past", func(t *testing.T) {
		for _, d := range []time.Duration{time.Second, time.Minute, 24 * time.Hour} {
			tok := signedToken(t, jwtlib.MapClaims{"exp": fixedNow.Add(-d).Unix()})
			require.True(t, token.IsExpired(tok), "expired by %s", d)
		}
	})

	t.Run("exp in the future", func(t *testing.T) {
		for _, d := range []time.Duration{time.Second, 15 * time.Minute, 30 * 24 * time.Hour} {
			tok := signedToken(t, jwtlib.MapClaims{"exp": fixedNow.Add(d).Unix()})
			require.False(t, token.IsExpired(tok), "valid for %s", d)
		}
	})

	t.Run("exp equal to now is not expired", func(t *testing.T) {
		tok := signedToken(t, jwtlib.MapClaims{"exp": fixedNow.Unix()})
		require.False(t, token.IsExpired(tok))
	})

	t.Run("signature is not checked", func(t *testing.T) {
		tok := rawToken(`{"exp":` + "4102444800" + `}`)
		require.False(t, token.IsExpired(tok))
	})

	t.Run("malformed tokens fail closed", func(t *testing.T) {
		malformed := []string{
			"",
			"   ",
			"not-a-jwt",
			"a.b",
			"a.b.c.d",
			rawToken("not json"),
			rawToken(`{"sub":"user-1"}`),
			rawToken(`{"exp":"tomorrow"}`),
			rawToken(`{"exp":null}`),
		}
		for _, tok := range malformed {
			require.True(t, token.IsExpired(tok), "token %q", tok)
		}
	})
}

func TestExpiresAt(t *testing.T) {
	exp := fixedNow.Add(15 * time.Minute)
	got, err := token.ExpiresAt(signedToken(t, jwtlib.MapClaims{"exp": exp.Unix()}))
	require.NoError(t, err)
	require.Equal(t, exp.Unix(), got.Unix())

	_, err = token.ExpiresAt(rawToken(`{"sub":"user-1"}`))
	require.ErrorIs(t, err, token.ErrNoExpiry)
}
