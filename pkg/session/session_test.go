package session

import (
	"context"
	"testing"
	"time"

	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/decentralizedrights/portal/pkg/localstore"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, c jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func Test_FromToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signed(t, claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
		Wallet:           "0xabc",
		Roles:            []string{"member", "elder"},
	})

	s, err := FromToken(token)
	require.NoError(t, err)
	require.Equal(t, token, s.Token)
	require.Equal(t, exp.UnixMilli(), s.ExpiresAt)
	require.Equal(t, "0xabc", s.WalletAddress)
	require.Equal(t, []string{"member", "elder"}, s.Roles)
	require.False(t, s.Expired(time.Now()))
	require.True(t, s.Expired(exp.Add(time.Second)))
}

func Test_FromToken_Malformed(t *testing.T) {
	_, err := FromToken("not-a-jwt")
	require.True(t, errorx.Is(err, errorx.Unauthenticated))
}

func Test_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	store := localstore.New(t.TempDir())

	_, err := Load(ctx, store)
	require.ErrorIs(t, err, errorx.ErrNotLoggedIn)

	s := Session{Token: "t", ExpiresAt: time.Now().Add(time.Hour).UnixMilli(), Roles: []string{"member"}}
	require.NoError(t, Save(ctx, store, s))

	got, err := Load(ctx, store)
	require.NoError(t, err)
	require.Equal(t, s, got)

	require.NoError(t, Clear(ctx, store))
	_, err = Load(ctx, store)
	require.ErrorIs(t, err, errorx.ErrNotLoggedIn)
}

func Test_Load_Expired(t *testing.T) {
	ctx := context.Background()
	store := localstore.New(t.TempDir())

	require.NoError(t, Save(ctx, store, Session{Token: "t", ExpiresAt: time.Now().Add(-time.Minute).UnixMilli()}))
	_, err := Load(ctx, store)
	require.ErrorIs(t, err, errorx.ErrNotLoggedIn)
}
