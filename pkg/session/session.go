package session

import (
	"context"
	"time"

	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/decentralizedrights/portal/pkg/localstore"
	"github.com/golang-jwt/jwt/v4"
)

// Session is the signed-in state of the portal user. ExpiresAt is in unix
// milliseconds; zero means the token carries no expiry.
type Session struct {
	Token         string   `json:"token"`
	ExpiresAt     int64    `json:"expiresAt"`
	WalletAddress string   `json:"walletAddress,omitempty"`
	Roles         []string `json:"roles"`
}

type claims struct {
	jwt.RegisteredClaims

	Wallet string   `json:"wallet"`
	Roles  []string `json:"roles"`
}

// FromToken builds a session from the claims of token. The signature is not
// checked here; the backend is the authority and confirms it on use.
func FromToken(token string) (Session, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return Session{}, errorx.New(errorx.Unauthenticated, "Malformed session token: %v", err)
	}

	s := Session{
		Token:         token,
		WalletAddress: c.Wallet,
		Roles:         c.Roles,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time.UnixMilli()
	}
	if s.Roles == nil {
		s.Roles = []string{}
	}

	return s, nil
}

func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt != 0 && now.UnixMilli() >= s.ExpiresAt
}

func Save(ctx context.Context, store *localstore.Store, s Session) error {
	return store.Set(ctx, localstore.KeySession, s)
}

// Load returns the stored session. A missing, unreadable or expired session
// is errorx.ErrNotLoggedIn.
func Load(ctx context.Context, store *localstore.Store) (Session, error) {
	var s Session
	ok, err := store.Get(ctx, localstore.KeySession, &s)
	if err != nil {
		return Session{}, err
	}

	if !ok || s.Token == "" {
		return Session{}, errorx.ErrNotLoggedIn
	}

	if s.Expired(time.Now()) {
		return Session{}, errorx.ErrNotLoggedIn
	}

	return s, nil
}

func Clear(ctx context.Context, store *localstore.Store) error {
	return store.Delete(ctx, localstore.KeySession)
}
