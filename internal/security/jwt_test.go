package security

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	m := NewJWTManager("k", time.Minute, time.Hour)
	tokens, rc, err := m.Issue(Principal{UserID: 42, Role: "agent", Email: "a@x.io"})
	if err != nil {
		t.Fatal(err)
	}
	if tokens.ExpiresIn != 60 {
		t.Errorf("ExpiresIn = %d", tokens.ExpiresIn)
	}
	p, err := m.ParseAccess(tokens.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if p.UserID != 42 || p.Role != "agent" || p.Email != "a@x.io" {
		t.Errorf("principal = %+v", p)
	}

	rp, claims, err := m.ParseRefresh(tokens.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}
	if rp.UserID != 42 || claims.ID != rc.ID {
		t.Errorf("refresh principal = %+v jti %q vs %q", rp, claims.ID, rc.ID)
	}
}

func TestParseRejectsForeignKeyAndExpiry(t *testing.T) {
	m := NewJWTManager("k", time.Minute, time.Hour)
	tokens, _, _ := m.Issue(Principal{UserID: 1, Role: "user"})

	other := NewJWTManager("other", time.Minute, time.Hour)
	if _, err := other.ParseAccess(tokens.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign key: err = %v", err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := m.ParseAccess(tokens.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired: err = %v", err)
	}
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	m := NewJWTManager("k", time.Minute, time.Hour)
	tokens, _, _ := m.Issue(Principal{UserID: 1, Role: "admin"})
	if _, err := m.ParseAccess(tokens.RefreshToken); err == nil {
		t.Fatal("refresh token accepted as access token")
	}
	if _, _, err := m.ParseRefresh(tokens.AccessToken); err == nil {
		t.Fatal("access token accepted as refresh token")
	}
}
