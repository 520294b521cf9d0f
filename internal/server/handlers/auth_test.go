package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Abin-1409/fuel-swift/internal/security"
	"github.com/Abin-1409/fuel-swift/internal/users"
	"github.com/Abin-1409/fuel-swift/internal/util"
)

func authRouter(u *fakeUsers) (*gin.Engine, *security.JWTManager) {
	jwtm := security.NewJWTManager("test-key", time.Minute, time.Hour)
	h := NewAuthHandler(nopLogger, u, jwtm, &fakeRefresh{})
	r := testEngine(nil)
	r.POST("/register/", h.Register)
	r.POST("/login/", h.Login)
	r.POST("/token/refresh/", h.Refresh)
	return r, jwtm
}

func validSignup() map[string]string {
	return map[string]string{
		"first_name": "Asha", "last_name": "Nair", "email": "Asha@Example.com",
		"phone_number": "9876543210", "password": "secret1", "confirm_password": "secret1",
	}
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(m map[string]string)
		want   string
	}{
		{"missing email", func(m map[string]string) { m["email"] = " " }, "Missing field: email"},
		{"mismatch", func(m map[string]string) { m["confirm_password"] = "other1" }, "Passwords do not match"},
		{"short password", func(m map[string]string) { m["password"], m["confirm_password"] = "ab1", "ab1" }, "password must be at least 6 characters"},
		{"bad email", func(m map[string]string) { m["email"] = "nope" }, "email is invalid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := authRouter(newFakeUsers())
			body := validSignup()
			tc.mutate(body)
			w := do(t, r, http.MethodPost, "/register/", body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("code = %d body %s", w.Code, w.Body)
			}
			if got := message(t, w); got != tc.want {
				t.Errorf("message = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRegisterThenDuplicate(t *testing.T) {
	u := newFakeUsers()
	r, _ := authRouter(u)

	w := do(t, r, http.MethodPost, "/register/", validSignup())
	if w.Code != http.StatusCreated {
		t.Fatalf("code = %d body %s", w.Code, w.Body)
	}
	got, err := u.FindByEmail(context.Background(), "asha@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.PhoneNumber != "+919876543210" || got.UserType != "user" {
		t.Errorf("stored user = %+v", got)
	}

	dup := validSignup()
	dup["email"] = "other@example.com"
	w = do(t, r, http.MethodPost, "/register/", dup)
	if w.Code != http.StatusBadRequest || message(t, w) != users.ErrPhoneTaken.Error() {
		t.Fatalf("duplicate phone: %d %s", w.Code, w.Body)
	}
}

func TestLoginAndRefreshRotation(t *testing.T) {
	hash, _ := util.HashPassword("secret1")
	u := newFakeUsers(users.User{ID: 7, Email: "agent@x.io", UserType: "agent", IsActive: true, PasswordHash: hash})
	r, jwtm := authRouter(u)

	w := do(t, r, http.MethodPost, "/login/", map[string]string{"email": "agent@x.io", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: %d", w.Code)
	}

	w = do(t, r, http.MethodPost, "/login/", map[string]string{"email": " AGENT@x.io", "password": "secret1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body)
	}
	out := decode[struct {
		Tokens security.Tokens `json:"tokens"`
		User   users.User      `json:"user"`
	}](t, w)
	p, err := jwtm.ParseAccess(out.Tokens.AccessToken)
	if err != nil || p.UserID != 7 || p.Role != "agent" {
		t.Fatalf("access principal = %+v, %v", p, err)
	}
	if out.User.ID != 7 {
		t.Errorf("user = %+v", out.User)
	}

	body := map[string]string{"refresh_token": out.Tokens.RefreshToken}
	if w = do(t, r, http.MethodPost, "/token/refresh/", body); w.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", w.Code, w.Body)
	}
	// single use
	if w = do(t, r, http.MethodPost, "/token/refresh/", body); w.Code != http.StatusUnauthorized {
		t.Fatalf("reused refresh: %d", w.Code)
	}
}
