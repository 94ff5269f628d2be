package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/juku/core/user"
	emailsvc "github.com/trezcool/juku/services/email"
	testutil "github.com/trezcool/juku/tests"
)

func Test_authApi_login(t *testing.T) {
	a := setup(t)
	testutil.CreateUser(t, a.usrRepo, "Tanaka", "tanaka@juku.jp", "percolate-9-brine", user.RoleTeacher, true)
	testutil.CreateUser(t, a.usrRepo, "Gone", "gone@juku.jp", "percolate-9-brine", user.RoleTeacher, false)

	login := func(email, pwd string) []byte {
		return marchallObj(t, map[string]string{"email": email, "password": pwd})
	}

	tests := []httpTest{
		{
			name: "ok", body: login("tanaka@juku.jp", "percolate-9-brine"),
			wantCode: http.StatusOK,
		},
		{
			name: "wrong password", body: login("tanaka@juku.jp", "nope"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "unknown email", body: login("nobody@juku.jp", "percolate-9-brine"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "inactive user", body: login("gone@juku.jp", "percolate-9-brine"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "malformed email", body: login("not-an-email", "percolate-9-brine"),
			wantCode: http.StatusUnprocessableEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/auth/login", tt.body)
			a.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp struct {
					Token string `json:"token"`
				}
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling login response: %v", err)
				}
				if resp.Token == "" {
					t.Error("login returned no token")
				}
			}
		})
	}
}

func Test_authApi_passwordReset(t *testing.T) {
	a := setup(t)
	usr := testutil.CreateUser(t, a.usrRepo, "Tanaka", "tanaka@juku.jp", "percolate-9-brine", user.RoleTeacher, true)

	req, rec := newRequest(http.MethodPost, "/v1/auth/password-reset",
		marchallObj(t, map[string]string{"email": usr.Email}))
	a.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("password-reset = %d, want 202 (body: %s)", rec.Code, rec.Body.String())
	}

	// unknown emails get the same answer
	req, rec = newRequest(http.MethodPost, "/v1/auth/password-reset",
		marchallObj(t, map[string]string{"email": "nobody@juku.jp"}))
	a.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("password-reset (unknown) = %d, want 202", rec.Code)
	}

	// the email goes out asynchronously
	deadline := time.Now().Add(2 * time.Second)
	for len(emailsvc.GetSentMessages()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no password reset email sent")
		}
		time.Sleep(10 * time.Millisecond)
	}

	token, err := user.MakeToken(usr)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	confirm := marchallObj(t, map[string]string{
		"uid":              user.EncodeUID(usr),
		"token":            token,
		"password":         "brine-9-percolate",
		"password_confirm": "brine-9-percolate",
	})
	req, rec = newRequest(http.MethodPost, "/v1/auth/password-reset/confirm", confirm)
	a.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("password-reset/confirm = %d (body: %s)", rec.Code, rec.Body.String())
	}

	// the new password works
	req, rec = newRequest(http.MethodPost, "/v1/auth/login",
		marchallObj(t, map[string]string{"email": usr.Email, "password": "brine-9-percolate"}))
	a.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("login after reset = %d (body: %s)", rec.Code, rec.Body.String())
	}

	// a tampered token is rejected with a field code
	req, rec = newRequest(http.MethodPost, "/v1/auth/password-reset/confirm",
		marchallObj(t, map[string]string{
			"uid":              user.EncodeUID(usr),
			"token":            "AAAA-bogus",
			"password":         "brine-9-percolate",
			"password_confirm": "brine-9-percolate",
		}))
	a.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bogus token = %d, want 422 (body: %s)", rec.Code, rec.Body.String())
	}
	if code := errCode(t, rec); code != "invalid_token" {
		t.Errorf("error code = %s, want invalid_token", code)
	}
}
