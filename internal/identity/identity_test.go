package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func TestSignInAnonymously_LocalFallback(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "identity.json")
	p := New("", statePath)

	uid, err := p.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("SignInAnonymously: %v", err)
	}
	if !strings.HasPrefix(uid, "local-") {
		t.Errorf("local fallback UID = %q, want local- prefix", uid)
	}

	session := p.Current()
	if session == nil || !session.Local {
		t.Fatalf("Current() = %+v, want a local session", session)
	}
}

func TestSignInAnonymously_PersistsAcrossInstances(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "identity.json")

	first := New("", statePath)
	uid1, err := first.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("first sign-in: %v", err)
	}

	// A fresh provider pointed at the same state file must reissue the
	// same UID, never mint a new one.
	second := New("", statePath)
	uid2, err := second.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("second sign-in: %v", err)
	}
	if uid1 != uid2 {
		t.Errorf("UID changed across restarts: %q then %q", uid1, uid2)
	}
}

func TestSignInAnonymously_RESTSignUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/v1/accounts:signUp" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-api-key" {
			t.Errorf("key query param = %q, want test-api-key", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"idToken": "tok", "refreshToken": "refresh", "localId": "firebase-uid-1"}`))
	}))
	defer srv.Close()

	statePath := filepath.Join(t.TempDir(), "identity.json")
	p := New("test-api-key", statePath)
	p.endpoint = srv.URL

	uid, err := p.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("SignInAnonymously: %v", err)
	}
	if uid != "firebase-uid-1" {
		t.Errorf("uid = %q, want firebase-uid-1", uid)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("sign-up endpoint called %d times, want 1", got)
	}

	session := p.Current()
	if session == nil || session.Local {
		t.Fatalf("Current() = %+v, want a remote session", session)
	}
	if session.RefreshToken != "refresh" {
		t.Errorf("refresh token = %q, want refresh", session.RefreshToken)
	}
}

func TestSignInAnonymously_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "temporarily overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"localId": "firebase-uid-2"}`))
	}))
	defer srv.Close()

	p := New("test-api-key", filepath.Join(t.TempDir(), "identity.json"))
	p.endpoint = srv.URL

	uid, err := p.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("SignInAnonymously should recover from a transient failure: %v", err)
	}
	if uid != "firebase-uid-2" {
		t.Errorf("uid = %q, want firebase-uid-2", uid)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("sign-up endpoint called %d times, want 2", got)
	}
}

func TestSignInAnonymously_MissingLocalID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"idToken": "tok"}`))
	}))
	defer srv.Close()

	p := New("test-api-key", filepath.Join(t.TempDir(), "identity.json"))
	p.endpoint = srv.URL

	if _, err := p.SignInAnonymously(context.Background()); err == nil {
		t.Error("sign-in should fail when the response carries no localId")
	}
}

func TestSignOut_NotifiesListenersKeepsState(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "identity.json")
	p := New("", statePath)

	var events []bool
	p.OnStateChange(func(_ string, signedIn bool) {
		events = append(events, signedIn)
	})

	uid, err := p.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("SignInAnonymously: %v", err)
	}
	p.SignOut()

	if len(events) != 2 || !events[0] || events[1] {
		t.Errorf("listener events = %v, want [true false]", events)
	}
	if p.Current() != nil {
		t.Error("Current() should be nil after sign-out")
	}

	// State survives sign-out: the next sign-in reissues the same UID.
	again, err := p.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("re-sign-in: %v", err)
	}
	if again != uid {
		t.Errorf("re-sign-in UID = %q, want %q", again, uid)
	}
}

func TestOnStateChange_LateListenerSeesCurrentSession(t *testing.T) {
	p := New("", filepath.Join(t.TempDir(), "identity.json"))
	uid, err := p.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("SignInAnonymously: %v", err)
	}

	var gotUID string
	var gotSignedIn bool
	p.OnStateChange(func(u string, signedIn bool) {
		gotUID, gotSignedIn = u, signedIn
	})

	if gotUID != uid || !gotSignedIn {
		t.Errorf("late listener saw (%q, %v), want (%q, true)", gotUID, gotSignedIn, uid)
	}
}

func TestLoadState_CorruptFileIgnored(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "identity.json")
	if err := os.WriteFile(statePath, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt state: %v", err)
	}

	p := New("", statePath)
	uid, err := p.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("SignInAnonymously should mint a fresh identity over corrupt state: %v", err)
	}
	if !strings.HasPrefix(uid, "local-") {
		t.Errorf("uid = %q, want a freshly minted local identity", uid)
	}
}
