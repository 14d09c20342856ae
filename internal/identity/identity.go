// Package identity resolves the anonymous user identity the whole app is
// keyed by. A user gets an opaque stable ID on first run and keeps it for
// the lifetime of the installation; the ID is what the remote document
// tree is rooted under.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zenvue/adcontrol-hub/internal/util"
)

const (
	defaultEndpoint = "https://identitytoolkit.googleapis.com"
	signInRetries   = 3
)

// Session is an issued identity. UID is the only part the rest of the app
// depends on; tokens are kept for future authenticated calls.
type Session struct {
	UID          string `json:"uid"`
	IDToken      string `json:"-"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Local        bool   `json:"local,omitempty"`
}

// Provider issues anonymous identities via the Identity Toolkit REST API
// and persists them to a state file so the UID survives restarts. When no
// API key is configured it falls back to a locally generated UID kept in
// the same state file.
type Provider struct {
	apiKey    string
	statePath string
	endpoint  string
	client    *http.Client

	mu        sync.Mutex
	session   *Session
	listeners []func(uid string, signedIn bool)
}

func New(apiKey, statePath string) *Provider {
	return &Provider{
		apiKey:    apiKey,
		statePath: statePath,
		endpoint:  defaultEndpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// OnStateChange registers a listener for sign-in/sign-out transitions.
// Listeners registered after sign-in are immediately told about the
// current session.
func (p *Provider) OnStateChange(fn func(uid string, signedIn bool)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	current := p.session
	p.mu.Unlock()

	if current != nil {
		fn(current.UID, true)
	}
}

// Current returns the active session, or nil if signed out.
func (p *Provider) Current() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil
	}
	cp := *p.session
	return &cp
}

// SignInAnonymously resolves a stable anonymous UID. A persisted identity is
// reused; otherwise a new one is requested with bounded exponential backoff
// and persisted before being returned.
func (p *Provider) SignInAnonymously(ctx context.Context) (string, error) {
	if s := p.loadState(); s != nil {
		slog.Info("Reusing persisted anonymous identity", "uid", s.UID, "local", s.Local)
		p.setSession(s)
		return s.UID, nil
	}

	var session *Session
	var err error
	if p.apiKey == "" {
		session = &Session{UID: "local-" + uuid.NewString(), Local: true}
	} else {
		err = util.RetryWithBackoff(ctx, signInRetries, func(attempt int) error {
			var signErr error
			session, signErr = p.signUp(ctx)
			if signErr != nil {
				slog.Warn("Anonymous sign-in attempt failed", "attempt", attempt, "error", signErr)
			}
			return signErr
		})
	}
	if err != nil {
		return "", fmt.Errorf("anonymous sign-in failed: %w", err)
	}

	if err := p.saveState(session); err != nil {
		// Not fatal: the identity works for this session, it just won't
		// survive a restart.
		slog.Warn("Failed to persist identity state", "path", p.statePath, "error", err)
	}

	p.setSession(session)
	return session.UID, nil
}

// SignOut drops the in-memory session and notifies listeners. The persisted
// state file is kept so the same UID is reissued on next sign-in.
func (p *Provider) SignOut() {
	p.mu.Lock()
	session := p.session
	p.session = nil
	listeners := make([]func(uid string, signedIn bool), len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	if session == nil {
		return
	}
	for _, fn := range listeners {
		fn(session.UID, false)
	}
}

func (p *Provider) setSession(s *Session) {
	p.mu.Lock()
	p.session = s
	listeners := make([]func(uid string, signedIn bool), len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(s.UID, true)
	}
}

type signUpRequest struct {
	ReturnSecureToken bool `json:"returnSecureToken"`
}

type signUpResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
}

func (p *Provider) signUp(ctx context.Context) (*Session, error) {
	endpoint, err := url.Parse(p.endpoint + "/v1/accounts:signUp")
	if err != nil {
		return nil, err
	}
	q := endpoint.Query()
	q.Set("key", p.apiKey)
	endpoint.RawQuery = q.Encode()

	payload, err := json.Marshal(signUpRequest{ReturnSecureToken: true})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint.String(), bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("identity toolkit status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	var signUp signUpResponse
	if err := json.Unmarshal(bodyBytes, &signUp); err != nil {
		return nil, fmt.Errorf("failed to parse sign-up response: %w", err)
	}
	if strings.TrimSpace(signUp.LocalID) == "" {
		return nil, fmt.Errorf("sign-up response missing localId")
	}

	return &Session{
		UID:          signUp.LocalID,
		IDToken:      signUp.IDToken,
		RefreshToken: signUp.RefreshToken,
	}, nil
}

func (p *Provider) loadState() *Session {
	data, err := os.ReadFile(p.statePath)
	if err != nil {
		return nil
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		slog.Warn("Identity state file is corrupt, ignoring", "path", p.statePath, "error", err)
		return nil
	}
	if s.UID == "" {
		return nil
	}
	return &s
}

func (p *Provider) saveState(s *Session) error {
	if err := os.MkdirAll(filepath.Dir(p.statePath), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.statePath, data, 0o600)
}
