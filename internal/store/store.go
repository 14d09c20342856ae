// Package store implements the reactive client store: the single source of
// truth for the current user's ad and commerce state. It bridges the
// eventually-consistent remote document tree to a synchronous in-memory
// read surface, seeding first-run data and mirroring remote snapshots.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zenvue/adcontrol-hub/internal/models"
)

// Phase tracks the store's initialization state machine.
type Phase int32

const (
	PhaseUnauthenticated Phase = iota
	PhaseAuthenticating
	PhaseResolving
	PhaseSeeding
	PhaseSubscribing
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseResolving:
		return "resolving"
	case PhaseSeeding:
		return "seeding"
	case PhaseSubscribing:
		return "subscribing"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

const defaultWriteTimeout = 15 * time.Second

// Store owns the in-memory mirrors of the user's ads, ratings, affiliate
// products, cart, and onboarding flag. Mirrors are mutated only by
// subscription callbacks and the store's own optimistic paths; readers get
// copies. Remote writes are fire-and-forget: failures are logged, never
// rolled back locally, and the next authoritative snapshot wins.
type Store struct {
	identity  Identity
	users     UserStore
	catalog   Catalog
	toasts    Toaster
	seedCount int

	writeTimeout time.Duration
	writes       sync.WaitGroup

	mu                  sync.RWMutex
	phase               Phase
	uid                 string
	ads                 []models.Ad
	affiliates          []models.Product
	cart                []models.CartItem
	ratings             models.RatingMap
	showOnboarding      bool
	onboardingDismissed bool
	sessionCtx          context.Context
	sessionCancel       context.CancelFunc
	listeners           *errgroup.Group
}

func New(id Identity, users UserStore, cat Catalog, toasts Toaster, seedCount int) *Store {
	s := &Store{
		identity:     id,
		users:        users,
		catalog:      cat,
		toasts:       toasts,
		seedCount:    seedCount,
		writeTimeout: defaultWriteTimeout,
		phase:        PhaseUnauthenticated,
	}
	id.OnStateChange(func(uid string, signedIn bool) {
		if !signedIn {
			slog.Info("Identity lost, tearing store down", "uid", uid)
			s.Teardown()
		}
	})
	return s
}

// Init drives the state machine to Ready: sign in, resolve the root
// document, seed on first run, then attach the live subscriptions.
// A failure leaves the store Unauthenticated; it is never fatal to the
// process and the caller decides whether to retry.
func (s *Store) Init(ctx context.Context) error {
	s.setPhase(PhaseAuthenticating)
	uid, err := s.identity.SignInAnonymously(ctx)
	if err != nil {
		s.setPhase(PhaseUnauthenticated)
		s.toasts.Toast("Sign-in Failed", "We couldn't sign you in. Your activity won't be saved yet.")
		return fmt.Errorf("anonymous sign-in: %w", err)
	}

	s.mu.Lock()
	s.uid = uid
	s.phase = PhaseResolving
	s.mu.Unlock()

	doc, err := s.users.GetUser(ctx, uid)
	if err != nil {
		s.setPhase(PhaseUnauthenticated)
		return fmt.Errorf("resolve user %s: %w", uid, err)
	}

	if doc == nil {
		if err := s.seed(ctx, uid); err != nil {
			s.setPhase(PhaseUnauthenticated)
			return err
		}
	} else {
		s.adopt(doc)
	}

	s.subscribe(uid)
	s.setPhase(PhaseReady)
	slog.Info("Store ready", "uid", uid)
	return nil
}

// seed populates a brand-new user's remote tree: root document plus the
// initial ad history, committed as one atomic batch so a failed commit
// leaves nothing behind and the next load seeds again. Mirrors are set
// optimistically before the remote write confirms so the first paint is
// never blank; the first authoritative snapshot supersedes them.
func (s *Store) seed(ctx context.Context, uid string) error {
	s.setPhase(PhaseSeeding)
	seedAds := s.catalog.SeedAds(s.seedCount)

	s.mu.Lock()
	s.ads = seedAds
	s.affiliates = nil
	s.cart = nil
	s.ratings = models.RatingMap{}
	s.showOnboarding = true
	s.onboardingDismissed = false
	s.mu.Unlock()

	doc := models.UserDocument{
		OnboardingSeen: false,
		Ratings:        models.RatingMap{},
	}
	err := s.users.SeedUser(ctx, uid, doc, seedAds)
	if errors.Is(err, models.ErrUserExists) {
		// Lost a first-load race: another client created this UID's
		// document between our existence check and the batch commit.
		// Adopt the winner's state.
		slog.Info("User document already exists, adopting remote state", "uid", uid)
		existing, getErr := s.users.GetUser(ctx, uid)
		if getErr != nil {
			return fmt.Errorf("re-resolve user %s after seed race: %w", uid, getErr)
		}
		if existing != nil {
			s.adopt(existing)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed user %s: %w", uid, err)
	}
	slog.Info("Seeded first-run data", "uid", uid, "ads", len(seedAds))
	return nil
}

// adopt loads mirrors from an existing root document. The ads and
// affiliate mirrors fill in when their subscriptions deliver the initial
// snapshot.
func (s *Store) adopt(doc *models.UserDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings = doc.Ratings
	if s.ratings == nil {
		s.ratings = models.RatingMap{}
	}
	s.cart = doc.Cart
	s.showOnboarding = !doc.OnboardingSeen
}

// subscribe attaches one listener per collection under a session context.
// The errgroup owns the listener goroutines for the session's lifetime.
func (s *Store) subscribe(uid string) {
	s.setPhase(PhaseSubscribing)
	sessionCtx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(sessionCtx)

	g.Go(func() error { return s.users.WatchAds(gctx, uid, s.onAds) })
	g.Go(func() error { return s.users.WatchAffiliates(gctx, uid, s.onAffiliates) })
	g.Go(func() error { return s.users.WatchUser(gctx, uid, s.onUser) })

	s.mu.Lock()
	s.sessionCtx = sessionCtx
	s.sessionCancel = cancel
	s.listeners = g
	s.mu.Unlock()
}

// Teardown releases all subscriptions, waits out in-flight writes, clears
// the mirrors, and returns the store to Unauthenticated. Safe to call more
// than once.
func (s *Store) Teardown() {
	s.mu.Lock()
	cancel := s.sessionCancel
	g := s.listeners
	s.sessionCancel = nil
	s.listeners = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.writes.Wait()
	if g != nil {
		if err := g.Wait(); err != nil {
			slog.Warn("Listener exited with error during teardown", "error", err)
		}
	}

	s.mu.Lock()
	s.phase = PhaseUnauthenticated
	s.uid = ""
	s.ads = nil
	s.affiliates = nil
	s.cart = nil
	s.ratings = nil
	s.showOnboarding = false
	s.onboardingDismissed = false
	s.mu.Unlock()
	slog.Info("Store torn down")
}

// Snapshot callbacks fully replace the corresponding mirror: the remote
// subscription is the authoritative ordering source and the last snapshot
// always wins, including over optimistic seed values.

func (s *Store) onAds(ads []models.Ad) {
	s.mu.Lock()
	s.ads = ads
	s.mu.Unlock()
}

func (s *Store) onAffiliates(products []models.Product) {
	s.mu.Lock()
	s.affiliates = products
	s.mu.Unlock()
}

func (s *Store) onUser(doc *models.UserDocument) {
	if doc == nil {
		// Root document deleted remotely; keep serving the local mirror.
		return
	}
	s.mu.Lock()
	s.ratings = doc.Ratings
	if s.ratings == nil {
		s.ratings = models.RatingMap{}
	}
	s.cart = doc.Cart
	// A dismissed onboarding never comes back in this session, even if a
	// stale snapshot arrives from before the flag write landed.
	s.showOnboarding = !doc.OnboardingSeen && !s.onboardingDismissed
	s.mu.Unlock()
}

func (s *Store) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// ready returns the session UID, or ErrNotReady outside the Ready phase.
func (s *Store) ready() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.phase != PhaseReady {
		return "", models.ErrNotReady
	}
	return s.uid, nil
}

// enqueue runs a remote write on its own goroutine. The write is
// fire-and-forget: local state has already been updated optimistically and
// a failure is logged, not rolled back.
func (s *Store) enqueue(op string, fn func(context.Context) error) {
	s.mu.RLock()
	parent := s.sessionCtx
	s.mu.RUnlock()
	if parent == nil {
		parent = context.Background()
	}

	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		ctx, cancel := context.WithTimeout(parent, s.writeTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			slog.Error("Remote write failed", "op", op, "error", err)
		}
	}()
}

// flushWrites blocks until all in-flight remote writes settle.
func (s *Store) flushWrites() {
	s.writes.Wait()
}
