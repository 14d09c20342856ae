package store

import (
	"github.com/zenvue/adcontrol-hub/internal/models"
)

// Derived accessors: pure reads over the in-memory mirrors, no I/O. They
// reflect the latest of an optimistic local write or the most recent
// subscription snapshot, whichever landed last.

// Ads returns the user's ad history mirror.
func (s *Store) Ads() []models.Ad {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Ad, len(s.ads))
	copy(out, s.ads)
	return out
}

// AffiliateProducts returns the converted-product mirror.
func (s *Store) AffiliateProducts() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.affiliates))
	copy(out, s.affiliates)
	return out
}

// Cart returns the cart mirror.
func (s *Store) Cart() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CartItem, len(s.cart))
	copy(out, s.cart)
	return out
}

// Ratings returns a copy of the ratings mirror.
func (s *Store) Ratings() models.RatingMap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ratings.Clone()
}

// GetRating returns the rating for an ad; ok is false when unrated.
func (s *Store) GetRating(adID string) (models.Rating, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.ratings[adID]
	return r, ok
}

// IsAffiliate reports whether the ad has been converted.
func (s *Store) IsAffiliate(adID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.affiliates {
		if p.ID == adID {
			return true
		}
	}
	return false
}

// IsInCart reports whether the product has a cart line.
func (s *Store) IsInCart(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.cart {
		if item.Product.ID == productID {
			return true
		}
	}
	return false
}

// CartProductIDs returns the product IDs currently in the cart, in cart
// order.
func (s *Store) CartProductIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.cart))
	for _, item := range s.cart {
		ids = append(ids, item.Product.ID)
	}
	return ids
}

// ShowOnboarding reports whether the introductory walkthrough should be
// visible.
func (s *Store) ShowOnboarding() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showOnboarding
}

// IsInitialized reports whether the store reached Ready.
func (s *Store) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase == PhaseReady
}

// Phase returns the current state-machine phase.
func (s *Store) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// UID returns the bound user identifier, empty when signed out.
func (s *Store) UID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uid
}
