package store

import (
	"context"
	"fmt"

	"github.com/zenvue/adcontrol-hub/internal/models"
)

// RateAd toggles a rating: rating an ad with the value it already has
// removes the entry (back to neutral). The merged map is written through
// to the root document.
func (s *Store) RateAd(adID string, rating models.Rating) error {
	uid, err := s.ready()
	if err != nil {
		return err
	}
	if !rating.Valid() {
		return fmt.Errorf("invalid rating %q for ad %s", rating, adID)
	}

	s.mu.Lock()
	if s.ratings == nil {
		s.ratings = models.RatingMap{}
	}
	if s.ratings[adID] == rating {
		delete(s.ratings, adID)
	} else {
		s.ratings[adID] = rating
	}
	snapshot := s.ratings.Clone()
	s.mu.Unlock()

	s.enqueue("rateAd", func(ctx context.Context) error {
		return s.users.SetRatings(ctx, uid, snapshot)
	})
	return nil
}

// ConvertToAffiliate adds the catalog product for adID to the affiliate
// set. Idempotent: converting an already-converted ad is a no-op.
func (s *Store) ConvertToAffiliate(adID string) error {
	uid, err := s.ready()
	if err != nil {
		return err
	}
	product, ok := s.catalog.ProductByID(adID)
	if !ok {
		return fmt.Errorf("unknown catalog product %q", adID)
	}

	s.mu.Lock()
	for _, p := range s.affiliates {
		if p.ID == adID {
			s.mu.Unlock()
			return nil
		}
	}
	s.affiliates = append(s.affiliates, product)
	s.mu.Unlock()

	s.enqueue("convertToAffiliate", func(ctx context.Context) error {
		return s.users.PutAffiliate(ctx, uid, product)
	})
	s.toasts.Toast("Affiliate Product Added!", fmt.Sprintf("%s is now in your affiliate list.", product.Title))
	return nil
}

// RemoveAffiliate is the toggle-to-remove counterpart of
// ConvertToAffiliate. Removing an ad that isn't converted is a no-op.
func (s *Store) RemoveAffiliate(adID string) error {
	uid, err := s.ready()
	if err != nil {
		return err
	}

	s.mu.Lock()
	var (
		removed models.Product
		found   bool
	)
	kept := s.affiliates[:0]
	for _, p := range s.affiliates {
		if p.ID == adID {
			removed = p
			found = true
			continue
		}
		kept = append(kept, p)
	}
	s.affiliates = kept
	s.mu.Unlock()

	if !found {
		return nil
	}
	s.enqueue("removeAffiliate", func(ctx context.Context) error {
		return s.users.DeleteAffiliate(ctx, uid, adID)
	})
	s.toasts.Toast("Affiliate Product Removed", fmt.Sprintf("%s is no longer in your affiliate list.", removed.Title))
	return nil
}

// AddToCart inserts a cart line for the product, or increments the
// quantity of the existing line. The cart never holds two lines for the
// same product ID.
func (s *Store) AddToCart(product models.Product) error {
	uid, err := s.ready()
	if err != nil {
		return err
	}

	s.mu.Lock()
	found := false
	for i := range s.cart {
		if s.cart[i].Product.ID == product.ID {
			s.cart[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.cart = append(s.cart, models.CartItem{Product: product, Quantity: 1})
	}
	snapshot := s.cartCopyLocked()
	s.mu.Unlock()

	s.enqueue("addToCart", func(ctx context.Context) error {
		return s.users.SetCart(ctx, uid, snapshot)
	})
	s.toasts.Toast("Added to Cart!", fmt.Sprintf("%s has been added to your personal cart.", product.Title))
	return nil
}

// UpdateCartQuantity replaces a cart line's quantity in place. A quantity
// of zero or below deletes the line entirely.
func (s *Store) UpdateCartQuantity(productID string, quantity int) error {
	uid, err := s.ready()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if quantity <= 0 {
		kept := s.cart[:0]
		for _, item := range s.cart {
			if item.Product.ID != productID {
				kept = append(kept, item)
			}
		}
		s.cart = kept
	} else {
		for i := range s.cart {
			if s.cart[i].Product.ID == productID {
				s.cart[i].Quantity = quantity
				break
			}
		}
	}
	snapshot := s.cartCopyLocked()
	s.mu.Unlock()

	s.enqueue("updateCartQuantity", func(ctx context.Context) error {
		return s.users.SetCart(ctx, uid, snapshot)
	})
	return nil
}

// RemoveFromCart deletes a cart line unconditionally. Absent lines are a
// no-op, not an error.
func (s *Store) RemoveFromCart(productID string) error {
	uid, err := s.ready()
	if err != nil {
		return err
	}

	s.mu.Lock()
	var (
		removed models.CartItem
		found   bool
	)
	kept := s.cart[:0]
	for _, item := range s.cart {
		if item.Product.ID == productID {
			removed = item
			found = true
			continue
		}
		kept = append(kept, item)
	}
	s.cart = kept
	snapshot := s.cartCopyLocked()
	s.mu.Unlock()

	if !found {
		return nil
	}
	s.enqueue("removeFromCart", func(ctx context.Context) error {
		return s.users.SetCart(ctx, uid, snapshot)
	})
	s.toasts.Toast("Removed from Cart", fmt.Sprintf("%s has been removed from your cart.", removed.Product.Title))
	return nil
}

// CloseOnboarding hides the walkthrough immediately and persists the flag
// so the next subscription refresh (or next session) doesn't re-show it.
func (s *Store) CloseOnboarding() error {
	uid, err := s.ready()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.showOnboarding = false
	s.onboardingDismissed = true
	s.mu.Unlock()

	s.enqueue("closeOnboarding", func(ctx context.Context) error {
		return s.users.SetOnboardingSeen(ctx, uid, true)
	})
	return nil
}

// cartCopyLocked snapshots the cart for a write-through. Callers must hold
// the mutex.
func (s *Store) cartCopyLocked() []models.CartItem {
	out := make([]models.CartItem, len(s.cart))
	copy(out, s.cart)
	return out
}
