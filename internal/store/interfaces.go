package store

import (
	"context"

	"github.com/zenvue/adcontrol-hub/internal/models"
)

// UserStore abstracts the remote per-user document tree.
type UserStore interface {
	GetUser(ctx context.Context, uid string) (*models.UserDocument, error)
	SeedUser(ctx context.Context, uid string, user models.UserDocument, ads []models.Ad) error
	SetRatings(ctx context.Context, uid string, ratings models.RatingMap) error
	SetCart(ctx context.Context, uid string, cart []models.CartItem) error
	SetOnboardingSeen(ctx context.Context, uid string, seen bool) error
	PutAffiliate(ctx context.Context, uid string, product models.Product) error
	DeleteAffiliate(ctx context.Context, uid, productID string) error
	WatchAds(ctx context.Context, uid string, fn func([]models.Ad)) error
	WatchAffiliates(ctx context.Context, uid string, fn func([]models.Product)) error
	WatchUser(ctx context.Context, uid string, fn func(*models.UserDocument)) error
}

// Identity abstracts the anonymous identity provider.
type Identity interface {
	SignInAnonymously(ctx context.Context) (string, error)
	OnStateChange(fn func(uid string, signedIn bool))
}

// Catalog abstracts the static ad/product catalog.
type Catalog interface {
	SeedAds(n int) []models.Ad
	ProductByID(id string) (models.Product, bool)
}

// Toaster receives the transient notifications successful mutations emit.
type Toaster interface {
	Toast(title, description string)
}
