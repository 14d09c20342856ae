package models

import (
	"errors"
)

// ErrUserExists is returned when attempting to create a user document that already exists.
var ErrUserExists = errors.New("user document already exists")

// ErrNotReady is returned when a mutation is attempted before the store finished initializing.
var ErrNotReady = errors.New("store is not ready")

// Rating is a user's verdict on an ad. Absence of a rating means neutral;
// no third value is ever persisted.
type Rating string

const (
	RatingLike    Rating = "like"
	RatingDislike Rating = "dislike"
)

// Valid reports whether r is one of the two persistable rating values.
func (r Rating) Valid() bool {
	return r == RatingLike || r == RatingDislike
}

// RatingMap maps ad IDs to ratings. Keys are unique by construction.
type RatingMap map[string]Rating

// Clone returns a shallow copy so callers can hand the map across
// goroutine boundaries without aliasing the store's mirror.
func (m RatingMap) Clone() RatingMap {
	out := make(RatingMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Ad is a catalog impression shown to the user. Immutable once created.
// An ad carries no commercial fields; those belong to Product.
type Ad struct {
	ID          string `firestore:"id" json:"id" validate:"required"`
	Brand       string `firestore:"brand" json:"brand" validate:"required"`
	BrandLogo   string `firestore:"brandLogo,omitempty" json:"brandLogo,omitempty" validate:"omitempty,url"`
	Thumbnail   string `firestore:"thumbnail,omitempty" json:"thumbnail,omitempty" validate:"omitempty,url"`
	DataAIHint  string `firestore:"dataAiHint,omitempty" json:"dataAiHint,omitempty"`
	Title       string `firestore:"title" json:"title" validate:"required"`
	Description string `firestore:"description,omitempty" json:"description,omitempty"`
	Category    string `firestore:"category,omitempty" json:"category,omitempty"`
	ViewedDate  string `firestore:"viewedDate,omitempty" json:"viewedDate,omitempty"`
}

// Product is an Ad that has been converted into something monetizable.
type Product struct {
	Ad
	Price          float64 `firestore:"price" json:"price" validate:"gte=0"`
	CommissionRate float64 `firestore:"commissionRate" json:"commissionRate" validate:"gte=0,lte=1"`
}

// CartItem is a full denormalized product plus a positive quantity.
// Quantity zero or below means the item must not exist in the cart.
type CartItem struct {
	Product  Product `firestore:"product" json:"product"`
	Quantity int     `firestore:"quantity" json:"quantity" validate:"gt=0"`
}

// UserDocument is the root per-user document. Ratings and the cart live
// denormalized on the root doc; ads and affiliate products are subcollections.
type UserDocument struct {
	OnboardingSeen bool       `firestore:"onboardingSeen" json:"onboardingSeen"`
	Ratings        RatingMap  `firestore:"ratings" json:"ratings"`
	Cart           []CartItem `firestore:"cart" json:"cart"`
}
