package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/zenvue/adcontrol-hub/internal/models"
)

// Watch functions attach Firestore snapshot listeners and invoke fn with a
// full-replacement view on every change. They block until ctx is cancelled,
// which is the subscription's cancel(); cancellation returns nil so callers
// can treat teardown as a clean exit.

// WatchAds streams the user's ad history.
func (c *Client) WatchAds(ctx context.Context, uid string, fn func([]models.Ad)) error {
	query := c.userDoc(uid).Collection(adsCollection).OrderBy("id", firestore.Asc)
	snaps := query.Snapshots(ctx)
	defer snaps.Stop()

	for {
		snap, err := snaps.Next()
		if err != nil {
			return watchErr("ads", uid, err)
		}
		ads, err := adsFromSnapshot(snap)
		if err != nil {
			slog.Warn("Skipping malformed ads snapshot", "uid", uid, "error", err)
			continue
		}
		fn(ads)
	}
}

// WatchAffiliates streams the user's converted products.
func (c *Client) WatchAffiliates(ctx context.Context, uid string, fn func([]models.Product)) error {
	query := c.userDoc(uid).Collection(affiliatesCollection).OrderBy(firestore.DocumentID, firestore.Asc)
	snaps := query.Snapshots(ctx)
	defer snaps.Stop()

	for {
		snap, err := snaps.Next()
		if err != nil {
			return watchErr("affiliateProducts", uid, err)
		}
		products, err := productsFromSnapshot(snap)
		if err != nil {
			slog.Warn("Skipping malformed affiliate snapshot", "uid", uid, "error", err)
			continue
		}
		fn(products)
	}
}

// WatchUser streams the root document (ratings, cart, onboarding flag).
// fn receives nil when the document does not exist.
func (c *Client) WatchUser(ctx context.Context, uid string, fn func(*models.UserDocument)) error {
	snaps := c.userDoc(uid).Snapshots(ctx)
	defer snaps.Stop()

	for {
		snap, err := snaps.Next()
		if err != nil {
			return watchErr("user", uid, err)
		}
		if !snap.Exists() {
			fn(nil)
			continue
		}
		var user models.UserDocument
		if err := snap.DataTo(&user); err != nil {
			slog.Warn("Skipping malformed user snapshot", "uid", uid, "error", err)
			continue
		}
		fn(&user)
	}
}

func adsFromSnapshot(snap *firestore.QuerySnapshot) ([]models.Ad, error) {
	var ads []models.Ad
	docs := snap.Documents
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var ad models.Ad
		if err := doc.DataTo(&ad); err != nil {
			return nil, fmt.Errorf("ad %s: %w", doc.Ref.ID, err)
		}
		ads = append(ads, ad)
	}
	return ads, nil
}

func productsFromSnapshot(snap *firestore.QuerySnapshot) ([]models.Product, error) {
	var products []models.Product
	docs := snap.Documents
	for {
		doc, err := docs.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var product models.Product
		if err := doc.DataTo(&product); err != nil {
			return nil, fmt.Errorf("product %s: %w", doc.Ref.ID, err)
		}
		products = append(products, product)
	}
	return products, nil
}

func watchErr(what, uid string, err error) error {
	if status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
		return nil
	}
	return fmt.Errorf("%s listener for user %s: %w", what, uid, err)
}
