package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/zenvue/adcontrol-hub/internal/models"
)

const (
	usersCollection      = "users"
	adsCollection        = "ads"
	affiliatesCollection = "affiliateProducts"
)

// Client wraps Firestore access to the per-user document tree:
// users/{uid} root doc plus ads and affiliateProducts subcollections.
type Client struct {
	client *firestore.Client
}

func New(ctx context.Context, projectID string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) userDoc(uid string) *firestore.DocumentRef {
	return c.client.Collection(usersCollection).Doc(uid)
}

// GetUser retrieves the root user document. Returns nil (no error) when the
// document does not exist, which is how first runs are detected.
func (c *Client) GetUser(ctx context.Context, uid string) (*models.UserDocument, error) {
	doc, err := c.userDoc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", uid, err)
	}
	if !doc.Exists() {
		return nil, nil
	}

	var user models.UserDocument
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user data: %w", err)
	}
	return &user, nil
}

// SeedUser creates the root user document and the initial ad history in a
// single all-or-nothing batch. The root doc uses Create, so the whole
// batch fails with AlreadyExists when another client got there first:
// exactly one concurrent first load wins, and a failed commit leaves no
// partial document behind to mask the unseeded state.
func (c *Client) SeedUser(ctx context.Context, uid string, user models.UserDocument, ads []models.Ad) error {
	batch := c.client.Batch()
	batch.Create(c.userDoc(uid), user)
	adsRef := c.userDoc(uid).Collection(adsCollection)
	for _, ad := range ads {
		batch.Set(adsRef.Doc(ad.ID), ad)
	}
	if _, err := batch.Commit(ctx); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return models.ErrUserExists
		}
		return fmt.Errorf("failed to seed user %s: %w", uid, err)
	}
	return nil
}

// SetRatings replaces the ratings map on the root document.
func (c *Client) SetRatings(ctx context.Context, uid string, ratings models.RatingMap) error {
	_, err := c.userDoc(uid).Update(ctx, []firestore.Update{
		{Path: "ratings", Value: ratings},
	})
	if err != nil {
		return fmt.Errorf("failed to set ratings for user %s: %w", uid, err)
	}
	return nil
}

// SetCart replaces the denormalized cart array on the root document.
func (c *Client) SetCart(ctx context.Context, uid string, cart []models.CartItem) error {
	_, err := c.userDoc(uid).Update(ctx, []firestore.Update{
		{Path: "cart", Value: cart},
	})
	if err != nil {
		return fmt.Errorf("failed to set cart for user %s: %w", uid, err)
	}
	return nil
}

// SetOnboardingSeen persists the onboarding flag on the root document.
func (c *Client) SetOnboardingSeen(ctx context.Context, uid string, seen bool) error {
	_, err := c.userDoc(uid).Update(ctx, []firestore.Update{
		{Path: "onboardingSeen", Value: seen},
	})
	if err != nil {
		return fmt.Errorf("failed to set onboarding flag for user %s: %w", uid, err)
	}
	return nil
}

// PutAffiliate stores the full denormalized product keyed by its ad ID.
// Set is idempotent, so converting twice is a no-op remotely.
func (c *Client) PutAffiliate(ctx context.Context, uid string, product models.Product) error {
	ref := c.userDoc(uid).Collection(affiliatesCollection).Doc(product.ID)
	if _, err := ref.Set(ctx, product); err != nil {
		return fmt.Errorf("failed to put affiliate product %s: %w", product.ID, err)
	}
	return nil
}

// DeleteAffiliate removes a converted product. Deleting a missing document
// is not an error in Firestore, matching the store's toggle semantics.
func (c *Client) DeleteAffiliate(ctx context.Context, uid, productID string) error {
	ref := c.userDoc(uid).Collection(affiliatesCollection).Doc(productID)
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete affiliate product %s: %w", productID, err)
	}
	return nil
}
