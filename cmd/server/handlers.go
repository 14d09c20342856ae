package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/zenvue/adcontrol-hub/internal/catalog"
	"github.com/zenvue/adcontrol-hub/internal/models"
	"github.com/zenvue/adcontrol-hub/internal/notifier"
	"github.com/zenvue/adcontrol-hub/internal/recommend"
	"github.com/zenvue/adcontrol-hub/internal/store"
)

// Server is the thin JSON surface over the store's public operations. It
// holds no state of its own; every read and mutation goes through the
// store.
type Server struct {
	store       *store.Store
	catalog     *catalog.Catalog
	recommender *recommend.Client
	feed        *notifier.Feed
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/ads/{id}/rating", s.handleRateAd)
	mux.HandleFunc("POST /api/affiliates", s.handleConvert)
	mux.HandleFunc("DELETE /api/affiliates/{id}", s.handleRemoveAffiliate)
	mux.HandleFunc("POST /api/cart", s.handleAddToCart)
	mux.HandleFunc("PATCH /api/cart/{id}", s.handleUpdateCart)
	mux.HandleFunc("DELETE /api/cart/{id}", s.handleRemoveFromCart)
	mux.HandleFunc("POST /api/onboarding/close", s.handleCloseOnboarding)
	mux.HandleFunc("POST /api/recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /api/events", s.handleEvents)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ads":               s.store.Ads(),
		"affiliateProducts": s.store.AffiliateProducts(),
		"cart":              s.store.Cart(),
		"ratings":           s.store.Ratings(),
		"showOnboarding":    s.store.ShowOnboarding(),
		"isInitialized":     s.store.IsInitialized(),
		"phase":             s.store.Phase().String(),
	})
}

func (s *Server) handleRateAd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Rating models.Rating `json:"rating"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.RateAd(r.PathValue("id"), body.Rating); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ratings": s.store.Ratings()})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AdID string `json:"adId"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, ok := s.catalog.ProductByID(body.AdID); !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown ad %q", body.AdID))
		return
	}
	if err := s.store.ConvertToAffiliate(body.AdID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"affiliateProducts": s.store.AffiliateProducts()})
}

func (s *Server) handleRemoveAffiliate(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveAffiliate(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"affiliateProducts": s.store.AffiliateProducts()})
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"productId"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	product, ok := s.catalog.ProductByID(body.ProductID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown product %q", body.ProductID))
		return
	}
	if err := s.store.AddToCart(product); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": s.store.Cart()})
}

func (s *Server) handleUpdateCart(w http.ResponseWriter, r *http.Request) {
	// Pointer so an omitted quantity is rejected instead of being read as
	// an explicit 0, which deletes the cart line.
	var body struct {
		Quantity *int `json:"quantity"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Quantity == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("quantity is required"))
		return
	}
	if err := s.store.UpdateCartQuantity(r.PathValue("id"), *body.Quantity); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": s.store.Cart()})
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveFromCart(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": s.store.Cart()})
}

func (s *Server) handleCloseOnboarding(w http.ResponseWriter, _ *http.Request) {
	if err := s.store.CloseOnboarding(); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"showOnboarding": s.store.ShowOnboarding()})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if s.recommender == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("recommendations are not configured"))
		return
	}
	if !s.store.IsInitialized() {
		writeError(w, http.StatusServiceUnavailable, models.ErrNotReady)
		return
	}

	var body struct {
		SeasonalOffers  []string `json:"seasonalOffers"`
		PopularProducts []string `json:"popularProducts"`
	}
	if err := decodeJSON(r, &body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	req := recommend.Request{
		UserAdRatings:   recommend.SignalsFromRatings(s.store.Ratings()),
		CartProductIDs:  s.store.CartProductIDs(),
		SeasonalOffers:  body.SeasonalOffers,
		PopularProducts: body.PopularProducts,
	}
	result, err := s.recommender.Recommend(r.Context(), req)
	if err != nil {
		slog.Error("Recommendation call failed", "error", err)
		writeError(w, http.StatusBadGateway, fmt.Errorf("failed to fetch recommendations"))
		return
	}

	// Resolve recommended IDs against the catalog so the caller needs no
	// second lookup; unknown IDs are simply not resolvable.
	recommended := make([]models.Product, 0, len(result.RecommendedAdIDs))
	for _, id := range result.RecommendedAdIDs {
		if p, ok := s.catalog.ProductByID(id); ok {
			recommended = append(recommended, p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"recommendedAdIds": result.RecommendedAdIDs,
		"reasoning":        result.Reasoning,
		"recommendedAds":   recommended,
	})
}

// handleEvents streams the toast feed as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// The stream outlives the server's WriteTimeout; clear the deadline
	// for this response so long-lived connections aren't severed.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		slog.Debug("Could not clear write deadline for event stream", "error", err)
	}

	id, ch := s.feed.Subscribe()
	defer s.feed.Unsubscribe(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case toast, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(toast)
			if err != nil {
				slog.Warn("Failed to marshal toast", "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrNotReady) {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeError(w, http.StatusBadRequest, err)
}
