package recommend

import (
	"context"
	"strings"
	"testing"

	"github.com/zenvue/adcontrol-hub/internal/models"
)

func TestSignalsFromRatings(t *testing.T) {
	ratings := models.RatingMap{
		"ad-3": models.RatingDislike,
		"ad-1": models.RatingLike,
		"ad-2": models.RatingLike,
	}

	signals := SignalsFromRatings(ratings)
	if len(signals) != 3 {
		t.Fatalf("expected 3 signals, got %d", len(signals))
	}

	want := []AdRatingSignal{
		{AdID: "ad-1", Rating: 1},
		{AdID: "ad-2", Rating: 1},
		{AdID: "ad-3", Rating: -1},
	}
	for i, w := range want {
		if signals[i] != w {
			t.Errorf("signal[%d] = %+v, want %+v", i, signals[i], w)
		}
	}
}

func TestSignalsFromRatings_Empty(t *testing.T) {
	if got := SignalsFromRatings(nil); len(got) != 0 {
		t.Errorf("expected no signals from nil map, got %v", got)
	}
}

func TestParseResult_Valid(t *testing.T) {
	data := []byte(`{"recommendedAdIds": ["ad-1", "ad-5"], "reasoning": "Both match liked categories."}`)

	result, err := parseResult(data)
	if err != nil {
		t.Fatalf("parseResult returned error: %v", err)
	}
	if len(result.RecommendedAdIDs) != 2 || result.RecommendedAdIDs[0] != "ad-1" {
		t.Errorf("RecommendedAdIDs = %v, want [ad-1 ad-5]", result.RecommendedAdIDs)
	}
	if result.Reasoning == "" {
		t.Error("Reasoning should not be empty")
	}
}

func TestParseResult_EmptyRecommendations(t *testing.T) {
	// An empty list with a present key is a valid answer.
	data := []byte(`{"recommendedAdIds": [], "reasoning": "No strong signals yet."}`)

	result, err := parseResult(data)
	if err != nil {
		t.Fatalf("parseResult returned error: %v", err)
	}
	if len(result.RecommendedAdIDs) != 0 {
		t.Errorf("RecommendedAdIDs = %v, want empty", result.RecommendedAdIDs)
	}
}

func TestParseResult_MissingKeys(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing recommendedAdIds", `{"reasoning": "thin air"}`},
		{"missing reasoning", `{"recommendedAdIds": ["ad-1"]}`},
		{"empty object", `{}`},
		{"not json", `model refused to answer`},
		{"wrong root type", `["ad-1", "ad-2"]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := parseResult([]byte(tc.data)); err == nil {
				t.Errorf("parseResult(%q) should fail", tc.data)
			}
		})
	}
}

func TestCleanJSON(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{`{"a": 1}`, `{"a": 1}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tc := range cases {
		if got := cleanJSON(tc.input); got != tc.want {
			t.Errorf("cleanJSON(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	req := Request{
		UserAdRatings: []AdRatingSignal{
			{AdID: "ad-1", Rating: 1},
			{AdID: "ad-2", Rating: -1},
		},
		CartProductIDs: []string{"ad-7"},
		SeasonalOffers: []string{"Summer sale on footwear"},
	}

	prompt := buildPrompt(req)
	for _, fragment := range []string{
		"Ad ID: ad-1, Rating: 1",
		"Ad ID: ad-2, Rating: -1",
		"ad-7",
		"Summer sale on footwear",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}
	if strings.Contains(prompt, "Popular Products") {
		t.Error("prompt should omit the popular products section when empty")
	}
}

func TestNewClient_NoAPIKey(t *testing.T) {
	client, err := NewClient(context.Background(), "", "gemini-1.5-flash")
	if err != nil {
		t.Fatalf("NewClient with empty key should not error, got %v", err)
	}
	if client != nil {
		t.Error("NewClient with empty key should return a nil client")
	}
}

func TestRecommend_NilClient(t *testing.T) {
	var client *Client
	if _, err := client.Recommend(context.Background(), Request{}); err == nil {
		t.Error("Recommend on a nil client must return an error")
	}
}
