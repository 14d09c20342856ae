// Package recommend wraps the external prompt-completion call that ranks
// ad recommendations. The model receives the user's rating and cart
// signals and must answer with a schema-validated structured response; any
// shape mismatch is an error, never a crash.
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"github.com/zenvue/adcontrol-hub/internal/models"
	"github.com/zenvue/adcontrol-hub/internal/validator"
)

// AdRatingSignal is one rating input: -1 dislike, 1 like. Neutral ads are
// simply absent from the request.
type AdRatingSignal struct {
	AdID   string `json:"adId" validate:"required"`
	Rating int    `json:"rating" validate:"gte=-1,lte=1"`
}

// Request carries the user signals the model ranks against.
type Request struct {
	UserAdRatings   []AdRatingSignal `json:"userAdRatings" validate:"dive"`
	CartProductIDs  []string         `json:"cartProductIds"`
	SeasonalOffers  []string         `json:"seasonalOffers,omitempty"`
	PopularProducts []string         `json:"popularProducts,omitempty"`
}

// Result is the structured model response.
type Result struct {
	RecommendedAdIDs []string `json:"recommendedAdIds"`
	Reasoning        string   `json:"reasoning"`
}

// SignalsFromRatings converts a rating map into request signals, sorted by
// ad ID for deterministic prompts.
func SignalsFromRatings(ratings models.RatingMap) []AdRatingSignal {
	signals := make([]AdRatingSignal, 0, len(ratings))
	for adID, rating := range ratings {
		value := 1
		if rating == models.RatingDislike {
			value = -1
		}
		signals = append(signals, AdRatingSignal{AdID: adID, Rating: value})
	}
	sort.Slice(signals, func(i, j int) bool { return signals[i].AdID < signals[j].AdID })
	return signals
}

type Client struct {
	model    *genai.GenerativeModel
	limiter  *rate.Limiter
	validate *validator.Validator
}

// NewClient builds the Gemini-backed recommender. Returns a nil client
// when no API key is configured; callers treat that as recommendations
// being disabled.
func NewClient(ctx context.Context, apiKey, modelID string) (*Client, error) {
	if apiKey == "" {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelID)
	model.SetTemperature(0.2)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"recommendedAdIds": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "The IDs of the recommended ads.",
			},
			"reasoning": {
				Type:        genai.TypeString,
				Description: "The reasoning behind the ad recommendations.",
			},
		},
		Required: []string{"recommendedAdIds", "reasoning"},
	}

	return &Client{
		model:    model,
		limiter:  rate.NewLimiter(rate.Every(2*time.Second), 1),
		validate: validator.New(),
	}, nil
}

// Recommend asks the model for personalized ad recommendations.
func (c *Client) Recommend(ctx context.Context, req Request) (*Result, error) {
	if c == nil || c.model == nil {
		return nil, fmt.Errorf("recommendation client is not configured")
	}
	if err := c.validate.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("invalid recommendation request: %w", err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(buildPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from gemini")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return parseResult([]byte(cleanJSON(string(txt))))
		}
	}
	return nil, fmt.Errorf("no text part in response")
}

func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are an expert marketing assistant specializing in personalized ad recommendations.\n\n")
	b.WriteString("Use the user's past ad ratings and current cart items to recommend new ads they might be interested in.\n\n")

	b.WriteString("User Ad Ratings:\n")
	for _, signal := range req.UserAdRatings {
		fmt.Fprintf(&b, "  Ad ID: %s, Rating: %d\n", signal.AdID, signal.Rating)
	}

	b.WriteString("\nCart Product IDs:\n")
	for _, id := range req.CartProductIDs {
		fmt.Fprintf(&b, "  %s\n", id)
	}

	if len(req.SeasonalOffers) > 0 {
		b.WriteString("\nSeasonal Offers:\n")
		for _, offer := range req.SeasonalOffers {
			fmt.Fprintf(&b, "  %s\n", offer)
		}
	}
	if len(req.PopularProducts) > 0 {
		b.WriteString("\nPopular Products:\n")
		for _, product := range req.PopularProducts {
			fmt.Fprintf(&b, "  %s\n", product)
		}
	}

	b.WriteString("\nDecide which ads to recommend and set recommendedAdIds accordingly. Explain your reasoning in the reasoning field. Output JSON adhering to the schema.\n")
	return b.String()
}

// cleanJSON strips markdown fences the model sometimes wraps JSON in.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseResult enforces the response contract: both fields must be present.
// A missing key is a contract violation even if the JSON parses.
func parseResult(data []byte) (*Result, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse recommendation response: %w", err)
	}
	if _, ok := raw["recommendedAdIds"]; !ok {
		return nil, fmt.Errorf("recommendation response missing recommendedAdIds")
	}
	if _, ok := raw["reasoning"]; !ok {
		return nil, fmt.Errorf("recommendation response missing reasoning")
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse recommendation response: %w", err)
	}
	return &result, nil
}
