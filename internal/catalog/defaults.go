package catalog

import "github.com/zenvue/adcontrol-hub/internal/models"

// Default returns the fallback catalog if no JSON file is loaded.
// The embedded catalog.json carries the same entries and should be preferred.
func Default() *Catalog {
	return newCatalog([]models.Product{
		{
			Ad: models.Ad{
				ID:          "ad-1",
				Brand:       "NexaGear",
				BrandLogo:   "https://placehold.co/40x40",
				Thumbnail:   "https://placehold.co/600x400",
				DataAIHint:  "running shoes",
				Title:       "NexaGear Pro-Run Trainers",
				Description: "Lightweight trainers with responsive cushioning for daily runs.",
				Category:    "Sports",
				ViewedDate:  "2024-05-01",
			},
			Price:          129.99,
			CommissionRate: 0.12,
		},
		{
			Ad: models.Ad{
				ID:          "ad-2",
				Brand:       "AuraSound",
				BrandLogo:   "https://placehold.co/40x40",
				Thumbnail:   "https://placehold.co/600x400",
				DataAIHint:  "wireless headphones",
				Title:       "AuraSound Flow ANC Headphones",
				Description: "Over-ear noise cancelling headphones with 40-hour battery life.",
				Category:    "Electronics",
				ViewedDate:  "2024-05-02",
			},
			Price:          199.0,
			CommissionRate: 0.08,
		},
		{
			Ad: models.Ad{
				ID:          "ad-3",
				Brand:       "TerraBrew",
				BrandLogo:   "https://placehold.co/40x40",
				Thumbnail:   "https://placehold.co/600x400",
				DataAIHint:  "coffee maker",
				Title:       "TerraBrew Precision Pour-Over Kit",
				Description: "Barista-grade pour-over set with temperature-controlled kettle.",
				Category:    "Home",
				ViewedDate:  "2024-05-03",
			},
			Price:          89.5,
			CommissionRate: 0.15,
		},
		{
			Ad: models.Ad{
				ID:          "ad-4",
				Brand:       "Lumine",
				BrandLogo:   "https://placehold.co/40x40",
				Thumbnail:   "https://placehold.co/600x400",
				DataAIHint:  "skincare serum",
				Title:       "Lumine Vitamin-C Glow Serum",
				Description: "Brightening serum with stabilized vitamin C and hyaluronic acid.",
				Category:    "Beauty",
				ViewedDate:  "2024-05-04",
			},
			Price:          42.0,
			CommissionRate: 0.2,
		},
		{
			Ad: models.Ad{
				ID:          "ad-5",
				Brand:       "TrailForge",
				BrandLogo:   "https://placehold.co/40x40",
				Thumbnail:   "https://placehold.co/600x400",
				DataAIHint:  "hiking backpack",
				Title:       "TrailForge Summit 45L Pack",
				Description: "Weatherproof trekking pack with adjustable torso and rain cover.",
				Category:    "Outdoors",
				ViewedDate:  "2024-05-05",
			},
			Price:          159.95,
			CommissionRate: 0.1,
		},
		{
			Ad: models.Ad{
				ID:          "ad-6",
				Brand:       "PixelHive",
				BrandLogo:   "https://placehold.co/40x40",
				Thumbnail:   "https://placehold.co/600x400",
				DataAIHint:  "smart display",
				Title:       "PixelHive Home Hub 8",
				Description: "8-inch smart display for calendars, recipes, and home control.",
				Category:    "Electronics",
				ViewedDate:  "2024-05-06",
			},
			Price:          109.99,
			CommissionRate: 0.07,
		},
		{
			Ad: models.Ad{
				ID:          "ad-7",
				Brand:       "Verdella",
				BrandLogo:   "https://placehold.co/40x40",
				Thumbnail:   "https://placehold.co/600x400",
				DataAIHint:  "indoor garden",
				Title:       "Verdella Countertop Herb Garden",
				Description: "Self-watering hydroponic garden with full-spectrum grow light.",
				Category:    "Home",
				ViewedDate:  "2024-05-07",
			},
			Price:          74.0,
			CommissionRate: 0.18,
		},
		{
			Ad: models.Ad{
				ID:          "ad-8",
				Brand:       "Kinetiq",
				BrandLogo:   "https://placehold.co/40x40",
				Thumbnail:   "https://placehold.co/600x400",
				DataAIHint:  "fitness watch",
				Title:       "Kinetiq Pulse Fitness Watch",
				Description: "GPS fitness watch with heart-rate zones and 10-day battery.",
				Category:    "Sports",
				ViewedDate:  "2024-05-08",
			},
			Price:          149.0,
			CommissionRate: 0.09,
		},
	})
}
