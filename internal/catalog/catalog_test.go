package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ReturnsUsableCatalog(t *testing.T) {
	cat := Load()
	if cat == nil {
		t.Fatal("Load() returned nil")
	}
	if cat.Len() == 0 {
		t.Fatal("Load() returned an empty catalog")
	}
}

func TestDefault_Consistency(t *testing.T) {
	cat := Default()
	if cat.Len() == 0 {
		t.Fatal("default catalog is empty")
	}

	seen := make(map[string]bool)
	for _, p := range cat.Products() {
		if p.ID == "" {
			t.Error("catalog product with empty ID")
		}
		if seen[p.ID] {
			t.Errorf("duplicate catalog ID %s", p.ID)
		}
		seen[p.ID] = true

		if p.Title == "" || p.Brand == "" {
			t.Errorf("product %s missing title or brand", p.ID)
		}
		if p.Price < 0 {
			t.Errorf("product %s has negative price %f", p.ID, p.Price)
		}
		if p.CommissionRate < 0 || p.CommissionRate > 1 {
			t.Errorf("product %s commission rate %f outside [0,1]", p.ID, p.CommissionRate)
		}

		got, ok := cat.ProductByID(p.ID)
		if !ok || got.ID != p.ID {
			t.Errorf("ProductByID(%s) failed to round-trip", p.ID)
		}
	}
}

func TestSeedAds_StripsCommercialFields(t *testing.T) {
	cat := Default()
	ads := cat.SeedAds(3)
	if len(ads) != 3 {
		t.Fatalf("SeedAds(3) returned %d ads", len(ads))
	}
	for i, ad := range ads {
		want := cat.Products()[i]
		if ad.ID != want.ID || ad.Title != want.Title {
			t.Errorf("ad[%d] does not match catalog entry %s", i, want.ID)
		}
	}
}

func TestSeedAds_ClampsToCatalogSize(t *testing.T) {
	cat := Default()
	ads := cat.SeedAds(cat.Len() + 100)
	if len(ads) != cat.Len() {
		t.Errorf("SeedAds beyond catalog size returned %d ads, want %d", len(ads), cat.Len())
	}
}

func TestFromBytes_Invalid(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not json", "nope"},
		{"empty array", "[]"},
		{"wrong shape", `{"products": []}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromBytes([]byte(tc.data)); err == nil {
				t.Errorf("FromBytes(%q) should fail", tc.data)
			}
		})
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	payload := `[{"id": "ad-x", "brand": "TestBrand", "title": "Test Product", "price": 10, "commissionRate": 0.1}]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write temp catalog: %v", err)
	}

	cat, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("expected 1 product, got %d", cat.Len())
	}
	p, ok := cat.ProductByID("ad-x")
	if !ok {
		t.Fatal("ProductByID(ad-x) not found")
	}
	if p.Price != 10 || p.CommissionRate != 0.1 {
		t.Errorf("commercial fields = %f/%f, want 10/0.1", p.Price, p.CommissionRate)
	}
}

func TestFromFile_Missing(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("FromFile on a missing path should fail")
	}
}
