package match

import (
	"testing"

	"github.com/medbillguard/medbillguard/constants"
	"github.com/medbillguard/medbillguard/internal/catalog"
	"github.com/medbillguard/medbillguard/internal/extract"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Entry{
		{CategoryName: "Medicine", ItemName: "Paracetamol 500mg Tablet", CeilingPrice: 2.09, Source: "NPPA"},
		{CategoryName: "Medicine", ItemName: "Ofloxacin 200mg Tablet", CeilingPrice: 8.5, Source: "NPPA"},
		{CategoryName: "Test", ItemName: "Complete Blood Count (CBC)", CeilingPrice: 116, Source: "CGHS"},
		{CategoryName: "Test", ItemName: "Lipid Profile", CeilingPrice: 332, Source: "CGHS"},
		{CategoryName: "Room", ItemName: "ICU Charges per day", CeilingPrice: 5400, Source: "CGHS"},
	}, nil)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat
}

func TestBestExactSameCategory(t *testing.T) {
	m := New(testCatalog(t), Config{}, nil)

	got, ok := m.Best(extract.ExtractedItem{
		ItemName: "Complete Blood Count (CBC)",
		Category: constants.Test,
	})
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Entry.ItemName != "Complete Blood Count (CBC)" {
		t.Errorf("matched %q, want the CBC entry", got.Entry.ItemName)
	}
	if got.Score != 1 {
		t.Errorf("score = %v, want 1 (capped)", got.Score)
	}
}

func TestBestCategoryBoostBreaksTies(t *testing.T) {
	cat, err := catalog.New([]catalog.Entry{
		{CategoryName: "Medicine", ItemName: "Profile Tablet", CeilingPrice: 10, Source: "NPPA"},
		{CategoryName: "Test", ItemName: "Profile Tablet", CeilingPrice: 300, Source: "CGHS"},
	}, nil)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	m := New(cat, Config{}, nil)

	got, ok := m.Best(extract.ExtractedItem{ItemName: "Profile Tablet", Category: constants.Test})
	if !ok {
		t.Fatal("expected a match")
	}
	if got.Entry.CategoryName != "Test" {
		t.Errorf("matched category %q, want the boosted Test entry", got.Entry.CategoryName)
	}
}

func TestBestFallsBackToGlobalPass(t *testing.T) {
	m := New(testCatalog(t), Config{}, nil)

	// category tag is wrong; only the global pass can find the entry
	got, ok := m.Best(extract.ExtractedItem{
		ItemName: "Lipid Profile",
		Category: constants.Other,
	})
	if !ok {
		t.Fatal("expected a match from the global pass")
	}
	if got.Entry.ItemName != "Lipid Profile" {
		t.Errorf("matched %q, want Lipid Profile", got.Entry.ItemName)
	}
}

func TestBestBelowThreshold(t *testing.T) {
	m := New(testCatalog(t), Config{}, nil)

	if got, ok := m.Best(extract.ExtractedItem{
		ItemName: "Ambulance Mileage Surcharge",
		Category: constants.Other,
	}); ok {
		t.Fatalf("expected no match, got %q (%.2f)", got.Entry.ItemName, got.Score)
	}
}

func TestBestHandlesUnseenBrandName(t *testing.T) {
	m := New(testCatalog(t), Config{}, nil)

	// an unrecognized brand name must degrade to not-found, never panic
	if _, ok := m.Best(extract.ExtractedItem{
		ItemName: "OXYFLOXIN-100 TAB",
		Category: constants.Medicine,
	}); ok {
		// a weak match is acceptable too; the point is graceful handling
		t.Log("brand name matched a catalog entry above the threshold")
	}
}

func TestBestEmptyCatalog(t *testing.T) {
	m := New(nil, Config{}, nil)
	if _, ok := m.Best(extract.ExtractedItem{ItemName: "Paracetamol"}); ok {
		t.Fatal("nil catalog must yield not-found")
	}
}
