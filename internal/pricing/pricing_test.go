package pricing

import (
	"testing"

	"tutorhub-service/internal/models"
)

func TestCalculatePackagePrice(t *testing.T) {
	tests := []struct {
		name            string
		kind            models.PackageKind
		pricePerClass   float64
		classes         int
		wantTotal       float64
		wantDiscountPct int
		wantDiscountAmt float64
		wantFinal       float64
	}{
		{"single no discount", models.PackageSingle, 500, 1, 500, 0, 0, 500},
		{"weekly 10 percent", models.PackageWeekly, 600, 5, 3000, 10, 300, 2700},
		{"monthly 20 percent", models.PackageMonthly, 450, 20, 9000, 20, 1800, 7200},
		{"weekly few classes", models.PackageWeekly, 800, 2, 1600, 10, 160, 1440},
		{"zero classes", models.PackageMonthly, 700, 0, 0, 20, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := CalculatePackagePrice(tt.kind, tt.pricePerClass, tt.classes)

			if q.BasePrice != tt.pricePerClass {
				t.Errorf("BasePrice = %v, want %v", q.BasePrice, tt.pricePerClass)
			}
			if q.TotalClasses != tt.classes {
				t.Errorf("TotalClasses = %d, want %d", q.TotalClasses, tt.classes)
			}
			if q.TotalPrice != tt.wantTotal {
				t.Errorf("TotalPrice = %v, want %v", q.TotalPrice, tt.wantTotal)
			}
			if q.DiscountPercent != tt.wantDiscountPct {
				t.Errorf("DiscountPercent = %d, want %d", q.DiscountPercent, tt.wantDiscountPct)
			}
			if q.DiscountAmount != tt.wantDiscountAmt {
				t.Errorf("DiscountAmount = %v, want %v", q.DiscountAmount, tt.wantDiscountAmt)
			}
			if q.FinalPrice != tt.wantFinal {
				t.Errorf("FinalPrice = %v, want %v", q.FinalPrice, tt.wantFinal)
			}
		})
	}
}

func TestPackageDuration(t *testing.T) {
	if d := PackageDuration(models.PackageSingle); d != 1 {
		t.Errorf("single duration = %d, want 1", d)
	}
	if d := PackageDuration(models.PackageWeekly); d != 7 {
		t.Errorf("weekly duration = %d, want 7", d)
	}
	if d := PackageDuration(models.PackageMonthly); d != 30 {
		t.Errorf("monthly duration = %d, want 30", d)
	}
}

func TestRecommendedClasses(t *testing.T) {
	if n := RecommendedClasses(models.PackageWeekly); n != 5 {
		t.Errorf("weekly recommended = %d, want 5", n)
	}
	if n := RecommendedClasses(models.PackageMonthly); n != 20 {
		t.Errorf("monthly recommended = %d, want 20", n)
	}
	if n := RecommendedClasses(models.PackageSingle); n != 1 {
		t.Errorf("single recommended = %d, want 1", n)
	}
}

func TestSavings(t *testing.T) {
	if s := Savings(models.PackageMonthly, 450, 20); s != 1800 {
		t.Errorf("savings = %v, want 1800", s)
	}
	if s := Savings(models.PackageSingle, 450, 1); s != 0 {
		t.Errorf("single savings = %v, want 0", s)
	}
}
