package pricing

import "tutorhub-service/internal/models"

// Discount rates per package kind, in percent. Fixed, not configurable per teacher.
var discounts = map[models.PackageKind]int{
	models.PackageSingle:  0,
	models.PackageWeekly:  10,
	models.PackageMonthly: 20,
}

type Quote struct {
	BasePrice       float64
	TotalClasses    int
	TotalPrice      float64
	DiscountPercent int
	DiscountAmount  float64
	FinalPrice      float64
}

func CalculatePackagePrice(kind models.PackageKind, pricePerClass float64, numberOfClasses int) Quote {
	discountPercent := discounts[kind]
	totalPrice := pricePerClass * float64(numberOfClasses)
	discountAmount := totalPrice * float64(discountPercent) / 100
	finalPrice := totalPrice - discountAmount

	return Quote{
		BasePrice:       pricePerClass,
		TotalClasses:    numberOfClasses,
		TotalPrice:      totalPrice,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		FinalPrice:      finalPrice,
	}
}

// PackageDuration is the fixed calendar window in days, not a class count.
// A weekly package with 3 selected weekdays still spans exactly 7 days.
func PackageDuration(kind models.PackageKind) int {
	switch kind {
	case models.PackageWeekly:
		return 7
	case models.PackageMonthly:
		return 30
	default:
		return 1
	}
}

func RecommendedClasses(kind models.PackageKind) int {
	switch kind {
	case models.PackageWeekly:
		return 5
	case models.PackageMonthly:
		return 20
	default:
		return 1
	}
}

func Savings(kind models.PackageKind, pricePerClass float64, numberOfClasses int) float64 {
	return CalculatePackagePrice(kind, pricePerClass, numberOfClasses).DiscountAmount
}
