package stubs

import (
	"fmt"
	"strings"
	"time"

	"tasksmith/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

// Payloads válidos para cada tipo do marketplace, prontos para Create.

func ServiceData() map[string]any {
	return map[string]any{
		"title":        gofakeit.JobTitle() + " services",
		"description":  gofakeit.Sentence(12),
		"category":     gofakeit.RandomString(entities.ServiceCategories),
		"providerName": gofakeit.Name(),
		"priceRange":   fmt.Sprintf("$%d-$%d", gofakeit.Number(20, 60), gofakeit.Number(80, 300)),
		"location":     gofakeit.City(),
	}
}

func UserData(userType string) map[string]any {
	return map[string]any{
		"name":     gofakeit.Name(),
		"email":    strings.ToLower(gofakeit.Email()),
		"userType": userType,
		"phone":    gofakeit.Phone(),
	}
}

func BookingData(serviceID int64, serviceTitle, providerName string) map[string]any {
	return map[string]any{
		"serviceId":     serviceID,
		"serviceTitle":  serviceTitle,
		"providerName":  providerName,
		"customerName":  gofakeit.Name(),
		"customerEmail": strings.ToLower(gofakeit.Email()),
		"customerPhone": gofakeit.Phone(),
		"details":       gofakeit.Sentence(8),
		"preferredDate": gofakeit.DateRange(time.Now(), time.Now().AddDate(0, 2, 0)).Format("2006-01-02"),
	}
}

func ReviewData(bookingID, serviceID int64, rating int) map[string]any {
	return map[string]any{
		"bookingId":    bookingID,
		"serviceId":    serviceID,
		"providerId":   gofakeit.Number(1, 10000),
		"customerId":   gofakeit.Number(1, 10000),
		"rating":       rating,
		"reviewText":   "Great job, " + gofakeit.Sentence(6),
		"customerName": gofakeit.Name(),
	}
}
