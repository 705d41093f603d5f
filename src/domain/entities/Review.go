package entities

import (
	"strings"
	"time"
	"unicode/utf8"
)

const ReviewType = "Review"

const minReviewTextLength = 10

var ReviewDescriptor = register(&Descriptor{
	Name:    ReviewType,
	OrderBy: "created_at DESC",
	Properties: map[string]Field{
		"bookingId":    {Type: TypeInteger, Description: "Associated booking ID"},
		"serviceId":    {Type: TypeInteger, Description: "Associated service ID"},
		"providerId":   {Type: TypeInteger, Description: "Service provider user ID"},
		"customerId":   {Type: TypeInteger, Description: "Customer user ID"},
		"rating":       {Type: TypeInteger, Description: "Star rating from 1-5"},
		"reviewText":   {Type: TypeString, Description: "Customer review text"},
		"customerName": {Type: TypeString, Description: "Customer name for display"},
	},
	Required: []string{"bookingId", "serviceId", "providerId", "customerId", "rating"},
	Rules:    reviewRules,
})

func reviewRules(data map[string]any, _ bool) []string {
	var issues []string

	if rating, ok := toFloat(data["rating"]); ok && (rating < 1 || rating > 5) {
		issues = append(issues, "rating must be between 1 and 5")
	}

	if text, ok := data["reviewText"].(string); ok && utf8.RuneCountInString(strings.TrimSpace(text)) < minReviewTextLength {
		issues = append(issues, "reviewText must be at least 10 characters long")
	}

	return issues
}

type Review struct {
	ID           int64     `json:"id,omitempty"`
	BookingID    int64     `json:"bookingId"`
	ServiceID    int64     `json:"serviceId"`
	ProviderID   int64     `json:"providerId"`
	CustomerID   int64     `json:"customerId"`
	Rating       int       `json:"rating"`
	ReviewText   string    `json:"reviewText,omitempty"`
	CustomerName string    `json:"customerName,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewReview(booking Booking, providerID int64, rating int, text string) Review {
	return Review{
		BookingID:    booking.ID,
		ServiceID:    booking.ServiceID,
		ProviderID:   providerID,
		CustomerID:   booking.CustomerID,
		Rating:       rating,
		ReviewText:   strings.TrimSpace(text),
		CustomerName: booking.CustomerName,
	}
}
