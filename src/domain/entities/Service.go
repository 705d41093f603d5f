package entities

import "time"

const ServiceType = "Service"

const (
	AvailabilityAvailable   = "available"
	AvailabilityBusy        = "busy"
	AvailabilityUnavailable = "unavailable"
)

var ServiceCategories = []string{
	"home-improvement",
	"cleaning",
	"plumbing",
	"electrical",
	"painting",
	"landscaping",
	"moving",
	"handyman",
	"photography",
	"event-planning",
	"tutoring",
	"personal-training",
}

var ServiceDescriptor = register(&Descriptor{
	Name:    ServiceType,
	OrderBy: "created_at DESC",
	Properties: map[string]Field{
		"title":          {Type: TypeString, Description: "Service title"},
		"category":       {Type: TypeString, Enum: ServiceCategories, Description: "Service category"},
		"description":    {Type: TypeString, Description: "Service description"},
		"providerName":   {Type: TypeString, Description: "Service provider name"},
		"providerId":     {Type: TypeInteger, Description: "Service provider user ID"},
		"providerRating": {Type: TypeNumber, Description: "Provider rating (0-5)"},
		"reviewCount":    {Type: TypeInteger, Description: "Number of reviews"},
		"priceRange":     {Type: TypeString, Description: "Price range (e.g., $50-$100)"},
		"imageUrl":       {Type: TypeString, Description: "Service image URL"},
		"location":       {Type: TypeString, Description: "Service location"},
		"availability": {
			Type:        TypeString,
			Enum:        []string{AvailabilityAvailable, AvailabilityBusy, AvailabilityUnavailable},
			Default:     AvailabilityAvailable,
			Description: "Provider availability",
		},
	},
	Required: []string{"title", "category", "providerName", "priceRange"},
	Rules: func(data map[string]any, _ bool) []string {
		if rating, ok := toFloat(data["providerRating"]); ok && (rating < 0 || rating > 5) {
			return []string{"providerRating must be between 0 and 5"}
		}
		return nil
	},
})

type Service struct {
	ID             int64     `json:"id,omitempty"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Description    string    `json:"description,omitempty"`
	ProviderName   string    `json:"providerName"`
	ProviderID     int64     `json:"providerId,omitempty"`
	ProviderRating float64   `json:"providerRating,omitempty"`
	ReviewCount    int       `json:"reviewCount,omitempty"`
	PriceRange     string    `json:"priceRange"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	Location       string    `json:"location,omitempty"`
	Availability   string    `json:"availability"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewService(title, category, providerName, priceRange string) Service {
	return Service{
		Title:        title,
		Category:     category,
		ProviderName: providerName,
		PriceRange:   priceRange,
		Availability: AvailabilityAvailable,
	}
}
