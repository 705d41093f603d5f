package entities

import "time"

const BookingType = "Booking"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

var BookingDescriptor = register(&Descriptor{
	Name:    BookingType,
	OrderBy: "created_at DESC",
	Properties: map[string]Field{
		"serviceId":     {Type: TypeInteger, Description: "Reference to service"},
		"serviceTitle":  {Type: TypeString, Description: "Service title"},
		"providerName":  {Type: TypeString, Description: "Provider name"},
		"customerId":    {Type: TypeInteger, Description: "Customer user ID"},
		"customerName":  {Type: TypeString, Description: "Customer name"},
		"customerEmail": {Type: TypeString, Format: "email", Description: "Customer email"},
		"customerPhone": {Type: TypeString, Description: "Customer phone"},
		"preferredDate": {Type: TypeString, Format: "date", Description: "Preferred service date"},
		"preferredTime": {Type: TypeString, Description: "Preferred service time"},
		"location":      {Type: TypeString, Description: "Service location"},
		"details":       {Type: TypeString, Description: "Additional details"},
		"status": {
			Type:        TypeString,
			Enum:        []string{BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled},
			Default:     BookingPending,
			Description: "Booking status",
		},
		"totalPrice": {Type: TypeString, Description: "Total price estimate"},
	},
	Required: []string{"serviceId", "serviceTitle", "providerName", "customerName", "customerEmail"},
})

type Booking struct {
	ID            int64     `json:"id,omitempty"`
	ServiceID     int64     `json:"serviceId"`
	ServiceTitle  string    `json:"serviceTitle"`
	ProviderName  string    `json:"providerName"`
	CustomerID    int64     `json:"customerId,omitempty"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerPhone string    `json:"customerPhone,omitempty"`
	PreferredDate string    `json:"preferredDate,omitempty"`
	PreferredTime string    `json:"preferredTime,omitempty"`
	Location      string    `json:"location,omitempty"`
	Details       string    `json:"details,omitempty"`
	Status        string    `json:"status"`
	TotalPrice    string    `json:"totalPrice,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func NewBooking(service Service, customerName, customerEmail string) Booking {
	return Booking{
		ServiceID:     service.ID,
		ServiceTitle:  service.Title,
		ProviderName:  service.ProviderName,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Location:      service.Location,
		TotalPrice:    service.PriceRange,
		Status:        BookingPending,
	}
}
