package entities

import "time"

const UserType = "User"

const (
	UserProvider = "provider"
	UserCustomer = "customer"
)

var UserDescriptor = register(&Descriptor{
	Name:    UserType,
	OrderBy: "created_at DESC",
	Properties: map[string]Field{
		"name":     {Type: TypeString, Description: "User full name"},
		"email":    {Type: TypeString, Format: "email", Description: "User email address"},
		"phone":    {Type: TypeString, Description: "User phone number"},
		"userType": {Type: TypeString, Enum: []string{UserProvider, UserCustomer}, Description: "Type of user account"},
		"avatar":   {Type: TypeString, Description: "Avatar image URL or data URI"},
		// campos de prestador
		"serviceCategories": {Type: TypeString, Description: "JSON array of service category IDs"},
		"description":       {Type: TypeString, Description: "Provider bio/description"},
		"hourlyRate":        {Type: TypeNumber, Description: "Provider hourly rate"},
		"experience":        {Type: TypeString, Description: "Years of experience"},
		// campos de cliente
		"preferredCategories": {Type: TypeString, Description: "JSON array of preferred category IDs"},
		"location":            {Type: TypeString, Description: "User location/zip code"},
		"onboardingCompleted": {Type: TypeString, Default: "false", Description: "Onboarding status"},
	},
	Required: []string{"name", "email", "userType"},
})

type User struct {
	ID                  int64     `json:"id,omitempty"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone,omitempty"`
	UserType            string    `json:"userType"`
	Avatar              string    `json:"avatar,omitempty"`
	ServiceCategories   string    `json:"serviceCategories,omitempty"`
	Description         string    `json:"description,omitempty"`
	HourlyRate          float64   `json:"hourlyRate,omitempty"`
	Experience          string    `json:"experience,omitempty"`
	PreferredCategories string    `json:"preferredCategories,omitempty"`
	Location            string    `json:"location,omitempty"`
	OnboardingCompleted string    `json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func NewUser(name, email, userType string) User {
	return User{
		Name:                name,
		Email:               email,
		UserType:            userType,
		OnboardingCompleted: "false",
	}
}
