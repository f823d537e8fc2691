package domain

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Travel is a recorded trip, the parent aggregate of itineraries.
// Deleting a travel deletes all of its itineraries.
type Travel struct {
	ID              int64
	Title           string
	Description     string
	StartLocation   string
	EndLocation     string
	TransportMethod TransportMethod
	TotalCost       *float64
	StartDate       *time.Time
	EndDate         *time.Time
	CoverImage      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Itinerary is one scheduled leg or event within a travel. TravelDate is the
// calendar date; StartTime and EndTime are optional "HH:MM" times of day.
// Images holds gallery image URLs.
type Itinerary struct {
	ID              int64
	TravelID        int64
	Title           string
	Content         string
	Location        string
	TravelDate      time.Time
	Cost            *float64
	TransportMethod TransportMethod
	FlightNumber    string
	TrainNumber     string
	BusNumber       string
	StartLocation   string
	EndLocation     string
	StartTime       string
	EndTime         string
	Images          []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
