package domain

// Resource entities are owned exclusively by the backend. The dashboard holds
// only ephemeral copies fetched per view; no referential integrity is enforced
// here.

type Driver struct {
	ID            string `json:"_id"`
	Name          string `json:"name"`
	MobileNumber  string `json:"mobileNumber"`
	Address       string `json:"address,omitempty"`
	AadhaarNumber string `json:"aadhaarNumber,omitempty"`
	LicenseNumber string `json:"licenseNumber,omitempty"`
	Email         string `json:"email,omitempty"`
	Owner         string `json:"owner,omitempty"`
	IsVerified    bool   `json:"isVerified"`
	IsBlocked     bool   `json:"isBlocked"`
}

type Vehicle struct {
	ID     string `json:"_id,omitempty"`
	Model  string `json:"model"`
	Brand  string `json:"brand"`
	Type   string `json:"type"`
	Seats  int    `json:"seats"`
	Number string `json:"number"`
	Year   int    `json:"year"`
	Desc   string `json:"desc"`
}

type Ride struct {
	ID              string         `json:"_id"`
	UserID          string         `json:"userId,omitempty"`
	DriverID        string         `json:"driverId,omitempty"`
	PickupLocation  string         `json:"pickupLocation,omitempty"`
	DropoffLocation string         `json:"dropoffLocation,omitempty"`
	Status          string         `json:"status"`
	Fare            float64        `json:"fare,omitempty"`
	Quote           float64        `json:"quote,omitempty"`
	Distance        float64        `json:"distance,omitempty"`
	Duration        float64        `json:"duration,omitempty"`
	PaymentStatus   string         `json:"paymentStatus,omitempty"`
	CancelDetails   *CancelDetails `json:"cancelDetails,omitempty"`
}

type CancelDetails struct {
	Reason string `json:"reason"`
}

// User is a riding customer, visible to admins only.
type User struct {
	ID            string `json:"_id"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	MobileNumber  string `json:"mobileNumber"`
	Address       string `json:"address,omitempty"`
	Gender        string `json:"gender,omitempty"`
	AadhaarNumber string `json:"aadhaarNumber,omitempty"`
}
