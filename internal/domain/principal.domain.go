package domain

// Principal is the authenticated identity the backend returns on login or
// registration. It is replaced wholesale on profile edit and destroyed on
// logout; the dashboard never mutates individual fields in place.
type Principal struct {
	ID            string `json:"_id"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	MobileNumber  string `json:"mobileNumber"`
	Address       string `json:"address,omitempty"`
	AadhaarNumber string `json:"aadhaarNumber,omitempty"`
}

// Session is the client-held record of an authenticated browser session.
// Invariant: Token is present iff Principal is present.
type Session struct {
	Principal *Principal `json:"principal,omitempty"`
	Role      Role       `json:"role,omitempty"`
	Token     string     `json:"token,omitempty"`
}

// Active reports whether the session holds a complete, usable credential set.
// A record with a principal but no token (or vice versa) is corrupt and must
// be treated as no session at all.
func (s Session) Active() bool {
	return s.Principal != nil && s.Token != "" && s.Role.Valid()
}
