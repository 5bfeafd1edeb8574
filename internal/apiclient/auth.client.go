package apiclient

import (
	"context"
	"net/http"

	"github.com/Webzensify/uber-web/internal/domain"
)

// AuthResult is the credential set returned by login and registration. Role
// is the backend's word on who just logged in; it may narrow an admin login
// to an operational admin.
type AuthResult struct {
	Principal *domain.Principal
	Role      string
	Token     string
}

// authResponse tolerates the two envelope spellings the backend has used:
// /api/auth/login returns {entity, token}, /api/owner/register returns
// {user, token} and older deployments returned {user, authToken}.
type authResponse struct {
	Entity    *domain.Principal `json:"entity"`
	User      *domain.Principal `json:"user"`
	Owner     *domain.Principal `json:"owner"`
	Role      string            `json:"role"`
	Token     string            `json:"token"`
	AuthToken string            `json:"authToken"`
}

func (r authResponse) result() *AuthResult {
	out := &AuthResult{Role: r.Role, Token: r.Token}
	if out.Token == "" {
		out.Token = r.AuthToken
	}
	switch {
	case r.Entity != nil:
		out.Principal = r.Entity
	case r.User != nil:
		out.Principal = r.User
	case r.Owner != nil:
		out.Principal = r.Owner
	}
	return out
}

// SendLoginOTP asks the backend to deliver an OTP to the phone number for an
// owner or admin login attempt. No credentials are attached.
func (c *Client) SendLoginOTP(ctx context.Context, phoneNumber string, role domain.Role) error {
	body := map[string]string{
		"phoneNumber": phoneNumber,
		"role":        string(role),
	}
	return c.do(ctx, http.MethodPost, "/api/auth/send-otp", body, nil, nil)
}

// SendDriverOTP asks the backend to deliver an enrollment OTP to a driver's
// phone on behalf of an authenticated owner. The backend expects the number
// in +91 form on this call.
func (c *Client) SendDriverOTP(ctx context.Context, mobileNumber string, creds *Credentials) error {
	body := map[string]string{
		"mobileNumber": "+91" + mobileNumber,
		"role":         string(domain.RoleDriver),
	}
	return c.do(ctx, http.MethodPost, "/api/auth/send-otp", body, nil, creds)
}

// Login verifies the OTP and exchanges it for a principal and token.
func (c *Client) Login(ctx context.Context, phoneNumber, otp string, role domain.Role) (*AuthResult, error) {
	body := map[string]string{
		"phoneNumber": phoneNumber,
		"otp":         otp,
		"role":        string(role),
	}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &resp, nil); err != nil {
		return nil, err
	}
	return resp.result(), nil
}

// RegisterOwnerRequest carries the owner registration form.
type RegisterOwnerRequest struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	PhoneNumber   string `json:"phoneNumber"`
	OTP           string `json:"otp"`
	AadhaarNumber string `json:"aadhaarNumber"`
	Email         string `json:"email"`
	Role          string `json:"role"`
}

// RegisterOwner verifies the OTP and creates the owner account in one step.
func (c *Client) RegisterOwner(ctx context.Context, req RegisterOwnerRequest) (*AuthResult, error) {
	req.Role = string(domain.RoleOwner)
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/owner/register", req, &resp, nil); err != nil {
		return nil, err
	}
	return resp.result(), nil
}

// AddDriverRequest carries the owner-driven driver enrollment form.
type AddDriverRequest struct {
	MobileNumber  string `json:"mobileNumber"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	LicenseNumber string `json:"licenseNumber"`
	AadhaarNumber string `json:"aadhaarNumber"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	OTP           string `json:"otp"`
}

// AddDriver verifies the driver's OTP and registers the driver under the
// calling owner. No session is minted for the driver.
func (c *Client) AddDriver(ctx context.Context, req AddDriverRequest, creds *Credentials) error {
	req.Role = string(domain.RoleDriver)
	return c.do(ctx, http.MethodPost, "/api/auth/addDriver", req, nil, creds)
}

// Logout invalidates the backend-side session. The local session is cleared
// regardless of the outcome, so callers treat this as fire-and-forget.
func (c *Client) Logout(ctx context.Context, creds *Credentials) error {
	return c.do(ctx, http.MethodPost, "/api/owner/logout", nil, nil, creds)
}
