package apiclient

import (
	"context"
	"net/http"

	"github.com/Webzensify/uber-web/internal/domain"
	"github.com/Webzensify/uber-web/pkg/xerrors"
)

// AllDrivers lists every driver on the platform.
func (c *Client) AllDrivers(ctx context.Context, creds *Credentials) ([]domain.Driver, error) {
	var resp struct {
		Drivers []domain.Driver `json:"drivers"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/allDrivers", nil, &resp, creds); err != nil {
		return nil, err
	}
	return resp.Drivers, nil
}

// DriverByID fetches one driver's detail record.
func (c *Client) DriverByID(ctx context.Context, id string, creds *Credentials) (*domain.Driver, error) {
	var resp struct {
		Driver *domain.Driver `json:"driver"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/driver/"+id, nil, &resp, creds); err != nil {
		return nil, err
	}
	if resp.Driver == nil {
		return nil, xerrors.ErrNotFound
	}
	return resp.Driver, nil
}

// BlockDriver suspends a driver from taking rides.
func (c *Client) BlockDriver(ctx context.Context, id string, creds *Credentials) error {
	return c.do(ctx, http.MethodPut, "/api/admin/blockDriver/"+id, nil, nil, creds)
}

// DeleteDriver removes a driver from the platform.
func (c *Client) DeleteDriver(ctx context.Context, id string, creds *Credentials) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/deleteDriver/"+id, nil, nil, creds)
}

// AdminRides lists every ride on the platform.
func (c *Client) AdminRides(ctx context.Context, creds *Credentials) ([]domain.Ride, error) {
	var resp struct {
		Rides []domain.Ride `json:"rides"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/allRides", nil, &resp, creds); err != nil {
		return nil, err
	}
	return resp.Rides, nil
}

// CancelRide cancels a ride with a mandatory reason.
func (c *Client) CancelRide(ctx context.Context, id, reason string, creds *Credentials) error {
	body := map[string]string{
		"rideId": id,
		"reason": reason,
	}
	return c.do(ctx, http.MethodPut, "/api/admin/cancelRide/"+id, body, nil, creds)
}

// AllUsers lists riding customers.
func (c *Client) AllUsers(ctx context.Context, creds *Credentials) ([]domain.User, error) {
	var resp struct {
		Users []domain.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/allUsers", nil, &resp, creds); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// AppointOperationalAdmin creates an operational admin account. The backend
// expects the mobile number in +91 form on this call.
func (c *Client) AppointOperationalAdmin(ctx context.Context, name, email, mobileNumber string, creds *Credentials) error {
	body := map[string]string{
		"name":         name,
		"email":        email,
		"mobileNumber": "+91" + mobileNumber,
		"role":         string(domain.RoleAdmin),
	}
	return c.do(ctx, http.MethodPost, "/api/admin/appointOperationalAdmin", body, nil, creds)
}
