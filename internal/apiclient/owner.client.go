package apiclient

import (
	"context"
	"net/http"

	"github.com/Webzensify/uber-web/internal/domain"
)

// GetCars lists the owner's fleet.
func (c *Client) GetCars(ctx context.Context, creds *Credentials) ([]domain.Vehicle, error) {
	var resp struct {
		Cars []domain.Vehicle `json:"cars"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/owner/getCars", nil, &resp, creds); err != nil {
		return nil, err
	}
	return resp.Cars, nil
}

// AddCar registers a new vehicle under the owner.
func (c *Client) AddCar(ctx context.Context, v domain.Vehicle, creds *Credentials) error {
	return c.do(ctx, http.MethodPost, "/api/owner/addCar", v, nil, creds)
}

// UpdateCar replaces the vehicle's editable fields.
func (c *Client) UpdateCar(ctx context.Context, id string, v domain.Vehicle, creds *Credentials) error {
	return c.do(ctx, http.MethodPut, "/api/owner/editCar/"+id, v, nil, creds)
}

// DeleteCar removes the vehicle from the fleet.
func (c *Client) DeleteCar(ctx context.Context, id string, creds *Credentials) error {
	return c.do(ctx, http.MethodDelete, "/api/owner/deleteCar/"+id, nil, nil, creds)
}

// OwnerDrivers lists the drivers enrolled under the owner.
func (c *Client) OwnerDrivers(ctx context.Context, creds *Credentials) ([]domain.Driver, error) {
	var resp struct {
		Drivers []domain.Driver `json:"drivers"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/owner/allDrivers", nil, &resp, creds); err != nil {
		return nil, err
	}
	return resp.Drivers, nil
}

// OwnerRides lists rides served by the owner's fleet. Read-only.
func (c *Client) OwnerRides(ctx context.Context, creds *Credentials) ([]domain.Ride, error) {
	var resp struct {
		Rides []domain.Ride `json:"rides"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/owner/allRides", nil, &resp, creds); err != nil {
		return nil, err
	}
	return resp.Rides, nil
}

// ProfileUpdate carries the editable owner profile fields.
type ProfileUpdate struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	MobileNumber  string `json:"mobileNumber"`
	Address       string `json:"address"`
	AadhaarNumber string `json:"aadhaarNumber"`
}

// UpdateProfile saves the profile and returns the replacement principal the
// session must be re-committed with.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate, creds *Credentials) (*domain.Principal, error) {
	var resp struct {
		Owner *domain.Principal `json:"owner"`
		Msg   string            `json:"msg"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/owner/profile", update, &resp, creds); err != nil {
		return nil, err
	}
	return resp.Owner, nil
}

// DeleteAccount removes the owner account. The caller clears the local
// session afterwards.
func (c *Client) DeleteAccount(ctx context.Context, creds *Credentials) error {
	return c.do(ctx, http.MethodDelete, "/api/owner/deleteAccount", nil, nil, creds)
}
