package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Webzensify/uber-web/internal/apiclient"
	"github.com/Webzensify/uber-web/internal/authflow"
	"github.com/Webzensify/uber-web/internal/domain"
	"github.com/Webzensify/uber-web/internal/middleware"
	"github.com/Webzensify/uber-web/internal/session"
	"github.com/Webzensify/uber-web/internal/validate"
	"github.com/Webzensify/uber-web/internal/view"
	"github.com/Webzensify/uber-web/pkg/xerrors"
)

// OwnerHandler serves the owner dashboard: driver enrollment, fleet
// management, ride history and profile.
type OwnerHandler struct {
	deps
}

func NewOwnerHandler(api *apiclient.Client, flows *authflow.Manager, store *session.Store, renderer *view.Renderer, logger *zap.Logger) *OwnerHandler {
	return &OwnerHandler{deps{api: api, flows: flows, store: store, renderer: renderer, logger: logger}}
}

// Home lands owners on the driver enrollment form, the dashboard's default
// panel.
func (h *OwnerHandler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/owner/drivers/new", http.StatusSeeOther)
}

// Drivers lists the drivers enrolled under the owner.
func (h *OwnerHandler) Drivers(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "Your Drivers")
	drivers, err := h.api.OwnerDrivers(r.Context(), middleware.Creds(r.Context()))
	if err != nil {
		p.Error = apiclient.Message(err, "Failed to fetch drivers")
	}
	p.Data = drivers
	h.renderer.Render(w, http.StatusOK, "owner_drivers", p)
}

// NewDriver renders the two-step driver enrollment form.
func (h *OwnerHandler) NewDriver(w http.ResponseWriter, r *http.Request) {
	h.renderNewDriver(w, r, h.page(r, "Create Driver"))
}

// DriverSendOTP asks the backend to deliver an OTP to the prospective
// driver's phone.
func (h *OwnerHandler) DriverSendOTP(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SID(r.Context())
	phone := r.PostFormValue("mobileNumber")

	p := h.page(r, "Create Driver")
	err := h.flows.SendOTP(r.Context(), sid, authflow.KindDriverEnroll, phone, middleware.Creds(r.Context()))
	switch {
	case err == nil:
		p.Flash = "OTP sent successfully"
	case err == xerrors.ErrInvalidPhoneNumber:
		p.Fields = map[string]string{"mobileNumber": err.Error()}
	default:
		p.Error = apiclient.Message(err, "Failed to send OTP")
	}
	h.renderNewDriver(w, r, p)
}

// EnrollDriver completes the enrollment with the OTP and the driver's
// details. The new driver is a managed entity; the owner's session is
// untouched.
func (h *OwnerHandler) EnrollDriver(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SID(r.Context())
	form := authflow.DriverEnrollment{
		OTP:           r.PostFormValue("otp"),
		Name:          r.PostFormValue("name"),
		Address:       r.PostFormValue("address"),
		AadhaarNumber: r.PostFormValue("aadhaarNumber"),
		LicenseNumber: r.PostFormValue("licenseNumber"),
		Email:         r.PostFormValue("email"),
	}

	p := h.page(r, "Create Driver")
	if err := h.flows.EnrollDriver(r.Context(), sid, form, middleware.Creds(r.Context())); err != nil {
		p.Form = stickyForm(r, "name", "address", "aadhaarNumber", "licenseNumber", "email")
		if !applyFieldErrors(&p, err) {
			p.Error = apiclient.Message(err, "Failed to register driver")
		}
		h.renderNewDriver(w, r, p)
		return
	}

	p.Flash = "Driver registered successfully"
	h.renderNewDriver(w, r, p)
}

func (h *OwnerHandler) renderNewDriver(w http.ResponseWriter, r *http.Request, p view.Page) {
	data := authPage{}
	if kind, state, phone, ok := h.flows.Snapshot(middleware.SID(r.Context())); ok && kind == authflow.KindDriverEnroll {
		data.OtpSent = state == authflow.StateOtpSent
		data.Phone = phone
	}
	p.Data = data
	h.renderer.Render(w, http.StatusOK, "owner_driver_new", p)
}

// fleetFilter narrows the vehicle table on the owner's own data; the backend
// has no filtered listing.
type fleetFilter struct {
	Model string
	Brand string
	Type  string
}

func (f fleetFilter) match(v domain.Vehicle) bool {
	contains := func(have, want string) bool {
		return want == "" || strings.Contains(strings.ToLower(have), strings.ToLower(want))
	}
	return contains(v.Model, f.Model) && contains(v.Brand, f.Brand) && contains(v.Type, f.Type)
}

type fleetPage struct {
	Cars   []domain.Vehicle
	Filter fleetFilter
}

// Fleet lists the owner's vehicles with optional model/brand/type filters.
func (h *OwnerHandler) Fleet(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "Fleet")
	filter := fleetFilter{
		Model: r.URL.Query().Get("model"),
		Brand: r.URL.Query().Get("brand"),
		Type:  r.URL.Query().Get("type"),
	}
	h.renderFleet(w, r, p, filter)
}

// AddVehicle validates the vehicle form and registers the car, re-rendering
// the fleet table with the result.
func (h *OwnerHandler) AddVehicle(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "Fleet")
	v, fe := vehicleFromForm(r)
	if !fe.Ok() {
		p.Fields = map[string]string(fe)
		p.Form = stickyForm(r, "brand", "model", "type", "seats", "number", "year", "desc")
		h.renderFleet(w, r, p, fleetFilter{})
		return
	}

	if err := h.api.AddCar(r.Context(), v, middleware.Creds(r.Context())); err != nil {
		p.Error = apiclient.Message(err, "Failed to add vehicle")
		p.Form = stickyForm(r, "brand", "model", "type", "seats", "number", "year", "desc")
		h.renderFleet(w, r, p, fleetFilter{})
		return
	}

	p.Flash = "Vehicle added successfully"
	h.renderFleet(w, r, p, fleetFilter{})
}

// EditVehicle renders the update form pre-filled with the vehicle's current
// values.
func (h *OwnerHandler) EditVehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := h.page(r, "Update Vehicle")

	cars, err := h.api.GetCars(r.Context(), middleware.Creds(r.Context()))
	if err != nil {
		p.Error = apiclient.Message(err, "Failed to fetch vehicles")
		p.Data = fleetPage{}
		h.renderer.Render(w, http.StatusOK, "owner_fleet", p)
		return
	}
	for _, v := range cars {
		if v.ID == id {
			p.Data = v
			h.renderer.Render(w, http.StatusOK, "owner_fleet_edit", p)
			return
		}
	}
	h.renderer.Render(w, http.StatusNotFound, "notfound", p)
}

// UpdateVehicle saves the edited vehicle.
func (h *OwnerHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := h.page(r, "Update Vehicle")

	v, fe := vehicleFromForm(r)
	v.ID = id
	if !fe.Ok() {
		p.Fields = map[string]string(fe)
		p.Data = v
		h.renderer.Render(w, http.StatusOK, "owner_fleet_edit", p)
		return
	}

	if err := h.api.UpdateCar(r.Context(), id, v, middleware.Creds(r.Context())); err != nil {
		p.Error = apiclient.Message(err, "Failed to update vehicle")
		p.Data = v
		h.renderer.Render(w, http.StatusOK, "owner_fleet_edit", p)
		return
	}

	p.Flash = "Vehicle updated successfully"
	h.renderFleet(w, r, p, fleetFilter{})
}

// ConfirmDeleteVehicle interposes an explicit confirmation page before the
// destructive call.
func (h *OwnerHandler) ConfirmDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := h.page(r, "Delete Vehicle")
	p.Data = confirmPage{
		Prompt: "This will permanently remove the vehicle from your fleet.",
		Action: "/owner/fleet/" + id + "/delete",
		Back:   "/owner/fleet",
	}
	h.renderer.Render(w, http.StatusOK, "confirm", p)
}

// DeleteVehicle removes the vehicle after confirmation.
func (h *OwnerHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := h.page(r, "Fleet")
	if err := h.api.DeleteCar(r.Context(), id, middleware.Creds(r.Context())); err != nil {
		p.Error = apiclient.Message(err, "Failed to delete vehicle")
	} else {
		p.Flash = "Vehicle deleted successfully"
	}
	h.renderFleet(w, r, p, fleetFilter{})
}

func (h *OwnerHandler) renderFleet(w http.ResponseWriter, r *http.Request, p view.Page, filter fleetFilter) {
	cars, err := h.api.GetCars(r.Context(), middleware.Creds(r.Context()))
	if err != nil && p.Error == "" {
		p.Error = apiclient.Message(err, "Failed to fetch vehicles")
	}
	filtered := cars[:0]
	for _, v := range cars {
		if filter.match(v) {
			filtered = append(filtered, v)
		}
	}
	p.Data = fleetPage{Cars: filtered, Filter: filter}
	h.renderer.Render(w, http.StatusOK, "owner_fleet", p)
}

// Rides shows the ride history across the owner's fleet. Read-only.
func (h *OwnerHandler) Rides(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "Your Rides")
	rides, err := h.api.OwnerRides(r.Context(), middleware.Creds(r.Context()))
	if err != nil {
		p.Error = apiclient.Message(err, "Failed to fetch rides")
	}
	p.Data = ridesPage{Rides: rides}
	h.renderer.Render(w, http.StatusOK, "rides", p)
}

// Profile renders the owner's profile form pre-filled from the session.
func (h *OwnerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "Profile")
	if pr := p.Session.Principal; pr != nil {
		p.Form = map[string]string{
			"name":          pr.Name,
			"email":         pr.Email,
			"mobileNumber":  pr.MobileNumber,
			"address":       pr.Address,
			"aadhaarNumber": pr.AadhaarNumber,
		}
	}
	h.renderer.Render(w, http.StatusOK, "owner_profile", p)
}

// SaveProfile validates and saves the profile, then re-commits the session
// with the replacement principal the backend returns.
func (h *OwnerHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "Profile")
	update := apiclient.ProfileUpdate{
		Name:          r.PostFormValue("name"),
		Email:         r.PostFormValue("email"),
		MobileNumber:  r.PostFormValue("mobileNumber"),
		Address:       r.PostFormValue("address"),
		AadhaarNumber: r.PostFormValue("aadhaarNumber"),
	}
	p.Form = stickyForm(r, "name", "email", "mobileNumber", "address", "aadhaarNumber")

	fe := validate.FieldErrors{}
	fe.Check("name", validate.PersonName(update.Name))
	fe.Check("email", validate.Email(update.Email))
	fe.Check("mobileNumber", validate.PhoneNumber(update.MobileNumber))
	fe.Check("address", validate.Required(update.Address, xerrors.ErrAddressRequired))
	fe.Check("aadhaarNumber", validate.Aadhaar(update.AadhaarNumber))
	if !fe.Ok() {
		p.Fields = map[string]string(fe)
		h.renderer.Render(w, http.StatusOK, "owner_profile", p)
		return
	}

	ctx := r.Context()
	owner, err := h.api.UpdateProfile(ctx, update, middleware.Creds(ctx))
	if err != nil {
		p.Error = apiclient.Message(err, "Failed to update profile")
		h.renderer.Render(w, http.StatusOK, "owner_profile", p)
		return
	}

	sess := middleware.Current(ctx)
	if owner != nil {
		if err := h.store.Commit(ctx, middleware.SID(ctx), owner, sess.Role, sess.Token); err != nil {
			h.logger.Error("session re-commit failed", zap.Error(err))
		}
		p.Session.Principal = owner
		p.Form = map[string]string{
			"name":          owner.Name,
			"email":         owner.Email,
			"mobileNumber":  owner.MobileNumber,
			"address":       owner.Address,
			"aadhaarNumber": owner.AadhaarNumber,
		}
	}
	p.Flash = "Profile updated successfully"
	h.renderer.Render(w, http.StatusOK, "owner_profile", p)
}

// ConfirmDeleteAccount interposes a confirmation page before account removal.
func (h *OwnerHandler) ConfirmDeleteAccount(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "Delete Account")
	p.Data = confirmPage{
		Prompt: "This will permanently delete your account, fleet and drivers.",
		Action: "/owner/account/delete",
		Back:   "/owner/profile",
	}
	h.renderer.Render(w, http.StatusOK, "confirm", p)
}

// DeleteAccount removes the owner account on the backend and drops the local
// session.
func (h *OwnerHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.api.DeleteAccount(ctx, middleware.Creds(ctx)); err != nil {
		p := h.page(r, "Profile")
		p.Error = apiclient.Message(err, "Failed to delete account")
		h.renderer.Render(w, http.StatusOK, "owner_profile", p)
		return
	}
	if err := h.store.Clear(ctx, middleware.SID(ctx)); err != nil {
		h.logger.Error("session clear failed", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// confirmPage feeds the generic confirmation template.
type confirmPage struct {
	Prompt string
	Action string
	Back   string
}

// ridesPage feeds the shared rides table.
type ridesPage struct {
	Rides     []domain.Ride
	CanCancel bool
}

func vehicleFromForm(r *http.Request) (domain.Vehicle, validate.FieldErrors) {
	fe := validate.FieldErrors{}
	v := domain.Vehicle{
		Brand:  strings.TrimSpace(r.PostFormValue("brand")),
		Model:  strings.TrimSpace(r.PostFormValue("model")),
		Type:   strings.TrimSpace(r.PostFormValue("type")),
		Number: strings.TrimSpace(r.PostFormValue("number")),
		Desc:   strings.TrimSpace(r.PostFormValue("desc")),
	}
	fe.Check("brand", validate.Required(v.Brand, xerrors.ErrBrandRequired))
	fe.Check("model", validate.Required(v.Model, xerrors.ErrModelRequired))
	fe.Check("type", validate.Required(v.Type, xerrors.ErrTypeRequired))
	fe.Check("number", validate.Plate(v.Number))
	fe.Check("desc", validate.Required(v.Desc, xerrors.ErrDescRequired))

	if seats, err := strconv.Atoi(r.PostFormValue("seats")); err != nil || seats < 1 {
		fe.Check("seats", xerrors.ErrInvalidSeats)
	} else {
		v.Seats = seats
	}
	if year, err := strconv.Atoi(r.PostFormValue("year")); err != nil || year < 1900 {
		fe.Check("year", xerrors.ErrInvalidYear)
	} else {
		v.Year = year
	}
	return v, fe
}
