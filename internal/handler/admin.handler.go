package handler

import (
	"errors"
	"net/http"

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

// AdminHandler serves the admin dashboard: platform-wide drivers, rides,
// users and operational-admin appointment.
type AdminHandler struct {
	deps
}

func NewAdminHandler(api *apiclient.Client, flows *authflow.Manager, store *session.Store, renderer *view.Renderer, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{deps{api: api, flows: flows, store: store, renderer: renderer, logger: logger}}
}

// Home lands admins on the driver list.
func (h *AdminHandler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/drivers", http.StatusSeeOther)
}

// Drivers lists every driver on the platform.
func (h *AdminHandler) Drivers(w http.ResponseWriter, r *http.Request) {
	h.renderDrivers(w, r, h.page(r, "Manage Drivers"))
}

// DriverDetail shows one driver's full record.
func (h *AdminHandler) DriverDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := h.page(r, "Driver Details")

	driver, err := h.api.DriverByID(r.Context(), id, middleware.Creds(r.Context()))
	if errors.Is(err, xerrors.ErrNotFound) {
		h.renderer.Render(w, http.StatusNotFound, "notfound", p)
		return
	}
	if err != nil {
		p.Error = apiclient.Message(err, "Failed to fetch driver")
		h.renderDrivers(w, r, p)
		return
	}
	p.Data = driver
	h.renderer.Render(w, http.StatusOK, "admin_driver_detail", p)
}

// ConfirmBlockDriver interposes a confirmation page before the block call.
func (h *AdminHandler) ConfirmBlockDriver(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := h.page(r, "Block Driver")
	p.Data = confirmPage{
		Prompt: "This will block the driver from taking rides.",
		Action: "/admin/drivers/" + id + "/block",
		Back:   "/admin/drivers",
	}
	h.renderer.Render(w, http.StatusOK, "confirm", p)
}

// BlockDriver suspends the driver after confirmation.
func (h *AdminHandler) BlockDriver(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := h.page(r, "Manage Drivers")
	if err := h.api.BlockDriver(r.Context(), id, middleware.Creds(r.Context())); err != nil {
		p.Error = apiclient.Message(err, "Failed to block driver")
	} else {
		p.Flash = "Driver blocked successfully"
	}
	h.renderDrivers(w, r, p)
}

// ConfirmDeleteDriver interposes a confirmation page before the delete call.
func (h *AdminHandler) ConfirmDeleteDriver(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := h.page(r, "Delete Driver")
	p.Data = confirmPage{
		Prompt: "This will permanently remove the driver from the platform.",
		Action: "/admin/drivers/" + id + "/delete",
		Back:   "/admin/drivers",
	}
	h.renderer.Render(w, http.StatusOK, "confirm", p)
}

// DeleteDriver removes the driver after confirmation.
func (h *AdminHandler) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := h.page(r, "Manage Drivers")
	if err := h.api.DeleteDriver(r.Context(), id, middleware.Creds(r.Context())); err != nil {
		p.Error = apiclient.Message(err, "Failed to delete driver")
	} else {
		p.Flash = "Driver deleted successfully"
	}
	h.renderDrivers(w, r, p)
}

func (h *AdminHandler) renderDrivers(w http.ResponseWriter, r *http.Request, p view.Page) {
	drivers, err := h.api.AllDrivers(r.Context(), middleware.Creds(r.Context()))
	if err != nil && p.Error == "" {
		p.Error = apiclient.Message(err, "Failed to fetch drivers")
	}
	p.Data = drivers
	h.renderer.Render(w, http.StatusOK, "admin_drivers", p)
}

// Rides lists every ride on the platform, with cancellation available to
// roles holding the manage-all-rides capability.
func (h *AdminHandler) Rides(w http.ResponseWriter, r *http.Request) {
	h.renderRides(w, r, h.page(r, "All Rides"))
}

// rideCancelPage feeds the cancellation form.
type rideCancelPage struct {
	RideID string
}

// CancelRideForm renders the mandatory-reason cancellation form.
func (h *AdminHandler) CancelRideForm(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "Cancel Ride")
	p.Data = rideCancelPage{RideID: chi.URLParam(r, "id")}
	h.renderer.Render(w, http.StatusOK, "admin_ride_cancel", p)
}

// CancelRide cancels the ride. The reason is required locally before the
// backend is called.
func (h *AdminHandler) CancelRide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	reason := r.PostFormValue("reason")

	if err := validate.Required(reason, xerrors.ErrReasonRequired); err != nil {
		p := h.page(r, "Cancel Ride")
		p.Fields = map[string]string{"reason": err.Error()}
		p.Data = rideCancelPage{RideID: id}
		h.renderer.Render(w, http.StatusOK, "admin_ride_cancel", p)
		return
	}

	p := h.page(r, "All Rides")
	if err := h.api.CancelRide(r.Context(), id, reason, middleware.Creds(r.Context())); err != nil {
		p.Error = apiclient.Message(err, "Failed to cancel ride")
	} else {
		p.Flash = "Ride cancelled successfully"
	}
	h.renderRides(w, r, p)
}

func (h *AdminHandler) renderRides(w http.ResponseWriter, r *http.Request, p view.Page) {
	rides, err := h.api.AdminRides(r.Context(), middleware.Creds(r.Context()))
	if err != nil && p.Error == "" {
		p.Error = apiclient.Message(err, "Failed to fetch rides")
	}
	p.Data = ridesPage{
		Rides:     rides,
		CanCancel: p.Session.Role.Can(domain.CapManageAllRides),
	}
	h.renderer.Render(w, http.StatusOK, "rides", p)
}

// Users lists riding customers. Read-only.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	p := h.page(r, "Users")
	users, err := h.api.AllUsers(r.Context(), middleware.Creds(r.Context()))
	if err != nil {
		p.Error = apiclient.Message(err, "Failed to fetch users")
	}
	p.Data = users
	h.renderer.Render(w, http.StatusOK, "admin_users", p)
}

// OpAdminForm renders the operational-admin appointment form. Only full
// admins reach it; the router enforces the capability.
func (h *AdminHandler) OpAdminForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "admin_opadmin", h.page(r, "Appoint Operational Admin"))
}

// AppointOpAdmin validates and creates an operational admin account.
func (h *AdminHandler) AppointOpAdmin(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("name")
	email := r.PostFormValue("email")
	mobile := r.PostFormValue("mobileNumber")

	p := h.page(r, "Appoint Operational Admin")
	p.Form = stickyForm(r, "name", "email", "mobileNumber")

	fe := validate.FieldErrors{}
	fe.Check("name", validate.PersonName(name))
	fe.Check("email", validate.Email(email))
	fe.Check("mobileNumber", validate.PhoneNumber(mobile))
	if !fe.Ok() {
		p.Fields = map[string]string(fe)
		h.renderer.Render(w, http.StatusOK, "admin_opadmin", p)
		return
	}

	if err := h.api.AppointOperationalAdmin(r.Context(), name, email, mobile, middleware.Creds(r.Context())); err != nil {
		p.Error = apiclient.Message(err, "Failed to appoint operational admin")
		h.renderer.Render(w, http.StatusOK, "admin_opadmin", p)
		return
	}

	p.Flash = "Operational Admin created successfully"
	p.Form = nil
	h.renderer.Render(w, http.StatusOK, "admin_opadmin", p)
}
