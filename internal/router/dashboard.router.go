package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/csrf"

	"github.com/Webzensify/uber-web/internal/domain"
	"github.com/Webzensify/uber-web/internal/handler"
	"github.com/Webzensify/uber-web/internal/middleware"
	"github.com/Webzensify/uber-web/internal/view"
)

// Options carries the router's security knobs.
type Options struct {
	CSRFKey      []byte
	CookieSecure bool
}

// SetupRoutes wires the full dashboard route tree. The session loader runs
// first on every request so the role guards and handlers all see the same
// restored session.
func SetupRoutes(
	r chi.Router,
	auth *handler.AuthHandler,
	owner *handler.OwnerHandler,
	admin *handler.AdminHandler,
	loader *middleware.SessionLoader,
	renderer *view.Renderer,
	opts Options,
) chi.Router {
	// ---- Global Middleware ----
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(csrf.Protect(opts.CSRFKey,
		csrf.Secure(opts.CookieSecure),
		csrf.Path("/"),
	))
	r.Use(loader.Load)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// ---- Public entry views ----
	r.Get("/", auth.OwnerAuth)
	r.Get("/login/admin", auth.AdminAuth)

	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/send-otp", auth.SendOTP)
		ar.Post("/login", auth.Login)
		ar.Post("/register", auth.Register)
		ar.Post("/cancel", auth.CancelAuth)
		ar.Post("/logout", auth.Logout)
	})

	// ---- Owner dashboard ----
	r.Route("/owner", func(or chi.Router) {
		or.Use(middleware.RequireDashboard("/owner"))

		or.Get("/", owner.Home)

		or.Route("/drivers", func(dr chi.Router) {
			dr.Get("/", owner.Drivers)
			dr.Get("/new", owner.NewDriver)
			dr.Post("/send-otp", owner.DriverSendOTP)
			dr.Post("/", owner.EnrollDriver)
		})

		or.Route("/fleet", func(fr chi.Router) {
			fr.Get("/", owner.Fleet)
			fr.Post("/", owner.AddVehicle)
			fr.Get("/{id}/edit", owner.EditVehicle)
			fr.Post("/{id}/edit", owner.UpdateVehicle)
			fr.Get("/{id}/delete", owner.ConfirmDeleteVehicle)
			fr.Post("/{id}/delete", owner.DeleteVehicle)
		})

		or.Get("/rides", owner.Rides)

		or.Get("/profile", owner.Profile)
		or.Post("/profile", owner.SaveProfile)

		or.Get("/account/delete", owner.ConfirmDeleteAccount)
		or.Post("/account/delete", owner.DeleteAccount)
	})

	// ---- Admin dashboard (admin and operational_admin share it) ----
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(middleware.RequireDashboard("/admin"))

		ar.Get("/", admin.Home)

		ar.Route("/drivers", func(dr chi.Router) {
			dr.Get("/", admin.Drivers)
			dr.Get("/{id}", admin.DriverDetail)
			dr.Get("/{id}/block", admin.ConfirmBlockDriver)
			dr.Post("/{id}/block", admin.BlockDriver)
			dr.Get("/{id}/delete", admin.ConfirmDeleteDriver)
			dr.Post("/{id}/delete", admin.DeleteDriver)
		})

		ar.Route("/rides", func(rr chi.Router) {
			rr.Get("/", admin.Rides)
			rr.With(middleware.RequireCapability(domain.CapManageAllRides)).
				Get("/{id}/cancel", admin.CancelRideForm)
			rr.With(middleware.RequireCapability(domain.CapManageAllRides)).
				Post("/{id}/cancel", admin.CancelRide)
		})

		ar.Get("/users", admin.Users)

		// Operational admins share the dashboard but cannot appoint peers.
		ar.With(middleware.RequireCapability(domain.CapAppointOpAdmins)).
			Get("/operational-admins", admin.OpAdminForm)
		ar.With(middleware.RequireCapability(domain.CapAppointOpAdmins)).
			Post("/operational-admins", admin.AppointOpAdmin)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		p := view.Page{Title: "Not Found", Session: middleware.Current(req.Context())}
		renderer.Render(w, http.StatusNotFound, "notfound", p)
	})

	return r
}
