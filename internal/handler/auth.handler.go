package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Webzensify/uber-web/internal/apiclient"
	"github.com/Webzensify/uber-web/internal/authflow"
	"github.com/Webzensify/uber-web/internal/middleware"
	"github.com/Webzensify/uber-web/internal/session"
	"github.com/Webzensify/uber-web/internal/view"
	"github.com/Webzensify/uber-web/pkg/xerrors"
)

// AuthHandler serves the owner and admin sign-in surfaces and the endpoints
// that drive the OTP flow.
type AuthHandler struct {
	deps
}

func NewAuthHandler(api *apiclient.Client, flows *authflow.Manager, store *session.Store, renderer *view.Renderer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{deps{api: api, flows: flows, store: store, renderer: renderer, logger: logger}}
}

// authPage is the Data payload shared by both sign-in templates.
type authPage struct {
	Mode    string
	OtpSent bool
	Phone   string
}

// OwnerAuth renders the owner login/register page. An already-authenticated
// visitor with a dashboard is sent straight to it; a role without one
// (driver) stays on the entry view.
func (h *AuthHandler) OwnerAuth(w http.ResponseWriter, r *http.Request) {
	if dest := dashboardFor(r); dest != "" {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode != "register" {
		mode = "login"
	}
	h.renderOwnerAuth(w, r, mode, h.page(r, "Sign in"))
}

// AdminAuth renders the admin login page.
func (h *AuthHandler) AdminAuth(w http.ResponseWriter, r *http.Request) {
	if dest := dashboardFor(r); dest != "" {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	h.renderAdminAuth(w, r, h.page(r, "Admin sign in"))
}

// dashboardFor returns the authenticated caller's dashboard path, or "" when
// the session is absent or its role has no dashboard.
func dashboardFor(r *http.Request) string {
	sess := middleware.Current(r.Context())
	if !sess.Active() {
		return ""
	}
	return sess.Role.DashboardPath()
}

// SendOTP handles the first step of any sign-in flow. The kind field selects
// owner login, owner registration or admin login; the flow manager validates
// the phone locally before the backend is asked to deliver an OTP.
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SID(r.Context())
	kind := authflow.Kind(r.PostFormValue("kind"))
	phone := r.PostFormValue("phoneNumber")

	switch kind {
	case authflow.KindOwnerLogin, authflow.KindOwnerRegister, authflow.KindAdminLogin:
	default:
		kind = authflow.KindOwnerLogin
	}

	p := h.page(r, "Sign in")
	if err := h.flows.SendOTP(r.Context(), sid, kind, phone, nil); err != nil {
		if errors.Is(err, xerrors.ErrInvalidPhoneNumber) {
			p.Fields = map[string]string{"phoneNumber": err.Error()}
			p.Form = map[string]string{"phoneNumber": phone}
		} else {
			p.Error = apiclient.Message(err, "Failed to send OTP")
		}
		h.renderForKind(w, r, kind, p)
		return
	}

	p.Flash = "OTP sent successfully"
	h.renderForKind(w, r, kind, p)
}

// Login handles OTP verification for owner and admin logins. The phone number
// is the one retained when the OTP was sent.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SID(r.Context())
	otp := r.PostFormValue("otp")

	sess, err := h.flows.CompleteLogin(r.Context(), sid, otp)
	if err != nil {
		if errors.Is(err, xerrors.ErrStaleAttempt) {
			// The attempt was superseded mid-flight; start over quietly.
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		kind, _, _, _ := h.flows.Snapshot(sid)
		p := h.page(r, "Sign in")
		if errors.Is(err, xerrors.ErrInvalidOTP) {
			p.Fields = map[string]string{"otp": err.Error()}
		} else {
			p.Error = apiclient.Message(err, "Login failed")
		}
		if kind == "" {
			kind = authflow.KindOwnerLogin
		}
		h.renderForKind(w, r, kind, p)
		return
	}

	http.Redirect(w, r, sess.Role.DashboardPath(), http.StatusSeeOther)
}

// Register handles the owner registration form, which carries the OTP along
// with the profile fields.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SID(r.Context())
	form := authflow.OwnerRegistration{
		OTP:           r.PostFormValue("otp"),
		Name:          r.PostFormValue("name"),
		Address:       r.PostFormValue("address"),
		AadhaarNumber: r.PostFormValue("aadhaarNumber"),
		Email:         r.PostFormValue("email"),
	}

	sess, err := h.flows.CompleteOwnerRegistration(r.Context(), sid, form)
	if err != nil {
		if errors.Is(err, xerrors.ErrStaleAttempt) {
			http.Redirect(w, r, "/?mode=register", http.StatusSeeOther)
			return
		}

		p := h.page(r, "Register")
		p.Form = stickyForm(r, "name", "address", "aadhaarNumber", "email")
		if !applyFieldErrors(&p, err) {
			p.Error = apiclient.Message(err, "Registration failed")
		}
		h.renderOwnerAuth(w, r, "register", p)
		return
	}

	http.Redirect(w, r, sess.Role.DashboardPath(), http.StatusSeeOther)
}

// CancelAuth abandons the in-flight attempt and returns to the phone step.
func (h *AuthHandler) CancelAuth(w http.ResponseWriter, r *http.Request) {
	h.flows.Cancel(middleware.SID(r.Context()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout drops the browser session. The backend is notified asynchronously;
// the local session is gone regardless of how that call fares.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SID(r.Context())
	creds := middleware.Creds(r.Context())
	if err := h.flows.Logout(r.Context(), sid, creds); err != nil {
		h.logger.Error("session clear failed", zap.Error(err), zap.String("sid", sid))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) renderForKind(w http.ResponseWriter, r *http.Request, kind authflow.Kind, p view.Page) {
	if kind == authflow.KindAdminLogin {
		h.renderAdminAuth(w, r, p)
		return
	}
	mode := "login"
	if kind == authflow.KindOwnerRegister {
		mode = "register"
	}
	h.renderOwnerAuth(w, r, mode, p)
}

func (h *AuthHandler) renderOwnerAuth(w http.ResponseWriter, r *http.Request, mode string, p view.Page) {
	data := authPage{Mode: mode}
	if kind, state, phone, ok := h.flows.Snapshot(middleware.SID(r.Context())); ok && kind != authflow.KindAdminLogin {
		data.OtpSent = state == authflow.StateOtpSent
		data.Phone = phone
	}
	p.Data = data
	h.renderer.Render(w, http.StatusOK, "auth_owner", p)
}

func (h *AuthHandler) renderAdminAuth(w http.ResponseWriter, r *http.Request, p view.Page) {
	data := authPage{Mode: "login"}
	if kind, state, phone, ok := h.flows.Snapshot(middleware.SID(r.Context())); ok && kind == authflow.KindAdminLogin {
		data.OtpSent = state == authflow.StateOtpSent
		data.Phone = phone
	}
	p.Data = data
	h.renderer.Render(w, http.StatusOK, "auth_admin", p)
}
