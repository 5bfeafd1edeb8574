// Package authflow drives the two-step OTP authentication sequence: a phone
// number is submitted, the backend sends an OTP out-of-band, and the OTP is
// exchanged for a principal and token. One attempt exists per browser session
// at a time; attempts live only in memory and are discarded on success,
// cancel, or supersession.
package authflow

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Webzensify/uber-web/internal/apiclient"
	"github.com/Webzensify/uber-web/internal/domain"
	"github.com/Webzensify/uber-web/internal/session"
	"github.com/Webzensify/uber-web/internal/validate"
	"github.com/Webzensify/uber-web/pkg/xerrors"
)

type State string

const (
	StateAwaitingPhone State = "awaiting_phone"
	StateOtpSent       State = "otp_sent"
	StateAuthenticated State = "authenticated"
)

// Kind selects the endpoint and payload of the final step. Driver enrollment
// rides the same two-step sequence but is performed by an authenticated owner
// and never commits a session.
type Kind string

const (
	KindOwnerLogin    Kind = "owner_login"
	KindOwnerRegister Kind = "owner_register"
	KindAdminLogin    Kind = "admin_login"
	KindDriverEnroll  Kind = "driver_enroll"
)

func (k Kind) loginRole() domain.Role {
	if k == KindAdminLogin {
		return domain.RoleAdmin
	}
	return domain.RoleOwner
}

// attempt is the transient PendingAuthRequest. gen identifies the attempt so
// a network result that lands after the attempt was superseded or cancelled
// is discarded instead of committing a session.
type attempt struct {
	kind  Kind
	state State
	phone string
	gen   uint64
}

// Manager owns the in-flight attempts, keyed by browser session ID.
type Manager struct {
	api    *apiclient.Client
	store  *session.Store
	logger *zap.Logger

	mu       sync.Mutex
	attempts map[string]*attempt
	nextGen  uint64
}

func NewManager(api *apiclient.Client, store *session.Store, logger *zap.Logger) *Manager {
	return &Manager{
		api:      api,
		store:    store,
		logger:   logger,
		attempts: make(map[string]*attempt),
	}
}

// Snapshot reports the current attempt for form rendering. ok is false when
// no attempt is in flight.
func (m *Manager) Snapshot(sid string) (kind Kind, state State, phone string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.attempts[sid]
	if a == nil {
		return "", "", "", false
	}
	return a.kind, a.state, a.phone, true
}

// Cancel discards the attempt, returning the flow to AwaitingPhone. Any
// in-flight network result for the old attempt will be ignored.
func (m *Manager) Cancel(sid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, sid)
}

// begin installs a fresh attempt (superseding any prior one) and returns its
// generation. Resubmitting the same phone for the same kind keeps the attempt
// but still bumps the generation so older in-flight results are dropped.
func (m *Manager) begin(sid string, kind Kind, phone string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextGen++
	m.attempts[sid] = &attempt{
		kind:  kind,
		state: StateAwaitingPhone,
		phone: phone,
		gen:   m.nextGen,
	}
	return m.nextGen
}

// advance moves the attempt to state iff it is still the active attempt.
func (m *Manager) advance(sid string, gen uint64, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.attempts[sid]
	if a == nil || a.gen != gen {
		return xerrors.ErrStaleAttempt
	}
	a.state = state
	if state == StateAuthenticated {
		// Terminal; the attempt has served its purpose.
		delete(m.attempts, sid)
	}
	return nil
}

// current returns the active attempt if it is in OtpSent for the given kind.
func (m *Manager) current(sid string, kind Kind) (*attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.attempts[sid]
	if a == nil || a.kind != kind {
		return nil, xerrors.ErrNoActiveAttempt
	}
	if a.state != StateOtpSent {
		return nil, xerrors.ErrOTPNotSent
	}
	// Copy so callers never touch shared state without the lock.
	c := *a
	return &c, nil
}

// SendOTP validates the phone number locally and asks the backend to deliver
// an OTP. On success the attempt moves to OtpSent and retains the phone
// number; on failure it stays in AwaitingPhone. Resending while already in
// OtpSent is permitted and simply re-sends.
func (m *Manager) SendOTP(ctx context.Context, sid string, kind Kind, phone string, creds *apiclient.Credentials) error {
	if err := validate.PhoneNumber(phone); err != nil {
		return err
	}

	gen := m.begin(sid, kind, phone)

	var err error
	if kind == KindDriverEnroll {
		err = m.api.SendDriverOTP(ctx, phone, creds)
	} else {
		err = m.api.SendLoginOTP(ctx, phone, kind.loginRole())
	}
	if err != nil {
		return err
	}
	return m.advance(sid, gen, StateOtpSent)
}

// CompleteLogin verifies the OTP for an owner or admin login attempt and, on
// success, commits the returned principal, role and token to the session
// store. The phone number is the one retained at OTP time; the submitted form
// cannot change it mid-attempt.
func (m *Manager) CompleteLogin(ctx context.Context, sid, otp string) (domain.Session, error) {
	if err := validate.OTP(otp); err != nil {
		return domain.Session{}, err
	}

	m.mu.Lock()
	active := m.attempts[sid]
	m.mu.Unlock()
	if active == nil || (active.kind != KindOwnerLogin && active.kind != KindAdminLogin) {
		return domain.Session{}, xerrors.ErrNoActiveAttempt
	}

	a, err := m.current(sid, active.kind)
	if err != nil {
		return domain.Session{}, err
	}

	res, err := m.api.Login(ctx, a.phone, otp, a.kind.loginRole())
	if err != nil {
		return domain.Session{}, err
	}
	return m.commit(ctx, sid, a, res)
}

// OwnerRegistration is the registration form completing an owner signup.
type OwnerRegistration struct {
	OTP           string
	Name          string
	Address       string
	AadhaarNumber string
	Email         string
}

// ValidateOwnerRegistration applies the local field rules, returning one
// message per offending field.
func ValidateOwnerRegistration(f OwnerRegistration) validate.FieldErrors {
	fe := validate.FieldErrors{}
	fe.Check("otp", validate.OTP(f.OTP))
	fe.Check("name", validate.PersonName(f.Name))
	fe.Check("address", validate.Required(f.Address, xerrors.ErrAddressRequired))
	fe.Check("aadhaarNumber", validate.Aadhaar(f.AadhaarNumber))
	fe.Check("email", validate.Email(f.Email))
	return fe
}

// CompleteOwnerRegistration verifies the OTP together with the registration
// fields and commits the new owner's session.
func (m *Manager) CompleteOwnerRegistration(ctx context.Context, sid string, f OwnerRegistration) (domain.Session, error) {
	if fe := ValidateOwnerRegistration(f); !fe.Ok() {
		return domain.Session{}, fe
	}

	a, err := m.current(sid, KindOwnerRegister)
	if err != nil {
		return domain.Session{}, err
	}

	res, err := m.api.RegisterOwner(ctx, apiclient.RegisterOwnerRequest{
		Name:          f.Name,
		Address:       f.Address,
		PhoneNumber:   a.phone,
		OTP:           f.OTP,
		AadhaarNumber: f.AadhaarNumber,
		Email:         f.Email,
	})
	if err != nil {
		return domain.Session{}, err
	}
	return m.commit(ctx, sid, a, res)
}

// DriverEnrollment is the owner-submitted form registering a new driver.
type DriverEnrollment struct {
	OTP           string
	Name          string
	Address       string
	AadhaarNumber string
	LicenseNumber string
	Email         string
}

// ValidateDriverEnrollment applies the driver form rules. Email is optional
// but must be well-formed when present.
func ValidateDriverEnrollment(f DriverEnrollment) validate.FieldErrors {
	fe := validate.FieldErrors{}
	fe.Check("otp", validate.OTP(f.OTP))
	fe.Check("name", validate.PersonName(f.Name))
	fe.Check("address", validate.Required(f.Address, xerrors.ErrAddressRequired))
	fe.Check("aadhaarNumber", validate.Aadhaar(f.AadhaarNumber))
	fe.Check("licenseNumber", validate.Required(f.LicenseNumber, xerrors.ErrLicenseRequired))
	fe.Check("email", validate.OptionalEmail(f.Email))
	return fe
}

// EnrollDriver completes a driver enrollment on behalf of an authenticated
// owner. No session is committed; the driver becomes a managed entity.
func (m *Manager) EnrollDriver(ctx context.Context, sid string, f DriverEnrollment, creds *apiclient.Credentials) error {
	if fe := ValidateDriverEnrollment(f); !fe.Ok() {
		return fe
	}

	a, err := m.current(sid, KindDriverEnroll)
	if err != nil {
		return err
	}

	if err := m.api.AddDriver(ctx, apiclient.AddDriverRequest{
		MobileNumber:  a.phone,
		Name:          f.Name,
		Address:       f.Address,
		LicenseNumber: f.LicenseNumber,
		AadhaarNumber: f.AadhaarNumber,
		Email:         f.Email,
		OTP:           f.OTP,
	}, creds); err != nil {
		return err
	}
	return m.advance(sid, a.gen, StateAuthenticated)
}

// commit finishes a login or registration attempt: the result is checked
// against the active attempt before the session store is touched, so a reply
// for a superseded attempt is dropped silently.
func (m *Manager) commit(ctx context.Context, sid string, a *attempt, res *apiclient.AuthResult) (domain.Session, error) {
	if res.Principal == nil || res.Token == "" {
		m.logger.Warn("backend returned incomplete credential set",
			zap.String("kind", string(a.kind)))
		return domain.Session{}, xerrors.ErrUnauthorized
	}

	role := a.kind.loginRole()
	if a.kind == KindOwnerRegister {
		role = domain.RoleOwner
	}
	if parsed, ok := domain.ParseRole(res.Role); ok {
		// The backend may narrow an admin login to operational_admin.
		role = parsed
	}

	if err := m.advance(sid, a.gen, StateAuthenticated); err != nil {
		return domain.Session{}, err
	}
	if err := m.store.Commit(ctx, sid, res.Principal, role, res.Token); err != nil {
		// The attempt was claimed but nothing was persisted; put it back in
		// OtpSent so the user can retry the code instead of starting over.
		m.reinstate(sid, a)
		return domain.Session{}, err
	}
	return domain.Session{Principal: res.Principal, Role: role, Token: res.Token}, nil
}

// reinstate returns a claimed attempt to OtpSent after a storage failure,
// unless a newer attempt has begun in the meantime.
func (m *Manager) reinstate(sid string, a *attempt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur := m.attempts[sid]; cur != nil && cur.gen > a.gen {
		return
	}
	c := *a
	c.state = StateOtpSent
	m.attempts[sid] = &c
}

// Logout clears the local session first, then tells the backend to drop its
// side. The backend call is fire-and-forget: local logout never depends on it.
func (m *Manager) Logout(ctx context.Context, sid string, creds *apiclient.Credentials) error {
	m.Cancel(sid)
	if err := m.store.Clear(ctx, sid); err != nil {
		return err
	}
	if creds != nil {
		go func() {
			lctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.api.Logout(lctx, creds); err != nil {
				m.logger.Warn("backend logout failed", zap.Error(err))
			}
		}()
	}
	return nil
}
