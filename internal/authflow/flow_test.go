package authflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Webzensify/uber-web/internal/apiclient"
	"github.com/Webzensify/uber-web/internal/domain"
	"github.com/Webzensify/uber-web/internal/session"
	"github.com/Webzensify/uber-web/internal/validate"
	"github.com/Webzensify/uber-web/pkg/xerrors"
)

const sid = "sid1"

func newTestManager(t *testing.T, handler http.Handler) (*Manager, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := session.NewStore(session.NewMemKV(), 0)
	api := apiclient.New(srv.URL, zap.NewNop())
	return NewManager(api, store, zap.NewNop()), store
}

func okOTPBackend(hits *atomic.Int64) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/send-otp", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"entity": map[string]string{"_id": "u1", "name": "Asha", "mobileNumber": "9876543210"},
			"role":   "owner",
			"token":  "tok1",
		})
	})
	mux.HandleFunc("/api/owner/register", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":  map[string]string{"_id": "u1", "name": "Asha", "mobileNumber": "9876543210"},
			"role":  "owner",
			"token": "tok1",
		})
	})
	mux.HandleFunc("/api/auth/addDriver", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func TestRegistrationHappyPath(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, okOTPBackend(nil))

	if err := m.SendOTP(ctx, sid, KindOwnerRegister, "9876543210", nil); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	if _, state, phone, ok := m.Snapshot(sid); !ok || state != StateOtpSent || phone != "9876543210" {
		t.Fatalf("expected OtpSent with retained phone, got state=%v phone=%q ok=%v", state, phone, ok)
	}

	sess, err := m.CompleteOwnerRegistration(ctx, sid, OwnerRegistration{
		OTP:           "123456",
		Name:          "Asha Patel",
		Address:       "MG Road",
		AadhaarNumber: "123412341234",
		Email:         "asha@example.com",
	})
	if err != nil {
		t.Fatalf("CompleteOwnerRegistration: %v", err)
	}
	if sess.Principal.ID != "u1" || sess.Role != domain.RoleOwner || sess.Token != "tok1" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	stored := store.Current(ctx, sid)
	if !stored.Active() || stored.Principal.ID != "u1" || stored.Role != domain.RoleOwner {
		t.Fatalf("session not committed: %+v", stored)
	}
	if _, _, _, ok := m.Snapshot(sid); ok {
		t.Fatal("attempt should be discarded after success")
	}
}

func TestSendOTPFailureStaysInAwaitingPhone(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{"msg": "Failed to send OTP"})
	}))

	err := m.SendOTP(ctx, sid, KindOwnerLogin, "9876543210", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := apiclient.Message(err, "generic"); got != "Failed to send OTP" {
		t.Fatalf("Message = %q", got)
	}
	if _, state, _, ok := m.Snapshot(sid); !ok || state != StateAwaitingPhone {
		t.Fatalf("expected AwaitingPhone, got %v ok=%v", state, ok)
	}
	if store.Current(ctx, sid).Active() {
		t.Fatal("no session mutation may occur on OTP failure")
	}
}

func TestLocalValidationBlocksNetworkCall(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int64
	m, _ := newTestManager(t, okOTPBackend(&hits))

	if err := m.SendOTP(ctx, sid, KindOwnerLogin, "98765", nil); err == nil {
		t.Fatal("expected invalid phone error")
	}
	if _, err := m.CompleteLogin(ctx, sid, "12"); err == nil {
		t.Fatal("expected invalid otp error")
	}
	if _, err := m.CompleteOwnerRegistration(ctx, sid, OwnerRegistration{OTP: "123456"}); err == nil {
		t.Fatal("expected field errors")
	}
	if hits.Load() != 0 {
		t.Fatalf("locally-invalid payloads must never reach the backend, saw %d calls", hits.Load())
	}
}

func TestResendOTPIsPermitted(t *testing.T) {
	ctx := context.Background()
	var hits atomic.Int64
	m, _ := newTestManager(t, okOTPBackend(&hits))

	if err := m.SendOTP(ctx, sid, KindOwnerLogin, "9876543210", nil); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := m.SendOTP(ctx, sid, KindOwnerLogin, "9876543210", nil); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected 2 OTP sends, got %d", hits.Load())
	}
	if _, state, _, _ := m.Snapshot(sid); state != StateOtpSent {
		t.Fatalf("expected OtpSent after resend, got %v", state)
	}
}

func TestVerifyWithoutOTPSent(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, okOTPBackend(nil))

	if _, err := m.CompleteLogin(ctx, sid, "123456"); !errors.Is(err, xerrors.ErrNoActiveAttempt) {
		t.Fatalf("expected ErrNoActiveAttempt, got %v", err)
	}
}

func TestStaleAttemptResultIsDiscarded(t *testing.T) {
	m, _ := newTestManager(t, okOTPBackend(nil))

	gen1 := m.begin(sid, KindOwnerLogin, "9876543210")
	_ = m.begin(sid, KindOwnerLogin, "9123456789")

	if err := m.advance(sid, gen1, StateOtpSent); !errors.Is(err, xerrors.ErrStaleAttempt) {
		t.Fatalf("expected ErrStaleAttempt, got %v", err)
	}
}

func TestCancelDiscardsAttempt(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, okOTPBackend(nil))

	if err := m.SendOTP(ctx, sid, KindOwnerLogin, "9876543210", nil); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	m.Cancel(sid)

	if _, err := m.CompleteLogin(ctx, sid, "123456"); !errors.Is(err, xerrors.ErrNoActiveAttempt) {
		t.Fatalf("expected ErrNoActiveAttempt after cancel, got %v", err)
	}
	if store.Current(ctx, sid).Active() {
		t.Fatal("cancelled attempt must not commit a session")
	}
}

func TestAdminLoginNarrowedToOperationalAdmin(t *testing.T) {
	ctx := context.Background()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/send-otp", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"entity": map[string]string{"_id": "a7", "name": "Ops", "mobileNumber": "9000000000"},
			"role":   "operational_admin",
			"token":  "tok9",
		})
	})
	m, store := newTestManager(t, mux)

	if err := m.SendOTP(ctx, sid, KindAdminLogin, "9000000000", nil); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	sess, err := m.CompleteLogin(ctx, sid, "123456")
	if err != nil {
		t.Fatalf("CompleteLogin: %v", err)
	}
	if sess.Role != domain.RoleOperationalAdmin {
		t.Fatalf("expected operational_admin role, got %q", sess.Role)
	}
	if got := store.Current(ctx, sid); got.Role != domain.RoleOperationalAdmin {
		t.Fatalf("stored role = %q", got.Role)
	}
}

func TestDriverEnrollmentDoesNotCommitSession(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, okOTPBackend(nil))
	creds := &apiclient.Credentials{Token: "ownertok", Role: domain.RoleOwner}

	if err := m.SendOTP(ctx, sid, KindDriverEnroll, "9123456789", creds); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	err := m.EnrollDriver(ctx, sid, DriverEnrollment{
		OTP:           "123456",
		Name:          "Ravi Kumar",
		Address:       "MG Road",
		AadhaarNumber: "123412341234",
		LicenseNumber: "KA0120230001234",
	}, creds)
	if err != nil {
		t.Fatalf("EnrollDriver: %v", err)
	}
	if store.Current(ctx, sid).Active() {
		t.Fatal("driver enrollment must not mint a dashboard session")
	}
}

func TestEnrollDriverFieldErrors(t *testing.T) {
	fe := ValidateDriverEnrollment(DriverEnrollment{
		OTP:           "12",
		Name:          "R2D2",
		AadhaarNumber: "123",
		Email:         "not-an-email",
	})
	for _, field := range []string{"otp", "name", "address", "aadhaarNumber", "licenseNumber", "email"} {
		if _, ok := fe[field]; !ok {
			t.Errorf("expected field error for %q", field)
		}
	}
	var asErr validate.FieldErrors
	if !errors.As(error(fe), &asErr) {
		t.Fatal("FieldErrors must travel as an error")
	}
}

func TestLogoutClearsLocalSessionAndNotifiesBackend(t *testing.T) {
	ctx := context.Background()
	loggedOut := make(chan struct{}, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/send-otp", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"entity": map[string]string{"_id": "u1", "name": "Asha", "mobileNumber": "9876543210"},
			"role":   "owner",
			"token":  "tok1",
		})
	})
	mux.HandleFunc("/api/owner/logout", func(w http.ResponseWriter, r *http.Request) {
		loggedOut <- struct{}{}
	})
	m, store := newTestManager(t, mux)

	if err := m.SendOTP(ctx, sid, KindOwnerLogin, "9876543210", nil); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	sess, err := m.CompleteLogin(ctx, sid, "123456")
	if err != nil {
		t.Fatalf("CompleteLogin: %v", err)
	}

	creds := &apiclient.Credentials{Token: sess.Token, Role: sess.Role}
	if err := m.Logout(ctx, sid, creds); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if store.Current(ctx, sid).Active() {
		t.Fatal("local session must be cleared immediately")
	}
	select {
	case <-loggedOut:
	case <-time.After(2 * time.Second):
		t.Fatal("backend logout was never fired")
	}
}

// flakyKV simulates a session store outage.
type flakyKV struct {
	*session.MemKV
	fail atomic.Bool
}

func (f *flakyKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.fail.Load() {
		return errors.New("storage offline")
	}
	return f.MemKV.Set(ctx, key, value, ttl)
}

func TestStorageFailureReturnsAttemptToOtpSent(t *testing.T) {
	srv := httptest.NewServer(okOTPBackend(nil))
	t.Cleanup(srv.Close)
	kv := &flakyKV{MemKV: session.NewMemKV()}
	store := session.NewStore(kv, 0)
	m := NewManager(apiclient.New(srv.URL, zap.NewNop()), store, zap.NewNop())

	if err := m.SendOTP(context.Background(), sid, KindOwnerLogin, "9876543210", nil); err != nil {
		t.Fatal(err)
	}

	kv.fail.Store(true)
	if _, err := m.CompleteLogin(context.Background(), sid, "123456"); err == nil {
		t.Fatal("expected an error while the session store is down")
	}
	if _, state, phone, ok := m.Snapshot(sid); !ok || state != StateOtpSent || phone != "9876543210" {
		t.Fatalf("attempt not back in OtpSent: ok=%v state=%q phone=%q", ok, state, phone)
	}

	// The same OTP can be retried once storage recovers.
	kv.fail.Store(false)
	sess, err := m.CompleteLogin(context.Background(), sid, "123456")
	if err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
	if sess.Token != "tok1" || sess.Role != domain.RoleOwner {
		t.Fatalf("unexpected session: %+v", sess)
	}
}
