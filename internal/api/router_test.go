package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/sportify/camp-server/internal/api/handler"
	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
	"github.com/sportify/camp-server/internal/core/service"
)

const testSecret = "router-secret"

// --- stubs ---

type stubAuthz struct{ roles map[string]domain.Role }

func (s stubAuthz) Authorize(_ context.Context, email string, roles ...domain.Role) error {
	for _, r := range roles {
		if s.roles[email] == r {
			return nil
		}
	}
	return domain.ErrForbidden
}

type stubAuth struct{ issuer *service.TokenIssuer }

func (s stubAuth) Register(_ context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	if in.Email == "taken@camp.io" {
		return nil, domain.ErrIdentityExists
	}
	return &domain.Identity{ID: "u1", Email: in.Email, Role: domain.RoleStudent}, nil
}

func (s stubAuth) IssueToken(_ context.Context, email string) (*ports.TokenResult, error) {
	tok, exp, err := s.issuer.Issue(email)
	if err != nil {
		return nil, err
	}
	return &ports.TokenResult{Token: tok, ExpiresAt: exp}, nil
}

type stubUsers struct{}

func (stubUsers) List(context.Context) ([]*domain.Identity, error) { return nil, nil }
func (stubUsers) Role(context.Context, string) (domain.Role, error) {
	return domain.RoleStudent, nil
}
func (stubUsers) Promote(_ context.Context, _, id string, role domain.Role) (*domain.Identity, error) {
	return &domain.Identity{ID: id, Role: role}, nil
}

type stubClasses struct{}

func (stubClasses) Create(_ context.Context, in ports.CreateClassInput) (*domain.ClassOffering, error) {
	return &domain.ClassOffering{ID: "c1", Name: in.Name, InstructorEmail: in.InstructorEmail, Status: domain.ClassPending}, nil
}
func (stubClasses) Get(context.Context, string) (*domain.ClassOffering, error) {
	return nil, domain.ErrClassNotFound
}
func (stubClasses) ListAll(context.Context) ([]*domain.ClassOffering, error) {
	return []*domain.ClassOffering{}, nil
}
func (stubClasses) ListApproved(context.Context) ([]*domain.ClassOffering, error) {
	return []*domain.ClassOffering{{ID: "c1", Status: domain.ClassAccepted}}, nil
}
func (stubClasses) ListByInstructor(context.Context, string) ([]*domain.ClassOffering, error) {
	return nil, nil
}
func (stubClasses) Update(context.Context, string, string, ports.ClassPatch) (*domain.ClassOffering, error) {
	return nil, domain.ErrInvalidTransition
}
func (stubClasses) Approve(_ context.Context, _, id string) (*domain.ClassOffering, error) {
	return &domain.ClassOffering{ID: id, Status: domain.ClassAccepted}, nil
}
func (stubClasses) Deny(_ context.Context, _, id, feedback string) (*domain.ClassOffering, error) {
	return &domain.ClassOffering{ID: id, Status: domain.ClassDenied, Feedback: feedback}, nil
}

type stubSelections struct{}

func (stubSelections) Select(_ context.Context, email, classID string) (*domain.SelectionRequest, error) {
	return &domain.SelectionRequest{ID: "s1", StudentEmail: email, ClassID: classID}, nil
}
func (stubSelections) ListByStudent(context.Context, string) ([]*domain.SelectionRequest, error) {
	return []*domain.SelectionRequest{}, nil
}
func (stubSelections) Cancel(context.Context, string, string) error { return nil }

type stubEnrollments struct{}

func (stubEnrollments) CreatePaymentIntent(_ context.Context, amount float64) (*domain.PaymentAuthorization, error) {
	return &domain.PaymentAuthorization{Ref: "pi_1", ClientSecret: "pi_1_secret", Amount: amount, Currency: "usd"}, nil
}
func (stubEnrollments) Commit(_ context.Context, in ports.CommitInput) (*ports.CommitResult, error) {
	if in.Price == 13 {
		return nil, domain.ErrPaymentDeclined
	}
	return &ports.CommitResult{Payment: &domain.PaymentRecord{ID: "p1", SelectionID: in.SelectionID}, Enrolled: 1}, nil
}
func (stubEnrollments) ListPayments(context.Context, string) ([]*domain.PaymentRecord, error) {
	return []*domain.PaymentRecord{}, nil
}

// recordingStore backs the real role gate and class service and counts every
// repository call that reaches it.
type recordingStore struct {
	identityCalls atomic.Int64
	classCalls    atomic.Int64
}

type recordingIdentities struct{ *recordingStore }
type recordingClasses struct{ *recordingStore }

func (r recordingIdentities) Create(_ context.Context, in *domain.Identity) (*domain.Identity, error) {
	r.identityCalls.Add(1)
	return in, nil
}
func (r recordingIdentities) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	r.identityCalls.Add(1)
	if email == "root@camp.io" {
		return &domain.Identity{ID: "u1", Email: email, Role: domain.RoleAdmin}, nil
	}
	return nil, domain.ErrIdentityNotFound
}
func (r recordingIdentities) FindByID(context.Context, string) (*domain.Identity, error) {
	r.identityCalls.Add(1)
	return nil, domain.ErrIdentityNotFound
}
func (r recordingIdentities) List(context.Context) ([]*domain.Identity, error) {
	r.identityCalls.Add(1)
	return nil, nil
}
func (r recordingIdentities) SetRole(context.Context, string, domain.Role) (*domain.Identity, error) {
	r.identityCalls.Add(1)
	return nil, domain.ErrIdentityNotFound
}

func (r recordingClasses) Create(_ context.Context, in *domain.ClassOffering) (*domain.ClassOffering, error) {
	r.classCalls.Add(1)
	return in, nil
}
func (r recordingClasses) FindByID(context.Context, string) (*domain.ClassOffering, error) {
	r.classCalls.Add(1)
	return nil, domain.ErrClassNotFound
}
func (r recordingClasses) List(context.Context, ports.ClassFilter) ([]*domain.ClassOffering, error) {
	r.classCalls.Add(1)
	return []*domain.ClassOffering{}, nil
}
func (r recordingClasses) UpdatePending(context.Context, string, string, ports.ClassPatch) (*domain.ClassOffering, error) {
	r.classCalls.Add(1)
	return nil, domain.ErrInvalidTransition
}
func (r recordingClasses) Review(context.Context, string, domain.ClassStatus, string) (*domain.ClassOffering, error) {
	r.classCalls.Add(1)
	return nil, domain.ErrInvalidTransition
}
func (r recordingClasses) ApplyEnrollment(context.Context, string, string) (int, error) {
	r.classCalls.Add(1)
	return 0, nil
}
func (r recordingClasses) RevertEnrollment(context.Context, string, string) (int, error) {
	r.classCalls.Add(1)
	return 0, nil
}

type discardSink struct{}

func (discardSink) Enqueue(domain.ActivityEvent) {}

// --- helpers ---

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	issuer := service.NewTokenIssuer(testSecret)
	return NewRouter(Dependencies{
		Auth:          stubAuth{issuer: issuer},
		Users:         stubUsers{},
		Classes:       stubClasses{},
		Selections:    stubSelections{},
		Enrollments:   stubEnrollments{},
		Authenticator: service.NewAuthGuard(testSecret),
		Authorizer: stubAuthz{roles: map[string]domain.Role{
			"root@camp.io": domain.RoleAdmin,
			"ins@camp.io":  domain.RoleInstructor,
			"kid@camp.io":  domain.RoleStudent,
		}},
		HealthChecks: map[string]handler.DependencyCheck{
			"mongodb": func(context.Context) error { return nil },
		},
		Log:        zerolog.Nop(),
		Registerer: prometheus.NewRegistry(),
	})
}

// newRecordingRouter wires the real role gate and user and class services
// over a recordingStore.
func newRecordingRouter(t *testing.T) (*echo.Echo, *recordingStore) {
	t.Helper()
	store := &recordingStore{}
	identities := recordingIdentities{store}
	e := NewRouter(Dependencies{
		Auth:          stubAuth{issuer: service.NewTokenIssuer(testSecret)},
		Users:         service.NewUserService(identities, discardSink{}, zerolog.Nop()),
		Classes:       service.NewClassService(recordingClasses{store}, discardSink{}, zerolog.Nop()),
		Selections:    stubSelections{},
		Enrollments:   stubEnrollments{},
		Authenticator: service.NewAuthGuard(testSecret),
		Authorizer:    service.NewRoleGate(identities),
		Log:           zerolog.Nop(),
		Registerer:    prometheus.NewRegistry(),
	})
	return e, store
}

func bearer(t *testing.T, email string) string {
	t.Helper()
	tok, _, err := service.NewTokenIssuer(testSecret).Issue(email)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return "Bearer " + tok
}

func do(e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestRouter_PublicRoutes(t *testing.T) {
	e := newTestRouter(t)

	for _, path := range []string{"/", "/health", "/health/ready", "/class/approved"} {
		if rec := do(e, http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestRouter_IssueToken(t *testing.T) {
	e := newTestRouter(t)

	rec := do(e, http.MethodPost, "/jwt", "", `{"email":"kid@camp.io"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	tok, _ := resp["token"].(string)
	if _, err := service.NewAuthGuard(testSecret).Authenticate("Bearer " + tok); err != nil {
		t.Fatalf("issued token rejected: %v", err)
	}

	if rec := do(e, http.MethodPost, "/jwt", "", `{"email":"nope"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid email: got %d, want 422", rec.Code)
	}
}

func TestRouter_RegisterConflict(t *testing.T) {
	e := newTestRouter(t)

	if rec := do(e, http.MethodPost, "/users", "", `{"email":"new@camp.io"}`); rec.Code != http.StatusCreated {
		t.Errorf("register: got %d, want 201", rec.Code)
	}
	if rec := do(e, http.MethodPost, "/users", "", `{"email":"taken@camp.io"}`); rec.Code != http.StatusConflict {
		t.Errorf("duplicate: got %d, want 409", rec.Code)
	}
}

func TestRouter_ProtectedRequiresCredential(t *testing.T) {
	e := newTestRouter(t)

	rec := do(e, http.MethodGet, "/class", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unauthorized access") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	if rec := do(e, http.MethodGet, "/class", "Bearer junk", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("junk token: got %d, want 401", rec.Code)
	}
}

func TestRouter_MissingCredentialTouchesNoStore(t *testing.T) {
	e, store := newRecordingRouter(t)

	requests := []struct{ method, path, auth, body string }{
		{http.MethodGet, "/class", "", ""},
		{http.MethodGet, "/users", "", ""},
		{http.MethodPatch, "/class/approve/c1", "", ""},
		{http.MethodPost, "/class", "", `{"name":"Judo","price":10}`},
		{http.MethodGet, "/class", "Bearer junk", ""},
	}
	for _, r := range requests {
		if rec := do(e, r.method, r.path, r.auth, r.body); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: got %d, want 401", r.method, r.path, rec.Code)
		}
	}
	if n := store.identityCalls.Load(); n != 0 {
		t.Errorf("identity repository called %d times without a credential", n)
	}
	if n := store.classCalls.Load(); n != 0 {
		t.Errorf("class repository called %d times without a credential", n)
	}

	// The same route with a valid admin credential does reach both stores.
	if rec := do(e, http.MethodGet, "/class", bearer(t, "root@camp.io"), ""); rec.Code != http.StatusOK {
		t.Fatalf("admin list: got %d, want 200", rec.Code)
	}
	if store.identityCalls.Load() == 0 || store.classCalls.Load() == 0 {
		t.Fatalf("expected store access with a credential, got identities=%d classes=%d",
			store.identityCalls.Load(), store.classCalls.Load())
	}
}

func TestRouter_RoleGates(t *testing.T) {
	e := newTestRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		email  string
		body   string
		want   int
	}{
		{"student lists classes", http.MethodGet, "/class", "kid@camp.io", "", http.StatusForbidden},
		{"admin lists classes", http.MethodGet, "/class", "root@camp.io", "", http.StatusOK},
		{"student proposes class", http.MethodPost, "/class", "kid@camp.io", `{"name":"Judo","price":10}`, http.StatusForbidden},
		{"instructor proposes class", http.MethodPost, "/class", "ins@camp.io", `{"name":"Judo","price":10}`, http.StatusCreated},
		{"instructor approves", http.MethodPatch, "/class/approve/c1", "ins@camp.io", "", http.StatusForbidden},
		{"admin approves", http.MethodPatch, "/class/approve/c1", "root@camp.io", "", http.StatusOK},
		{"admin denies without feedback", http.MethodPatch, "/class/deny/c1", "root@camp.io", `{}`, http.StatusUnprocessableEntity},
		{"admin denies", http.MethodPatch, "/class/deny/c1", "root@camp.io", `{"feedback":"too short"}`, http.StatusOK},
		{"student promotes", http.MethodPatch, "/users/admin/u1", "kid@camp.io", "", http.StatusForbidden},
		{"admin promotes", http.MethodPatch, "/users/instructor/u1", "root@camp.io", "", http.StatusOK},
		{"instructor edits reviewed class", http.MethodPut, "/class/c1", "ins@camp.io", `{"name":"Judo","price":10}`, http.StatusUnprocessableEntity},
		{"unknown class", http.MethodGet, "/class/zzz", "kid@camp.io", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, tc.method, tc.path, bearer(t, tc.email), tc.body)
			if rec.Code != tc.want {
				t.Errorf("got %d, want %d: %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestRouter_SelfOrAdmin(t *testing.T) {
	e := newTestRouter(t)

	if rec := do(e, http.MethodGet, "/payment/kid@camp.io", bearer(t, "kid@camp.io"), ""); rec.Code != http.StatusOK {
		t.Errorf("self: got %d, want 200", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/payment/kid@camp.io", bearer(t, "ins@camp.io"), ""); rec.Code != http.StatusForbidden {
		t.Errorf("other: got %d, want 403", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/payment/kid@camp.io", bearer(t, "root@camp.io"), ""); rec.Code != http.StatusOK {
		t.Errorf("admin: got %d, want 200", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/student/class/select/kid@camp.io", bearer(t, "root@camp.io"), ""); rec.Code != http.StatusForbidden {
		t.Errorf("selections are self only: got %d, want 403", rec.Code)
	}
}

func TestRouter_Commit(t *testing.T) {
	e := newTestRouter(t)
	auth := bearer(t, "kid@camp.io")

	rec := do(e, http.MethodPost, "/payment", auth, `{"selection_id":"s1","class_id":"c1","price":50}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("commit: got %d, want 201: %s", rec.Code, rec.Body.String())
	}

	rec = do(e, http.MethodPost, "/payment", auth, `{"selection_id":"s1","class_id":"c1","price":13}`)
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("declined: got %d, want 402", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["retryable"] != true {
		t.Errorf("decline body %v missing retryable", body)
	}
}
