package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory store: one mutex guards every collection, mirroring the
// per-document atomicity of the real store.
// ---------------------------------------------------------------------------

type memStore struct {
	mu         sync.Mutex
	seq        int
	identities map[string]*domain.Identity // by id
	classes    map[string]*domain.ClassOffering
	selections map[string]*domain.SelectionRequest
	payments   map[string]*domain.PaymentRecord

	findIdentityCalls int
	applyErr          error // if set, ApplyEnrollment returns this error
	deleteSelErr      error // if set, selection Delete returns this error
}

func newMemStore() *memStore {
	return &memStore{
		identities: make(map[string]*domain.Identity),
		classes:    make(map[string]*domain.ClassOffering),
		selections: make(map[string]*domain.SelectionRequest),
		payments:   make(map[string]*domain.PaymentRecord),
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s%d", prefix, m.seq)
}

type memIdentities struct{ *memStore }
type memClasses struct{ *memStore }
type memSelections struct{ *memStore }
type memPayments struct{ *memStore }

func (m *memStore) identityRepo() memIdentities  { return memIdentities{m} }
func (m *memStore) classRepo() memClasses        { return memClasses{m} }
func (m *memStore) selectionRepo() memSelections { return memSelections{m} }
func (m *memStore) paymentRepo() memPayments     { return memPayments{m} }

// --- identities ---

func (r memIdentities) Create(_ context.Context, in *domain.Identity) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.identities {
		if u.Email == in.Email {
			return nil, domain.ErrIdentityExists
		}
	}
	clone := *in
	clone.ID = r.nextID("u")
	r.identities[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r memIdentities) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findIdentityCalls++
	for _, u := range r.identities {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r memIdentities) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.identities[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	clone := *u
	return &clone, nil
}

func (r memIdentities) List(_ context.Context) ([]*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Identity, 0, len(r.identities))
	for _, u := range r.identities {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r memIdentities) SetRole(_ context.Context, id string, role domain.Role) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.identities[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	u.Role = role
	clone := *u
	return &clone, nil
}

// --- classes ---

func (r memClasses) Create(_ context.Context, in *domain.ClassOffering) (*domain.ClassOffering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *in
	if clone.ID == "" {
		clone.ID = r.nextID("c")
	}
	r.classes[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r memClasses) FindByID(_ context.Context, id string) (*domain.ClassOffering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[id]
	if !ok {
		return nil, domain.ErrClassNotFound
	}
	clone := *c
	return &clone, nil
}

func (r memClasses) List(_ context.Context, f ports.ClassFilter) ([]*domain.ClassOffering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ClassOffering
	for _, c := range r.classes {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.InstructorEmail != "" && c.InstructorEmail != f.InstructorEmail {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memClasses) UpdatePending(_ context.Context, id, instructorEmail string, p ports.ClassPatch) (*domain.ClassOffering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[id]
	if !ok || c.InstructorEmail != instructorEmail || c.Status != domain.ClassPending {
		return nil, domain.ErrInvalidTransition
	}
	c.Name, c.ImageURL, c.Price, c.Seats = p.Name, p.ImageURL, p.Price, p.Seats
	clone := *c
	return &clone, nil
}

func (r memClasses) Review(_ context.Context, id string, status domain.ClassStatus, feedback string) (*domain.ClassOffering, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[id]
	if !ok {
		return nil, domain.ErrClassNotFound
	}
	if !c.Status.CanTransitionTo(status) {
		return nil, domain.ErrInvalidTransition
	}
	c.Status = status
	if status == domain.ClassDenied {
		c.Feedback = feedback
	}
	clone := *c
	return &clone, nil
}

func (r memClasses) ApplyEnrollment(_ context.Context, id, paymentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applyErr != nil {
		return 0, r.applyErr
	}
	c, ok := r.classes[id]
	if !ok {
		return 0, domain.ErrClassNotFound
	}
	if c.HasEnrollment(paymentID) {
		return c.Enrolled, nil
	}
	if !c.HasCapacity() {
		return 0, domain.ErrClassFull
	}
	c.Enrolled++
	c.EnrollmentIDs = append(c.EnrollmentIDs, paymentID)
	return c.Enrolled, nil
}

func (r memClasses) RevertEnrollment(_ context.Context, id, paymentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[id]
	if !ok {
		return 0, domain.ErrClassNotFound
	}
	if i := slices.Index(c.EnrollmentIDs, paymentID); i >= 0 {
		c.EnrollmentIDs = slices.Delete(c.EnrollmentIDs, i, i+1)
		c.Enrolled--
	}
	return c.Enrolled, nil
}

// --- selections ---

func (r memSelections) Create(_ context.Context, in *domain.SelectionRequest) (*domain.SelectionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.selections {
		if s.StudentEmail == in.StudentEmail && s.ClassID == in.ClassID {
			return nil, domain.ErrSelectionExists
		}
	}
	clone := *in
	if clone.ID == "" {
		clone.ID = r.nextID("s")
	}
	r.selections[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r memSelections) Exists(_ context.Context, email, classID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.selections {
		if s.StudentEmail == email && s.ClassID == classID {
			return true, nil
		}
	}
	return false, nil
}

func (r memSelections) FindByID(_ context.Context, id string) (*domain.SelectionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.selections[id]
	if !ok {
		return nil, domain.ErrSelectionNotFound
	}
	clone := *s
	return &clone, nil
}

func (r memSelections) ListByStudent(_ context.Context, email string) ([]*domain.SelectionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.SelectionRequest
	for _, s := range r.selections {
		if s.StudentEmail == email {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r memSelections) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteSelErr != nil {
		return r.deleteSelErr
	}
	if _, ok := r.selections[id]; !ok {
		return domain.ErrSelectionNotFound
	}
	delete(r.selections, id)
	return nil
}

// --- payments ---

func (r memPayments) Create(_ context.Context, in *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.SelectionID == in.SelectionID {
			return nil, domain.ErrCommitInProgress
		}
	}
	clone := *in
	clone.ID = r.nextID("p")
	r.payments[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r memPayments) FindBySelectionID(_ context.Context, selectionID string) (*domain.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.SelectionID == selectionID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (r memPayments) ListByStudent(_ context.Context, email string) ([]*domain.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PaymentRecord
	for _, p := range r.payments {
		if p.StudentEmail == email {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r memPayments) ExistsForClass(_ context.Context, email, classID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.StudentEmail == email && p.ClassID == classID {
			return true, nil
		}
	}
	return false, nil
}

func (r memPayments) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[id]; !ok {
		return domain.ErrPaymentNotFound
	}
	delete(r.payments, id)
	return nil
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

// noTx runs the unit of work directly, like a store without transactions.
type noTx struct{}

func (noTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (noTx) Atomic() bool { return false }

// crashTx runs the unit of work but neither rolls back nor lets the saga
// compensate, like a process that dies partway through a commit.
type crashTx struct{}

func (crashTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (crashTx) Atomic() bool { return true }

type stubGateway struct {
	mu           sync.Mutex
	authorizeErr error
	captureErr   error
	authorized   int
	captured     []string
	cancelled    []string
}

func (g *stubGateway) Authorize(_ context.Context, amount float64) (*domain.PaymentAuthorization, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.authorizeErr != nil {
		return nil, g.authorizeErr
	}
	g.authorized++
	ref := fmt.Sprintf("pi_%d", g.authorized)
	return &domain.PaymentAuthorization{Ref: ref, ClientSecret: ref + "_secret", Amount: amount, Currency: "usd"}, nil
}

func (g *stubGateway) Capture(_ context.Context, ref string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.captureErr != nil {
		return g.captureErr
	}
	g.captured = append(g.captured, ref)
	return nil
}

func (g *stubGateway) Cancel(_ context.Context, ref string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelled = append(g.cancelled, ref)
	return nil
}

type stubLock struct {
	mu       sync.Mutex
	held     map[string]bool
	err      error
	released []string
}

func newStubLock() *stubLock { return &stubLock{held: make(map[string]bool)} }

func (l *stubLock) Acquire(_ context.Context, id string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", false, l.err
	}
	if l.held[id] {
		return "", false, nil
	}
	l.held[id] = true
	return "tok-" + id, true, nil
}

func (l *stubLock) Release(_ context.Context, id, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
	l.released = append(l.released, id)
	return nil
}

type stubSink struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
}

func (s *stubSink) Enqueue(e domain.ActivityEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *stubSink) kinds() []domain.ActivityKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ActivityKind, len(s.events))
	for i, e := range s.events {
		out[i] = e.Kind
	}
	return out
}

var discardLogger = zerolog.Nop()

var errStore = errors.New("store unavailable")
