package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/portogeoloc/entregas/internal/core/domain"
	"github.com/portogeoloc/entregas/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubDeliveryRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Delivery
	listErr   error
	findErr   error
	createErr error
	updateErr error
	finds     int
	updates   int
}

func newStubDeliveryRepo() *stubDeliveryRepo {
	return &stubDeliveryRepo{byID: make(map[string]*domain.Delivery)}
}

func cloneDelivery(d *domain.Delivery) *domain.Delivery {
	c := *d
	return &c
}

func (r *stubDeliveryRepo) put(d *domain.Delivery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[d.ID] = cloneDelivery(d)
}

func (r *stubDeliveryRepo) get(id string) *domain.Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return nil
	}
	return cloneDelivery(d)
}

// sorted returns every record newest first, like the Mongo queries.
func (r *stubDeliveryRepo) sorted() []*domain.Delivery {
	out := make([]*domain.Delivery, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, cloneDelivery(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubDeliveryRepo) List(_ context.Context) ([]*domain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.sorted(), nil
}

func (r *stubDeliveryRepo) FindOne(_ context.Context, f ports.DeliveryFilter) (*domain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, d := range r.sorted() {
		if f.ID != "" && d.ID != f.ID {
			continue
		}
		if f.AccessCode != "" && d.AccessCode != f.AccessCode {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		return d, nil
	}
	return nil, domain.ErrDeliveryNotFound
}

func (r *stubDeliveryRepo) FindByIdempotencyKey(_ context.Context, key string) (*domain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.byID {
		if d.IdempotencyKey == key {
			return cloneDelivery(d), nil
		}
	}
	return nil, domain.ErrDeliveryNotFound
}

func (r *stubDeliveryRepo) Create(_ context.Context, d *domain.Delivery) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.put(d)
	return nil
}

// UpdateLocation applies the same pending guard as the Mongo repository.
func (r *stubDeliveryRepo) UpdateLocation(_ context.Context, id string, u domain.LocationUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.updateErr != nil {
		return r.updateErr
	}
	d, ok := r.byID[id]
	if !ok {
		return domain.ErrDeliveryNotFound
	}
	if d.Status != domain.StatusPending {
		return domain.ErrAlreadyLocated
	}
	u.Apply(d)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.DeliveryEvent
}

func (p *recordingPublisher) Publish(e domain.DeliveryEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) kinds() []domain.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventKind, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Kind)
	}
	return out
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func anaInput() ports.CreateDeliveryInput {
	return ports.CreateDeliveryInput{CustomerName: "Ana", CustomerPhone: "11999999999"}
}

// ---------------------------------------------------------------------------
// CreateDelivery
// ---------------------------------------------------------------------------

func TestDashboardService_Create_Success(t *testing.T) {
	repo := newStubDeliveryRepo()
	events := &recordingPublisher{}
	svc := NewDashboardService(repo, events, discardLogger)

	res, err := svc.CreateDelivery(context.Background(), anaInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := res.Delivery
	if d.Status != domain.StatusPending {
		t.Errorf("expected status %q, got %q", domain.StatusPending, d.Status)
	}
	if err := domain.ValidateAccessCode(d.AccessCode); err != nil {
		t.Errorf("access code %q is not 4 digits", d.AccessCode)
	}
	if d.HasCoordinates() || d.ConfirmedByCustomer || d.PhotoURL != nil {
		t.Error("new delivery must carry no location data")
	}
	if d.CreatedAt.IsZero() {
		t.Error("CreatedAt must not be zero")
	}
	if repo.get(d.ID) == nil {
		t.Error("delivery was not stored")
	}
	if got := events.kinds(); len(got) != 1 || got[0] != domain.EventCreated {
		t.Errorf("expected one created event, got %v", got)
	}
}

func TestDashboardService_Create_MissingFields(t *testing.T) {
	repo := newStubDeliveryRepo()
	repo.createErr = errors.New("must not be called")
	svc := NewDashboardService(repo, nil, discardLogger)

	for _, in := range []ports.CreateDeliveryInput{
		{CustomerName: "Ana"},
		{CustomerPhone: "11999999999"},
		{CustomerName: "   ", CustomerPhone: "11999999999"},
	} {
		if _, err := svc.CreateDelivery(context.Background(), in); !errors.Is(err, domain.ErrMissingRequiredFields) {
			t.Errorf("input %+v: expected ErrMissingRequiredFields, got %v", in, err)
		}
	}
}

func TestDashboardService_Create_GatewayError(t *testing.T) {
	repo := newStubDeliveryRepo()
	repo.createErr = errors.New("connection refused")
	svc := NewDashboardService(repo, nil, discardLogger)

	_, err := svc.CreateDelivery(context.Background(), anaInput())
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
	if !errors.Is(err, repo.createErr) {
		t.Fatal("expected the underlying error to be wrapped")
	}
}

func TestDashboardService_Create_IdempotencyReplay(t *testing.T) {
	repo := newStubDeliveryRepo()
	svc := NewDashboardService(repo, nil, discardLogger)

	in := anaInput()
	in.IdempotencyKey = "form-123"
	first, err := svc.CreateDelivery(context.Background(), in)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := svc.CreateDelivery(context.Background(), in)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if second.Delivery.ID != first.Delivery.ID || !second.AlreadyExisted {
		t.Errorf("replay must return the same delivery with AlreadyExisted=true")
	}
	if len(repo.byID) != 1 {
		t.Errorf("expected 1 stored delivery, got %d", len(repo.byID))
	}
}

func TestGenerateAccessCode_Range(t *testing.T) {
	for i := 0; i < 500; i++ {
		code := generateAccessCode()
		if err := domain.ValidateAccessCode(code); err != nil || code < "1000" || code > "9999" {
			t.Fatalf("code %q out of range", code)
		}
	}
}

// ---------------------------------------------------------------------------
// Load / Render
// ---------------------------------------------------------------------------

func TestDashboardService_Load_NewestFirst(t *testing.T) {
	repo := newStubDeliveryRepo()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.put(&domain.Delivery{ID: "old", Status: domain.StatusPending, CreatedAt: base})
	repo.put(&domain.Delivery{ID: "new", Status: domain.StatusPending, CreatedAt: base.Add(time.Hour)})
	svc := NewDashboardService(repo, nil, discardLogger)

	got := svc.LoadDeliveries(context.Background())
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "old" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestDashboardService_Load_GatewayErrorYieldsEmpty(t *testing.T) {
	repo := newStubDeliveryRepo()
	repo.listErr = errors.New("timeout")
	svc := NewDashboardService(repo, nil, discardLogger)

	got := svc.LoadDeliveries(context.Background())
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}

func TestDashboardService_Render_Empty(t *testing.T) {
	svc := NewDashboardService(newStubDeliveryRepo(), nil, discardLogger)

	d := svc.Render(context.Background())
	if d.Table.Empty == nil || d.Cards.Empty == nil {
		t.Fatal("expected one empty-state placeholder in each view")
	}
	if len(d.Table.Rows) != 0 || len(d.Cards.Items) != 0 {
		t.Fatal("expected no rows or cards")
	}
	if d.Stats.Pending != "00" || d.Stats.Located != "00" {
		t.Errorf("expected 00/00, got %s/%s", d.Stats.Pending, d.Stats.Located)
	}
}

// ---------------------------------------------------------------------------
// Options / Details / Share
// ---------------------------------------------------------------------------

func TestDashboardService_OrderOptions(t *testing.T) {
	repo := newStubDeliveryRepo()
	lat, lon := -23.5, -46.6
	repo.put(&domain.Delivery{ID: "d-12345", CustomerName: "Ana", Status: domain.StatusLocated, Latitude: &lat, Longitude: &lon})
	svc := NewDashboardService(repo, nil, discardLogger)

	o, err := svc.OrderOptions(context.Background(), "d-12345", "https://app.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.MapEnabled || o.MapURL != "https://www.google.com/maps/search/?api=1&query=-23.5,-46.6" {
		t.Errorf("unexpected map link: %+v", o)
	}
	if o.ShareLink != "https://app.example.com/confirmar-localizacao?id=d-12345" {
		t.Errorf("unexpected share link %q", o.ShareLink)
	}
}

func TestDashboardService_Details_NotFound(t *testing.T) {
	svc := NewDashboardService(newStubDeliveryRepo(), nil, discardLogger)

	if _, err := svc.Details(context.Background(), "missing"); !errors.Is(err, domain.ErrDeliveryNotFound) {
		t.Fatalf("expected ErrDeliveryNotFound, got %v", err)
	}
}

func TestDashboardService_CopyLink(t *testing.T) {
	repo := newStubDeliveryRepo()
	repo.put(&domain.Delivery{ID: "d1", AccessCode: "4821", Status: domain.StatusPending})
	svc := NewDashboardService(repo, nil, discardLogger)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	got, err := svc.CopyLink(context.Background(), "d1", "https://app.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Link != "https://app.example.com/confirmar-localizacao?id=d1" {
		t.Errorf("unexpected link %q", got.Link)
	}
	if got.Toast.DurationMs != 2000 || !got.Toast.HideAt.Equal(fixed.Add(2*time.Second)) {
		t.Errorf("unexpected toast %+v", got.Toast)
	}
}
