package appointment

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/acil/er-api/internal/platform/apperr"
)

// -- Mock Repository --

type mockRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*Appointment
	sequences    map[time.Time]int
	nationalIDs  map[uuid.UUID]string
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		appointments: make(map[uuid.UUID]*Appointment),
		sequences:    make(map[time.Time]int),
		nationalIDs:  make(map[uuid.UUID]string),
	}
}

func (m *mockRepo) CreateWithQueueNumber(_ context.Context, ap *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[ap.AppointmentDate]++
	ap.ID = uuid.New()
	ap.QueueNumber = m.sequences[ap.AppointmentDate]
	ap.CreatedAt = time.Now()
	cp := *ap
	m.appointments[ap.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ap, ok := m.appointments[id]
	if !ok {
		return nil, apperr.NotFoundf("appointment %s", id)
	}
	cp := *ap
	return &cp, nil
}

func (m *mockRepo) FindTodayActiveByNationalID(_ context.Context, nid string, date time.Time) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ap := range m.appointments {
		if m.nationalIDs[ap.PatientID] == nid && ap.AppointmentDate.Equal(date) &&
			ap.Status != StatusDischarged && ap.Status != StatusCancelled {
			cp := *ap
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("no active appointment for national id %s", nid)
}

func (m *mockRepo) ListByDate(_ context.Context, date time.Time) ([]*Appointment, error) {
	return m.list(date, "")
}

func (m *mockRepo) ListByDateAndStatus(_ context.Context, date time.Time, status Status) ([]*Appointment, error) {
	return m.list(date, status)
}

func (m *mockRepo) list(date time.Time, status Status) ([]*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*Appointment
	for _, ap := range m.appointments {
		if ap.AppointmentDate.Equal(date) && (status == "" || ap.Status == status) {
			cp := *ap
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].QueueNumber < items[j].QueueNumber })
	return items, nil
}

func (m *mockRepo) CountWaitingAhead(_ context.Context, date time.Time, queueNumber int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ap := range m.appointments {
		if ap.AppointmentDate.Equal(date) && ap.Status == StatusWaiting && ap.QueueNumber < queueNumber {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) UpdateStatusFrom(_ context.Context, id uuid.UUID, from, to Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ap, ok := m.appointments[id]
	if !ok || ap.Status != from {
		return false, nil
	}
	ap.Status = to
	return true, nil
}

func (m *mockRepo) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.appointments[id]
	return ok, nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.appointments[id]; !ok {
		return apperr.NotFoundf("appointment %s", id)
	}
	delete(m.appointments, id)
	return nil
}

type mockPatients struct {
	mu  sync.Mutex
	ids map[uuid.UUID]bool
}

func (m *mockPatients) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids[id], nil
}

func newTestService() (*Service, *mockRepo, *mockPatients) {
	repo := newMockRepo()
	patients := &mockPatients{ids: make(map[uuid.UUID]bool)}
	return NewService(repo, patients), repo, patients
}

func addPatient(repo *mockRepo, patients *mockPatients, nid string) uuid.UUID {
	id := uuid.New()
	patients.ids[id] = true
	repo.nationalIDs[id] = nid
	return id
}

func TestCreate_AssignsSequentialNumbers(t *testing.T) {
	svc, repo, patients := newTestService()
	ctx := context.Background()
	pid := addPatient(repo, patients, "12345678901")

	for want := 1; want <= 3; want++ {
		ap, err := svc.Create(ctx, pid)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ap.QueueNumber != want {
			t.Errorf("expected queue number %d, got %d", want, ap.QueueNumber)
		}
		if ap.Status != StatusWaiting {
			t.Errorf("expected new appointment to be WAITING, got %s", ap.Status)
		}
	}
}

func TestCreate_UnknownPatient(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), uuid.New())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// Concurrent creates on the same date must each receive a distinct number
// covering 1..N with no gaps.
func TestCreate_ConcurrentNumbersAreDistinct(t *testing.T) {
	svc, repo, patients := newTestService()
	ctx := context.Background()
	pid := addPatient(repo, patients, "12345678901")

	const n = 50
	results := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ap, err := svc.Create(ctx, pid)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results <- ap.QueueNumber
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for num := range results {
		if seen[num] {
			t.Errorf("queue number %d assigned twice", num)
		}
		seen[num] = true
	}
	for i := 1; i <= n; i++ {
		if !seen[i] {
			t.Errorf("queue number %d never assigned", i)
		}
	}
}

func TestStatusByNationalID(t *testing.T) {
	svc, repo, patients := newTestService()
	ctx := context.Background()

	first := addPatient(repo, patients, "11111111111")
	second := addPatient(repo, patients, "22222222222")
	third := addPatient(repo, patients, "33333333333")

	svc.Create(ctx, first)
	svc.Create(ctx, second)
	svc.Create(ctx, third)

	qs, err := svc.StatusByNationalID(ctx, "33333333333")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qs.Appointment.QueueNumber != 3 {
		t.Errorf("expected queue number 3, got %d", qs.Appointment.QueueNumber)
	}
	if qs.AheadCount != 2 {
		t.Errorf("expected 2 ahead, got %d", qs.AheadCount)
	}
}

func TestStatusByNationalID_SkipsNonWaitingAhead(t *testing.T) {
	svc, repo, patients := newTestService()
	ctx := context.Background()

	first := addPatient(repo, patients, "11111111111")
	second := addPatient(repo, patients, "22222222222")

	ap1, _ := svc.Create(ctx, first)
	svc.Create(ctx, second)

	// Number 1 moves into triage; number 2 now has nobody waiting ahead.
	if _, err := svc.UpdateStatus(ctx, ap1.ID, "IN_TRIAGE"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	qs, err := svc.StatusByNationalID(ctx, "22222222222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qs.AheadCount != 0 {
		t.Errorf("expected 0 ahead, got %d", qs.AheadCount)
	}
}

func TestStatusByNationalID_NoActiveCase(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.StatusByNationalID(context.Background(), "99999999999")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNextWaiting(t *testing.T) {
	svc, repo, patients := newTestService()
	ctx := context.Background()

	first := addPatient(repo, patients, "11111111111")
	second := addPatient(repo, patients, "22222222222")

	ap1, _ := svc.Create(ctx, first)
	ap2, _ := svc.Create(ctx, second)

	next, err := svc.NextWaiting(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.ID != ap1.ID {
		t.Errorf("expected appointment %s next, got %s", ap1.ID, next.ID)
	}

	svc.UpdateStatus(ctx, ap1.ID, "IN_TRIAGE")
	next, err = svc.NextWaiting(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.ID != ap2.ID {
		t.Errorf("expected appointment %s next, got %s", ap2.ID, next.ID)
	}
}

func TestList_StatusFilter(t *testing.T) {
	svc, repo, patients := newTestService()
	ctx := context.Background()

	first := addPatient(repo, patients, "11111111111")
	second := addPatient(repo, patients, "22222222222")

	ap1, _ := svc.Create(ctx, first)
	svc.Create(ctx, second)
	svc.UpdateStatus(ctx, ap1.ID, "IN_TRIAGE")

	all, err := svc.List(ctx, Today(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 appointments, got %d", len(all))
	}

	waiting, err := svc.List(ctx, Today(), "WAITING")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(waiting) != 1 || waiting[0].Status != StatusWaiting {
		t.Errorf("unexpected waiting list: %+v", waiting)
	}

	_, err = svc.List(ctx, Today(), "BOGUS")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError for unknown status filter, got %v", err)
	}
}

func TestNextWaiting_Empty(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.NextWaiting(context.Background())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateStatus_LegalPath(t *testing.T) {
	svc, repo, patients := newTestService()
	ctx := context.Background()
	pid := addPatient(repo, patients, "12345678901")
	ap, _ := svc.Create(ctx, pid)

	for _, next := range []string{"IN_TRIAGE", "IN_CONSULTATION", "DISCHARGED"} {
		updated, err := svc.UpdateStatus(ctx, ap.ID, next)
		if err != nil {
			t.Fatalf("transition to %s: unexpected error %v", next, err)
		}
		if updated.Status != Status(next) {
			t.Errorf("expected status %s, got %s", next, updated.Status)
		}
	}
}

func TestUpdateStatus_IllegalTransition(t *testing.T) {
	svc, repo, patients := newTestService()
	ctx := context.Background()
	pid := addPatient(repo, patients, "12345678901")
	ap, _ := svc.Create(ctx, pid)

	_, err := svc.UpdateStatus(ctx, ap.ID, "DISCHARGED")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for WAITING -> DISCHARGED, got %v", err)
	}

	got, _ := svc.Get(ctx, ap.ID)
	if got.Status != StatusWaiting {
		t.Errorf("status must be unchanged after rejected transition, got %s", got.Status)
	}
}

func TestUpdateStatus_TerminalIsFrozen(t *testing.T) {
	svc, repo, patients := newTestService()
	ctx := context.Background()
	pid := addPatient(repo, patients, "12345678901")
	ap, _ := svc.Create(ctx, pid)

	svc.UpdateStatus(ctx, ap.ID, "CANCELLED")
	_, err := svc.UpdateStatus(ctx, ap.ID, "IN_TRIAGE")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError leaving CANCELLED, got %v", err)
	}
}

// staleReadRepo serves one read that no longer reflects the stored status,
// the way a concurrent transition between read and write would.
type staleReadRepo struct {
	*mockRepo
	stale *Appointment
}

func (r *staleReadRepo) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	if r.stale != nil && r.stale.ID == id {
		cp := *r.stale
		r.stale = nil
		return &cp, nil
	}
	return r.mockRepo.GetByID(ctx, id)
}

func TestUpdateStatus_StaleReadDoesNotChainIllegalEdge(t *testing.T) {
	repo := newMockRepo()
	patients := &mockPatients{ids: make(map[uuid.UUID]bool)}
	pid := addPatient(repo, patients, "12345678901")
	ctx := context.Background()

	ap, err := NewService(repo, patients).Create(ctx, pid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The case gets cancelled, but this service's next read still sees
	// WAITING; the validated WAITING -> IN_TRIAGE edge must not be written.
	stale := *ap
	repo.appointments[ap.ID].Status = StatusCancelled
	svc := NewService(&staleReadRepo{mockRepo: repo, stale: &stale}, patients)

	_, err = svc.UpdateStatus(ctx, ap.ID, "IN_TRIAGE")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if got := repo.appointments[ap.ID].Status; got != StatusCancelled {
		t.Errorf("status must stay CANCELLED, got %s", got)
	}
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	svc, repo, patients := newTestService()
	ctx := context.Background()
	pid := addPatient(repo, patients, "12345678901")
	ap, _ := svc.Create(ctx, pid)

	_, err := svc.UpdateStatus(ctx, ap.ID, "TELEPORTED")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.UpdateStatus(context.Background(), uuid.New(), "IN_TRIAGE")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.Delete(context.Background(), uuid.New())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
