package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"traincore/pkg/domain"
)

// recordingStorage is a test double counting saves and simulating load
// and save failures.
type recordingStorage struct {
	mu       sync.Mutex
	snapshot domain.Snapshot
	found    bool
	saves    int
	loadErr  error
	saveErr  error
}

func (r *recordingStorage) Load(context.Context) (domain.Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return domain.Snapshot{}, false, r.loadErr
	}
	return r.snapshot.Clone(), r.found, nil
}

func (r *recordingStorage) Save(_ context.Context, snapshot domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.snapshot = snapshot.Clone()
	r.found = true
	r.saves++
	return nil
}

func (r *recordingStorage) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func newTestStore(t *testing.T, storage domain.SnapshotStorage, opts ...StoreOption) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), storage, opts...)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestNewStoreRequiresStorage(t *testing.T) {
	if _, err := NewStore(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil storage")
	}
}

func TestNewStoreSeedsWhenEmpty(t *testing.T) {
	store := newTestStore(t, &recordingStorage{})
	snap := store.Get()
	if len(snap.Employees) != 2 || len(snap.Courses) != 3 {
		t.Fatalf("expected seed dataset, got %d employees %d courses", len(snap.Employees), len(snap.Courses))
	}
}

func TestNewStoreFailsSoftOnLoadError(t *testing.T) {
	storage := &recordingStorage{loadErr: errors.New("disk gone")}
	store := newTestStore(t, storage)
	if len(store.Get().Employees) != 2 {
		t.Fatalf("load failure should fall back to seed dataset")
	}
}

func TestNewStoreUsesPersistedSnapshot(t *testing.T) {
	persisted := domain.Snapshot{Employees: []domain.Employee{{ID: "X1", IsActive: true}}}
	store := newTestStore(t, &recordingStorage{snapshot: persisted, found: true})
	snap := store.Get()
	if len(snap.Employees) != 1 || snap.Employees[0].ID != "X1" {
		t.Fatalf("persisted snapshot not loaded: %#v", snap.Employees)
	}
}

func TestGetReturnsClone(t *testing.T) {
	store := newTestStore(t, &recordingStorage{})
	first := store.Get()
	first.Employees[0].ID = "MUTATED"
	if store.Get().Employees[0].ID == "MUTATED" {
		t.Fatalf("Get must return an isolated copy")
	}
}

func TestSubscribeNotifiesUntilUnsubscribed(t *testing.T) {
	storage := &recordingStorage{}
	store := newTestStore(t, storage)
	svc := NewService(store)
	ctx := context.Background()

	var calls int
	unsubscribe := store.Subscribe(func() { calls++ })

	if _, err := svc.UpsertEmployee(ctx, EmployeeInput{ID: "EMP100"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}

	unsubscribe()
	if _, err := svc.UpsertEmployee(ctx, EmployeeInput{ID: "EMP101"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if calls != 1 {
		t.Fatalf("unsubscribed observer still notified, calls=%d", calls)
	}
}

func TestMutationSurvivesSaveFailure(t *testing.T) {
	storage := &recordingStorage{saveErr: errors.New("save broken")}
	store := newTestStore(t, storage)
	svc := NewService(store)

	var notified int
	store.Subscribe(func() { notified++ })

	_, err := svc.UpsertEmployee(context.Background(), EmployeeInput{ID: "EMP200"})
	if err == nil {
		t.Fatalf("expected save error to surface")
	}
	if _, ok := store.Get().FindEmployee("EMP200"); !ok {
		t.Fatalf("in-memory commit should survive a failed save")
	}
	if notified != 1 {
		t.Fatalf("observers should still be notified, got %d", notified)
	}
}

func TestExportFilenameEmbedsUTCTimestamp(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 13, 45, 30, 0, time.UTC)
	store := newTestStore(t, &recordingStorage{}, WithNow(func() time.Time { return fixed }))
	want := "traincore_backup_20240501T134530Z.json"
	if got := store.ExportFilename(); got != want {
		t.Fatalf("filename = %q, want %q", got, want)
	}
}

func TestImportSnapshotRoundTrip(t *testing.T) {
	storage := &recordingStorage{}
	store := newTestStore(t, storage)
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.RecordManualHistory(ctx, ManualHistoryInput{EmployeeID: "EMP001", CourseCode: "SEC101", Date: "2024-05-02", Hours: 2}); err != nil {
		t.Fatalf("seed mutation: %v", err)
	}
	before := store.Get()

	blob, err := store.ExportSnapshot()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := store.ImportSnapshot(ctx, blob); err != nil {
		t.Fatalf("import: %v", err)
	}

	after := store.Get()
	if len(after.Employees) != len(before.Employees) ||
		len(after.Courses) != len(before.Courses) ||
		len(after.Sessions) != len(before.Sessions) ||
		len(after.Registrations) != len(before.Registrations) ||
		len(after.Attendance) != len(before.Attendance) {
		t.Fatalf("round trip changed collection sizes: before %+v after %+v", before, after)
	}
	for i, emp := range before.Employees {
		if after.Employees[i] != emp {
			t.Fatalf("employee %d changed: %#v vs %#v", i, emp, after.Employees[i])
		}
	}
	for i, reg := range before.Registrations {
		if after.Registrations[i] != reg {
			t.Fatalf("registration %d changed: %#v vs %#v", i, reg, after.Registrations[i])
		}
	}
}

func TestImportSnapshotRejectsMalformedBlobs(t *testing.T) {
	storage := &recordingStorage{}
	store := newTestStore(t, storage)
	ctx := context.Background()
	before := store.Get()

	cases := []struct {
		name string
		blob string
	}{
		{"not json", "{nope"},
		{"not an object", "[1,2,3]"},
		{"missing courses", `{"employees":[],"registrations":[]}`},
		{"missing registrations", `{"employees":[],"courses":[]}`},
		{"missing employees", `{"courses":[],"registrations":[]}`},
	}
	for _, tc := range cases {
		err := store.ImportSnapshot(ctx, []byte(tc.blob))
		var malformed *domain.MalformedSnapshotError
		if !errors.As(err, &malformed) {
			t.Fatalf("%s: expected MalformedSnapshotError, got %v", tc.name, err)
		}
	}
	if storage.saveCount() != 0 {
		t.Fatalf("rejected imports must not save, saves=%d", storage.saveCount())
	}
	after := store.Get()
	if len(after.Employees) != len(before.Employees) {
		t.Fatalf("rejected import mutated state")
	}
}

func TestImportSnapshotAcceptsMinimalShape(t *testing.T) {
	storage := &recordingStorage{}
	store := newTestStore(t, storage)
	blob := `{"employees":[{"id":"E1"}],"courses":[],"registrations":[],"sessions":[],"attendance":[]}`
	if err := store.ImportSnapshot(context.Background(), []byte(blob)); err != nil {
		t.Fatalf("import: %v", err)
	}
	snap := store.Get()
	if len(snap.Employees) != 1 || snap.Employees[0].ID != "E1" {
		t.Fatalf("import did not replace state: %#v", snap.Employees)
	}
	if !snap.Employees[0].IsActive {
		t.Fatalf("imported employee without is_active should backfill to active")
	}
	if storage.saveCount() != 1 {
		t.Fatalf("successful import should save once, saves=%d", storage.saveCount())
	}
}
