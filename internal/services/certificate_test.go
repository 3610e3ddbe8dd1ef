package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/shihabhq/democracy-server/internal/certificate"
	"github.com/shihabhq/democracy-server/internal/models"
	"github.com/shihabhq/democracy-server/internal/storage"
)

type fakeCertRepo struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]*models.QuizAttempt
	certs    map[uuid.UUID]*models.Certificate

	upsertCalls int
	upsertErr   error
}

func newFakeCertRepo() *fakeCertRepo {
	return &fakeCertRepo{
		attempts: make(map[uuid.UUID]*models.QuizAttempt),
		certs:    make(map[uuid.UUID]*models.Certificate),
	}
}

func (f *fakeCertRepo) AttemptByID(_ context.Context, id uuid.UUID) (*models.QuizAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[id], nil
}

func (f *fakeCertRepo) CertificateByAttempt(_ context.Context, attemptID uuid.UUID) (*models.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.certs[attemptID], nil
}

func (f *fakeCertRepo) UpsertCertificate(_ context.Context, attemptID uuid.UUID, filePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if existing, ok := f.certs[attemptID]; ok {
		existing.FilePath = filePath
		return nil
	}
	f.certs[attemptID] = &models.Certificate{AttemptID: attemptID, FilePath: filePath}
	return nil
}

type fakeRenderer struct {
	mu          sync.Mutex
	renderCalls int
	fileCalls   int
	err         error
}

func (f *fakeRenderer) Render(_ context.Context, _ certificate.Data) ([]byte, error) {
	f.mu.Lock()
	f.renderCalls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func (f *fakeRenderer) RenderToFile(_ context.Context, _ certificate.Data, path string) error {
	f.mu.Lock()
	f.fileCalls++
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644)
}

type fakeUploader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, attemptID uuid.UUID, _ []byte) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "https://certs.example.com/" + storage.ObjectKey(attemptID), nil
}

func passingAttempt(repo *fakeCertRepo) *models.QuizAttempt {
	attempt := &models.QuizAttempt{ID: uuid.New(), Name: "Asha Rahman", Score: 15, Percentage: 75, Passed: true}
	repo.attempts[attempt.ID] = attempt
	return attempt
}

func TestGetOrCreateAttemptNotFound(t *testing.T) {
	svc := NewCertificateService(newFakeCertRepo(), &fakeRenderer{}, storage.Mode{}, t.TempDir())

	if _, err := svc.GetOrCreate(context.Background(), uuid.New()); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("got %v, want ErrAttemptNotFound", err)
	}
}

func TestGetOrCreateRefusesFailedAttempt(t *testing.T) {
	repo := newFakeCertRepo()
	attempt := passingAttempt(repo)
	attempt.Passed = false
	// Even a stale pre-existing record must not make a failed attempt
	// issuable.
	repo.certs[attempt.ID] = &models.Certificate{AttemptID: attempt.ID, FilePath: "https://example.com/x.pdf"}

	svc := NewCertificateService(repo, &fakeRenderer{}, storage.Mode{}, t.TempDir())
	if _, err := svc.GetOrCreate(context.Background(), attempt.ID); !errors.Is(err, ErrAttemptNotPassed) {
		t.Fatalf("got %v, want ErrAttemptNotPassed", err)
	}
}

func TestGetOrCreateLocal(t *testing.T) {
	repo := newFakeCertRepo()
	attempt := passingAttempt(repo)
	renderer := &fakeRenderer{}
	dir := t.TempDir()
	svc := NewCertificateService(repo, renderer, storage.Mode{}, dir)

	loc, err := svc.GetOrCreate(context.Background(), attempt.ID)
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	if loc.Kind != models.LocationLocal {
		t.Fatalf("got kind %v, want local", loc.Kind)
	}
	if loc.Value != filepath.Join(dir, attempt.ID.String()+".pdf") {
		t.Fatalf("unexpected path %q", loc.Value)
	}
	if _, err := os.Stat(loc.Value); err != nil {
		t.Fatalf("artifact not on disk: %v", err)
	}
	if renderer.fileCalls != 1 || repo.upsertCalls != 1 {
		t.Fatalf("got %d renders, %d upserts; want 1 and 1", renderer.fileCalls, repo.upsertCalls)
	}
}

func TestGetOrCreateIdempotent(t *testing.T) {
	repo := newFakeCertRepo()
	attempt := passingAttempt(repo)
	renderer := &fakeRenderer{}
	svc := NewCertificateService(repo, renderer, storage.Mode{}, t.TempDir())

	first, err := svc.GetOrCreate(context.Background(), attempt.ID)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.GetOrCreate(context.Background(), attempt.ID)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if first != second {
		t.Fatalf("locations diverge: %v vs %v", first, second)
	}
	if renderer.fileCalls != 1 {
		t.Fatalf("second call re-rendered: %d render calls", renderer.fileCalls)
	}
	if repo.upsertCalls != 1 {
		t.Fatalf("second call re-recorded: %d upserts", repo.upsertCalls)
	}
}

func TestGetOrCreateRegeneratesMissingLocalFile(t *testing.T) {
	repo := newFakeCertRepo()
	attempt := passingAttempt(repo)
	renderer := &fakeRenderer{}
	svc := NewCertificateService(repo, renderer, storage.Mode{}, t.TempDir())

	first, err := svc.GetOrCreate(context.Background(), attempt.ID)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if err := os.Remove(first.Value); err != nil {
		t.Fatalf("removing artifact: %v", err)
	}

	second, err := svc.GetOrCreate(context.Background(), attempt.ID)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if _, err := os.Stat(second.Value); err != nil {
		t.Fatalf("artifact not regenerated: %v", err)
	}
	if renderer.fileCalls != 2 {
		t.Fatalf("got %d render calls, want 2", renderer.fileCalls)
	}
	if len(repo.certs) != 1 {
		t.Fatalf("regeneration must update the existing record, got %d records", len(repo.certs))
	}
}

func TestGetOrCreateRemote(t *testing.T) {
	repo := newFakeCertRepo()
	attempt := passingAttempt(repo)
	renderer := &fakeRenderer{}
	uploader := &fakeUploader{}
	svc := NewCertificateService(repo, renderer, storage.Mode{Uploader: uploader}, t.TempDir())

	loc, err := svc.GetOrCreate(context.Background(), attempt.ID)
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	if loc.Kind != models.LocationRemote {
		t.Fatalf("got kind %v, want remote", loc.Kind)
	}
	if uploader.calls != 1 || renderer.renderCalls != 1 {
		t.Fatalf("got %d uploads, %d renders; want 1 and 1", uploader.calls, renderer.renderCalls)
	}

	// A recorded remote URL short-circuits: no render, no upload.
	if _, err := svc.GetOrCreate(context.Background(), attempt.ID); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if uploader.calls != 1 || renderer.renderCalls != 1 {
		t.Fatal("recorded remote URL must not trigger regeneration")
	}
}

func TestGetOrCreateMigratesLocalRecordToRemote(t *testing.T) {
	repo := newFakeCertRepo()
	attempt := passingAttempt(repo)
	localPath := filepath.Join(t.TempDir(), attempt.ID.String()+".pdf")
	if err := os.WriteFile(localPath, []byte("%PDF old"), 0o644); err != nil {
		t.Fatal(err)
	}
	repo.certs[attempt.ID] = &models.Certificate{AttemptID: attempt.ID, FilePath: localPath}

	uploader := &fakeUploader{}
	svc := NewCertificateService(repo, &fakeRenderer{}, storage.Mode{Uploader: uploader}, t.TempDir())

	loc, err := svc.GetOrCreate(context.Background(), attempt.ID)
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	if loc.Kind != models.LocationRemote {
		t.Fatal("local record must migrate to remote once storage is enabled")
	}
	if got := repo.certs[attempt.ID].FilePath; got != loc.Value {
		t.Fatalf("record not updated in place: %q", got)
	}
}

func TestGetOrCreateConcurrentCallsConverge(t *testing.T) {
	repo := newFakeCertRepo()
	attempt := passingAttempt(repo)
	uploader := &fakeUploader{}
	svc := NewCertificateService(repo, &fakeRenderer{}, storage.Mode{Uploader: uploader}, t.TempDir())

	const callers = 8
	locations := make([]models.Location, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			locations[i], errs[i] = svc.GetOrCreate(context.Background(), attempt.ID)
		}(i)
	}
	wg.Wait()

	// Duplicate renders and uploads are tolerated; the outcome must still
	// be one record with one location that every caller agrees on.
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if locations[i] != locations[0] {
			t.Fatalf("locations diverge: %v vs %v", locations[i], locations[0])
		}
	}
	if len(repo.certs) != 1 {
		t.Fatalf("got %d certificate records, want 1", len(repo.certs))
	}
}

func TestGetOrCreateUploadFailureLeavesNoRecord(t *testing.T) {
	repo := newFakeCertRepo()
	attempt := passingAttempt(repo)
	uploader := &fakeUploader{err: storage.ErrUpload}
	svc := NewCertificateService(repo, &fakeRenderer{}, storage.Mode{Uploader: uploader}, t.TempDir())

	if _, err := svc.GetOrCreate(context.Background(), attempt.ID); !errors.Is(err, storage.ErrUpload) {
		t.Fatalf("got %v, want ErrUpload", err)
	}
	if repo.upsertCalls != 0 || len(repo.certs) != 0 {
		t.Fatal("failed upload must not record a certificate")
	}
}

func TestGetOrCreateRenderFailureLeavesNoRecord(t *testing.T) {
	repo := newFakeCertRepo()
	attempt := passingAttempt(repo)
	renderer := &fakeRenderer{err: certificate.ErrTemplateUnavailable}
	svc := NewCertificateService(repo, renderer, storage.Mode{}, t.TempDir())

	if _, err := svc.GetOrCreate(context.Background(), attempt.ID); !errors.Is(err, certificate.ErrTemplateUnavailable) {
		t.Fatalf("got %v, want ErrTemplateUnavailable", err)
	}
	if repo.upsertCalls != 0 || len(repo.certs) != 0 {
		t.Fatal("failed render must not record a certificate")
	}
}
