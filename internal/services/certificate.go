package services

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/shihabhq/democracy-server/internal/certificate"
	"github.com/shihabhq/democracy-server/internal/models"
	"github.com/shihabhq/democracy-server/internal/storage"
)

// CertificateRepo is the slice of persistence the issuance flow touches.
// Lookups return nil (not an error) when the row does not exist.
type CertificateRepo interface {
	AttemptByID(ctx context.Context, id uuid.UUID) (*models.QuizAttempt, error)
	CertificateByAttempt(ctx context.Context, attemptID uuid.UUID) (*models.Certificate, error)
	UpsertCertificate(ctx context.Context, attemptID uuid.UUID, filePath string) error
}

// Renderer produces the certificate artifact, to memory or to a file.
type Renderer interface {
	Render(ctx context.Context, data certificate.Data) ([]byte, error)
	RenderToFile(ctx context.Context, data certificate.Data, path string) error
}

// CertificateService is the issuance coordinator: it returns the durable
// location of an attempt's certificate, generating and storing the
// artifact at most once under sequential retries.
//
// Concurrent requests for the same attempt are not serialized. Both may
// render and upload, but the storage key and the attempt_id upsert make
// the outcome converge on one artifact and one row, so locking is not
// worth its cost for this low-contention operation.
type CertificateService struct {
	repo     CertificateRepo
	renderer Renderer
	storage  storage.Mode
	localDir string
}

func NewCertificateService(repo CertificateRepo, renderer Renderer, mode storage.Mode, localDir string) *CertificateService {
	return &CertificateService{repo: repo, renderer: renderer, storage: mode, localDir: localDir}
}

// GetOrCreate resolves the certificate location for a passing attempt.
//
// An existing record with a remote URL is returned as is. An existing
// local-path record is returned while the file is still on disk and no
// remote store has been configured since; otherwise the artifact is
// regenerated and the same row updated, which also migrates old local
// records to remote URLs after a storage migration.
func (s *CertificateService) GetOrCreate(ctx context.Context, attemptID uuid.UUID) (models.Location, error) {
	attempt, err := s.repo.AttemptByID(ctx, attemptID)
	if err != nil {
		return models.Location{}, err
	}
	if attempt == nil {
		return models.Location{}, ErrAttemptNotFound
	}
	if !attempt.Passed {
		return models.Location{}, ErrAttemptNotPassed
	}

	cert, err := s.repo.CertificateByAttempt(ctx, attemptID)
	if err != nil {
		return models.Location{}, err
	}
	if cert != nil {
		loc := cert.Location()
		if loc.Kind == models.LocationRemote {
			return loc, nil
		}
		if !s.storage.Enabled() {
			if _, statErr := os.Stat(loc.Value); statErr == nil {
				return loc, nil
			}
		}
		// Local file gone, or storage was enabled since the record was
		// written: regenerate and update the existing row.
	}

	return s.generate(ctx, attempt)
}

// generate renders, stores, then records, in that order. A failed render
// or store leaves no partial state: the record is only ever written after
// the artifact is durably in place.
func (s *CertificateService) generate(ctx context.Context, attempt *models.QuizAttempt) (models.Location, error) {
	data := certificate.Data{
		Name:       attempt.Name,
		Score:      attempt.Score,
		Percentage: attempt.Percentage,
		Date:       attempt.CreatedAt,
	}

	var loc models.Location
	if s.storage.Enabled() {
		pdf, err := s.renderer.Render(ctx, data)
		if err != nil {
			return models.Location{}, err
		}
		url, err := s.storage.Uploader.Upload(ctx, attempt.ID, pdf)
		if err != nil {
			return models.Location{}, err
		}
		loc = models.Location{Kind: models.LocationRemote, Value: url}
	} else {
		if err := os.MkdirAll(s.localDir, 0o755); err != nil {
			return models.Location{}, err
		}
		path := filepath.Join(s.localDir, attempt.ID.String()+".pdf")
		if err := s.renderer.RenderToFile(ctx, data, path); err != nil {
			return models.Location{}, err
		}
		loc = models.Location{Kind: models.LocationLocal, Value: path}
	}

	if err := s.repo.UpsertCertificate(ctx, attempt.ID, loc.Value); err != nil {
		return models.Location{}, err
	}
	return loc, nil
}
