package uploadbroker

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cybergallery/upload-broker/pkg/uploadbroker/objectkey"
	"github.com/cybergallery/upload-broker/pkg/uploadbroker/sigv4"
	"github.com/cybergallery/upload-broker/pkg/uploadbroker/storage"
)

// Service is the upload broker: it validates upload intents, mints presigned
// upload authorizations and records completed uploads in the ledger.
type Service interface {
	InitiateUpload(ctx context.Context, req InitiateUploadRequest) (*InitiateUploadResponse, error)
	CompleteUpload(ctx context.Context, req CompleteUploadRequest) (*CompleteUploadResponse, error)
}

// UploadURLSigner mints a time-boxed presigned PUT URL for an object key.
type UploadURLSigner interface {
	PresignPutObject(objectKey string, expires time.Duration) (*sigv4.PresignedURL, error)
}

// LedgerWriter appends one row of cells to the submission ledger.
type LedgerWriter interface {
	AppendRow(ctx context.Context, cells []string) error
}

const (
	// DefaultMaxUploadBytes caps declared upload sizes at 1 GiB.
	DefaultMaxUploadBytes int64 = 1 << 30

	// DefaultPresignExpires bounds the validity of a presigned upload URL.
	DefaultPresignExpires = 15 * time.Minute

	defaultContentType = "application/octet-stream"
)

type service struct {
	signer UploadURLSigner
	store  storage.ObjectStore
	ledger LedgerWriter
	keys   *objectkey.Generator
	logger *slog.Logger

	maxUploadBytes int64
	presignExpires time.Duration
	publicBaseURL  string
}

// Option configures the broker service.
type Option func(*service)

// WithMaxUploadBytes overrides the declared-size ceiling.
func WithMaxUploadBytes(n int64) Option {
	return func(s *service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithPresignExpires overrides the presigned URL validity window.
func WithPresignExpires(d time.Duration) Option {
	return func(s *service) {
		if d > 0 {
			s.presignExpires = d
		}
	}
}

// WithPublicBaseURL sets the base URL public file URLs are built from.
func WithPublicBaseURL(base string) Option {
	return func(s *service) { s.publicBaseURL = base }
}

// WithKeyGenerator replaces the object key generator (tests pin its clock).
func WithKeyGenerator(g *objectkey.Generator) Option {
	return func(s *service) { s.keys = g }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) { s.logger = logger }
}

// New creates the broker service. The signer, store and ledger are required
// collaborators; everything else has defaults.
func New(signer UploadURLSigner, store storage.ObjectStore, ledger LedgerWriter, opts ...Option) Service {
	s := &service{
		signer:         signer,
		store:          store,
		ledger:         ledger,
		keys:           objectkey.NewGenerator(),
		logger:         slog.Default(),
		maxUploadBytes: DefaultMaxUploadBytes,
		presignExpires: DefaultPresignExpires,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitiateUpload validates the intent, derives the object key and returns a
// presigned PUT URL. Nothing is persisted; the client performs the write.
func (s *service) InitiateUpload(ctx context.Context, req InitiateUploadRequest) (*InitiateUploadResponse, error) {
	if req.Filename == "" || req.Size <= 0 {
		return nil, ErrMissingFilename
	}
	if req.Size > s.maxUploadBytes {
		return nil, ErrFileTooLarge
	}

	key := s.keys.GenerateKey(req.Filename)

	signed, err := s.signer.PresignPutObject(key, s.presignExpires)
	if err != nil {
		return nil, err
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	s.logger.Info("upload initiated", "object_key", key, "size", req.Size, "expires_at", signed.ExpiresAt)

	return &InitiateUploadResponse{
		UploadURL:   signed.URL,
		ObjectKey:   key,
		FileURL:     s.publicFileURL(key),
		ContentType: contentType,
	}, nil
}

// CompleteUpload confirms the object exists in storage, then appends one
// ledger row. A failed append leaves the stored object in place; the orphan
// is tolerated rather than rolled back.
func (s *service) CompleteUpload(ctx context.Context, req CompleteUploadRequest) (*CompleteUploadResponse, error) {
	if req.ObjectKey == "" {
		return nil, ErrMissingObjectKey
	}

	exists, err := s.store.Exists(ctx, req.ObjectKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrObjectNotFound
	}

	submissionID := uuid.NewString()
	fileURL := s.publicFileURL(req.ObjectKey)

	row := LedgerRow{
		SubmissionID: submissionID,
		Title:        req.Title,
		Date:         req.Date,
		Description:  req.Description,
		FileURL:      fileURL,
	}
	if err := s.ledger.AppendRow(ctx, row.Cells()); err != nil {
		return nil, err
	}

	s.logger.Info("upload completed", "object_key", req.ObjectKey, "submission_id", submissionID)

	return &CompleteUploadResponse{
		OK:           true,
		SubmissionID: submissionID,
		FileURL:      fileURL,
	}, nil
}

func (s *service) publicFileURL(key string) string {
	base := strings.TrimRight(s.publicBaseURL, "/")
	return base + "/" + objectkey.EncodeKeyPath(key)
}
