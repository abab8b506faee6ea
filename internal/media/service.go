package media

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VIERNES-8020/domino-backend/pkg/config"
	"github.com/VIERNES-8020/domino-backend/pkg/db/models"
	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	pkgerrors "github.com/VIERNES-8020/domino-backend/pkg/errors"
	"github.com/VIERNES-8020/domino-backend/pkg/pagination"
	"github.com/VIERNES-8020/domino-backend/pkg/storage/gcs"
)

type gcsClient interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, object string) error
}

// Service exposes upload presigning, the owner's library, and attachment
// verification for the listing and closure flows.
type Service interface {
	PresignUpload(ctx context.Context, ownerID uuid.UUID, input PresignInput) (*PresignOutput, error)
	List(ctx context.Context, ownerID uuid.UUID, params ListParams) (*ListResult, error)
	Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error
	FilterOwned(ctx context.Context, ownerID uuid.UUID, kind enums.MediaKind, ids []uuid.UUID) ([]uuid.UUID, error)
	VerifyAttachments(ctx context.Context, ownerID uuid.UUID, kind enums.MediaKind, ids []uuid.UUID) error
}

type service struct {
	repo        Repository
	gcs         gcsClient
	bucket      string
	uploadTTL   time.Duration
	downloadTTL time.Duration
	maxBytes    int64
}

// NewService constructs a media service backed by the repository and GCS signer.
func NewService(repo Repository, client gcsClient, gcsCfg config.GCSConfig, mediaCfg config.MediaConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "media repository required")
	}
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gcs client required")
	}
	if gcsCfg.BucketName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gcs bucket required")
	}
	if gcsCfg.UploadURLExpiry <= 0 || gcsCfg.DownloadURLExpiry <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "url expiries must be positive")
	}
	maxBytes := int64(mediaCfg.MaxUploadMB) * 1024 * 1024
	if maxBytes <= 0 {
		maxBytes = 50 * 1024 * 1024
	}
	return &service{
		repo:        repo,
		gcs:         client,
		bucket:      gcsCfg.BucketName,
		uploadTTL:   gcsCfg.UploadURLExpiry,
		downloadTTL: gcsCfg.DownloadURLExpiry,
		maxBytes:    maxBytes,
	}, nil
}

// PresignInput models the payload required to request an upload URL.
type PresignInput struct {
	Kind      enums.MediaKind
	MimeType  string
	FileName  string
	SizeBytes int64
}

// PresignOutput contains the data returned after creating a media record.
type PresignOutput struct {
	MediaID      uuid.UUID `json:"media_id"`
	GCSKey       string    `json:"gcs_key"`
	SignedPUTURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ListParams filters the owner's media library.
type ListParams struct {
	Kind   string
	Limit  int
	Cursor string
}

// MediaItem is a metadata row plus a short-lived read URL.
type MediaItem struct {
	ID        uuid.UUID       `json:"id"`
	Kind      enums.MediaKind `json:"kind"`
	FileName  string          `json:"file_name"`
	MimeType  string          `json:"mime_type"`
	SizeBytes int64           `json:"size_bytes"`
	URL       string          `json:"url"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListResult is one page of media items plus the next-page cursor.
type ListResult struct {
	Items      []MediaItem `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

var mimeTypesByKind = map[enums.MediaKind][]string{
	enums.MediaKindPropertyImage:   {"image/png", "image/jpeg", "image/webp"},
	enums.MediaKindClosureContract: {"application/pdf", "image/png", "image/jpeg"},
	enums.MediaKindClosureVoucher:  {"application/pdf", "image/png", "image/jpeg"},
	enums.MediaKindAvatar:          {"image/png", "image/jpeg", "image/webp"},
	enums.MediaKindArxisDoc:        {"application/pdf", "image/png", "image/jpeg"},
}

func (s *service) PresignUpload(ctx context.Context, ownerID uuid.UUID, input PresignInput) (*PresignOutput, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner identity missing")
	}
	if input.Kind == "" || !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name required")
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size must be positive")
	}
	if input.SizeBytes > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds %d byte limit", s.maxBytes))
	}

	mimeType := strings.ToLower(strings.TrimSpace(input.MimeType))
	if err := validateMimeType(input.Kind, mimeType); err != nil {
		return nil, err
	}

	key := gcs.ObjectKey(input.Kind, ownerID, fileName)
	row, err := s.repo.Create(ctx, &models.Media{
		OwnerID:   ownerID,
		Kind:      input.Kind,
		GCSKey:    key,
		FileName:  fileName,
		MimeType:  mimeType,
		SizeBytes: input.SizeBytes,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create media record")
	}

	signedURL, err := s.gcs.SignedURL(s.bucket, key, mimeType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignOutput{
		MediaID:      row.ID,
		GCSKey:       key,
		SignedPUTURL: signedURL,
		ContentType:  mimeType,
		ExpiresAt:    time.Now().UTC().Add(s.uploadTTL),
	}, nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID, params ListParams) (*ListResult, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner identity missing")
	}

	query := listMediaParams{Limit: params.Limit}
	if params.Kind != "" {
		kind, err := enums.ParseMediaKind(params.Kind)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind filter")
		}
		query.Kind = kind
	}
	if params.Cursor != "" {
		cursor, err := pagination.Parse(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListByOwner(ctx, ownerID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media")
	}

	result := &ListResult{Items: make([]MediaItem, 0, len(rows))}
	for _, row := range rows {
		readURL, err := s.gcs.SignedReadURL(s.bucket, row.GCSKey, s.downloadTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign read url")
		}
		result.Items = append(result.Items, MediaItem{
			ID:        row.ID,
			Kind:      row.Kind,
			FileName:  row.FileName,
			MimeType:  row.MimeType,
			SizeBytes: row.SizeBytes,
			URL:       readURL,
			CreatedAt: row.CreatedAt,
		})
	}
	if next != nil {
		result.NextCursor = next.Encode()
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	if ownerID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "media id required")
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media")
	}
	if row.OwnerID != ownerID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
	}

	if err := s.gcs.DeleteObject(ctx, s.bucket, row.GCSKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete object")
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete media record")
	}
	return nil
}

// FilterOwned returns the subset of ids that exist, belong to ownerID, and
// carry the expected kind. Callers that can tolerate missing attachments
// (listing photos) use this and drop the rest.
func (s *service) FilterOwned(ctx context.Context, ownerID uuid.UUID, kind enums.MediaKind, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.repo.FindOwnedByKind(ctx, ownerID, kind, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify media")
	}
	verified := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		verified = append(verified, row.ID)
	}
	return verified, nil
}

// VerifyAttachments fails if any id is missing, foreign, or the wrong kind.
// Closure submissions use this: a deal record without its contract is worse
// than no record at all.
func (s *service) VerifyAttachments(ctx context.Context, ownerID uuid.UUID, kind enums.MediaKind, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	verified, err := s.FilterOwned(ctx, ownerID, kind, ids)
	if err != nil {
		return err
	}

	present := make(map[uuid.UUID]struct{}, len(verified))
	for _, id := range verified {
		present[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return pkgerrors.New(pkgerrors.CodeUpload, fmt.Sprintf("%s attachment not uploaded: %s", kind, strings.Join(missing, ", "))).
			WithDetails(map[string]any{"kind": kind, "missing": missing})
	}
	return nil
}

func validateMimeType(kind enums.MediaKind, mimeType string) error {
	if mimeType == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "mime type required")
	}
	allowed, ok := mimeTypesByKind[kind]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}
	for _, candidate := range allowed {
		if candidate == mimeType {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("mime type %q not allowed for %s", mimeType, kind)).
		WithDetails(map[string]any{"allowed": allowed})
}
