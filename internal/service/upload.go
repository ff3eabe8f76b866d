package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/contractchecker-server/internal/apierror"
	"github.com/dtroode/contractchecker-server/internal/logger"
	"github.com/dtroode/contractchecker-server/internal/metrics"
	"github.com/dtroode/contractchecker-server/internal/model"
	"github.com/dtroode/contractchecker-server/internal/validator"
)

const (
	pdfContentType = "application/pdf"

	// ownerMetadataKey is sent as the x-amz-meta-owner-uid header.
	ownerMetadataKey = "owner-uid"

	msgUploadLoginRequired  = "You must be logged in to upload files."
	msgUploadFieldsRequired = "Filename and Content-Type are required."
	msgUploadPDFOnly        = "Only PDF files are allowed."
	msgUploadSignFailed     = "Unable to generate upload URL."
)

// DefaultUploadURLTTL is how long a presigned upload URL stays valid.
const DefaultUploadURLTTL = 300 * time.Second

// Upload grants short-lived direct upload URLs for contract PDFs.
type Upload struct {
	presigner model.Presigner
	ttl       time.Duration
	logger    *logger.Logger
	newID     func() uuid.UUID
}

func NewUpload(presigner model.Presigner, ttl time.Duration, logger *logger.Logger) *Upload {
	if ttl <= 0 {
		ttl = DefaultUploadURLTTL
	}
	return &Upload{
		presigner: presigner,
		ttl:       ttl,
		logger:    logger,
		newID:     uuid.New,
	}
}

// DestinationPath returns contracts/<uid>/<id>/<filename>. The filename is
// used verbatim.
func DestinationPath(uid string, id uuid.UUID, filename string) string {
	return fmt.Sprintf("contracts/%s/%s/%s", uid, id, filename)
}

// GenerateUploadURL authorizes one PUT of a PDF into the caller's namespace.
func (u *Upload) GenerateUploadURL(ctx context.Context, identity model.Identity, req model.UploadRequest) (model.UploadGrant, error) {
	if identity.UID == "" {
		metrics.UploadURLs.WithLabelValues("rejected").Inc()
		return model.UploadGrant{}, apierror.NewErrUnauthenticated(msgUploadLoginRequired)
	}

	if err := validator.ValidateStruct(req); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			metrics.UploadURLs.WithLabelValues("error").Inc()
			return model.UploadGrant{}, fmt.Errorf("failed to validate upload request: %w", err)
		}
		metrics.UploadURLs.WithLabelValues("rejected").Inc()
		return model.UploadGrant{}, apierror.NewErrInvalidArgument(msgUploadFieldsRequired)
	}

	if req.ContentType != pdfContentType {
		u.logger.Info("Upload service: rejected content type",
			"uid", identity.UID,
			"content_type", req.ContentType)
		metrics.UploadURLs.WithLabelValues("rejected").Inc()
		return model.UploadGrant{}, apierror.NewErrInvalidArgument(msgUploadPDFOnly)
	}

	path := DestinationPath(identity.UID, u.newID(), req.Filename)

	url, err := u.presigner.PresignPut(ctx, model.PresignPutParams{
		Key:         path,
		ContentType: req.ContentType,
		Metadata:    map[string]string{ownerMetadataKey: identity.UID},
		Expires:     u.ttl,
	})
	if err != nil {
		u.logger.Error("Upload service: failed to sign upload url",
			"uid", identity.UID,
			"path", path,
			"error", err.Error())
		metrics.UploadURLs.WithLabelValues("error").Inc()
		return model.UploadGrant{}, apierror.NewErrInternal(msgUploadSignFailed, err)
	}

	u.logger.Info("Upload service: upload url granted",
		"uid", identity.UID,
		"path", path)
	metrics.UploadURLs.WithLabelValues("granted").Inc()

	return model.UploadGrant{UploadURL: url, DestinationPath: path}, nil
}
