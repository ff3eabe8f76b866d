package model

import (
	"context"
	"time"
)

// Presigner issues time-boxed write credentials for object storage.
type Presigner interface {
	PresignPut(ctx context.Context, params PresignPutParams) (string, error)
}

// PresignPutParams describes a single object write to authorize.
type PresignPutParams struct {
	Key         string
	ContentType string
	Metadata    map[string]string
	Expires     time.Duration
}

// UploadRequest is the input of the upload authorizer.
type UploadRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
}

// UploadGrant is a presigned URL plus the object key it is bound to.
type UploadGrant struct {
	UploadURL       string
	DestinationPath string
}
