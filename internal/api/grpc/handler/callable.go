package handler

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/contractchecker-server/internal/api/grpc/callable"
	"github.com/dtroode/contractchecker-server/internal/apierror"
	"github.com/dtroode/contractchecker-server/internal/logger"
	"github.com/dtroode/contractchecker-server/internal/model"
)

// WaitlistService registers emails on the waitlist.
type WaitlistService interface {
	Register(ctx context.Context, req model.WaitlistRequest) model.WaitlistResult
}

// DeviceService runs the device trust and one-time code flow.
type DeviceService interface {
	CheckDevice(ctx context.Context, identity model.Identity, req model.CheckDeviceRequest) (model.CheckDeviceResult, error)
	VerifyDevice(ctx context.Context, identity model.Identity, req model.VerifyDeviceRequest) (model.VerifyDeviceResult, error)
}

// UploadService grants presigned upload URLs.
type UploadService interface {
	GenerateUploadURL(ctx context.Context, identity model.Identity, req model.UploadRequest) (model.UploadGrant, error)
}

var _ callable.Server = (*Callable)(nil)

// Callable handles the four remote procedures of the Callable service.
type Callable struct {
	waitlist       WaitlistService
	device         DeviceService
	upload         UploadService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewCallable creates a new Callable handler.
func NewCallable(
	waitlist WaitlistService,
	device DeviceService,
	upload UploadService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Callable {
	return &Callable{
		waitlist:       waitlist,
		device:         device,
		upload:         upload,
		contextManager: contextManager,
		logger:         logger,
	}
}

func (h *Callable) identity(ctx context.Context) model.Identity {
	identity, _ := h.contextManager.GetIdentityFromContext(ctx)
	return identity
}

func (h *Callable) decode(in *structpb.Struct, out any) error {
	if err := callable.Decode(in, out); err != nil {
		h.logger.Debug("Callable handler: malformed request",
			"error", err.Error())
		return apierror.NewErrInvalidArgument("Malformed request.")
	}
	return nil
}

// AddToWaitlist handles {email} and answers {success, message?, error?}.
func (h *Callable) AddToWaitlist(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req model.WaitlistRequest
	if err := h.decode(in, &req); err != nil {
		return nil, handleError(err)
	}

	res := h.waitlist.Register(ctx, req)

	out := map[string]any{"success": res.Success}
	if res.Message != "" {
		out["message"] = res.Message
	}
	if res.Error != "" {
		out["error"] = res.Error
	}
	return h.encode(out)
}

// CheckDevice handles {deviceId?} and answers {status}.
func (h *Callable) CheckDevice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req model.CheckDeviceRequest
	if err := h.decode(in, &req); err != nil {
		return nil, handleError(err)
	}

	res, err := h.device.CheckDevice(ctx, h.identity(ctx), req)
	if err != nil {
		return nil, handleError(err)
	}

	return h.encode(map[string]any{"status": string(res.Status)})
}

// VerifyDevice handles {otp, userAgent?} and answers {status, newDeviceId?}.
func (h *Callable) VerifyDevice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req model.VerifyDeviceRequest
	if err := h.decode(in, &req); err != nil {
		return nil, handleError(err)
	}

	res, err := h.device.VerifyDevice(ctx, h.identity(ctx), req)
	if err != nil {
		return nil, handleError(err)
	}

	out := map[string]any{"status": string(res.Status)}
	if res.NewDeviceID != "" {
		out["newDeviceId"] = res.NewDeviceID
	}
	return h.encode(out)
}

// GenerateUploadUrl handles {filename, contentType} and answers
// {uploadUrl, destinationPath}.
func (h *Callable) GenerateUploadUrl(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req model.UploadRequest
	if err := h.decode(in, &req); err != nil {
		return nil, handleError(err)
	}

	grant, err := h.upload.GenerateUploadURL(ctx, h.identity(ctx), req)
	if err != nil {
		return nil, handleError(err)
	}

	return h.encode(map[string]any{
		"uploadUrl":       grant.UploadURL,
		"destinationPath": grant.DestinationPath,
	})
}

func (h *Callable) encode(fields map[string]any) (*structpb.Struct, error) {
	out, err := callable.Encode(fields)
	if err != nil {
		h.logger.Error("Callable handler: failed to encode response",
			"error", err.Error())
		return nil, handleError(err)
	}
	return out, nil
}
