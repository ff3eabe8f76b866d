package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/contractchecker-server/internal/apierror"
	"github.com/dtroode/contractchecker-server/internal/model"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode codes.Code
		wantMsg  string
	}{
		{name: "unauthenticated", err: apierror.NewErrUnauthenticated("User must be logged in"), wantCode: codes.Unauthenticated, wantMsg: "User must be logged in"},
		{name: "invalid argument", err: apierror.NewErrInvalidArgument("Only PDF files are allowed."), wantCode: codes.InvalidArgument, wantMsg: "Only PDF files are allowed."},
		{name: "internal hides cause", err: apierror.NewErrInternal("Unable to generate upload URL.", errors.New("access key id is wrong")), wantCode: codes.Internal, wantMsg: "Unable to generate upload URL."},
		{name: "wrapped api error", err: fmt.Errorf("ctx: %w", apierror.NewErrUnauthenticated("nope")), wantCode: codes.Unauthenticated, wantMsg: "nope"},
		{name: "store error", err: fmt.Errorf("failed to get challenge: %w", errors.New("conn refused")), wantCode: codes.Internal, wantMsg: "internal server error"},
		{name: "not found is not leaked", err: model.ErrNotFound, wantCode: codes.Internal, wantMsg: "internal server error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			st, ok := status.FromError(handleError(tt.err))
			assert.True(t, ok)
			assert.Equal(t, tt.wantCode, st.Code())
			assert.Equal(t, tt.wantMsg, st.Message())
		})
	}
}
