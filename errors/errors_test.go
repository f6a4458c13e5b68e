package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMapToGRPCError(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{fmt.Errorf("%w: no token", ErrUnauthenticated), codes.Unauthenticated},
		{ErrInvalidCredentials, codes.Unauthenticated},
		{fmt.Errorf("%w: not yours", ErrForbidden), codes.PermissionDenied},
		{fmt.Errorf("%w: general", ErrRoomNotFound), codes.NotFound},
		{ErrMessageNotFound, codes.NotFound},
		{fmt.Errorf("%w: page size", ErrInvalidArgument), codes.InvalidArgument},
		{ErrInvalidPassword, codes.InvalidArgument},
		{ErrUserAlreadyExists, codes.AlreadyExists},
		{context.Canceled, codes.Canceled},
		{fmt.Errorf("scan: %w", context.DeadlineExceeded), codes.DeadlineExceeded},
		{status.Error(codes.Unavailable, "already a status"), codes.Unavailable},
		{fmt.Errorf("disk is on fire"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.code, status.Code(MapToGRPCError(tt.err)))
		})
	}
	require.NoError(t, MapToGRPCError(nil))
}

func TestMapToGRPCError_Hides_Internal_Details(t *testing.T) {
	st, ok := status.FromError(MapToGRPCError(fmt.Errorf("badger: value log corrupted at /var/lib")))
	require.True(t, ok)
	require.Equal(t, "internal error", st.Message())
}
