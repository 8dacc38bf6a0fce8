package daemon

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/toolgate/toolgate/internal/api"
	"github.com/toolgate/toolgate/internal/errors"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "bad request",
			err:        fmt.Errorf("%w: body must be an object", errors.ErrBadRequest),
			wantStatus: 400,
		},
		{
			name:       "invalid address",
			err:        fmt.Errorf("%w: 'x' (expected format: mcp:<server>:<tool>)", errors.ErrInvalidAddress),
			wantStatus: 400,
		},
		{
			name:       "unknown server",
			err:        fmt.Errorf("%w: 'slack'", errors.ErrUnknownServer),
			wantStatus: 404,
		},
		{
			name:       "connection failed",
			err:        fmt.Errorf("%w: server 'time'", errors.ErrConnectionFailed),
			wantStatus: 502,
		},
		{
			name:       "tool list failed",
			err:        fmt.Errorf("%w: 'time'", errors.ErrToolListFailed),
			wantStatus: 502,
		},
		{
			name:       "tool call failed",
			err:        fmt.Errorf("%w: 'mcp:time:now'", errors.ErrToolCallFailed),
			wantStatus: 502,
		},
		{
			name:       "pool closed",
			err:        errors.ErrPoolClosed,
			wantStatus: 503,
		},
		{
			name:       "wrapped sentinel still matches",
			err:        fmt.Errorf("outer: %w", fmt.Errorf("%w: 'slack'", errors.ErrUnknownServer)),
			wantStatus: 404,
		},
		{
			name:       "unmapped",
			err:        stdErrors.New("something unexpected"),
			wantStatus: 500,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			statusErr := mapError(hclog.NewNullLogger(), tc.err)
			require.Equal(t, tc.wantStatus, statusErr.GetStatus())
		})
	}
}

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	handler := errorHandler(hclog.NewNullLogger())

	// No wrapped errors: the raw status passes through.
	statusErr := handler(nil, 422, "validation failed")
	require.Equal(t, 422, statusErr.GetStatus())

	// A single domain error overrides the status.
	statusErr = handler(nil, 500, "ignored", fmt.Errorf("%w: 'x'", errors.ErrUnknownServer))
	require.Equal(t, 404, statusErr.GetStatus())

	// Multiple errors are joined before mapping.
	statusErr = handler(nil, 500, "ignored",
		stdErrors.New("first"),
		fmt.Errorf("%w: 'x'", errors.ErrUnknownServer),
	)
	require.Equal(t, 404, statusErr.GetStatus())
}

func TestNewAPIServer_Validation(t *testing.T) {
	t.Parallel()

	opts, err := NewOptions()
	require.NoError(t, err)

	_, err = NewAPIServer(hclog.NewNullLogger(), api.Dependencies{}, "localhost:8090", opts)
	require.Error(t, err, "empty dependencies must be rejected")
}
