package rpc

import (
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/friendlies/go/internal/models"
)

func TestToConnectError(t *testing.T) {
	verr := &models.ValidationError{}
	verr.Add("venue", "is required")

	tests := []struct {
		name string
		err  error
		want connect.Code
	}{
		{"validation", verr, connect.CodeInvalidArgument},
		{"not found", fmt.Errorf("wrapped: %w", &models.NotFoundError{Resource: "team", ID: uuid.New()}), connect.CodeNotFound},
		{"forbidden", &models.ForbiddenError{Action: "accept"}, connect.CodePermissionDenied},
		{"invalid transition", &models.InvalidTransitionError{From: models.MatchStatusDeclined, To: models.MatchStatusConfirmed}, connect.CodeFailedPrecondition},
		{"other", errors.New("connection reset"), connect.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ToConnectError(tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.want, connect.CodeOf(err))
		})
	}

	assert.NoError(t, ToConnectError(nil))
}

func TestToConnectError_HidesInternalDetail(t *testing.T) {
	err := ToConnectError(errors.New("password=hunter2"))

	var cerr *connect.Error
	require.True(t, errors.As(err, &cerr))
	assert.NotContains(t, cerr.Message(), "hunter2")
}

func TestParseID(t *testing.T) {
	id := uuid.New()
	got, err := ParseID("team_id", id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseID("team_id", "12")
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.HasField("team_id"))
}

func TestJSONCodec(t *testing.T) {
	codec := JSONCodec{}
	assert.Equal(t, "json", codec.Name())

	type msg struct {
		Term string `json:"term"`
	}
	data, err := codec.Marshal(&msg{Term: "inter"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"term":"inter"}`, string(data))

	var out msg
	require.NoError(t, codec.Unmarshal(data, &out))
	assert.Equal(t, "inter", out.Term)

	out = msg{Term: "kept"}
	require.NoError(t, codec.Unmarshal(nil, &out))
	assert.Equal(t, "kept", out.Term)

	assert.Error(t, codec.Unmarshal([]byte("{"), &out))
	assert.Equal(t, "/svc.v1.Service/Method", Procedure("svc.v1.Service", "Method"))
}
