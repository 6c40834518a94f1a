package apperr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type remoteErr struct{ code string }

func (r remoteErr) Error() string      { return "remote: " + r.code }
func (r remoteErr) RemoteCode() string { return r.code }

func TestTranslateRemoteCodes(t *testing.T) {
	for _, tt := range []struct {
		code   string
		kind   Kind
		status int
	}{
		{"ObjectNotFound", KindNotFound, 404},
		{"object_not_found", KindNotFound, 404},
		{"actNotFound", KindNotFound, 404},
		{"notionhq_client_request_timeout", KindTimeout, 408},
		{"notionhq_client_response_error", KindTransport, 500},
		{"unauthorized", KindUnauthorized, 401},
		{"restricted_resource", KindForbidden, 403},
		{"invalid_json", KindBadRequest, 400},
		{"invalid_request_url", KindBadRequest, 400},
		{"invalid_request", KindBadRequest, 400},
		{"invalidParams", KindBadRequest, 400},
		{"noPermission", KindForbidden, 403},
		{"tooBusy", KindTransport, 500},
		{"temBAD_FEE", KindBadRequest, 400},
		{"tefPAST_SEQ", KindBadRequest, 400},
		{"terQUEUED", KindTransport, 500},
		{"tecUNFUNDED_PAYMENT", KindUnknown, 500},
		{"somethingNobodyKnows", KindUnknown, 500},
		{"", KindUnknown, 500},
	} {
		t.Run(tt.code, func(t *testing.T) {
			got := Translate(fmt.Errorf("wrapped: %w", remoteErr{tt.code}))
			require.Equal(t, tt.kind, got.Kind)
			require.Equal(t, tt.status, got.Status())
			require.Equal(t, tt.code, got.Code)
			require.NotEmpty(t, got.Message)
		})
	}
}

func TestTranslateTransportErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	require.Equal(t, KindTimeout, Translate(fmt.Errorf("call: %w", ctx.Err())).Kind)
	require.Equal(t, KindTransport, Translate(io.ErrUnexpectedEOF).Kind)
	require.Equal(t, KindUnknown, Translate(errors.New("boom")).Kind)
	require.Nil(t, Translate(nil))
}

func TestTranslateKeepsLocalErrors(t *testing.T) {
	orig := Validation("tickSize", "must be 0 or between 3 and 15")
	got := Translate(fmt.Errorf("validate: %w", orig))
	require.Same(t, orig, got)
	require.Equal(t, FixRequest, got.Kind.Disposition())
}

func TestKindSentinels(t *testing.T) {
	err := fmt.Errorf("lookup: %w", Wrap(KindNotFound, remoteErr{"actNotFound"}, ""))
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrTimeout)

	var remote RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, "actNotFound", remote.RemoteCode())
}

func TestEveryKindHasStatus(t *testing.T) {
	for _, kind := range Kinds() {
		require.NotZero(t, kind.Status(), kind)
		require.NotEmpty(t, kind.DefaultMessage(), kind)
		require.NotEmpty(t, kind.Disposition(), kind)
	}
	require.Equal(t, 408, KindTimeout.Status())
	require.Equal(t, Final, KindNotFound.Disposition())
	require.Equal(t, Retry, KindTransport.Disposition())
}
