package payload

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xrpl-commons/dapp-wallet/apperr"
)

func TestEveryKindHasExactlyOneResponseShape(t *testing.T) {
	seen := map[Kind]bool{}
	for _, kind := range Kinds() {
		require.False(t, seen[kind], "duplicate kind %s", kind)
		seen[kind] = true

		req, ok := New(kind)
		require.True(t, ok, kind)
		require.Equal(t, kind, req.Kind())

		shape, ok := ShapeOf(kind)
		require.True(t, ok, kind)
		require.Equal(t, kind, shape.Kind)

		zero := reflect.New(shape.ResultType().Elem()).Interface()
		resp, err := NewResponse(kind, zero)
		require.NoError(t, err, kind)
		require.Equal(t, TypeResponse, resp.Type)
	}
	require.Len(t, shapes, len(Kinds()))
}

func TestNewResponseRejectsForeignResults(t *testing.T) {
	_, err := NewResponse(KindMintNFT, &HashResult{Hash: "AB"})
	require.Error(t, err)

	_, err = NewResponse(KindSendPayment, HashResult{Hash: "AB"})
	require.Error(t, err)

	_, err = NewResponse(Kind("REQUEST_NOPE"), &HashResult{})
	require.Error(t, err)
}

func TestResponseJSON(t *testing.T) {
	mustResponse := func(kind Kind, result any) *Response {
		r, err := NewResponse(kind, result)
		require.NoError(t, err)
		return r
	}
	reject := NewReject(KindSendPayment, NewErrorInfo(apperr.Validation("amount", "is required")))

	for _, tt := range []struct {
		name string
		resp *Response
		want string
	}{
		{
			name: "current response",
			resp: mustResponse(KindSendPayment, &HashResult{Hash: "ABCD"}),
			want: `{"type":"response","result":{"hash":"ABCD"}}`,
		},
		{
			name: "current reject",
			resp: reject,
			want: `{"type":"reject","error":{"kind":"ValidationError","message":"is required","status":422,"disposition":"fix_request","field":"amount"}}`,
		},
		{
			name: "mint",
			resp: mustResponse(KindMintNFT, &MintNFTResult{Hash: "AB", NFTokenID: "CD"}),
			want: `{"type":"response","result":{"hash":"AB","NFTokenID":"CD"}}`,
		},
		{
			name: "deprecated payment",
			resp: mustResponse(KindSendPaymentDeprecated, &HashResult{Hash: "ABCD"}),
			want: `{"hash":"ABCD"}`,
		},
		{
			name: "deprecated address",
			resp: mustResponse(KindGetAddressDeprecated, &AddressResult{Address: sender}),
			want: `{"publicAddress":"` + sender + `"}`,
		},
		{
			name: "deprecated public key",
			resp: mustResponse(KindGetPublicKeyDeprecated, &PublicKeyResult{Address: sender, PublicKey: "ED01"}),
			want: `{"address":"` + sender + `","publicKey":"ED01"}`,
		},
		{
			name: "deprecated network reject",
			resp: NewReject(KindGetNetworkDeprecated, nil),
			want: `{"network":null}`,
		},
		{
			name: "is installed",
			resp: mustResponse(KindIsInstalled, &IsInstalledResult{IsInstalled: true}),
			want: `{"result":{"isInstalled":true}}`,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.resp)
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestErrorInfoFromRemoteFailure(t *testing.T) {
	info := NewErrorInfo(errors.New("socket exploded"))
	require.Equal(t, apperr.KindUnknown, info.Kind)
	require.Equal(t, 500, info.Status)
	require.Equal(t, apperr.Retry, info.Disposition)
}

func TestDecode(t *testing.T) {
	req, err := Decode(KindSendPayment, json.RawMessage(`{"amount":{"currency":"USD","issuer":"`+issuer+`","value":"3"},"destination":"`+recipient+`","memos":[{"memo":{"memoData":"AB"}}]}`))
	require.NoError(t, err)
	pay := req.(*SendPayment)
	require.Equal(t, "3", pay.Amount.Issued.Value)
	require.Equal(t, "AB", pay.Memos[0].Memo.MemoData)

	req, err = Decode(KindIsInstalled, nil)
	require.NoError(t, err)
	require.IsType(t, &IsInstalled{}, req)

	_, err = Decode(Kind("REQUEST_NOPE"), nil)
	require.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = Decode(KindCancelOffer, json.RawMessage(`{"offerSequence":"seven"}`))
	require.ErrorIs(t, err, apperr.ErrBadRequest)
}
