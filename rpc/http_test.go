package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xrpl-commons/dapp-wallet/apperr"
	"github.com/xrpl-commons/dapp-wallet/types"
	"go.uber.org/zap/zaptest"
)

func newJSONRPCServer(t *testing.T, handler func(req *types.JSONRPCRequest) (int, string)) *HTTPConn {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req types.JSONRPCRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		status, body := handler(&req)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPConn(srv.URL, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestHTTPConnRequest(t *testing.T) {
	c := newJSONRPCServer(t, func(req *types.JSONRPCRequest) (int, string) {
		params, _ := req.Params[0].(map[string]any)
		if req.Method != "account_info" || params["account"] != "rAccount" {
			return http.StatusBadRequest, ""
		}
		return http.StatusOK, `{"result":{"status":"success","validated":true,"account_data":{"Account":"rAccount","Balance":"25000000","OwnerCount":2,"Sequence":7}}}`
	})

	var result types.AccountInfoResult
	err := c.Request(context.Background(), "account_info", &types.AccountInfoRequest{Account: "rAccount"}, &result)
	require.NoError(t, err)
	require.Equal(t, "25000000", result.AccountData.Balance)
	require.Equal(t, uint32(7), result.AccountData.Sequence)
	require.True(t, c.IsConnected())
}

func TestHTTPConnErrors(t *testing.T) {
	for _, tt := range []struct {
		name   string
		status int
		body   string
		want   apperr.Kind
	}{
		{"remote error", http.StatusOK, `{"result":{"status":"error","error":"actMalformed","error_code":35}}`, apperr.KindBadRequest},
		{"not found", http.StatusOK, `{"result":{"status":"error","error":"objectNotFound"}}`, apperr.KindNotFound},
		{"unauthorized", http.StatusUnauthorized, ``, apperr.KindUnauthorized},
		{"forbidden", http.StatusForbidden, ``, apperr.KindForbidden},
		{"gateway timeout", http.StatusGatewayTimeout, ``, apperr.KindTimeout},
		{"server error", http.StatusBadGateway, ``, apperr.KindTransport},
		{"garbage", http.StatusOK, `<html>`, apperr.KindUnknown},
	} {
		t.Run(tt.name, func(t *testing.T) {
			c := newJSONRPCServer(t, func(*types.JSONRPCRequest) (int, string) {
				return tt.status, tt.body
			})
			err := c.Request(context.Background(), "nft_sell_offers", &types.NFTOffersRequest{NFTID: "00"}, nil)
			require.Error(t, err)
			require.Equal(t, tt.want, apperr.KindOf(err))
		})
	}
}

func TestHTTPStatusErrorCodes(t *testing.T) {
	require.Equal(t, "requestTimeout", (&HTTPStatusError{StatusCode: http.StatusRequestTimeout}).RemoteCode())
	require.Equal(t, "invalidRequest", (&HTTPStatusError{StatusCode: http.StatusBadRequest}).RemoteCode())
	require.Equal(t, "notFound", (&HTTPStatusError{StatusCode: http.StatusNotFound}).RemoteCode())
}
