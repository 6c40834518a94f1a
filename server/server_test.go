package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xrpl-commons/dapp-wallet/accountsync"
	"github.com/xrpl-commons/dapp-wallet/catalog"
	"github.com/xrpl-commons/dapp-wallet/metrics"
	"github.com/xrpl-commons/dapp-wallet/payload"
	"github.com/xrpl-commons/dapp-wallet/types"
	"go.uber.org/zap"
)

const (
	nftA = "000B013A95F14B0044F78A264E41713C64B5F89242540EE208C3098E00000D65"
	nftB = "000B013A95F14B0044F78A264E41713C64B5F89242540EE208C3098E00000D66"
)

type fakeDispatcher struct {
	mu    sync.Mutex
	kinds []payload.Kind
}

func (d *fakeDispatcher) DispatchRaw(ctx context.Context, kind payload.Kind, raw json.RawMessage) *payload.Response {
	d.mu.Lock()
	d.kinds = append(d.kinds, kind)
	d.mu.Unlock()

	resp, err := payload.NewResponse(kind, &payload.NetworkResult{Network: types.Testnet, Websocket: types.Testnet.DefaultEndpoint()})
	if err != nil {
		return payload.NewReject(kind, payload.NewErrorInfo(err))
	}
	return resp
}

type fakeAccount struct {
	mu        sync.Mutex
	connected bool
	offers    map[string][]types.NFTOffer
	refreshed []string
}

func (a *fakeAccount) Account() accountsync.AccountState {
	return accountsync.AccountState{
		AccountExists:  true,
		Balance:        "25.5",
		AccountAddress: &accountsync.AccountAddress{Address: "rPEPPER7kfTD9w2To4CQk6UCfuHM9c6GDY"},
	}
}

func (a *fakeAccount) NFTs() []types.AccountNFT {
	return []types.AccountNFT{{NFTokenID: nftA, Issuer: "rPEPPER7kfTD9w2To4CQk6UCfuHM9c6GDY"}}
}

func (a *fakeAccount) Offers(nftID string) accountsync.OfferState {
	a.mu.Lock()
	defer a.mu.Unlock()
	offers, followed := a.offers[nftID]
	return accountsync.OfferState{NFTID: nftID, SellOffers: offers, IsOwner: nftID == nftA, Followed: followed}
}

func (a *fakeAccount) record(concern string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refreshed = append(a.refreshed, concern)
	return a.connected
}

func (a *fakeAccount) refreshes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.refreshed...)
}

func (a *fakeAccount) RefreshAccount() bool { return a.record("account") }
func (a *fakeAccount) RefreshNFTs() bool    { return a.record("nfts") }
func (a *fakeAccount) RefreshOffers(nftID string) bool {
	a.mu.Lock()
	if _, ok := a.offers[nftID]; !ok {
		a.offers[nftID] = []types.NFTOffer{}
	}
	a.mu.Unlock()
	return a.record("offers:" + nftID)
}

type fakeHealth bool

func (h fakeHealth) IsConnected() bool { return bool(h) }

const catalogYAML = `
offers:
  - nftId: ` + nftA + `
    title: Sunset
    subtitle: Edition 1
    price: "25"
    images: [https://example.com/a.png, https://example.com/b.png]
`

type harness struct {
	srv        *httptest.Server
	dispatcher *fakeDispatcher
	account    *fakeAccount
}

func newHarness(t *testing.T, connected bool, withCatalog bool) *harness {
	t.Helper()

	var cat catalog.Catalog
	if withCatalog {
		fc, err := catalog.ParseFileCatalog([]byte(catalogYAML))
		require.NoError(t, err)
		cat = fc
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.SetLedgerConnected(connected)

	h := &harness{
		dispatcher: &fakeDispatcher{},
		account: &fakeAccount{
			connected: connected,
			offers:    map[string][]types.NFTOffer{nftA: {{NFTOfferIndex: "ABC", Owner: "rPEPPER7kfTD9w2To4CQk6UCfuHM9c6GDY", Amount: "1000000"}}},
		},
	}
	// sockets may log after the test returns
	s := New(DefaultConfig(), h.dispatcher, h.account, cat, fakeHealth(connected), reg, zap.NewNop())
	h.srv = httptest.NewServer(s.Handler())
	t.Cleanup(h.srv.Close)
	return h
}

func (h *harness) get(t *testing.T, path string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(h.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func (h *harness) post(t *testing.T, path string) (int, []byte) {
	t.Helper()
	resp, err := http.Post(h.srv.URL+path, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func (h *harness) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readReply(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var reply map[string]any
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestWebSocketRoundTrip(t *testing.T) {
	h := newHarness(t, true, false)
	conn := h.dial(t)

	require.NoError(t, conn.WriteJSON(map[string]any{"id": 7, "type": payload.KindGetNetwork, "payload": map[string]any{}}))
	reply := readReply(t, conn)

	assert.Equal(t, float64(7), reply["id"])
	assert.Equal(t, string(payload.KindGetNetwork), reply["type"])
	assert.Nil(t, reply["error"])
	resp, ok := reply["payload"].(map[string]any)
	require.True(t, ok, "payload: %v", reply)
	assert.Equal(t, "response", resp["type"])
	assert.Equal(t, map[string]any{"network": "Testnet", "websocket": types.Testnet.DefaultEndpoint()}, resp["result"])
}

func TestWebSocketDeprecatedShape(t *testing.T) {
	h := newHarness(t, true, false)
	conn := h.dial(t)

	require.NoError(t, conn.WriteJSON(map[string]any{"id": "n1", "type": payload.KindGetNetworkDeprecated, "payload": map[string]any{}}))
	reply := readReply(t, conn)

	assert.Equal(t, "n1", reply["id"])
	resp, ok := reply["payload"].(map[string]any)
	require.True(t, ok, "payload: %v", reply)
	assert.Equal(t, "Testnet", resp["network"])
	assert.NotContains(t, resp, "result")
}

func TestWebSocketRejectsUnknownMessages(t *testing.T) {
	tests := []struct {
		name    string
		message string
		id      any
	}{
		{"unknown type", `{"id":1,"type":"REQUEST_TELEPORT","payload":{}}`, float64(1)},
		{"not json", `{"id":`, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h := newHarness(t, true, false)
			conn := h.dial(t)

			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(test.message)))
			reply := readReply(t, conn)

			assert.Equal(t, test.id, reply["id"])
			assert.Nil(t, reply["payload"])
			errInfo, ok := reply["error"].(map[string]any)
			require.True(t, ok, "error: %v", reply)
			assert.Equal(t, "BadRequest", errInfo["kind"])
			assert.Equal(t, float64(http.StatusBadRequest), errInfo["status"])

			h.dispatcher.mu.Lock()
			defer h.dispatcher.mu.Unlock()
			assert.Empty(t, h.dispatcher.kinds)
		})
	}
}

func TestWebSocketRepliesToEveryMessage(t *testing.T) {
	h := newHarness(t, true, false)
	conn := h.dial(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, conn.WriteJSON(map[string]any{"id": i, "type": payload.KindGetNetwork, "payload": map[string]any{}}))
	}

	seen := map[float64]bool{}
	for i := 0; i < 5; i++ {
		reply := readReply(t, conn)
		seen[reply["id"].(float64)] = true
	}
	assert.Len(t, seen, 5)
}

func TestAccountEndpoints(t *testing.T) {
	h := newHarness(t, true, false)

	status, body := h.get(t, "/account")
	require.Equal(t, http.StatusOK, status)
	var account accountsync.AccountState
	require.NoError(t, json.Unmarshal(body, &account))
	assert.True(t, account.AccountExists)
	assert.Equal(t, "25.5", account.Balance)

	status, body = h.get(t, "/nfts")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), nftA)

	status, body = h.post(t, "/account/refresh")
	require.Equal(t, http.StatusAccepted, status)
	assert.JSONEq(t, `{"started":true}`, string(body))

	status, _ = h.post(t, "/nfts/refresh")
	require.Equal(t, http.StatusAccepted, status)

	assert.Equal(t, []string{"account", "nfts"}, h.account.refreshes())
}

func TestRefreshWhileDisconnected(t *testing.T) {
	h := newHarness(t, false, false)

	status, body := h.post(t, "/account/refresh")
	require.Equal(t, http.StatusAccepted, status)
	assert.JSONEq(t, `{"started":false}`, string(body))
}

func TestOfferEndpoints(t *testing.T) {
	h := newHarness(t, true, false)

	status, body := h.get(t, "/nfts/"+nftA+"/offers")
	require.Equal(t, http.StatusOK, status)
	var state accountsync.OfferState
	require.NoError(t, json.Unmarshal(body, &state))
	assert.True(t, state.IsOwner)
	require.Len(t, state.SellOffers, 1)
	assert.Equal(t, "ABC", state.SellOffers[0].NFTOfferIndex)
	assert.Empty(t, h.account.refreshes())

	// unknown NFTs start being followed
	status, _ = h.get(t, "/nfts/"+nftB+"/offers")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"offers:" + nftB}, h.account.refreshes())

	// a followed NFT without offers is not fetched again
	status, body = h.get(t, "/nfts/"+nftB+"/offers")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"nftId":"`+nftB+`","sellOffers":[],"isOwner":false}`, string(body))
	assert.Equal(t, []string{"offers:" + nftB}, h.account.refreshes())

	status, _ = h.post(t, "/nfts/"+nftA+"/offers/refresh")
	require.Equal(t, http.StatusAccepted, status)

	status, body = h.get(t, "/nfts/not-hex/offers")
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, string(body), `"field":"nftId"`)
}

func TestCatalogEndpoints(t *testing.T) {
	h := newHarness(t, true, true)

	status, body := h.get(t, "/catalog/offers?pageSize=10")
	require.Equal(t, http.StatusOK, status)
	var page catalog.Page
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.Offers, 1)
	assert.Equal(t, "https://example.com/a.png", page.Offers[0].Image)
	assert.False(t, page.HasMore)

	status, body = h.get(t, "/catalog/offers/"+nftA)
	require.Equal(t, http.StatusOK, status)
	var offer catalog.FullOffer
	require.NoError(t, json.Unmarshal(body, &offer))
	assert.Len(t, offer.Images, 2)

	status, _ = h.get(t, "/catalog/offers/"+nftB)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = h.get(t, "/catalog/offers?pageSize=-1")
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = h.get(t, "/catalog/offers?cursor=zz")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCatalogNotConfigured(t *testing.T) {
	h := newHarness(t, true, false)

	status, body := h.get(t, "/catalog/offers")
	require.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), `"kind":"NotFound"`)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		connected bool
		status    int
		expected  string
	}{
		{true, http.StatusOK, `{"status":"ok","ledgerConnected":true}`},
		{false, http.StatusServiceUnavailable, `{"status":"degraded","ledgerConnected":false}`},
	}

	for _, test := range tests {
		h := newHarness(t, test.connected, false)
		status, body := h.get(t, "/healthz")
		assert.Equal(t, test.status, status)
		assert.JSONEq(t, test.expected, string(body))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, true, false)

	status, body := h.get(t, "/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "ledger_connected")
}
