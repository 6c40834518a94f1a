package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	binarycodec "github.com/Peersyst/xrpl-go/binary-codec"
	"github.com/stretchr/testify/require"
	"github.com/xrpl-commons/dapp-wallet/apperr"
	"github.com/xrpl-commons/dapp-wallet/decoder"
	"github.com/xrpl-commons/dapp-wallet/types"
	"go.uber.org/zap/zaptest"
)

var testBlob = func() string {
	blob, err := binarycodec.Encode(map[string]any{
		"TransactionType": "AccountSet",
		"Account":         "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		"Fee":             "12",
		"Sequence":        uint32(1),
		"SigningPubKey":   "ED" + strings.Repeat("01", 32),
		"TxnSignature":    strings.Repeat("AB", 64),
	})
	if err != nil {
		panic(err)
	}
	return blob
}()

// scriptedConn answers each command from a queue of canned results. The last
// entry of a queue repeats.
type scriptedConn struct {
	mu      sync.Mutex
	answers map[string][]any
	calls   map[string]int
}

func newScriptedConn(answers map[string][]any) *scriptedConn {
	return &scriptedConn{answers: answers, calls: map[string]int{}}
}

func (c *scriptedConn) Connect(context.Context) error { return nil }
func (c *scriptedConn) IsConnected() bool             { return true }
func (c *scriptedConn) Close() error                  { return nil }

func (c *scriptedConn) Subscribe() (<-chan bool, func()) {
	ch := make(chan bool, 1)
	ch <- true
	return ch, func() {}
}

func (c *scriptedConn) Request(_ context.Context, command string, _ any, result any) error {
	c.mu.Lock()
	queue := c.answers[command]
	n := c.calls[command]
	c.calls[command]++
	c.mu.Unlock()

	if len(queue) == 0 {
		return &types.RPCError{Code: "unknownCmd"}
	}
	if n >= len(queue) {
		n = len(queue) - 1
	}
	if err, ok := queue[n].(error); ok {
		return err
	}
	raw, err := json.Marshal(queue[n])
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, result)
}

func (c *scriptedConn) count(command string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[command]
}

func newTestWaiter(t *testing.T, conn Conn) *Waiter {
	logger := zaptest.NewLogger(t)
	return NewWaiter(NewClient(conn, logger), time.Millisecond, logger)
}

func TestSubmitAndWaitValidated(t *testing.T) {
	hash, err := decoder.TransactionHash(testBlob)
	require.NoError(t, err)

	conn := newScriptedConn(map[string][]any{
		"submit": {types.SubmitResult{EngineResult: "tesSUCCESS", TxJSON: map[string]any{"hash": hash}}},
		"tx": {
			&types.RPCError{Code: "txnNotFound"},
			types.TxResult{Hash: hash, Validated: false},
			types.TxResult{Hash: hash, Validated: true, LedgerIndex: 12, Meta: &types.TxMeta{
				TransactionResult: "tesSUCCESS",
				NFTokenID:         "00080000ABCD",
			}},
		},
		"ledger_current": {types.LedgerCurrentResult{LedgerCurrentIndex: 11}},
	})

	outcome, err := newTestWaiter(t, conn).SubmitAndWait(context.Background(), testBlob, 30)
	require.NoError(t, err)
	require.Equal(t, hash, outcome.Hash)
	require.Equal(t, uint32(12), outcome.LedgerIndex)
	require.Equal(t, "00080000ABCD", outcome.Meta.NFTokenID)
	require.Equal(t, 1, conn.count("submit"))
}

func TestSubmitAndWaitPreliminaryFailure(t *testing.T) {
	conn := newScriptedConn(map[string][]any{
		"submit": {types.SubmitResult{EngineResult: "temBAD_FEE", EngineResultMessage: "invalid fee"}},
	})

	_, err := newTestWaiter(t, conn).SubmitAndWait(context.Background(), testBlob, 30)
	var engineErr *EngineError
	require.True(t, errors.As(err, &engineErr))
	require.Equal(t, "temBAD_FEE", engineErr.Result)
	require.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	require.Zero(t, conn.count("tx"))
}

func TestSubmitAndWaitValidatedFailure(t *testing.T) {
	conn := newScriptedConn(map[string][]any{
		"submit": {types.SubmitResult{EngineResult: "terQUEUED"}},
		"tx":     {types.TxResult{Validated: true, Meta: &types.TxMeta{TransactionResult: "tecNO_DST_INSUF_XRP"}}},
	})

	_, err := newTestWaiter(t, conn).SubmitAndWait(context.Background(), testBlob, 30)
	require.Equal(t, apperr.KindUnknown, apperr.KindOf(err))
	require.Contains(t, apperr.Translate(err).Message, "tecNO_DST_INSUF_XRP")
}

func TestSubmitAndWaitExpires(t *testing.T) {
	conn := newScriptedConn(map[string][]any{
		"submit":         {types.SubmitResult{EngineResult: "tesSUCCESS"}},
		"tx":             {&types.RPCError{Code: "txnNotFound"}},
		"ledger_current": {types.LedgerCurrentResult{LedgerCurrentIndex: 29}, types.LedgerCurrentResult{LedgerCurrentIndex: 31}},
	})

	_, err := newTestWaiter(t, conn).SubmitAndWait(context.Background(), testBlob, 30)
	require.ErrorIs(t, err, apperr.ErrTimeout)
	require.Equal(t, 1, conn.count("submit"))
	require.Equal(t, 2, conn.count("tx"))
}

func TestSubmitAndWaitContextDeadline(t *testing.T) {
	conn := newScriptedConn(map[string][]any{
		"submit":         {types.SubmitResult{EngineResult: "tesSUCCESS"}},
		"tx":             {&types.RPCError{Code: "txnNotFound"}},
		"ledger_current": {types.LedgerCurrentResult{LedgerCurrentIndex: 5}},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := newTestWaiter(t, conn).SubmitAndWait(ctx, testBlob, 0)
	require.Equal(t, apperr.KindTimeout, apperr.KindOf(err))
}

func TestAllAccountNFTsFollowsMarker(t *testing.T) {
	conn := newScriptedConn(map[string][]any{
		"account_nfts": {
			types.AccountNFTsResult{AccountNFTs: []types.AccountNFT{{NFTokenID: "A"}}, Marker: "page2"},
			types.AccountNFTsResult{AccountNFTs: []types.AccountNFT{{NFTokenID: "B"}}},
		},
	})
	client := NewClient(conn, zaptest.NewLogger(t))

	nfts, err := client.AllAccountNFTs(context.Background(), "rAccount")
	require.NoError(t, err)
	require.Len(t, nfts, 2)
	require.Equal(t, "B", nfts[1].NFTokenID)
}
