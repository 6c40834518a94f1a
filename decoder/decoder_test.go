package decoder

import (
	"strings"
	"testing"

	binarycodec "github.com/Peersyst/xrpl-go/binary-codec"
	"github.com/stretchr/testify/require"
	"github.com/xrpl-commons/dapp-wallet/amount"
	"github.com/xrpl-commons/dapp-wallet/builder"
	"github.com/xrpl-commons/dapp-wallet/payload"
	"go.uber.org/zap/zaptest"
)

const (
	sender    = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	recipient = "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe"
)

func TestSummarizeBuiltPayment(t *testing.T) {
	tag := uint32(9)
	flat, err := builder.Build(&payload.SendPayment{
		Base:           payload.Base{Fee: "12", Memos: []payload.Memo{{Memo: payload.MemoFields{MemoData: "6869"}}}},
		Amount:         amount.NewDrops("2500000"),
		Destination:    recipient,
		DestinationTag: &tag,
	})
	require.NoError(t, err)
	flat["Account"] = sender
	flat["Sequence"] = uint32(17)

	s := Summarize(flat)
	require.Equal(t, "Payment", s.TransactionType)
	require.Equal(t, sender, s.Account)
	require.Equal(t, uint32(17), s.Sequence)
	require.Equal(t, recipient, s.Destination)
	require.Equal(t, uint32(9), s.DestinationTag)
	require.Equal(t, "2500000", s.Amount.Drops)
	require.Equal(t, "6869", s.Memos[0].Memo.MemoData)
	require.False(t, s.Signed)
	require.NotEmpty(t, s.Fields())
}

func TestSummarizeDecodedJSON(t *testing.T) {
	// numbers decoded from JSON arrive as float64
	s := Summarize(map[string]interface{}{
		"TransactionType":  "NFTokenAcceptOffer",
		"Account":          sender,
		"Sequence":         float64(4),
		"NFTokenSellOffer": "AB",
		"NFTokenBrokerFee": map[string]interface{}{"currency": "USD", "issuer": recipient, "value": "1"},
		"TxnSignature":     "3045",
	})
	require.Equal(t, uint32(4), s.Sequence)
	require.Equal(t, "AB", s.SellOffer)
	require.Equal(t, "USD", s.BrokerFee.Issued.Currency)
	require.True(t, s.Signed)
}

func signedBlob(t *testing.T, sequence uint32) string {
	t.Helper()
	blob, err := binarycodec.Encode(map[string]any{
		"TransactionType": "AccountSet",
		"Account":         "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
		"Fee":             "12",
		"Sequence":        sequence,
		"SigningPubKey":   "ED" + strings.Repeat("01", 32),
		"TxnSignature":    strings.Repeat("AB", 64),
	})
	require.NoError(t, err)
	return blob
}

func TestTransactionHash(t *testing.T) {
	_, err := TransactionHash("zz")
	require.Error(t, err)

	h1, err := TransactionHash(signedBlob(t, 1))
	require.NoError(t, err)
	require.Len(t, h1, 64)
	require.Equal(t, strings.ToUpper(h1), h1)

	h2, err := TransactionHash(signedBlob(t, 2))
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestDecodeSigned(t *testing.T) {
	d := NewDecoder(zaptest.NewLogger(t))
	blob := signedBlob(t, 7)

	s, err := d.DecodeSigned(blob)
	require.NoError(t, err)
	require.Equal(t, "AccountSet", s.TransactionType)
	require.Equal(t, uint32(7), s.Sequence)
	require.True(t, s.Signed)

	expected, err := TransactionHash(blob)
	require.NoError(t, err)
	require.Equal(t, expected, s.Hash)
}

func TestDecodeSignedRejectsGarbage(t *testing.T) {
	d := NewDecoder(zaptest.NewLogger(t))
	_, err := d.DecodeSigned("not hex")
	require.Error(t, err)
	require.Empty(t, d.GetTransactionResult("not hex"))
}
