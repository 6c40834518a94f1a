package decoder

import (
	"fmt"
	"strings"

	binarycodec "github.com/Peersyst/xrpl-go/binary-codec"
	"github.com/Peersyst/xrpl-go/xrpl/hash"
	xrpltx "github.com/Peersyst/xrpl-go/xrpl/transaction"
	"go.uber.org/zap"
)

// Decoder handles XRPL binary format decoding using xrpl-go's binarycodec
type Decoder struct {
	logger *zap.Logger
}

// NewDecoder creates a new XRPL decoder
func NewDecoder(logger *zap.Logger) *Decoder {
	return &Decoder{
		logger: logger,
	}
}

// DecodeTransactionFromHex decodes a transaction blob (hex string) to a FlatTransaction
func (d *Decoder) DecodeTransactionFromHex(txBlobHex string) (xrpltx.FlatTransaction, error) {
	decoded, err := binarycodec.Decode(txBlobHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction blob: %w", err)
	}

	return decoded, nil
}

// DecodeMetadataFromHex decodes transaction metadata (hex string)
func (d *Decoder) DecodeMetadataFromHex(metaHex string) (map[string]interface{}, error) {
	decoded, err := binarycodec.Decode(metaHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}

	return decoded, nil
}

// GetTransactionResult extracts the result code string from metadata
func (d *Decoder) GetTransactionResult(metaBlobHex string) string {
	decoded, err := d.DecodeMetadataFromHex(metaBlobHex)
	if err != nil {
		d.logger.Debug("failed to decode metadata for result extraction", zap.Error(err))
		return ""
	}

	return getString(decoded, "TransactionResult")
}

// DecodeSigned decodes a signed blob and summarizes it. The hash is computed
// from the blob.
func (d *Decoder) DecodeSigned(txBlobHex string) (*Summary, error) {
	flat, err := d.DecodeTransactionFromHex(txBlobHex)
	if err != nil {
		return nil, err
	}

	txHash, err := TransactionHash(txBlobHex)
	if err != nil {
		return nil, err
	}

	s := Summarize(flat)
	s.Hash = txHash
	return s, nil
}

// TransactionHash computes the transaction hash of a signed tx_blob hex string
func TransactionHash(txBlobHex string) (string, error) {
	txHash, err := hash.SignTxBlob(txBlobHex)
	if err != nil {
		return "", fmt.Errorf("hashing tx blob: %w", err)
	}
	return strings.ToUpper(txHash), nil
}
