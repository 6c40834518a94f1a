package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Transaction flags shared by every transaction type
const TfFullyCanonicalSig uint32 = 0x80000000

// Flag values of the transaction types the protocol builds
const (
	TfNoDirectRipple uint32 = 0x00010000
	TfPartialPayment uint32 = 0x00020000
	TfLimitQuality   uint32 = 0x00040000

	TfSetfAuth      uint32 = 0x00010000
	TfSetNoRipple   uint32 = 0x00020000
	TfClearNoRipple uint32 = 0x00040000
	TfSetFreeze     uint32 = 0x00100000
	TfClearFreeze   uint32 = 0x00200000

	TfBurnable     uint32 = 0x00000001
	TfOnlyXRP      uint32 = 0x00000002
	TfTrustLine    uint32 = 0x00000004
	TfTransferable uint32 = 0x00000008

	TfSellNFToken uint32 = 0x00000001

	TfRequireDestTag  uint32 = 0x00010000
	TfOptionalDestTag uint32 = 0x00020000
	TfRequireAuth     uint32 = 0x00040000
	TfOptionalAuth    uint32 = 0x00080000
	TfDisallowXRP     uint32 = 0x00100000
	TfAllowXRP        uint32 = 0x00200000

	TfPassive           uint32 = 0x00010000
	TfImmediateOrCancel uint32 = 0x00020000
	TfFillOrKill        uint32 = 0x00040000
	TfSell              uint32 = 0x00080000
)

// FlagTable maps the named flags of one transaction type to their bit values
type FlagTable map[string]uint32

var flagTables = map[string]FlagTable{
	"Payment": {
		"tfNoDirectRipple": TfNoDirectRipple,
		"tfPartialPayment": TfPartialPayment,
		"tfLimitQuality":   TfLimitQuality,
	},
	"TrustSet": {
		"tfSetfAuth":      TfSetfAuth,
		"tfSetNoRipple":   TfSetNoRipple,
		"tfClearNoRipple": TfClearNoRipple,
		"tfSetFreeze":     TfSetFreeze,
		"tfClearFreeze":   TfClearFreeze,
	},
	"NFTokenMint": {
		"tfBurnable":     TfBurnable,
		"tfOnlyXRP":      TfOnlyXRP,
		"tfTrustLine":    TfTrustLine,
		"tfTransferable": TfTransferable,
	},
	"NFTokenCreateOffer": {
		"tfSellNFToken": TfSellNFToken,
	},
	"AccountSet": {
		"tfRequireDestTag":  TfRequireDestTag,
		"tfOptionalDestTag": TfOptionalDestTag,
		"tfRequireAuth":     TfRequireAuth,
		"tfOptionalAuth":    TfOptionalAuth,
		"tfDisallowXRP":     TfDisallowXRP,
		"tfAllowXRP":        TfAllowXRP,
	},
	"OfferCreate": {
		"tfPassive":           TfPassive,
		"tfImmediateOrCancel": TfImmediateOrCancel,
		"tfFillOrKill":        TfFillOrKill,
		"tfSell":              TfSell,
	},
}

// FlagTableFor returns the named flags accepted for a transaction type
func FlagTableFor(transactionType string) FlagTable {
	return flagTables[transactionType]
}

// Flags is either a raw flag integer or a set of named booleans
type Flags struct {
	Value uint32
	Named map[string]bool
}

// NewFlags returns raw integer flags
func NewFlags(v uint32) *Flags {
	return &Flags{Value: v}
}

// NewNamedFlags returns flags set by name
func NewNamedFlags(names ...string) *Flags {
	named := make(map[string]bool, len(names))
	for _, n := range names {
		named[n] = true
	}
	return &Flags{Named: named}
}

// Resolve computes the flag integer against the table of the given
// transaction type. Unknown names are rejected.
func (f *Flags) Resolve(transactionType string) (uint32, error) {
	if f == nil {
		return 0, nil
	}
	if f.Named == nil {
		return f.Value, nil
	}

	table := flagTables[transactionType]
	names := make([]string, 0, len(f.Named))
	for name := range f.Named {
		names = append(names, name)
	}
	sort.Strings(names)

	v := f.Value
	for _, name := range names {
		bit, ok := table[name]
		if !ok && name == "tfFullyCanonicalSig" {
			bit, ok = TfFullyCanonicalSig, true
		}
		if !ok {
			return 0, fmt.Errorf("unknown %s flag %q", transactionType, name)
		}
		if f.Named[name] {
			v |= bit
		}
	}
	return v, nil
}

// Has reports whether the resolved flags contain bit. Unresolvable flags have no bits.
func (f *Flags) Has(transactionType string, bit uint32) bool {
	v, err := f.Resolve(transactionType)
	return err == nil && v&bit == bit
}

func (f Flags) MarshalJSON() ([]byte, error) {
	if f.Named != nil {
		return json.Marshal(f.Named)
	}
	return json.Marshal(f.Value)
}

func (f *Flags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var named map[string]bool
		if err := json.Unmarshal(data, &named); err != nil {
			return fmt.Errorf("decoding named flags: %w", err)
		}
		*f = Flags{Named: named}
		return nil
	}

	var v uint32
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decoding flags: %w", err)
	}
	*f = Flags{Value: v}
	return nil
}
