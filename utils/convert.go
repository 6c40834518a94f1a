package utils

import (
	"strings"
	"time"
)

// XRPL Epoch starts at January 1, 2000 (00:00 UTC)
const XRPLEpochOffset int64 = 946684800

// XRPLEpochToTime converts XRPL epoch seconds to Go time.Time
func XRPLEpochToTime(xrplTime uint64) time.Time {
	unixTime := int64(xrplTime) + XRPLEpochOffset
	return time.Unix(unixTime, 0).UTC()
}

// TimeToXRPLEpoch converts Go time.Time to XRPL epoch seconds
func TimeToXRPLEpoch(t time.Time) uint64 {
	return uint64(t.Unix() - XRPLEpochOffset)
}

// ResultClass groups engine result codes by their prefix
type ResultClass int

const (
	ResultUnknown ResultClass = iota
	ResultSuccess
	// ResultClaimed means the fee was claimed but the transaction failed
	ResultClaimed
	ResultFailure
	ResultMalformed
	ResultRetry
	ResultLocal
)

// ClassifyResult classifies an XRPL engine result string (tesSUCCESS, tecNO_DST, ...)
func ClassifyResult(result string) ResultClass {
	if result == "tesSUCCESS" {
		return ResultSuccess
	}
	if len(result) < 3 {
		return ResultUnknown
	}
	switch strings.ToLower(result[:3]) {
	case "tec":
		return ResultClaimed
	case "tef":
		return ResultFailure
	case "tem":
		return ResultMalformed
	case "ter":
		return ResultRetry
	case "tel":
		return ResultLocal
	}
	return ResultUnknown
}

// IsSuccessResult checks if the transaction result indicates success
func IsSuccessResult(result string) bool {
	return ClassifyResult(result) == ResultSuccess
}

// IsFinalPreliminaryResult reports whether a preliminary submit result already
// rules out the transaction ever being validated
func IsFinalPreliminaryResult(result string) bool {
	switch ClassifyResult(result) {
	case ResultMalformed, ResultFailure:
		return true
	}
	return false
}
