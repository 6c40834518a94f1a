package apperr

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
)

// RemoteError is implemented by errors that carry a remote protocol code,
// such as rippled RPC errors or catalog API errors
type RemoteError interface {
	error
	RemoteCode() string
}

// remoteCodes maps normalized remote codes (lower case, no separators) to kinds
var remoteCodes = map[string]Kind{
	// timeouts
	"requesttimeout":               KindTimeout,
	"notionhqclientrequesttimeout": KindTimeout,
	"timeout":                      KindTimeout,
	"gatewaytimeout":               KindTimeout,

	// generic transport / response failures
	"responseerror":                 KindTransport,
	"notionhqclientresponseerror":   KindTransport,
	"internalservererror":           KindTransport,
	"serviceunavailable":            KindTransport,
	"databaseconnectionunavailable": KindTransport,
	"conflicterror":                 KindTransport,
	"ratelimited":                   KindTransport,
	"slowdown":                      KindTransport,
	"toobusy":                       KindTransport,
	"nonetwork":                     KindTransport,
	"notsynced":                     KindTransport,
	"noclosed":                      KindTransport,
	"nocurrent":                     KindTransport,
	"notready":                      KindTransport,
	"amendmentblocked":              KindTransport,
	"internal":                      KindTransport,

	// not found
	"objectnotfound": KindNotFound,
	"actnotfound":    KindNotFound,
	"entrynotfound":  KindNotFound,
	"txnnotfound":    KindNotFound,
	"lgrnotfound":    KindNotFound,
	"notfound":       KindNotFound,

	// credentials
	"unauthorized": KindUnauthorized,
	"missingauth":  KindUnauthorized,

	// restricted
	"restrictedresource": KindForbidden,
	"forbidden":          KindForbidden,
	"nopermission":       KindForbidden,

	// malformed payloads
	"invalidjson":        KindBadRequest,
	"invalidrequesturl":  KindBadRequest,
	"invalidrequest":     KindBadRequest,
	"validationerror":    KindBadRequest,
	"invalidparams":      KindBadRequest,
	"actmalformed":       KindBadRequest,
	"badseed":            KindBadRequest,
	"badsyntax":          KindBadRequest,
	"unknowncmd":         KindBadRequest,
	"invalidapiversion":  KindBadRequest,
	"malformedrequest":   KindBadRequest,
	"invalidtransaction": KindBadRequest,
	"highfee":            KindBadRequest,
	"srcactmalformed":    KindBadRequest,
	"dstactmalformed":    KindBadRequest,
}

// Translate maps any error onto the local vocabulary. It is total: errors that
// match nothing become KindUnknown, and the original error stays reachable
// through Unwrap only.
func Translate(err error) *Error {
	if err == nil {
		return nil
	}

	var local *Error
	if errors.As(err, &local) {
		return local
	}

	var remote RemoteError
	if errors.As(err, &remote) {
		return translateRemote(remote)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(KindTimeout, err, "")
	case errors.Is(err, context.Canceled):
		return Wrap(KindTransport, err, "The request was cancelled.")
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
		return Wrap(KindTransport, err, "")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Wrap(KindTimeout, err, "")
		}
		return Wrap(KindTransport, err, "")
	}

	return Wrap(KindUnknown, err, "")
}

// TranslateCode maps a bare remote code to a kind
func TranslateCode(code string) Kind {
	if kind, ok := remoteCodes[normalizeCode(code)]; ok {
		return kind
	}
	if kind, ok := engineResultKind(code); ok {
		return kind
	}
	return KindUnknown
}

func translateRemote(remote RemoteError) *Error {
	code := remote.RemoteCode()
	kind := TranslateCode(code)
	msg := kind.DefaultMessage()
	if _, known := remoteCodes[normalizeCode(code)]; !known {
		if _, ok := engineResultKind(code); ok {
			msg = "The transaction failed with result " + code + "."
		}
	}
	return &Error{Kind: kind, Message: msg, Code: code, cause: remote}
}

// engineResultKind maps transaction engine results by prefix
func engineResultKind(code string) (Kind, bool) {
	if len(code) < 4 {
		return "", false
	}
	switch code[:3] {
	case "tem", "tef":
		return KindBadRequest, true
	case "ter", "tel":
		return KindTransport, true
	case "tec":
		return KindUnknown, true
	}
	return "", false
}

func normalizeCode(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	for _, c := range strings.ToLower(code) {
		switch c {
		case '_', '-', '.', ' ':
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
