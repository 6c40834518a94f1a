package payload

import (
	"bytes"
	"encoding/json"

	"github.com/xrpl-commons/dapp-wallet/apperr"
)

// Decode turns the payload of a wire message into a typed request
func Decode(kind Kind, raw json.RawMessage) (Request, error) {
	req, ok := New(kind)
	if !ok {
		return nil, apperr.Newf(apperr.KindBadRequest, "unknown message type %q", kind)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return req, nil
	}
	if err := json.Unmarshal(raw, req); err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, err, "The request payload is malformed: "+err.Error())
	}
	return req, nil
}
