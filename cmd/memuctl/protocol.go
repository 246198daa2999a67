package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Charpup/openclaw-memu-skill/internal/memu"
)

// maxRequestSize bounds the stdin payload.
const maxRequestSize = 1 << 20 // 1MB

// errProtocol marks request decoding failures so they map onto the
// validation error code.
var errProtocol = errors.New("malformed request")

// decodeRequest reads one JSON object from r into v. Unknown fields
// are ignored so callers can send a superset of the request shape.
func decodeRequest(r io.Reader, v any) error {
	dec := json.NewDecoder(io.LimitReader(r, maxRequestSize))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errProtocol, err)
	}
	return nil
}

// writeResult emits a success envelope with result under key.
func writeResult(w io.Writer, key string, value any) error {
	envelope := map[string]any{
		"success": true,
		key:       value,
	}
	enc := json.NewEncoder(w)
	return enc.Encode(envelope)
}

// writeError emits a failure envelope: the error message as a string
// plus a machine-readable code shell callers can branch on. The
// returned error is the input, so callers can hand it straight back to
// cobra for a non-zero exit.
func writeError(w io.Writer, err error) error {
	code := memu.ErrorCode(err)
	if errors.Is(err, errProtocol) {
		code = "VALIDATION_ERROR"
	}
	envelope := map[string]any{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	}
	enc := json.NewEncoder(w)
	if encErr := enc.Encode(envelope); encErr != nil {
		return encErr
	}
	return err
}
