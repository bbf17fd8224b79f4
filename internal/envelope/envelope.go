// Package envelope defines the tagged client↔server message shape and the
// per-module payload types carried inside it.
package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Module names the subsystem an envelope addresses.
type Module string

const (
	ModulePTY   Module = "pty"
	ModuleVoice Module = "voice"
	ModuleLLM   Module = "llm"
	ModuleUtils Module = "utils"
)

// Error codes surfaced in `error` response envelopes.
const (
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeSessionIDRequired  = "SESSION_ID_REQUIRED"
	CodeParseError         = "PARSE_ERROR"
	CodeModuleError        = "MODULE_ERROR"
	CodeTranscriptionError = "TRANSCRIPTION_FAILED"
	CodeUnknownModule      = "UNKNOWN_MODULE"
	CodeInvalidMessage     = "INVALID_MESSAGE"
	CodeJSONError          = "JSON_ERROR"
)

// Raw is the wire shape before the payload is decoded into a typed struct:
// `{ "module": "...", "type": "...", ...payload }`.
type Raw struct {
	Module  Module
	Type    string
	Payload map[string]any
}

// Parse decodes one text frame into a Raw envelope. Module and type are
// lifted out of the flat payload map so the remaining fields can be
// decoded per-operation with mapstructure.
func Parse(data []byte) (Raw, error) {
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return Raw{}, fmt.Errorf("decode envelope: %w", err)
	}

	mod, _ := flat["module"].(string)
	typ, _ := flat["type"].(string)
	delete(flat, "module")
	delete(flat, "type")

	return Raw{Module: Module(mod), Type: typ, Payload: flat}, nil
}

// Decode maps the envelope's open payload onto a typed struct using
// mapstructure tags (matching the teacher's go.mod choice of
// go-viper/mapstructure/v2 for open-payload decoding).
func (r Raw) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(r.Payload)
}

// Response is the shape sent back to the client: a tagged JSON object with
// whatever fields the operation calls for, stored as a flat map so it can
// be marshaled without a struct per response type.
type Response map[string]any

// NewResponse starts a response envelope for a module/type pair.
func NewResponse(module Module, typ string, fields map[string]any) Response {
	r := Response{"module": string(module), "type": typ}
	for k, v := range fields {
		r[k] = v
	}
	return r
}

// NewError builds an `error` response scoped to the given module.
func NewError(module Module, code, message string) Response {
	return Response{
		"module":  string(module),
		"type":    "error",
		"code":    code,
		"message": message,
	}
}
