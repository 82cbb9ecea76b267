package logware

import (
	"bytes"
	"encoding/json"
)

// AuthRequest is the login body sent to /users/authenticate
type AuthRequest struct {
	Login    string `json:"Login"`
	Password string `json:"Password"`
}

// AuthResponse is the login response. Token is empty when login was refused.
type AuthResponse struct {
	Token string `json:"token"`
}

// DataInsertRequest is the body of POST /data
type DataInsertRequest struct {
	Env  string `json:"env"`
	Data any    `json:"data"`
}

// HashInsertRequest is the body of POST /hash
type HashInsertRequest struct {
	Env  string `json:"env"`
	Hash string `json:"hash"`
}

// Result is returned by every authenticated call.
// Status is not interpreted; a 401 or 500 is still a Result, not an error.
// Body is nil for an empty response and a JSON string for a non-JSON one.
type Result struct {
	Body     json.RawMessage `json:"body,omitempty"`
	Status   int             `json:"status"`
	Location string          `json:"location,omitempty"`
}

// DecodeBody unmarshals the response body into v.
func (r *Result) DecodeBody(v any) error {
	return json.Unmarshal(r.Body, v)
}

// ChainData is the result of a chain-data transaction lookup
type ChainData struct {
	// Data is the pkdata field of Body.
	// Body follows the same rules as Result.Body.
	Data   json.RawMessage `json:"data,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
	Status int             `json:"status"`
}

// jsonBody makes a response body safe to hold in a json.RawMessage.
func jsonBody(raw []byte) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if json.Valid(raw) {
		return raw
	}
	quoted, _ := json.Marshal(string(raw))
	return quoted
}

type chainDataBody struct {
	PKData json.RawMessage `json:"pkdata"`
}
