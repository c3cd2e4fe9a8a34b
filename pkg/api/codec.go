// Package api defines the kudos.v1 wire messages served over Connect.
//
// Messages are plain Go structs encoded as JSON by Codec, so both the
// Connect protocol and hand-written HTTP clients can use them.
package api

import (
	"encoding/json"
	"fmt"
)

// CodecName is the Connect codec name. It replaces Connect's built-in
// protojson codec, which only handles protobuf messages.
const CodecName = "json"

// Codec marshals kudos.v1 messages as JSON.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string { return CodecName }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
	}
	return data, nil
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero
// message.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to unmarshal %T: %w", msg, err)
	}
	return nil
}
