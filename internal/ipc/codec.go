package ipc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// jsonCodecName is the call-content-subtype this client forces on every
// invocation. Without it, grpc-go would expect a proto.Message and a
// compiled codec; since this repo never runs protoc, RPCs are instead
// plain Go structs marshaled through this generic codec. See DESIGN.md's
// C2 entry for why grpc-go is kept rather than replaced with a hand-rolled
// framing.
const jsonCodecName = "azookey-json"

// jsonCodec implements encoding.Codec (now encoding.CodecV2-compatible via
// the legacy Marshal/Unmarshal pair, which grpc-go still supports) over
// encoding/json, so request/response types need no .proto definitions.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("ipc: json codec marshal: %w", err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ipc: json codec unmarshal: %w", err)
	}
	return nil
}

func (jsonCodec) Name() string { return jsonCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
