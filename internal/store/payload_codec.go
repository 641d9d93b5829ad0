package store

import (
	"fmt"

	"github.com/golang/snappy"
)

const (
	codecNone   = "none"
	codecSnappy = "snappy"
)

// payloadCodec compresses item payloads on write. The codec name is stored
// next to every payload so rows stay readable after the setting changes.
type payloadCodec struct {
	name string
}

func newPayloadCodec(name string) payloadCodec {
	if name == codecSnappy {
		return payloadCodec{name: codecSnappy}
	}
	return payloadCodec{name: codecNone}
}

func (c payloadCodec) encode(payload []byte) ([]byte, string) {
	if payload == nil {
		return nil, codecNone
	}
	if c.name == codecSnappy {
		return snappy.Encode(nil, payload), codecSnappy
	}
	return payload, codecNone
}

func decodePayload(data []byte, codec string) ([]byte, error) {
	switch codec {
	case codecNone, "":
		return data, nil
	case codecSnappy:
		if data == nil {
			return nil, nil
		}
		decoded, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodingPayload, err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: unknown codec %q", ErrDecodingPayload, codec)
	}
}
