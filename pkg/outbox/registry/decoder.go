package registry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/greenloop-app/greenloop-backend/pkg/enums"
)

type decoderFunc func(payload json.RawMessage) (interface{}, error)

type decoderKey struct {
	eventType enums.OutboxEventType
	version   int
}

// DecoderRegistry maps (event type, payload version) pairs to decoders so
// consumers can unmarshal envelopes into concrete payload structs.
type DecoderRegistry struct {
	mtx      sync.RWMutex
	decoders map[decoderKey]decoderFunc
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make(map[decoderKey]decoderFunc)}
}

// Register installs a decoder for one event type and version, replacing any
// previous registration.
func (r *DecoderRegistry) Register(eventType enums.OutboxEventType, version int, decoder decoderFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.decoders[decoderKey{eventType: eventType, version: version}] = decoder
}

// Decode dispatches payload to the decoder registered for the event type and
// version, erroring when none is registered.
func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (interface{}, error) {
	r.mtx.RLock()
	decoder, ok := r.decoders[decoderKey{eventType: eventType, version: version}]
	r.mtx.RUnlock()
	if !ok {
		return nil, fmt.Errorf("decoder not registered for %s@v%d", eventType, version)
	}
	return decoder(payload)
}
