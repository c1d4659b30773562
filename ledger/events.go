package ledger

import (
	"encoding/json"
	"fmt"

	"regit/model"

	"github.com/hyperledger/fabric-chaincode-go/shim"
)

// BatchEventName is the chaincode event name used when a transaction emitted more than
// one event. Fabric delivers a single chaincode event per transaction.
const BatchEventName = "EventBatch"

// EventEnvelope wraps one event inside a batch payload.
type EventEnvelope struct {
	Type    string      `json:"type"`
	Payload model.Event `json:"payload"`
}

// EventBuffer collects the events of one transaction in emission order and publishes
// them only once every ledger write has been accepted.
type EventBuffer struct {
	stub    shim.ChaincodeStubInterface
	pending []model.Event
}

// NewEventBuffer returns an empty buffer bound to stub.
func NewEventBuffer(stub shim.ChaincodeStubInterface) *EventBuffer {
	return &EventBuffer{stub: stub}
}

// Emit records evt. Nothing is sent to the peer until Flush.
func (b *EventBuffer) Emit(evt model.Event) {
	b.pending = append(b.pending, evt)
}

// Flush publishes the recorded events and clears the buffer.
func (b *EventBuffer) Flush() error {
	if len(b.pending) == 0 {
		return nil
	}
	name := b.pending[0].EventType()
	var payload interface{} = b.pending[0]
	if len(b.pending) > 1 {
		batch := make([]EventEnvelope, 0, len(b.pending))
		for _, evt := range b.pending {
			batch = append(batch, EventEnvelope{Type: evt.EventType(), Payload: evt})
		}
		name = BatchEventName
		payload = batch
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event payload: %w", name, err)
	}
	if err := b.stub.SetEvent(name, raw); err != nil {
		return fmt.Errorf("failed to set %s event: %v: %w", name, err, model.ErrPersistence)
	}
	logger.Debugf("Published event '%s' carrying %d notification(s)", name, len(b.pending))
	b.pending = nil
	return nil
}
