package registry

import (
	"encoding/json"
	"testing"

	"github.com/VIERNES-8020/domino-backend/pkg/enums"
	"github.com/VIERNES-8020/domino-backend/pkg/outbox/payloads"
)

func TestDecoderRegistryRoundTrip(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.OutboxEventInquiryCreated, 1, func(payload json.RawMessage) (interface{}, error) {
		var evt payloads.InquiryCreatedEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, err
		}
		return &evt, nil
	})

	decoded, err := reg.Decode(enums.OutboxEventInquiryCreated, 1, []byte(`{"contact_name":"Ana","message":"hola"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	evt, ok := decoded.(*payloads.InquiryCreatedEvent)
	if !ok {
		t.Fatalf("unexpected type %T", decoded)
	}
	if evt.ContactName != "Ana" {
		t.Fatalf("unexpected contact name %q", evt.ContactName)
	}

	if _, err := reg.Decode(enums.OutboxEventInquiryCreated, 2, []byte(`{}`)); err == nil {
		t.Fatal("expected error for unregistered version")
	}
}
