package types

import (
	"encoding/json"
	"testing"
)

// The three cases a PATCH body can express: set to an id, clear with an
// explicit null, or leave the field out entirely.
func TestNullableUUIDUnmarshal(t *testing.T) {
	type patch struct {
		CoverImageID NullableUUID `json:"cover_image_id"`
	}

	var got patch
	if err := json.Unmarshal([]byte(`{"cover_image_id": "3f1d07f4-9f7e-4e58-8e0b-6a2f47c0a001"}`), &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if !got.CoverImageID.Valid || got.CoverImageID.Value == nil {
		t.Fatalf("expected a set cover id, got %+v", got.CoverImageID)
	}
	if got.CoverImageID.Value.String() != "3f1d07f4-9f7e-4e58-8e0b-6a2f47c0a001" {
		t.Fatalf("unexpected uuid %s", got.CoverImageID.Value)
	}

	got = patch{}
	if err := json.Unmarshal([]byte(`{"cover_image_id": null}`), &got); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !got.CoverImageID.Valid || got.CoverImageID.Value != nil {
		t.Fatalf("explicit null must be valid-but-nil, got %+v", got.CoverImageID)
	}

	got = patch{}
	if err := json.Unmarshal([]byte(`{}`), &got); err != nil {
		t.Fatalf("unmarshal absent: %v", err)
	}
	if got.CoverImageID.Valid {
		t.Fatalf("absent field must stay invalid, got %+v", got.CoverImageID)
	}
}
