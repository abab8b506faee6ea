package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	if MetadataFor(CodeValidation).HTTPStatus != http.StatusBadRequest {
		t.Fatal("validation should map to 400")
	}
	if MetadataFor(CodeUpload).HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatal("upload failures should map to 422")
	}
	if !MetadataFor(CodeUpload).DetailsAllowed {
		t.Fatal("upload errors must be allowed to name the failing attachment")
	}
	if MetadataFor(Code("BOGUS")).HTTPStatus != http.StatusInternalServerError {
		t.Fatal("unknown codes should fall back to internal")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeDependency, cause, "insert closure")

	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause should be reachable via errors.Is")
	}
	typed := As(fmt.Errorf("outer: %w", err))
	if typed == nil || typed.Code() != CodeDependency {
		t.Fatalf("expected typed error through the chain, got %v", typed)
	}
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint",
		Detail:         "Key (code)=(DOM-001) already exists.",
		Hint:           "use a different property code",
		ConstraintName: "ux_properties_code",
		TableName:      "properties",
	}
	dump := Dump(Wrap(CodeDependency, pgErr, "create property"))

	if dump.PGCode != "23505" {
		t.Fatalf("unexpected pg code %q", dump.PGCode)
	}
	if dump.PGDetail == "" || dump.PGHint == "" {
		t.Fatal("detail and hint should survive the dump")
	}
	if dump.Code != CodeDependency {
		t.Fatalf("unexpected code %q", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", dump.Chain)
	}
}
