package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindAndCodeExtraction(t *testing.T) {
	err := NotFound("offer_not_found")
	if KindOf(err) != KindNotFound || CodeOf(err) != "offer_not_found" {
		t.Fatalf("extraction: kind=%v code=%s", KindOf(err), CodeOf(err))
	}

	plain := errors.New("disk on fire")
	if KindOf(plain) != KindUnknown {
		t.Fatalf("plain error kind: %v", KindOf(plain))
	}
	if CodeOf(plain) != "internal_error" {
		t.Fatalf("plain error code: %s", CodeOf(plain))
	}
	if KindOf(nil) != KindUnknown {
		t.Fatalf("nil kind: %v", KindOf(nil))
	}
}

func TestWrapKeepsKindAndCause(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed")
	err := Conflict("invoice_number_collision").Wrap(cause)

	if KindOf(err) != KindConflict {
		t.Fatalf("kind lost after wrap: %v", KindOf(err))
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause must stay in the chain")
	}
	if err.Error() != "invoice_number_collision: UNIQUE constraint failed" {
		t.Fatalf("message: %s", err.Error())
	}

	// the extraction helpers also work through further wrapping
	outer := fmt.Errorf("deriving invoice: %w", err)
	if KindOf(outer) != KindConflict || CodeOf(outer) != "invoice_number_collision" {
		t.Fatalf("wrapped extraction: kind=%v code=%s", KindOf(outer), CodeOf(outer))
	}
}

func TestValidationDetails(t *testing.T) {
	details := map[string]string{"klient": "too_short"}
	err := Validation("validation_failed", details)
	got, ok := DetailsOf(err).(map[string]string)
	if !ok || got["klient"] != "too_short" {
		t.Fatalf("details: %+v", DetailsOf(err))
	}
	if DetailsOf(errors.New("plain")) != nil {
		t.Fatal("plain errors carry no details")
	}
}
