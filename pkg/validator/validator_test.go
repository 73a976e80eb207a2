package validator

import "testing"

type loanRequestPayload struct {
	EquipmentID string `json:"equipment_id" validate:"required"`
	Reason      string `json:"reason" validate:"required,min=3"`
}

func TestValidateStructPasses(t *testing.T) {
	payload := loanRequestPayload{EquipmentID: "eq-1", Reason: "field work"}
	if err := ValidateStruct(&payload); err != nil {
		t.Fatalf("expected validation to pass, got %v", err)
	}
}

func TestValidateStructCollectsFailures(t *testing.T) {
	payload := loanRequestPayload{Reason: "x"}
	err := ValidateStruct(&payload)
	if err == nil {
		t.Fatal("expected validation failure")
	}

	failures, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(failures))
	}

	// Field names come from json tags.
	if failures[0].Field != "equipment_id" {
		t.Fatalf("expected json tag field name, got %s", failures[0].Field)
	}
}
