package handlers

import "testing"

type testKeyRequest struct {
	Name   string   `json:"name" validate:"required,min=1,max=200"`
	Scopes []string `json:"scopes" validate:"required,min=1"`
}

func TestValidateStruct_PassesValidInput(t *testing.T) {
	req := testKeyRequest{Name: "ops key", Scopes: []string{"fax:send"}}
	if errs := validateStruct(req); errs != nil {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestValidateStruct_ReportsJSONFieldNames(t *testing.T) {
	req := testKeyRequest{Name: "", Scopes: nil}
	errs := validateStruct(req)
	if errs == nil {
		t.Fatalf("expected validation errors")
	}
	if _, ok := errs["name"]; !ok {
		t.Fatalf("expected error keyed by JSON field name %q, got %v", "name", errs)
	}
	if _, ok := errs["scopes"]; !ok {
		t.Fatalf("expected error keyed by JSON field name %q, got %v", "scopes", errs)
	}
}

func TestValidateStruct_MaxLengthViolation(t *testing.T) {
	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	req := testKeyRequest{Name: string(long), Scopes: []string{"fax:send"}}

	errs := validateStruct(req)
	if errs == nil {
		t.Fatalf("expected a max-length validation error")
	}
	if _, ok := errs["name"]; !ok {
		t.Fatalf("expected name field error, got %v", errs)
	}
}
