package fields

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-uibuilder/pkg/schema"
)

func ptr(f float64) *float64 { return &f }

func TestValidateField(t *testing.T) {
	t.Parallel()

	ranged := schema.ComponentField{Label: "Age", Name: "age", Type: schema.FieldNumber, Min: ptr(5), Max: ptr(10)}

	cases := []struct {
		name  string
		field schema.ComponentField
		value any
		want  string
	}{
		{"required text empty", schema.ComponentField{Label: "Name", Name: "name", Type: schema.FieldText, Required: true}, "", "Name is required"},
		{"required number missing", schema.ComponentField{Label: "Age", Name: "age", Type: schema.FieldNumber, Required: true}, nil, "Age is required"},
		{"required checkbox unchecked", schema.ComponentField{Label: "Terms", Name: "terms", Type: schema.FieldCheckbox, Required: true}, false, "Terms is required"},
		{"required select empty", schema.ComponentField{Label: "Plan", Name: "plan", Type: schema.FieldSelect, Required: true, Options: []string{"a"}}, "", "Plan is required"},
		{"optional empty email", schema.ComponentField{Label: "Email", Name: "email", Type: schema.FieldEmail}, "", ""},
		{"bad email", schema.ComponentField{Label: "Email", Name: "email", Type: schema.FieldEmail}, "not-an-email", "Please enter a valid email address"},
		{"good email", schema.ComponentField{Label: "Email", Name: "email", Type: schema.FieldEmail}, "a@b.co", ""},
		{"below min", ranged, "3", "Value must be at least 5"},
		{"above max", ranged, 11.0, "Value must be at most 10"},
		{"not a number", ranged, "abc", "Please enter a valid number"},
		{"in range", ranged, " 7 ", ""},
		{"infinity text", schema.ComponentField{Label: "N", Name: "n", Type: schema.FieldNumber}, "Inf", "Please enter a valid number"},
		{"infinity word", schema.ComponentField{Label: "N", Name: "n", Type: schema.FieldNumber}, "-infinity", "Please enter a valid number"},
		{"hex float", schema.ComponentField{Label: "N", Name: "n", Type: schema.FieldNumber}, "0x1p3", "Please enter a valid number"},
		{"digit separators", schema.ComponentField{Label: "N", Name: "n", Type: schema.FieldNumber}, "1_000", "Please enter a valid number"},
		{"overflow", schema.ComponentField{Label: "N", Name: "n", Type: schema.FieldNumber}, "1e400", "Please enter a valid number"},
		{"exponent", schema.ComponentField{Label: "N", Name: "n", Type: schema.FieldNumber}, "-1.5e2", ""},
		{"leading dot", schema.ComponentField{Label: "N", Name: "n", Type: schema.FieldNumber}, ".5", ""},
		{"fractional bound", schema.ComponentField{Label: "R", Name: "r", Type: schema.FieldNumber, Min: ptr(0.5)}, "0.25", "Value must be at least 0.5"},
		{
			"pattern custom message",
			schema.ComponentField{Label: "Zip", Name: "zip", Type: schema.FieldText, Validation: &schema.FieldValidation{Pattern: `^\d{5}$`, Message: "Five digits"}},
			"12a45",
			"Five digits",
		},
		{
			"pattern default message",
			schema.ComponentField{Label: "Zip", Name: "zip", Type: schema.FieldText, Validation: &schema.FieldValidation{Pattern: `^\d{5}$`}},
			"1",
			"Invalid format",
		},
		{
			"pattern match",
			schema.ComponentField{Label: "Zip", Name: "zip", Type: schema.FieldText, Validation: &schema.FieldValidation{Pattern: `^\d{5}$`}},
			"12345",
			"",
		},
		{
			"pattern skipped when empty",
			schema.ComponentField{Label: "Zip", Name: "zip", Type: schema.FieldText, Validation: &schema.FieldValidation{Pattern: `^\d{5}$`}},
			"",
			"",
		},
		{
			"invalid pattern fails closed",
			schema.ComponentField{Label: "Zip", Name: "zip", Type: schema.FieldText, Validation: &schema.FieldValidation{Pattern: `(`}},
			"x",
			"Invalid format",
		},
		{
			"type check precedes pattern",
			schema.ComponentField{Label: "Email", Name: "email", Type: schema.FieldEmail, Validation: &schema.FieldValidation{Pattern: `^z`, Message: "z only"}},
			"nope",
			"Please enter a valid email address",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, failed := ValidateField(tc.field, tc.value)
			if failed != (tc.want != "") {
				t.Fatalf("failed = %v, want message %q", failed, tc.want)
			}
			if got != tc.want {
				t.Fatalf("message = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateAllCollectsEveryField(t *testing.T) {
	t.Parallel()

	form := []schema.ComponentField{
		{Label: "Name", Name: "name", Type: schema.FieldText, Required: true},
		{Label: "Email", Name: "email", Type: schema.FieldEmail, Required: true},
		{Label: "Age", Name: "age", Type: schema.FieldNumber, Min: ptr(18)},
	}

	errs := ValidateAll(form, map[string]any{"email": "x", "age": "12"})
	want := Errors{
		{Name: "name", Message: "Name is required"},
		{Name: "email", Message: "Please enter a valid email address"},
		{Name: "age", Message: "Value must be at least 18"},
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	if msg, ok := errs.For("email"); !ok || msg != "Please enter a valid email address" {
		t.Fatalf("For(email) = %q, %v", msg, ok)
	}
	if got := errs.Without("name"); len(got) != 2 {
		t.Fatalf("Without(name) = %+v", got)
	}

	err := errs.Err()
	if err == nil || !strings.Contains(err.Error(), "3 invalid") {
		t.Fatalf("unexpected aggregate error %v", err)
	}
	recovered, ok := AsErrors(err)
	if !ok {
		t.Fatal("expected field errors to be recoverable")
	}
	if diff := cmp.Diff(want, recovered); diff != "" {
		t.Fatalf("recovered mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateAllNoErrors(t *testing.T) {
	t.Parallel()

	form := []schema.ComponentField{{Label: "Name", Name: "name", Type: schema.FieldText, Required: true}}
	errs := ValidateAll(form, map[string]any{"name": "Ada"})
	if len(errs) != 0 || errs.Err() != nil || errs.Map() != nil {
		t.Fatalf("expected no errors, got %+v", errs)
	}
}
