package validation

import (
	"errors"
	"testing"
)

type signup struct {
	Email    string  `json:"email" validate:"required,email"`
	Name     string  `json:"name" validate:"required,max=5"`
	Password string  `json:"password" validate:"required"`
	Confirm  string  `json:"confirm_password" validate:"eqfield=Password"`
	Offset   float64 `json:"offset" validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      signup
		wantFields []string
	}{
		{
			name:  "valid",
			input: signup{Email: "a@example.com", Name: "Ann", Password: "pw", Confirm: "pw"},
		},
		{
			name:       "bad email and long name",
			input:      signup{Email: "nope", Name: "Annabelle", Password: "pw", Confirm: "pw"},
			wantFields: []string{"email", "name"},
		},
		{
			name:       "missing everything",
			input:      signup{Offset: -1},
			wantFields: []string{"email", "name", "password", "offset"},
		},
		{
			name:       "confirmation mismatch",
			input:      signup{Email: "a@example.com", Name: "Ann", Password: "pw", Confirm: "other"},
			wantFields: []string{"confirm_password"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Struct(tc.input)
			if len(got) != len(tc.wantFields) {
				t.Fatalf("expected %d errors, got %v", len(tc.wantFields), got)
			}
			for i, field := range tc.wantFields {
				if got[i].Field != field {
					t.Fatalf("error %d: expected field %q, got %q", i, field, got[i].Field)
				}
			}
		})
	}
}

func TestErrorsErr(t *testing.T) {
	var errs Errors
	if errs.Err() != nil {
		t.Fatal("empty list should be nil error")
	}

	errs.Add("url", "unrecognised video URL")
	err := errs.Err()
	if err == nil {
		t.Fatal("expected error")
	}

	var got Errors
	if !errors.As(err, &got) || !got.Has("url") {
		t.Fatalf("expected url error, got %v", err)
	}
	if err.Error() != "url: unrecognised video URL" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
