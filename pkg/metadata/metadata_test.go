package metadata

import (
	"errors"
	"net/http"
	"testing"
)

func TestValidateInvokable(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {}

	tests := []struct {
		name    string
		input   any
		wantErr bool
	}{
		{"string", "users.show", false},
		{"empty string", "", true},
		{"array pair", [2]string{"UserController", "show"}, false},
		{"array pair empty element", [2]string{"UserController", ""}, true},
		{"slice pair", []string{"UserController", "show"}, false},
		{"slice too long", []string{"a", "b", "c"}, true},
		{"func", handler, false},
		{"handler func", http.HandlerFunc(handler), false},
		{"handler", http.NotFoundHandler(), false},
		{"nil", nil, true},
		{"int", 42, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInvokable(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateInvokable(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInvokable) {
				t.Errorf("ValidateInvokable(%v) error = %v, want ErrInvalidInvokable", tt.input, err)
			}
		})
	}
}

func TestRoute_Validate(t *testing.T) {
	route := &Route{Invokable: "users.index"}
	if err := route.Validate(); !errors.Is(err, ErrNoMethods) {
		t.Errorf("Validate() = %v, want ErrNoMethods", err)
	}

	route.Methods = []string{http.MethodGet}
	if err := route.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestGroup_String(t *testing.T) {
	var nilGroup *Group
	if got := nilGroup.String(); got != "<nil>" {
		t.Errorf("String() = %q, want %q", got, "<nil>")
	}
	if got := (&Group{}).String(); got != "<anonymous>" {
		t.Errorf("String() = %q, want %q", got, "<anonymous>")
	}
	if got := (&Group{ID: "api"}).String(); got != "api" {
		t.Errorf("String() = %q, want %q", got, "api")
	}
}
