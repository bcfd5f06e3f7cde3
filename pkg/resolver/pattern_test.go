package resolver

import (
	"errors"
	"reflect"
	"testing"
)

func TestJoinFragments(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      string
	}{
		{"empty", nil, "/"},
		{"all empty", []string{"", "/", "//"}, "/"},
		{"single", []string{"users"}, "/users"},
		{"leading and trailing", []string{"/api/", "/users/"}, "/api/users"},
		{"inner repeated", []string{"api//v1", "users"}, "/api/v1/users"},
		{"placeholder first", []string{"{path}/to/route"}, "/{path}/to/route"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinFragments(tt.fragments); got != tt.want {
				t.Errorf("joinFragments(%q) = %q, want %q", tt.fragments, got, tt.want)
			}
		})
	}
}

func TestScanTokens(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
	}{
		{"/users", nil},
		{"/users/{id}", []string{"id"}},
		{"/{a}/{b}", []string{"a", "b"}},
		{`/year/{year:\d{4}}`, []string{`year:\d{4}`}},
		{`/esc/{x:a\}b}`, []string{`x:a\}b`}},
		{"/stray}/{id}", []string{"id"}},
		{"/open/{id", nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			var got []string
			for _, tok := range scanTokens(tt.pattern) {
				got = append(got, tok.body)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("scanTokens(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestUnbalancedBrace(t *testing.T) {
	tests := []struct {
		pattern string
		want    int
	}{
		{"/users", -1},
		{"/users/{id}", -1},
		{`/year/{year:\d{4}}`, -1},
		{`/esc/{x:a\}b}`, -1},
		{"/bad/{b", 5},
		{"/{a}/{b", 5},
		{"/{a}}/{b}", 4},
		{"/stray}", 6},
		{`/{x:\d{2}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if got := unbalancedBrace(tt.pattern); got != tt.want {
				t.Errorf("unbalancedBrace(%q) = %d, want %d", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestNormalizePattern(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"/users", "/users"},
		{"/route/{id:[a-zA-Z0-9]+}", "/route/{[a-zA-Z0-9]+}"},
		{"/route/{slug:[a-zA-Z0-9]+}", "/route/{[a-zA-Z0-9]+}"},
		{`/{section:[A-Za-z]+}/two/{id}`, "/{[A-Za-z]+}/two/{id}"},
		{`/year/{year:\d{4}}`, `/year/{\d{4}}`},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if got := NormalizePattern(tt.pattern); got != tt.want {
				t.Errorf("NormalizePattern(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders(`/api/{version:\d+}/users/{id}`)
	want := []Placeholder{
		{Name: "version", Expr: `\d+`},
		{Name: "id"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Placeholders() = %+v, want %+v", got, want)
	}
}

func TestCompileExpression(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{`\d+`, false},
		{`[a-z]{2,3}`, false},
		{`a\~b`, false},
		{"~245", true},
		{"abc~", true},
		{"(", true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			err := compileExpression(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("compileExpression(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}

func TestReplacePlaceholders(t *testing.T) {
	got, err := ReplacePlaceholders(`/api/{version:\d+}/users/{id}`, func(p Placeholder) (string, error) {
		return "{" + p.Name + "}", nil
	})
	if err != nil {
		t.Fatalf("ReplacePlaceholders() error = %v", err)
	}
	if want := "/api/{version}/users/{id}"; got != want {
		t.Errorf("ReplacePlaceholders() = %q, want %q", got, want)
	}

	_, err = ReplacePlaceholders("/{a}/{b}", func(p Placeholder) (string, error) {
		if p.Name == "a" {
			return "", errors.New("boom")
		}
		t.Errorf("fn called for %q after an error", p.Name)
		return "", nil
	})
	if err == nil {
		t.Error("ReplacePlaceholders() expected error")
	}
}
