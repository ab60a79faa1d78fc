package secret

import (
	"errors"
	"strings"
	"testing"
)

func TestParseJSON_FlatObject(t *testing.T) {
	data := []byte(`{"FOO": "1", "BAR": "two", "COUNT": 42, "ACTIVE": true, "EMPTY": null}`)

	rec, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	cases := map[string]string{
		"FOO":    "1",
		"BAR":    "two",
		"COUNT":  "42",
		"ACTIVE": "true",
		"EMPTY":  "",
	}
	for k, want := range cases {
		if v, ok := rec.Get(k); !ok || v != want {
			t.Errorf("%s = %q (present=%v), want %q", k, v, ok, want)
		}
	}

	// Order must follow the document.
	keys := rec.Keys()
	if keys[0] != "FOO" || keys[1] != "BAR" || keys[2] != "COUNT" {
		t.Errorf("key order not preserved: %v", keys)
	}
}

func TestParseJSON_RejectsNesting(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"nested object", `{"a": {"b": "c"}}`},
		{"array", `{"a": [1, 2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.data))
			var notFlat *ErrNotFlat
			if !errors.As(err, &notFlat) {
				t.Errorf("expected ErrNotFlat, got %v", err)
			}
		})
	}
}

func TestParseJSON_RejectsNonObject(t *testing.T) {
	for _, data := range []string{`[1,2]`, `"str"`, `42`, `not json`} {
		if _, err := ParseJSON([]byte(data)); err == nil {
			t.Errorf("expected error for %s", data)
		}
	}
}

func TestParseJSON_ToleratesComments(t *testing.T) {
	data := []byte("{\n  // api credentials\n  \"KEY\": \"abc\",\n}\n")
	rec, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON failed on commented JSON: %v", err)
	}
	if v, _ := rec.Get("KEY"); v != "abc" {
		t.Errorf("KEY = %q, want abc", v)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	rec := NewRecord()
	rec.Set("NAME", "value with spaces")
	rec.Set("PORT", "8080")
	rec.Set("RATIO", "0.5")
	rec.Set("DEBUG", "false")
	rec.Set("QUOTE", `has "quotes"`)
	rec.Set("EMPTY", "")

	out, err := ParseJSON(RenderJSON(rec))
	if err != nil {
		t.Fatalf("round trip parse failed: %v", err)
	}
	// null renders as "" which renders as the empty string literal, so the
	// round trip compares equal on the string representation.
	if !rec.Equal(out) {
		t.Errorf("round trip mismatch:\n in: %v\nout: %v", rec.Keys(), out.Keys())
	}
}

func TestParseEnv(t *testing.T) {
	data := []byte(`
# credentials
FOO=1
export BAR=two
QUOTED="hello world"
SINGLE='single quoted'
ESCAPED="line1\nline2"
EMPTY=
`)
	rec, err := ParseEnv(data)
	if err != nil {
		t.Fatalf("ParseEnv failed: %v", err)
	}

	cases := map[string]string{
		"FOO":     "1",
		"BAR":     "two",
		"QUOTED":  "hello world",
		"SINGLE":  "single quoted",
		"ESCAPED": "line1\nline2",
		"EMPTY":   "",
	}
	for k, want := range cases {
		if v, ok := rec.Get(k); !ok || v != want {
			t.Errorf("%s = %q (present=%v), want %q", k, v, ok, want)
		}
	}
}

func TestParseEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing separator", "JUSTAKEY\n"},
		{"invalid key", "9BAD=1\n"},
		{"key with dash", "BAD-KEY=1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseEnv([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEnvRoundTrip(t *testing.T) {
	rec := NewRecord()
	rec.Set("PLAIN", "value")
	rec.Set("SPACED", "two words")
	rec.Set("HASHY", "a#b")
	rec.Set("QUOTED", `say "hi"`)
	rec.Set("NUM", "123")

	out, err := ParseEnv(RenderEnv(rec))
	if err != nil {
		t.Fatalf("round trip parse failed: %v", err)
	}
	if !rec.Equal(out) {
		t.Errorf("round trip mismatch")
	}
}

func TestRenderEnv_Format(t *testing.T) {
	rec := NewRecord()
	rec.Set("A", "1")
	rec.Set("B", "two words")

	got := string(RenderEnv(rec))
	want := "A=1\nB=\"two words\"\n"
	if got != want {
		t.Errorf("RenderEnv = %q, want %q", got, want)
	}
}

func TestRenderJSON_BareLiterals(t *testing.T) {
	rec := NewRecord()
	rec.Set("N", "42")
	rec.Set("B", "true")
	rec.Set("S", "word")

	got := string(RenderJSON(rec))
	if !strings.Contains(got, `"N": 42`) {
		t.Errorf("number not rendered bare: %s", got)
	}
	if !strings.Contains(got, `"B": true`) {
		t.Errorf("bool not rendered bare: %s", got)
	}
	if !strings.Contains(got, `"S": "word"`) {
		t.Errorf("string not quoted: %s", got)
	}
}

func TestValidateKeys(t *testing.T) {
	if err := ValidateEnvKey("GOOD_KEY1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateEnvKey("bad-key"); err == nil {
		t.Error("dash should be invalid for env keys")
	}
	if err := ValidateClusterKey("tls.crt"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateClusterKey("has space"); err == nil {
		t.Error("space should be invalid for cluster keys")
	}
}
