package secret

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
)

// Syntax identifies a temp-file / storage format for a record.
type Syntax int

const (
	// SyntaxJSON is a flat JSON object.
	SyntaxJSON Syntax = iota
	// SyntaxEnv is dotenv-style KEY=VALUE lines.
	SyntaxEnv
)

var (
	// envKeyPattern matches valid dotenv keys.
	envKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// clusterKeyPattern matches valid Kubernetes secret data keys.
	clusterKeyPattern = regexp.MustCompile(`^[-._a-zA-Z0-9]+$`)
)

// ErrNotFlat is returned when JSON content contains nested objects or arrays.
type ErrNotFlat struct {
	Key string
}

func (e *ErrNotFlat) Error() string {
	return fmt.Sprintf("key %q holds a nested value; only flat objects are supported", e.Key)
}

// ParseJSON parses a flat JSON object into a record, preserving key order.
// Comments and trailing commas are tolerated. Scalar leaf values (string,
// number, boolean, null) are kept as their literal text; nested objects and
// arrays yield ErrNotFlat.
func ParseJSON(data []byte) (*Record, error) {
	data = jsonc.ToJSON(data)

	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("top-level JSON value must be an object")
	}

	rec := NewRecord()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		key := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}

		switch v := valTok.(type) {
		case string:
			rec.Set(key, v)
		case json.Number:
			rec.Set(key, v.String())
		case bool:
			rec.Set(key, strconv.FormatBool(v))
		case nil:
			rec.Set(key, "")
		case json.Delim:
			return nil, &ErrNotFlat{Key: key}
		default:
			return nil, fmt.Errorf("key %q holds an unsupported value", key)
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	return rec, nil
}

// RenderJSON renders a record as a pretty-printed flat JSON object in key
// order. Values whose text is a valid JSON number or boolean literal are
// emitted bare so that ParseJSON(RenderJSON(r)) round-trips.
func RenderJSON(rec *Record) []byte {
	var b strings.Builder
	b.WriteString("{\n")
	keys := rec.Keys()
	for i, k := range keys {
		v, _ := rec.Get(k)
		b.WriteString("  ")
		b.WriteString(quoteJSON(k))
		b.WriteString(": ")
		b.WriteString(renderJSONValue(v))
		if i < len(keys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	return []byte(b.String())
}

func renderJSONValue(v string) string {
	if v == "true" || v == "false" {
		return v
	}
	if isJSONNumber(v) {
		return v
	}
	return quoteJSON(v)
}

func isJSONNumber(v string) bool {
	if v == "" {
		return false
	}
	// json.Number accepts anything strconv can parse as float, but JSON
	// forbids leading plus signs and bare dots.
	if v[0] == '+' || v[0] == '.' || strings.HasSuffix(v, ".") {
		return false
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}

func quoteJSON(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}

// ParseEnv parses dotenv-style content into a record. Blank lines and lines
// starting with # are skipped; an optional "export " prefix is stripped;
// values may be single- or double-quoted.
func ParseEnv(data []byte) (*Record, error) {
	rec := NewRecord()
	for i, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		trimmed = strings.TrimPrefix(trimmed, "export ")

		eq := strings.Index(trimmed, "=")
		if eq < 0 {
			return nil, fmt.Errorf("line %d: missing '=' separator", i+1)
		}

		key := strings.TrimSpace(trimmed[:eq])
		if !envKeyPattern.MatchString(key) {
			return nil, fmt.Errorf("line %d: invalid key %q", i+1, key)
		}

		value := strings.TrimSpace(trimmed[eq+1:])
		value = unquoteEnv(value)

		rec.Set(key, value)
	}
	return rec, nil
}

func unquoteEnv(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			inner := v[1 : len(v)-1]
			if v[0] == '"' {
				inner = strings.ReplaceAll(inner, `\"`, `"`)
				inner = strings.ReplaceAll(inner, `\n`, "\n")
			}
			return inner
		}
	}
	return v
}

// RenderEnv renders a record as dotenv lines in key order. Values containing
// whitespace, quotes or '#' are double-quoted.
func RenderEnv(rec *Record) []byte {
	var b strings.Builder
	for _, k := range rec.Keys() {
		v, _ := rec.Get(k)
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(quoteEnv(v))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func quoteEnv(v string) string {
	if v == "" {
		return v
	}
	if strings.ContainsAny(v, " \t\n\"'#") {
		escaped := strings.ReplaceAll(v, `"`, `\"`)
		escaped = strings.ReplaceAll(escaped, "\n", `\n`)
		return `"` + escaped + `"`
	}
	return v
}

// Render renders a record in the given syntax.
func Render(rec *Record, syntax Syntax) []byte {
	if syntax == SyntaxEnv {
		return RenderEnv(rec)
	}
	return RenderJSON(rec)
}

// Parse parses content in the given syntax.
func Parse(data []byte, syntax Syntax) (*Record, error) {
	if syntax == SyntaxEnv {
		return ParseEnv(data)
	}
	return ParseJSON(data)
}

// ValidateEnvKey reports whether key is a valid dotenv key.
func ValidateEnvKey(key string) error {
	if !envKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid env key %q: must match %s", key, envKeyPattern.String())
	}
	return nil
}

// ValidateClusterKey reports whether key is a valid cluster secret data key.
func ValidateClusterKey(key string) error {
	if !clusterKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid secret key %q: must match %s", key, clusterKeyPattern.String())
	}
	return nil
}
