package cli

import (
	"encoding/json"
	"fmt"

	"github.com/jmespath/go-jmespath"
)

// ApplyQuery evaluates a JMESPath expression against a JSON document and
// returns the result as indented JSON. String results are printed bare so a
// single extracted value pipes cleanly.
func ApplyQuery(jsonData []byte, expression string) (string, error) {
	var data interface{}
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	jp, err := jmespath.Compile(expression)
	if err != nil {
		return "", fmt.Errorf("invalid JMESPath expression %q: %w", expression, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}

	switch v := result.(type) {
	case nil:
		return "null", nil
	case string:
		return v, nil
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal query result: %w", err)
	}
	return string(output), nil
}

// ValidQuery reports whether expression compiles as JMESPath.
func ValidQuery(expression string) bool {
	_, err := jmespath.Compile(expression)
	return err == nil
}
