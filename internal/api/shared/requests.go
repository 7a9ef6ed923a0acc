package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MaxJSONBodyBytes bounds the size of JSON request bodies.
const MaxJSONBodyBytes = 1 << 20

// ErrInvalidJSON is returned for request bodies that are not a JSON object
// of the expected shape.
var ErrInvalidJSON = errors.New("invalid JSON body")

// Global validator instance for reuse
var validate = validator.New()

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	_, err := DecodeJSONObject(w, r, v)
	return err
}

// DecodeJSONObject decodes a JSON object body into v and also returns the
// object's top-level keys, so that callers can reject fields v does not
// declare. Type mismatches and non-object bodies return ErrInvalidJSON.
func DecodeJSONObject(w http.ResponseWriter, r *http.Request, v interface{}) ([]string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	body = bytes.TrimSpace(body)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: expected an object", ErrInvalidJSON)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	return keys, nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	// Check if the object implements the Validate interface
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}

	// Otherwise, use the struct validator
	return validate.Struct(v)
}
