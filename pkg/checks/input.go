// Package checks implements the built-in test catalog: concrete tests that
// plug into the execution engine through the model.Test contract. Importing
// the package registers every test in catalog.Default.
package checks

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/aristanetworks/anta/pkg/util"
)

// decodeInput maps a raw catalog input onto a typed input struct with
// strict field checking, so a misspelled input key is a validation error
// instead of a silently ignored setting.
func decodeInput(input map[string]interface{}, out interface{}) error {
	data, err := yaml.Marshal(input)
	if err != nil {
		return util.NewValidationError("encoding input: " + err.Error())
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return util.NewValidationError("invalid input: " + err.Error())
	}
	return nil
}
