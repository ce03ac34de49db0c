package checks

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/itchyny/gojq"

	"github.com/aristanetworks/anta/pkg/model"
	"github.com/aristanetworks/anta/pkg/util"
)

// VerifyCommandJSON runs an arbitrary command and evaluates a jq expression
// against its structured output. With an expected value the first produced
// value must equal it; without one, the expression must produce a truthy
// value. This is the escape hatch for assertions with no dedicated test.
type VerifyCommandJSON struct {
	model.TestMeta
	Expression string
	Expected   interface{}
	hasExpect  bool
	query      *gojq.Query
}

func newVerifyCommandJSON(input map[string]interface{}) (model.Test, error) {
	var in struct {
		Command    string        `yaml:"command"`
		Expression string        `yaml:"expression"`
		Expected   interface{}   `yaml:"expected"`
		Filters    model.Filters `yaml:"filters"`
	}
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	v := &util.ValidationBuilder{}
	v.Add(in.Command != "", "VerifyCommandJSON: command is required")
	v.Add(in.Expression != "", "VerifyCommandJSON: expression is required")
	if err := v.Build(); err != nil {
		return nil, err
	}

	query, err := gojq.Parse(in.Expression)
	if err != nil {
		return nil, util.NewValidationError(fmt.Sprintf("VerifyCommandJSON: invalid expression %q: %v", in.Expression, err))
	}

	_, hasExpect := input["expected"]
	return &VerifyCommandJSON{
		TestMeta: model.TestMeta{
			TestName:        "VerifyCommandJSON",
			TestDescription: "Verifies a jq expression against a command's structured output",
			TestCategories:  []string{"custom"},
			Cmds:            []*model.Command{model.NewCommand(in.Command)},
			Filter:          in.Filters,
		},
		Expression: in.Expression,
		Expected:   in.Expected,
		hasExpect:  hasExpect,
		query:      query,
	}, nil
}

func (t *VerifyCommandJSON) Assess(r *model.TestResult) {
	out, err := t.Cmds[0].JSONOutput()
	if err != nil {
		r.Error(err.Error())
		return
	}

	iter := t.query.Run(map[string]interface{}(out))
	value, ok := iter.Next()
	if !ok {
		r.Failure(fmt.Sprintf("expression %q produced no value", t.Expression))
		return
	}
	if evalErr, isErr := value.(error); isErr {
		r.Failure(fmt.Sprintf("expression %q failed: %v", t.Expression, evalErr))
		return
	}

	if t.hasExpect {
		if jsonEqual(value, t.Expected) {
			r.Success()
			return
		}
		r.Failure(fmt.Sprintf("expression %q produced %v, expected %v", t.Expression, value, t.Expected))
		return
	}

	if value == nil || value == false {
		r.Failure(fmt.Sprintf("expression %q produced %v", t.Expression, value))
		return
	}
	r.Success()
}

// jsonEqual compares two values through a JSON round-trip so numeric types
// from YAML inputs and jq output compare by value.
func jsonEqual(a, b interface{}) bool {
	return reflect.DeepEqual(jsonNormalize(a), jsonNormalize(b))
}

func jsonNormalize(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
