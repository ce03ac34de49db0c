package checks

import (
	"fmt"
	"sort"

	"github.com/aristanetworks/anta/pkg/model"
)

// fixedSystemPlatforms are the hardware families with real sensors and
// power supplies. Hardware tests declare them so virtual platforms
// (vEOS-lab, cEOS) are skipped instead of failed.
var fixedSystemPlatforms = []string{"DCS-7"}

// VerifyTemperature checks the overall system temperature status.
type VerifyTemperature struct {
	model.TestMeta
}

func newVerifyTemperature(input map[string]interface{}) (model.Test, error) {
	var in struct {
		Filters model.Filters `yaml:"filters"`
	}
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}

	return &VerifyTemperature{
		TestMeta: model.TestMeta{
			TestName:        "VerifyTemperature",
			TestDescription: "Verifies the system temperature status",
			TestCategories:  []string{"hardware"},
			TestPlatforms:   fixedSystemPlatforms,
			Cmds:            []*model.Command{model.NewCommand("show system environment temperature")},
			Filter:          in.Filters,
		},
	}, nil
}

func (t *VerifyTemperature) Assess(r *model.TestResult) {
	out, err := t.Cmds[0].JSONOutput()
	if err != nil {
		r.Error(err.Error())
		return
	}
	status, _ := out["systemStatus"].(string)
	if status == "temperatureOk" {
		r.Success()
		return
	}
	r.Failure(fmt.Sprintf("system temperature status is %q, expected temperatureOk", status))
}

// VerifyPowerSupplies checks that every power supply is in the ok state,
// one atomic sub-result per supply.
type VerifyPowerSupplies struct {
	model.TestMeta
}

func newVerifyPowerSupplies(input map[string]interface{}) (model.Test, error) {
	var in struct {
		Filters model.Filters `yaml:"filters"`
	}
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}

	return &VerifyPowerSupplies{
		TestMeta: model.TestMeta{
			TestName:        "VerifyPowerSupplies",
			TestDescription: "Verifies the state of power supplies",
			TestCategories:  []string{"hardware"},
			TestPlatforms:   fixedSystemPlatforms,
			Cmds:            []*model.Command{model.NewCommand("show system environment power")},
			Filter:          in.Filters,
		},
	}, nil
}

func (t *VerifyPowerSupplies) Assess(r *model.TestResult) {
	out, err := t.Cmds[0].JSONOutput()
	if err != nil {
		r.Error(err.Error())
		return
	}
	supplies, _ := out["powerSupplies"].(map[string]interface{})
	if len(supplies) == 0 {
		r.Failure("no power supplies reported")
		return
	}
	names := make([]string, 0, len(supplies))
	for name := range supplies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sub := r.Atomic("power supply " + name)
		supply, _ := supplies[name].(map[string]interface{})
		state, _ := supply["state"].(string)
		if state == "ok" {
			sub.Success()
			continue
		}
		sub.Failure(fmt.Sprintf("power supply %s state is %q, expected ok", name, state))
	}
}
