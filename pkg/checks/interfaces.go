package checks

import (
	"fmt"

	"github.com/aristanetworks/anta/pkg/model"
	"github.com/aristanetworks/anta/pkg/util"
)

// VerifyInterfacesStatus checks that the listed interfaces are up/up, one
// atomic sub-result per interface.
type VerifyInterfacesStatus struct {
	model.TestMeta
	Interfaces []string
}

func newVerifyInterfacesStatus(input map[string]interface{}) (model.Test, error) {
	var in struct {
		Interfaces []string      `yaml:"interfaces"`
		Filters    model.Filters `yaml:"filters"`
	}
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	v := &util.ValidationBuilder{}
	v.Add(len(in.Interfaces) > 0, "VerifyInterfacesStatus: interfaces is required")
	if err := v.Build(); err != nil {
		return nil, err
	}

	return &VerifyInterfacesStatus{
		TestMeta: model.TestMeta{
			TestName:        "VerifyInterfacesStatus",
			TestDescription: "Verifies the operational status of interfaces",
			TestCategories:  []string{"interfaces"},
			Cmds:            []*model.Command{model.NewCommand("show interfaces description")},
			Filter:          in.Filters,
		},
		Interfaces: in.Interfaces,
	}, nil
}

func (t *VerifyInterfacesStatus) Assess(r *model.TestResult) {
	out, err := t.Cmds[0].JSONOutput()
	if err != nil {
		r.Error(err.Error())
		return
	}
	descriptions, _ := out["interfaceDescriptions"].(map[string]interface{})

	for _, name := range t.Interfaces {
		sub := r.Atomic("interface " + name)

		raw, ok := descriptions[name]
		if !ok {
			sub.Failure(fmt.Sprintf("interface %s not found", name))
			continue
		}
		intf, _ := raw.(map[string]interface{})
		status, _ := intf["interfaceStatus"].(string)
		protocol, _ := intf["lineProtocolStatus"].(string)
		if status == "up" && protocol == "up" {
			sub.Success()
			continue
		}
		sub.Failure(fmt.Sprintf("interface %s is %s/%s, expected up/up", name, status, protocol))
	}
}
