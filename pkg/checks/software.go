package checks

import (
	"fmt"

	"github.com/aristanetworks/anta/pkg/model"
	"github.com/aristanetworks/anta/pkg/util"
)

// VerifySoftwareVersion checks the device runs one of the allowed EOS
// versions.
type VerifySoftwareVersion struct {
	model.TestMeta
	Versions []string
}

func newVerifySoftwareVersion(input map[string]interface{}) (model.Test, error) {
	var in struct {
		Versions []string      `yaml:"versions"`
		Filters  model.Filters `yaml:"filters"`
	}
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	v := &util.ValidationBuilder{}
	v.Add(len(in.Versions) > 0, "VerifySoftwareVersion: versions is required")
	if err := v.Build(); err != nil {
		return nil, err
	}

	return &VerifySoftwareVersion{
		TestMeta: model.TestMeta{
			TestName:        "VerifySoftwareVersion",
			TestDescription: "Verifies the device is running one of the allowed software versions",
			TestCategories:  []string{"software"},
			Cmds:            []*model.Command{model.NewCommand("show version")},
			Filter:          in.Filters,
		},
		Versions: in.Versions,
	}, nil
}

func (t *VerifySoftwareVersion) Assess(r *model.TestResult) {
	out, err := t.Cmds[0].JSONOutput()
	if err != nil {
		r.Error(err.Error())
		return
	}
	version, _ := out["version"].(string)
	for _, want := range t.Versions {
		if version == want {
			r.Success()
			return
		}
	}
	r.Failure(fmt.Sprintf("device is running version %q, expected one of %v", version, t.Versions))
}

// VerifyUptime checks the device has been up for at least a minimum number
// of seconds.
type VerifyUptime struct {
	model.TestMeta
	Minimum float64
}

func newVerifyUptime(input map[string]interface{}) (model.Test, error) {
	var in struct {
		Minimum float64       `yaml:"minimum"`
		Filters model.Filters `yaml:"filters"`
	}
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	v := &util.ValidationBuilder{}
	v.Add(in.Minimum > 0, "VerifyUptime: minimum must be positive")
	if err := v.Build(); err != nil {
		return nil, err
	}

	return &VerifyUptime{
		TestMeta: model.TestMeta{
			TestName:        "VerifyUptime",
			TestDescription: "Verifies the device uptime is above a minimum",
			TestCategories:  []string{"software"},
			Cmds:            []*model.Command{model.NewCommand("show uptime")},
			Filter:          in.Filters,
		},
		Minimum: in.Minimum,
	}, nil
}

func (t *VerifyUptime) Assess(r *model.TestResult) {
	out, err := t.Cmds[0].JSONOutput()
	if err != nil {
		r.Error(err.Error())
		return
	}
	uptime, ok := out["upTime"].(float64)
	if !ok {
		r.Error("upTime missing from output")
		return
	}
	if uptime >= t.Minimum {
		r.Success()
		return
	}
	r.Failure(fmt.Sprintf("device uptime is %.0fs, expected at least %.0fs", uptime, t.Minimum))
}
