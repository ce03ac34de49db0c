package checks

import (
	"strings"

	"github.com/aristanetworks/anta/pkg/model"
)

// VerifyNTP checks that the NTP client is synchronized. The command output
// is only available as text, so this test exercises the raw-format path.
type VerifyNTP struct {
	model.TestMeta
}

func newVerifyNTP(input map[string]interface{}) (model.Test, error) {
	var in struct {
		Filters model.Filters `yaml:"filters"`
	}
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}

	return &VerifyNTP{
		TestMeta: model.TestMeta{
			TestName:        "VerifyNTP",
			TestDescription: "Verifies NTP is synchronized",
			TestCategories:  []string{"system"},
			Cmds:            []*model.Command{model.NewTextCommand("show ntp status")},
			Filter:          in.Filters,
		},
	}, nil
}

func (t *VerifyNTP) Assess(r *model.TestResult) {
	out, err := t.Cmds[0].TextOutput()
	if err != nil {
		r.Error(err.Error())
		return
	}
	first := out
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		first = out[:i]
	}
	if strings.HasPrefix(first, "synchronised") || strings.HasPrefix(first, "synchronized") {
		r.Success()
		return
	}
	r.Failure("NTP server is not synchronized: " + strings.TrimSpace(first))
}
