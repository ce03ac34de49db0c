package report

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/aristanetworks/anta/pkg/model"
	"github.com/aristanetworks/anta/pkg/results"
)

// WriteJUnit writes a JUnit XML report for CI integration: one testsuite
// per device, one testcase per (device, test) result.
func WriteJUnit(w io.Writer, m *results.Manager) error {
	suites := junitTestSuites{}

	stats := m.DeviceStats()
	for _, device := range sortedStatKeys(stats) {
		rows, err := m.FilterByDevices(device).GetResults(nil, "test")
		if err != nil {
			return err
		}

		suite := junitTestSuite{Name: device, Tests: len(rows)}
		for _, r := range rows {
			tc := junitTestCase{
				Name:      r.Test,
				ClassName: device,
			}
			message := strings.Join(r.Messages, "\n")

			switch r.Result {
			case model.StatusFailure:
				suite.Failures++
				tc.Failure = &junitFailure{Message: message, Type: "failure"}
			case model.StatusError:
				suite.Errors++
				tc.Error = &junitError{Message: message, Type: "error"}
			case model.StatusSkipped:
				suite.Skipped++
				tc.Skipped = &junitSkipped{Message: message}
			case model.StatusUnset:
				// Anomalous: the test body set nothing. Surface as an error
				// so CI flags it rather than counting it as a pass.
				suite.Errors++
				tc.Error = &junitError{Message: "test completed without setting a status", Type: "unset"}
			}
			suite.Cases = append(suite.Cases, tc)
		}
		suites.Suites = append(suites.Suites, suite)
	}

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// JUnit XML types

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Errors   int             `xml:"errors,attr"`
	Skipped  int             `xml:"skipped,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
	Error     *junitError   `xml:"error,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

type junitSkipped struct {
	Message string `xml:"message,attr"`
}

type junitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}
