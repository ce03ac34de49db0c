// Package model defines the test data model: commands, templates, test
// results, and the contract every concrete test implements.
package model

// TestStatus is the outcome of a test or atomic sub-check.
//
// The string values are a compatibility surface consumed by the JSON, JUnit
// and Markdown reporters and must not be renamed.
type TestStatus string

const (
	StatusUnset   TestStatus = "unset"
	StatusSuccess TestStatus = "success"
	StatusSkipped TestStatus = "skipped"
	StatusFailure TestStatus = "failure"
	StatusError   TestStatus = "error"
)

// rank orders statuses for precedence resolution. Error is the worst,
// unset the weakest. Success outranks skipped: one skipped atomic check
// amid successes must not demote a result that would otherwise pass.
func rank(s TestStatus) int {
	switch s {
	case StatusError:
		return 4
	case StatusFailure:
		return 3
	case StatusSuccess:
		return 2
	case StatusSkipped:
		return 1
	default:
		return 0
	}
}

// Worst returns the higher-precedence of two statuses.
func Worst(a, b TestStatus) TestStatus {
	if rank(b) > rank(a) {
		return b
	}
	return a
}

// ValidStatus reports whether s is one of the five defined statuses.
func ValidStatus(s TestStatus) bool {
	switch s {
	case StatusUnset, StatusSuccess, StatusSkipped, StatusFailure, StatusError:
		return true
	}
	return false
}
