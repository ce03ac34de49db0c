package model

// TestResult is the outcome of one (device, test) scheduling unit.
//
// The JSON field names are a compatibility surface consumed by the reporters
// and must not be renamed.
type TestResult struct {
	Name        string     `json:"name"` // device name
	Test        string     `json:"test"`
	Categories  []string   `json:"categories"`
	Description string     `json:"description"`
	CustomField string     `json:"custom_field"`
	Result      TestStatus `json:"result"`
	Messages    []string   `json:"messages"`

	atomics   []*AtomicTestResult
	errorFlag bool
}

// AtomicTestResult is a named sub-check (one peer, one interface) that rolls
// up into its parent TestResult.
type AtomicTestResult struct {
	Name     string     `json:"name"`
	Result   TestStatus `json:"result"`
	Messages []string   `json:"messages"`

	errorFlag bool
}

// NewTestResult creates an unset result for a device/test pair.
func NewTestResult(device, test, description string, categories []string) *TestResult {
	return &TestResult{
		Name:        device,
		Test:        test,
		Description: description,
		Categories:  categories,
		Result:      StatusUnset,
	}
}

// set applies the status precedence rule: unset < skipped < success <
// failure < error, with error terminal once set.
func (r *TestResult) set(s TestStatus, messages []string) {
	r.Messages = append(r.Messages, messages...)
	if r.errorFlag {
		return
	}
	if s == StatusError {
		r.errorFlag = true
		r.Result = StatusError
		return
	}
	r.Result = Worst(r.Result, s)
}

// Success marks the result successful unless a stronger status was set.
func (r *TestResult) Success(messages ...string) {
	r.set(StatusSuccess, messages)
}

// Failure marks the result failed; overrides success, skipped and unset.
func (r *TestResult) Failure(messages ...string) {
	r.set(StatusFailure, messages)
}

// Skipped marks the result skipped; overrides only unset.
func (r *TestResult) Skipped(messages ...string) {
	r.set(StatusSkipped, messages)
}

// Error marks the result errored. Error is terminal: later calls append
// messages but never change the status back.
func (r *TestResult) Error(messages ...string) {
	r.set(StatusError, messages)
}

// HasError reports whether an error status was ever recorded.
func (r *TestResult) HasError() bool {
	return r.errorFlag
}

// Atomic creates and registers a named sub-check. Once any atomic result
// exists, Finalize derives the parent status and messages from the children.
func (r *TestResult) Atomic(name string) *AtomicTestResult {
	a := &AtomicTestResult{Name: name, Result: StatusUnset}
	r.atomics = append(r.atomics, a)
	return a
}

// Atomics returns the registered sub-checks in creation order.
func (r *TestResult) Atomics() []*AtomicTestResult {
	return r.atomics
}

// Finalize rolls atomic sub-results up into the parent: the parent status
// becomes the worst child status, and the parent messages become the
// ordered concatenation of children messages. A result without atomic
// children is left untouched.
func (r *TestResult) Finalize() {
	if len(r.atomics) == 0 {
		return
	}
	status := StatusUnset
	var messages []string
	for _, a := range r.atomics {
		status = Worst(status, a.Result)
		messages = append(messages, a.Messages...)
		if a.errorFlag {
			r.errorFlag = true
		}
	}
	r.Result = status
	r.Messages = messages
}

func (a *AtomicTestResult) set(s TestStatus, messages []string) {
	a.Messages = append(a.Messages, messages...)
	if a.errorFlag {
		return
	}
	if s == StatusError {
		a.errorFlag = true
		a.Result = StatusError
		return
	}
	a.Result = Worst(a.Result, s)
}

// Success marks the sub-check successful unless a stronger status was set.
func (a *AtomicTestResult) Success(messages ...string) {
	a.set(StatusSuccess, messages)
}

// Failure marks the sub-check failed.
func (a *AtomicTestResult) Failure(messages ...string) {
	a.set(StatusFailure, messages)
}

// Skipped marks the sub-check skipped; overrides only unset.
func (a *AtomicTestResult) Skipped(messages ...string) {
	a.set(StatusSkipped, messages)
}

// Error marks the sub-check errored; terminal.
func (a *AtomicTestResult) Error(messages ...string) {
	a.set(StatusError, messages)
}
