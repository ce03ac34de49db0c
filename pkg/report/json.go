package report

import (
	"io"

	"github.com/aristanetworks/anta/pkg/results"
)

// WriteJSON writes the serialized result array. Field names and status
// strings are the manager's compatibility surface.
func WriteJSON(w io.Writer, m *results.Manager) error {
	data, err := m.JSON()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}
