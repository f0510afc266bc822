package diagnostics

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
)

// Reporter renders a Suite's Results to w in some format, returning the
// number of failed properties so callers can decide an exit code the way
// the teacher's reporting layer does for scan results.
type Reporter interface {
	Report(w io.Writer, s *Suite) (failures int, err error)
}

// TextReporter writes one line per property, "ok    name" or
// "FAIL  name: detail".
type TextReporter struct{}

func (TextReporter) Report(w io.Writer, s *Suite) (int, error) {
	failures := 0
	for _, r := range s.Results {
		if r.Passed {
			if _, err := fmt.Fprintf(w, "ok    %s\n", r.Name); err != nil {
				return failures, err
			}
			continue
		}
		failures++
		if _, err := fmt.Fprintf(w, "FAIL  %s: %s\n", r.Name, r.Detail); err != nil {
			return failures, err
		}
	}
	return failures, nil
}

// jsonReport is the wire shape JSONReporter emits.
type jsonReport struct {
	Results []PropertyResult `json:"results"`
	Failed  int              `json:"failed"`
	Total   int              `json:"total"`
}

// JSONReporter writes the whole suite as one JSON document.
type JSONReporter struct{}

func (JSONReporter) Report(w io.Writer, s *Suite) (int, error) {
	failures := len(s.Failures())
	report := jsonReport{Results: s.Results, Failed: failures, Total: len(s.Results)}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return failures, enc.Encode(report)
}

// xmlReport is the wire shape XMLReporter emits, named after the
// property-check harness rather than any test-framework convention.
type xmlReport struct {
	XMLName xml.Name         `xml:"properties"`
	Failed  int              `xml:"failed,attr"`
	Total   int              `xml:"total,attr"`
	Results []PropertyResult `xml:"result"`
}

// XMLReporter writes the whole suite as one XML document.
type XMLReporter struct{}

func (XMLReporter) Report(w io.Writer, s *Suite) (int, error) {
	failures := len(s.Failures())
	report := xmlReport{Failed: failures, Total: len(s.Results), Results: s.Results}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return failures, err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(report); err != nil {
		return failures, err
	}
	_, err := io.WriteString(w, "\n")
	return failures, err
}

// ReporterFor resolves a -format flag value to a Reporter, defaulting
// to text for an unrecognized or empty value.
func ReporterFor(format string) Reporter {
	switch format {
	case "json":
		return JSONReporter{}
	case "xml":
		return XMLReporter{}
	default:
		return TextReporter{}
	}
}
