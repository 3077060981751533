package schemas

import "encoding/json"

// -- Consumed Engine Wire Shapes --
//
// Raw payloads crossing the process or page boundary are untrusted. They
// are decoded into the loose shapes below and converted into domain types
// at a single normalization boundary; nothing past that boundary touches
// raw JSON again.

// RawAxeNode mirrors one node entry of an axe-core violation. Target is
// kept as raw JSON because axe runners emit strings, string arrays, or
// nested arrays depending on the frame structure.
type RawAxeNode struct {
	Target         json.RawMessage `json:"target"`
	HTML           string          `json:"html"`
	FailureSummary string          `json:"failureSummary"`
}

// RawAxeViolation mirrors one axe-core violation entry.
type RawAxeViolation struct {
	ID          string       `json:"id"`
	Impact      string       `json:"impact"`
	Description string       `json:"description"`
	Help        string       `json:"help"`
	HelpURL     string       `json:"helpUrl"`
	Nodes       []RawAxeNode `json:"nodes"`
}

// RawAxeResult is the object returned by running axe in-page.
type RawAxeResult struct {
	Violations []RawAxeViolation `json:"violations"`
	Passes     []RawAxeViolation `json:"passes,omitempty"`
}

// BatchInput is the payload accepted by the batch command: a URL to
// navigate to, or a raw HTML document served via a data: URL when URL is
// empty.
type BatchInput struct {
	URL  string `json:"url"`
	HTML string `json:"html,omitempty"`
}

// BatchDiagnostic describes a handled failure inside a batch run. The
// batch boundary always exits zero; failure is encoded here instead.
type BatchDiagnostic struct {
	Error  string `json:"error"`
	Engine string `json:"engine,omitempty"` // "axe" or "lighthouse" when one side failed.
}

// BatchOutput is the single JSON document written by the batch command.
type BatchOutput struct {
	Lighthouse map[string]any   `json:"lighthouse"`
	Axe        RawAxeResult     `json:"axe"`
	Diagnostic *BatchDiagnostic `json:"diagnostic,omitempty"`
}
