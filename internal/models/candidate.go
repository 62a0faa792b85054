package models

// NumericColumns are the upload columns coerced to numbers when present.
var NumericColumns = []string{"Followers", "Post price", "Avg View", "CPV", "IER", "Avg like", "Avg comments"}

// UploadedCandidate is one row of an uploaded file. Origin is the row's
// position within the upload and survives every later transformation, so
// edits and exports never depend on display order.
type UploadedCandidate struct {
	Origin  int                `json:"origin"`
	ID      string             `json:"id"`
	Fields  map[string]string  `json:"fields"`
	Metrics map[string]float64 `json:"metrics"`
}

func (c UploadedCandidate) Field(name string) string {
	return c.Fields[name]
}

func (c UploadedCandidate) Metric(name string) (float64, bool) {
	v, ok := c.Metrics[name]
	return v, ok
}

// PendingRow is a candidate matched against the roster with any credibility
// other than "false". Select defaults to true (include in export), Compare
// defaults to false (show historical trend).
type PendingRow struct {
	Candidate UploadedCandidate `json:"candidate"`
	Link      string            `json:"link"`
	Select    bool              `json:"select"`
	Compare   bool              `json:"compare"`
}

// RejectedRow is a candidate whose roster credibility equals "false".
type RejectedRow struct {
	ID      string `json:"id"`
	Comment string `json:"comment"`
	Link    string `json:"link"`
}

// UnknownRow is a candidate absent from the roster. Status is pre-selected
// "Rejected" but stays editable until the operator commits a decision.
type UnknownRow struct {
	ID      string `json:"id"`
	Link    string `json:"link"`
	Comment string `json:"comment"`
	Status  string `json:"status"`
	Select  bool   `json:"select"`
}

const (
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)
