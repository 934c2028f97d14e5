// Package enrich defines core types shared across the enrichment pipeline.
package enrich

import "strings"

// DomainClass classifies a raw input domain before any network work happens.
type DomainClass string

// Domain classes assigned during the classification stage.
const (
	ClassSocial    DomainClass = "social"
	ClassInvalid   DomainClass = "invalid_syntax"
	ClassCandidate DomainClass = "candidate"
)

// LivenessStatus records the outcome of the reachability stages.
type LivenessStatus string

// Liveness values produced by the probe and recheck stages.
const (
	StatusActive   LivenessStatus = "active"
	StatusInactive LivenessStatus = "inactive"
	StatusSkipped  LivenessStatus = "skipped"
)

// ErrorField is the literal written to output columns when a fetch failed
// after exhausting retries. It is distinct from an empty field, which means
// the fetch succeeded and found nothing.
const ErrorField = "Error"

// ContactSet holds the contacts extracted from one page. Emails keep
// first-seen order; Phones are sorted. Err marks a failed fetch.
type ContactSet struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
	Err    bool     `json:"error,omitempty"`
}

// EmailsField renders the email column value for output rows.
func (c ContactSet) EmailsField() string {
	if c.Err {
		return ErrorField
	}
	return strings.Join(c.Emails, ", ")
}

// PhonesField renders the phone column value for output rows.
func (c ContactSet) PhonesField() string {
	if c.Err {
		return ErrorField
	}
	return strings.Join(c.Phones, ", ")
}

// HasContacts reports whether the set carries at least one usable contact.
func (c ContactSet) HasContacts() bool {
	return !c.Err && (len(c.Emails) > 0 || len(c.Phones) > 0)
}

// Record is the per-row output of the pipeline. Output cardinality and
// order always match the input: one Record per row, same index.
type Record struct {
	Index    int            `json:"index"`
	Domain   string         `json:"domain"`
	Class    DomainClass    `json:"class"`
	Status   LivenessStatus `json:"status"`
	Contacts ContactSet     `json:"contacts"`
}
