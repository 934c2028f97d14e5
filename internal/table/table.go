// Package table reads and writes the CSV batches the enricher operates
// on: one row per company, one column holding the web address.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leadforge/contact-enricher/internal/enrich"
)

// ErrNoDomainColumn is returned when no header looks like a web address
// column.
var ErrNoDomainColumn = errors.New("table: no domain column found")

// Column headers added to the output table.
const (
	EmailsHeader = "Emails"
	PhonesHeader = "Phone Numbers"
)

var domainKeywords = []string{"domain", "website", "web site", "url"}

// Table is an in-memory CSV with a header row. Ragged rows are padded to
// header width on load so column indexes stay valid everywhere.
type Table struct {
	Header []string
	Rows   [][]string
}

// Load parses CSV content. The first row is the header.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(all) == 0 {
		return nil, errors.New("table: empty input")
	}

	t := &Table{Header: all[0]}
	width := len(t.Header)
	for _, row := range all[1:] {
		for len(row) < width {
			row = append(row, "")
		}
		t.Rows = append(t.Rows, row[:width])
	}
	return t, nil
}

// DomainColumn locates the column holding web addresses by header keyword.
// Headers naming a social platform are skipped so a "Facebook URL" column
// never wins over the real website column.
func (t *Table) DomainColumn() (int, error) {
	for i, h := range t.Header {
		lowered := strings.ToLower(strings.TrimSpace(h))
		if containsSocialName(lowered) {
			continue
		}
		for _, kw := range domainKeywords {
			if strings.Contains(lowered, kw) {
				return i, nil
			}
		}
	}
	return 0, ErrNoDomainColumn
}

func containsSocialName(header string) bool {
	for _, platform := range enrich.SocialPlatforms {
		name := strings.TrimSuffix(platform, ".com")
		if strings.Contains(header, name) {
			return true
		}
	}
	return false
}

// Domains returns the raw values of the given column, row order preserved.
func (t *Table) Domains(col int) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[col]
	}
	return out
}

// WithContacts returns a copy of the table with Emails and Phone Numbers
// columns inserted directly after the domain column, one record per row.
// Unless keepAll is set, rows where both new fields are empty are dropped;
// the error sentinel counts as content so failed rows stay visible.
func (t *Table) WithContacts(col int, records []enrich.Record, keepAll bool) (*Table, error) {
	if len(records) != len(t.Rows) {
		return nil, fmt.Errorf("table: %d records for %d rows", len(records), len(t.Rows))
	}

	out := &Table{Header: insertAfter(t.Header, col, EmailsHeader, PhonesHeader)}
	for i, row := range t.Rows {
		emails := records[i].Contacts.EmailsField()
		phones := records[i].Contacts.PhonesField()
		if !keepAll && emails == "" && phones == "" {
			continue
		}
		out.Rows = append(out.Rows, insertAfter(row, col, emails, phones))
	}
	return out, nil
}

func insertAfter(row []string, col int, values ...string) []string {
	out := make([]string, 0, len(row)+len(values))
	out = append(out, row[:col+1]...)
	out = append(out, values...)
	out = append(out, row[col+1:]...)
	return out
}

// Write renders the table as CSV.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
