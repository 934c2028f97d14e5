package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leadforge/contact-enricher/internal/enrich"
)

const sampleCSV = `Company,Facebook URL,Website,City
Acme Ltd,facebook.com/acme,acme.co.uk,London
Dead Co,,deadco.example,Leeds
Broken Co,,brokenco.example,York
`

func loadSample(t *testing.T) *Table {
	t.Helper()
	tbl, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	return tbl
}

func TestDomainColumnSkipsSocialHeaders(t *testing.T) {
	t.Parallel()

	tbl := loadSample(t)
	col, err := tbl.DomainColumn()
	require.NoError(t, err)
	require.Equal(t, 2, col, "Website column, not Facebook URL")
	require.Equal(t, []string{"acme.co.uk", "deadco.example", "brokenco.example"}, tbl.Domains(col))
}

func TestDomainColumnMissing(t *testing.T) {
	t.Parallel()

	tbl, err := Load(strings.NewReader("Name,City\nAcme,London\n"))
	require.NoError(t, err)
	_, err = tbl.DomainColumn()
	require.ErrorIs(t, err, ErrNoDomainColumn)
}

func TestLoadPadsRaggedRows(t *testing.T) {
	t.Parallel()

	tbl, err := Load(strings.NewReader("Name,Website,City\nAcme,acme.co.uk\n"))
	require.NoError(t, err)
	require.Len(t, tbl.Rows[0], 3)
	require.Equal(t, "", tbl.Rows[0][2])
}

func TestWithContactsInsertsAndFilters(t *testing.T) {
	t.Parallel()

	tbl := loadSample(t)
	records := []enrich.Record{
		{Contacts: enrich.ContactSet{
			Emails: []string{"info@acme.co.uk", "sales@acme.co.uk"},
			Phones: []string{"020 7123 4567"},
		}},
		{}, // unreachable: both fields empty, row dropped
		{Contacts: enrich.ContactSet{Err: true}},
	}

	out, err := tbl.WithContacts(2, records, false)
	require.NoError(t, err)

	require.Equal(t, []string{"Company", "Facebook URL", "Website", EmailsHeader, PhonesHeader, "City"}, out.Header)
	require.Len(t, out.Rows, 2)
	require.Equal(t, []string{"Acme Ltd", "facebook.com/acme", "acme.co.uk", "info@acme.co.uk, sales@acme.co.uk", "020 7123 4567", "London"}, out.Rows[0])

	// The failed row survives the filter with the sentinel in both fields.
	require.Equal(t, enrich.ErrorField, out.Rows[1][3])
	require.Equal(t, enrich.ErrorField, out.Rows[1][4])
}

func TestWithContactsKeepAll(t *testing.T) {
	t.Parallel()

	tbl := loadSample(t)
	records := make([]enrich.Record, 3)

	out, err := tbl.WithContacts(2, records, true)
	require.NoError(t, err)
	require.Len(t, out.Rows, 3)
}

func TestWithContactsCardinalityMismatch(t *testing.T) {
	t.Parallel()

	tbl := loadSample(t)
	_, err := tbl.WithContacts(2, make([]enrich.Record, 1), true)
	require.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	t.Parallel()

	tbl := loadSample(t)
	var buf bytes.Buffer
	require.NoError(t, tbl.Write(&buf))

	again, err := Load(&buf)
	require.NoError(t, err)
	require.Equal(t, tbl.Header, again.Header)
	require.Equal(t, tbl.Rows, again.Rows)
}
