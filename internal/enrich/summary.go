package enrich

// Summary aggregates per-run counts for user-facing reporting. No row-level
// error ever surfaces past the pipeline; this is the failure surface.
type Summary struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Inactive  int `json:"inactive"`
	Skipped   int `json:"skipped"`
	EmailRows int `json:"email_rows"`
	PhoneRows int `json:"phone_rows"`
	ErrorRows int `json:"error_rows"`
}

// Summarize computes aggregate counts over a run's records.
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, rec := range records {
		switch rec.Status {
		case StatusActive:
			s.Active++
		case StatusInactive:
			s.Inactive++
		case StatusSkipped:
			s.Skipped++
		}
		if rec.Contacts.Err {
			s.ErrorRows++
			continue
		}
		if len(rec.Contacts.Emails) > 0 {
			s.EmailRows++
		}
		if len(rec.Contacts.Phones) > 0 {
			s.PhoneRows++
		}
	}
	return s
}
