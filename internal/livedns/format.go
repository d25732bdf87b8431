package livedns

// ScopeLabel is the zone or domain name a caller used, echoed back on every
// output record.
type ScopeLabel struct {
	Zone   string
	Domain string
}

// BuildRecord maps a provider record set onto the output shape. Fields the
// provider did not return are left out. The zone label wins over the domain
// label, mirroring how the record was addressed.
func BuildRecord(raw *RawRecord, label ScopeLabel) *Record {
	if raw == nil {
		return nil
	}

	rec := &Record{
		Name:   raw.Name,
		Type:   raw.Type,
		Values: raw.Values,
	}
	if raw.TTL > 0 {
		ttl := raw.TTL
		rec.TTL = &ttl
	}
	if label.Zone != "" {
		rec.Zone = label.Zone
	} else {
		rec.Domain = label.Domain
	}
	return rec
}

// BuildRecords maps a listing. A nil input (nothing found) stays nil.
func BuildRecords(raws []RawRecord, label ScopeLabel) []Record {
	if raws == nil {
		return nil
	}
	out := make([]Record, 0, len(raws))
	for i := range raws {
		out = append(out, *BuildRecord(&raws[i], label))
	}
	return out
}

// Output is the caller-facing result of a record reconcile.
type Output struct {
	Changed bool          `json:"changed" yaml:"changed"`
	Result  *OutputResult `json:"result,omitempty" yaml:"result,omitempty"`
}

// OutputResult wraps the record of a present-state reconcile.
type OutputResult struct {
	Record *Record `json:"record" yaml:"record"`
}

// NewOutput shapes a Result. Absent-state results carry no record section.
func NewOutput(state State, res *Result) Output {
	out := Output{Changed: res.Changed}
	if state == StatePresent {
		out.Result = &OutputResult{Record: res.Record}
	}
	return out
}

// FactsOutput is the caller-facing result of a listing.
type FactsOutput struct {
	Changed bool     `json:"changed" yaml:"changed"`
	Records []Record `json:"records" yaml:"records"`
}
