package livedns

import (
	"fmt"
	"strings"
)

// Params is the desired state of one record set, as supplied by a caller.
type Params struct {
	APIKey string
	// Record is the name relative to the zone or domain; "@" is the apex.
	Record string
	State  State
	// TTL of zero means "don't compare" on an existing record.
	TTL    int
	Type   RecordType
	Values []string
	// Zone is the name of a pre-existing zone. It wins over Domain for
	// addressing when both are set.
	Zone   string
	Domain string
}

// Normalize applies defaults and case folding in place.
func (p *Params) Normalize() {
	p.Record = strings.ToLower(strings.TrimSpace(p.Record))
	if p.Record == "" {
		p.Record = "@"
	}
	if p.State == "" {
		p.State = StatePresent
	}
	p.State = State(strings.ToLower(string(p.State)))
	if p.TTL == 0 {
		p.TTL = DefaultTTL
	}
	p.Type = RecordType(strings.ToUpper(strings.TrimSpace(string(p.Type))))
	p.Domain = strings.ToLower(strings.TrimSpace(p.Domain))
	p.Zone = strings.TrimSpace(p.Zone)
}

// Validate checks the boundary rules. It never touches the network.
func (p *Params) Validate() error {
	var problems []string

	if p.APIKey == "" {
		problems = append(problems, "api_key is required")
	}
	if p.Zone == "" && p.Domain == "" {
		problems = append(problems, "at least one of zone and domain parameters need to be defined")
	}
	if p.TTL < 0 {
		problems = append(problems, fmt.Sprintf("ttl must not be negative, got %d", p.TTL))
	}
	if p.Type != "" && !p.Type.Valid() {
		problems = append(problems, fmt.Sprintf("unsupported record type %q", p.Type))
	}

	switch p.State {
	case StatePresent:
		if p.Type == "" {
			problems = append(problems, "type is required when state is present")
		}
		if len(p.Values) == 0 {
			problems = append(problems, "values are required when state is present")
		}
	case StateAbsent:
		if p.Type == "" {
			problems = append(problems, "type is required when state is absent")
		}
	default:
		problems = append(problems, fmt.Sprintf("state must be one of present, absent; got %q", p.State))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// label returns the scope label attached to output records.
func (p *Params) label() ScopeLabel {
	return ScopeLabel{Zone: p.Zone, Domain: p.Domain}
}

// FactsParams selects record sets for a read-only listing. Record and Type
// are optional filters.
type FactsParams struct {
	APIKey string
	Record string
	Type   RecordType
	Zone   string
	Domain string
}

// Normalize applies case folding in place.
func (p *FactsParams) Normalize() {
	p.Record = strings.ToLower(strings.TrimSpace(p.Record))
	p.Type = RecordType(strings.ToUpper(strings.TrimSpace(string(p.Type))))
	p.Domain = strings.ToLower(strings.TrimSpace(p.Domain))
	p.Zone = strings.TrimSpace(p.Zone)
}

// Validate checks the boundary rules for a listing.
func (p *FactsParams) Validate() error {
	var problems []string
	if p.APIKey == "" {
		problems = append(problems, "api_key is required")
	}
	if p.Zone == "" && p.Domain == "" {
		problems = append(problems, "at least one of zone and domain parameters need to be defined")
	}
	if p.Type != "" && !p.Type.Valid() {
		problems = append(problems, fmt.Sprintf("unsupported record type %q", p.Type))
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
