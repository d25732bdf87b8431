package livedns

// RecordType is a DNS record type accepted by LiveDNS.
type RecordType string

const (
	TypeA     RecordType = "A"
	TypeAAAA  RecordType = "AAAA"
	TypeALIAS RecordType = "ALIAS"
	TypeCAA   RecordType = "CAA"
	TypeCDS   RecordType = "CDS"
	TypeCNAME RecordType = "CNAME"
	TypeDNAME RecordType = "DNAME"
	TypeDS    RecordType = "DS"
	TypeKEY   RecordType = "KEY"
	TypeLOC   RecordType = "LOC"
	TypeMX    RecordType = "MX"
	TypeNS    RecordType = "NS"
	TypePTR   RecordType = "PTR"
	TypeSPF   RecordType = "SPF"
	TypeSRV   RecordType = "SRV"
	TypeSSHFP RecordType = "SSHFP"
	TypeTLSA  RecordType = "TLSA"
	TypeTXT   RecordType = "TXT"
	TypeWKS   RecordType = "WKS"
)

// RecordTypes lists every supported record type in display order.
var RecordTypes = []RecordType{
	TypeA, TypeAAAA, TypeALIAS, TypeCAA, TypeCDS, TypeCNAME, TypeDNAME,
	TypeDS, TypeKEY, TypeLOC, TypeMX, TypeNS, TypePTR, TypeSPF, TypeSRV,
	TypeSSHFP, TypeTLSA, TypeTXT, TypeWKS,
}

// Valid reports whether t is one of RecordTypes.
func (t RecordType) Valid() bool {
	for _, known := range RecordTypes {
		if t == known {
			return true
		}
	}
	return false
}

// State is the desired presence of a record set.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// DefaultTTL is applied when the caller does not supply a TTL.
const DefaultTTL = 10800

// Zone is a LiveDNS zone as returned by GET /zones.
type Zone struct {
	Name string `json:"name"`
	UUID string `json:"uuid"`
}

// RawRecord is a record set in the provider's wire shape.
type RawRecord struct {
	Name   string   `json:"rrset_name,omitempty"`
	Type   string   `json:"rrset_type,omitempty"`
	TTL    int      `json:"rrset_ttl,omitempty"`
	Values []string `json:"rrset_values,omitempty"`
}

// Scope addresses a record collection either by zone ID or by domain name.
// ZoneID takes precedence when both are set.
type Scope struct {
	ZoneID string
	Domain string
}

func (s Scope) basePath() string {
	if s.ZoneID != "" {
		return "/zones/" + s.ZoneID
	}
	return "/domains/" + s.Domain
}

// Record is a record set in the caller-facing output shape.
type Record struct {
	Name   string   `json:"name,omitempty" yaml:"name,omitempty"`
	Type   string   `json:"type,omitempty" yaml:"type,omitempty"`
	TTL    *int     `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
	Zone   string   `json:"zone,omitempty" yaml:"zone,omitempty"`
	Domain string   `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// Action describes what a reconcile did (or would do in dry-run).
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
	ActionDeleted   Action = "deleted"
	ActionAbsent    Action = "absent"
)

// Result is the outcome of a single reconcile.
type Result struct {
	Changed bool
	Action  Action
	DryRun  bool
	// Record is the post-reconcile record set. It is nil for absent-state
	// reconciles and when the provider did not confirm a create.
	Record *Record
}
