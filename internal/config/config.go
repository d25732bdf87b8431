package config

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// DefaultDomainMapPath is used when DOMAIN_MAP_PATH is unset.
const DefaultDomainMapPath = "configs/domain-map.yaml"

// Target is where records for a matched hostname go and what they hold.
// Zone and Domain follow the record reconciler's rules: Zone wins when both
// are set. When neither is set, Domain is the map key without any "*."
// prefix.
type Target struct {
	Zone   string   `yaml:"zone"`
	Domain string   `yaml:"domain"`
	Values []string `yaml:"values"`
	TTL    int      `yaml:"ttl"`
}

// UnmarshalYAML accepts either a mapping or a scalar shorthand, where
// "example.com: 10.0.0.1" means a single value addressed by domain.
func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Value != "" {
			t.Values = []string{node.Value}
		}
		return nil
	}
	type plain Target
	return node.Decode((*plain)(t))
}

// base returns the zone or domain name records are relative to.
func (t Target) base() string {
	if t.Zone != "" {
		return t.Zone
	}
	return t.Domain
}

// DomainMap maps base domains to the records the controller publishes.
type DomainMap struct {
	entries map[string]Target
}

// LoadDomainMap reads the domain map from DOMAIN_MAP_PATH, defaulting to
// DefaultDomainMapPath.
func LoadDomainMap() (*DomainMap, error) {
	path := os.Getenv("DOMAIN_MAP_PATH")
	if path == "" {
		path = DefaultDomainMapPath
	}
	return LoadDomainMapFromPath(path)
}

// LoadDomainMapFromPath reads a YAML file mapping domains to targets.
func LoadDomainMapFromPath(path string) (*DomainMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading domain map file: %w", err)
	}

	entries := make(map[string]Target)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing domain map file: %w", err)
	}
	return NewDomainMap(entries)
}

// NewDomainMap validates entries and fills in the default domain.
func NewDomainMap(entries map[string]Target) (*DomainMap, error) {
	normalized := make(map[string]Target, len(entries))
	for key, target := range entries {
		key = strings.ToLower(strings.TrimSuffix(key, "."))
		if len(target.Values) == 0 {
			return nil, fmt.Errorf("domain map entry %q: at least one value is required", key)
		}
		if target.TTL < 0 {
			return nil, fmt.Errorf("domain map entry %q: ttl must not be negative", key)
		}
		if target.Zone == "" && target.Domain == "" {
			target.Domain = strings.TrimPrefix(key, "*.")
		}
		target.Domain = strings.ToLower(target.Domain)
		if base := strings.ToLower(target.base()); key != base && !strings.HasSuffix(key, "."+base) {
			return nil, fmt.Errorf("domain map entry %q is not inside %q", key, base)
		}
		normalized[key] = target
	}
	return &DomainMap{entries: normalized}, nil
}

// LookupTarget finds the target for a hostname and returns the record name
// relative to the target's zone or domain ("@" for the apex). It walks up
// the domain labels checking for exact matches and wildcard entries. Exact
// matches take priority over wildcards. For example, given:
//
//	"*.mydomain.com":    "10.0.0.1"
//	"app2.mydomain.com": "10.0.0.2"
//
// "app1.mydomain.com" returns 10.0.0.1 and record "app1" (wildcard match)
// "app2.mydomain.com" returns 10.0.0.2 and record "app2" (exact match wins)
func (dm *DomainMap) LookupTarget(hostname string) (Target, string, bool) {
	hostname = strings.ToLower(strings.TrimSuffix(hostname, "."))
	for h := hostname; h != ""; {
		if target, ok := dm.entries[h]; ok {
			name, ok := relativeName(hostname, target.base())
			return target, name, ok
		}
		idx := strings.Index(h, ".")
		if idx < 0 {
			break
		}
		if target, ok := dm.entries["*."+h[idx+1:]]; ok {
			name, ok := relativeName(hostname, target.base())
			return target, name, ok
		}
		h = h[idx+1:]
	}
	return Target{}, "", false
}

func relativeName(hostname, base string) (string, bool) {
	base = strings.ToLower(base)
	if hostname == base {
		return "@", true
	}
	name, found := strings.CutSuffix(hostname, "."+base)
	if !found || name == "" {
		return "", false
	}
	return name, true
}

// Domains returns all configured base domains.
func (dm *DomainMap) Domains() []string {
	domains := make([]string, 0, len(dm.entries))
	for d := range dm.entries {
		domains = append(domains, d)
	}
	return domains
}
