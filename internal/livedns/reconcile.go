package livedns

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
)

// RecordStore is the provider surface the Reconciler drives. *Client
// implements it.
type RecordStore interface {
	ResolveZoneID(ctx context.Context, name string) (string, error)
	List(ctx context.Context, scope Scope, name string, recordType RecordType) ([]RawRecord, error)
	Create(ctx context.Context, scope Scope, record RawRecord) (*RawRecord, error)
	Update(ctx context.Context, scope Scope, name string, recordType RecordType, values []string, ttl int) (*RawRecord, error)
	Delete(ctx context.Context, scope Scope, name string, recordType RecordType) error
}

var _ RecordStore = (*Client)(nil)

// Reconciler converges one record set per call. It holds no state between
// calls; every invocation reads the provider afresh.
type Reconciler struct {
	Store RecordStore
	Log   logr.Logger
	// DryRun computes the outcome without issuing POST, PUT or DELETE.
	DryRun bool
}

// Apply normalizes and validates p, then converges towards p.State.
func (r *Reconciler) Apply(ctx context.Context, p Params) (*Result, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var (
		res *Result
		err error
	)
	if p.State == StateAbsent {
		res, err = r.Remove(ctx, p)
	} else {
		res, err = r.Ensure(ctx, p)
	}
	if err != nil {
		return nil, err
	}

	r.Log.Info("record reconciled",
		"record", p.Record, "type", p.Type, "zone", p.Zone, "domain", p.Domain,
		"action", res.Action, "changed", res.Changed, "dryRun", res.DryRun)
	return res, nil
}

// Ensure makes the record set exist with the desired values and TTL. p is
// expected to be normalized.
func (r *Reconciler) Ensure(ctx context.Context, p Params) (*Result, error) {
	scope, err := r.resolveScope(ctx, p.Zone, p.Domain)
	if err != nil {
		return nil, err
	}

	records, err := r.Store.List(ctx, scope, p.Record, p.Type)
	if err != nil {
		return nil, fmt.Errorf("looking up %s/%s: %w", p.Record, p.Type, err)
	}
	existing, err := single(records, p.Record, p.Type)
	if err != nil {
		return nil, err
	}

	desired := RawRecord{
		Name:   p.Record,
		Type:   string(p.Type),
		Values: p.Values,
		TTL:    p.TTL,
	}

	if existing == nil {
		if r.DryRun {
			return &Result{Changed: true, Action: ActionCreated, DryRun: true, Record: BuildRecord(&desired, p.label())}, nil
		}
		created, err := r.Store.Create(ctx, scope, desired)
		if err != nil {
			return nil, fmt.Errorf("creating %s/%s: %w", p.Record, p.Type, err)
		}
		return &Result{Changed: true, Action: ActionCreated, Record: BuildRecord(created, p.label())}, nil
	}

	if !needsUpdate(existing, p.TTL, p.Values) {
		return &Result{Action: ActionUnchanged, DryRun: r.DryRun, Record: BuildRecord(existing, p.label())}, nil
	}

	if r.DryRun {
		return &Result{Changed: true, Action: ActionUpdated, DryRun: true, Record: BuildRecord(&desired, p.label())}, nil
	}

	if _, err := r.Store.Update(ctx, scope, p.Record, p.Type, p.Values, p.TTL); err != nil {
		return nil, fmt.Errorf("updating %s/%s: %w", p.Record, p.Type, err)
	}

	records, err = r.Store.List(ctx, scope, p.Record, p.Type)
	if err != nil {
		return nil, fmt.Errorf("re-reading %s/%s after update: %w", p.Record, p.Type, err)
	}
	current, err := single(records, p.Record, p.Type)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("record %s/%s not found after update", p.Record, p.Type)
	}
	return &Result{Changed: true, Action: ActionUpdated, Record: BuildRecord(current, p.label())}, nil
}

// Remove makes the record set absent. No post-delete read is made.
func (r *Reconciler) Remove(ctx context.Context, p Params) (*Result, error) {
	if len(p.Values) > 0 {
		return nil, &MisuseError{Msg: "you cannot provide a value when deleting a record"}
	}

	scope, err := r.resolveScope(ctx, p.Zone, p.Domain)
	if err != nil {
		return nil, err
	}

	records, err := r.Store.List(ctx, scope, p.Record, p.Type)
	if err != nil {
		return nil, fmt.Errorf("looking up %s/%s: %w", p.Record, p.Type, err)
	}
	if len(records) == 0 {
		return &Result{Action: ActionAbsent, DryRun: r.DryRun}, nil
	}

	if r.DryRun {
		return &Result{Changed: true, Action: ActionDeleted, DryRun: true}, nil
	}
	if err := r.Store.Delete(ctx, scope, p.Record, p.Type); err != nil {
		return nil, err
	}
	return &Result{Changed: true, Action: ActionDeleted}, nil
}

// Facts lists record sets in the selected scope, optionally narrowed by name
// and type. A nil slice means the provider reported the name as not found.
func (r *Reconciler) Facts(ctx context.Context, p FactsParams) ([]Record, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	scope, err := r.resolveScope(ctx, p.Zone, p.Domain)
	if err != nil {
		return nil, err
	}

	records, err := r.Store.List(ctx, scope, p.Record, p.Type)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	r.Log.V(1).Info("listed records", "record", p.Record, "type", p.Type, "count", len(records))
	return BuildRecords(records, ScopeLabel{Zone: p.Zone, Domain: p.Domain}), nil
}

func (r *Reconciler) resolveScope(ctx context.Context, zone, domain string) (Scope, error) {
	if zone == "" {
		return Scope{Domain: domain}, nil
	}
	id, err := r.Store.ResolveZoneID(ctx, zone)
	if err != nil {
		return Scope{}, err
	}
	return Scope{ZoneID: id}, nil
}

func single(records []RawRecord, name string, recordType RecordType) (*RawRecord, error) {
	switch len(records) {
	case 0:
		return nil, nil
	case 1:
		return &records[0], nil
	default:
		return nil, fmt.Errorf("%s/%s: %d record sets: %w", name, recordType, len(records), ErrDuplicateRecordSet)
	}
}

// needsUpdate compares ttl when positive and values (as sets) when non-nil.
func needsUpdate(existing *RawRecord, ttl int, values []string) bool {
	if ttl > 0 && existing.TTL != ttl {
		return true
	}
	if values != nil && !sameSet(existing.Values, values) {
		return true
	}
	return false
}

func sameSet(a, b []string) bool {
	left := make(map[string]struct{}, len(a))
	for _, v := range a {
		left[v] = struct{}{}
	}
	right := make(map[string]struct{}, len(b))
	for _, v := range b {
		right[v] = struct{}{}
	}
	if len(left) != len(right) {
		return false
	}
	for v := range left {
		if _, ok := right[v]; !ok {
			return false
		}
	}
	return true
}
