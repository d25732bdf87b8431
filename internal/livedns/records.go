package livedns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

func recordsPath(scope Scope, name string, recordType string) string {
	p := scope.basePath() + "/records"
	if name != "" {
		p += "/" + url.PathEscape(name)
		if recordType != "" {
			p += "/" + url.PathEscape(recordType)
		}
	}
	return p
}

// List returns the record sets in scope matching name and recordType, either
// of which may be empty. A nil slice with a nil error means the provider
// reported the name as not found.
func (c *Client) List(ctx context.Context, scope Scope, name string, recordType RecordType) ([]RawRecord, error) {
	path := recordsPath(scope, name, string(recordType))

	body, status, err := c.Call(ctx, http.MethodGet, path, nil, AllowNotFound())
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}

	if name == "" && recordType != "" {
		filtered := records[:0]
		for _, r := range records {
			if r.Type == string(recordType) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	return records, nil
}

// decodeRecords accepts either a JSON list of record sets or a single object,
// which the API returns for name+type lookups.
func decodeRecords(body json.RawMessage) ([]RawRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []RawRecord{}, nil
	}

	if trimmed[0] == '[' {
		var records []RawRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, &DecodeError{Err: err, Body: string(body)}
		}
		return records, nil
	}

	var record RawRecord
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return nil, &DecodeError{Err: err, Body: string(body)}
	}
	return []RawRecord{record}, nil
}

// Create posts a new record set. It returns the record as sent when the
// provider answers 201 Created and nil otherwise; callers must not read a nil
// record as success.
func (c *Client) Create(ctx context.Context, scope Scope, record RawRecord) (*RawRecord, error) {
	c.log.Info("creating record", "name", record.Name, "type", record.Type, "values", record.Values, "ttl", record.TTL)

	_, status, err := c.Call(ctx, http.MethodPost, recordsPath(scope, "", ""), record)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		c.log.Info("create not confirmed by provider", "name", record.Name, "type", record.Type, "status", status)
		return nil, nil
	}
	return &record, nil
}

// Update replaces the values and TTL of an existing record set. Name and type
// travel in the path only.
func (c *Client) Update(ctx context.Context, scope Scope, name string, recordType RecordType, values []string, ttl int) (*RawRecord, error) {
	c.log.Info("updating record", "name", name, "type", recordType, "values", values, "ttl", ttl)

	body, _, err := c.Call(ctx, http.MethodPut, recordsPath(scope, name, string(recordType)), RawRecord{
		Values: values,
		TTL:    ttl,
	})
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// Delete removes a record set. Both name and recordType are required.
func (c *Client) Delete(ctx context.Context, scope Scope, name string, recordType RecordType) error {
	if name == "" || recordType == "" {
		return &MisuseError{Msg: "you must provide a type and a record to delete a record"}
	}
	c.log.Info("deleting record", "name", name, "type", recordType)

	if _, _, err := c.Call(ctx, http.MethodDelete, recordsPath(scope, name, string(recordType)), nil); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", name, recordType, err)
	}
	return nil
}
