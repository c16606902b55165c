// Package repository implements tenant state sources for PostgreSQL, MySQL and Redis.
// Every source stores one JSON document per tenant and returns it undecoded beyond
// JSON; normalization happens in the tenant state cache.
package repository

import (
	"bytes"
	"encoding/json"

	"github.com/allisson/cct/internal/cct/domain"
	apperrors "github.com/allisson/cct/internal/errors"
)

// decodeTenantStateDocument parses a stored tenant document. Numbers are kept as
// json.Number so revisions and epoch timestamps survive without float rounding.
// A JSON null document decodes to a nil record, which normalizes to the zero state.
func decodeTenantStateDocument(document []byte) (domain.RawTenantState, error) {
	dec := json.NewDecoder(bytes.NewReader(document))
	dec.UseNumber()

	var raw domain.RawTenantState
	if err := dec.Decode(&raw); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode tenant state document")
	}
	return raw, nil
}
