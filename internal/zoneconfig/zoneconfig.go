// Package zoneconfig loads zonewarden's JSON zone-mapping file into the
// batch format internal/store.Store.ReplaceAll expects.
package zoneconfig

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/ngrigoriev/zonewarden/internal/helpers"
	"github.com/ngrigoriev/zonewarden/internal/store"
)

// ErrConfig wraps every structural or semantic problem found in a zone
// file: unknown record type mnemonics, empty value lists, and CNAME
// exclusivity violations. Callers report it as CONFIG_ERROR.
var ErrConfig = errors.New("zoneconfig: invalid zone configuration")

// ErrIO wraps failures to read the zone file itself, reported as
// IO_ERROR, distinct from a structurally invalid file.
var ErrIO = errors.New("zoneconfig: could not read zone file")

type file struct {
	Domains map[string]domain `json:"domains"`
}

type domain struct {
	Records    map[string]json.RawMessage `json:"records"`
	Wildcards  *recordSet                 `json:"wildcards"`
	Subdomains map[string]recordSet       `json:"subdomains"`
}

type recordSet struct {
	Records map[string]json.RawMessage `json:"records"`
}

type mxEntry struct {
	Priority int    `json:"priority"`
	Value    string `json:"value"`
}

type srvEntry struct {
	Priority int    `json:"priority"`
	Weight   int    `json:"weight"`
	Port     int    `json:"port"`
	Target   string `json:"target"`
}

// LoadFile reads and parses the zone file at path.
func LoadFile(path string) (map[store.Key]store.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return Load(data)
}

// Load parses a zone file's contents into a batch suitable for
// store.Store.ReplaceAll, flattening MX and SRV value objects into the
// store's plain-string value representation and enforcing CNAME
// exclusivity (I2) across the whole file before returning.
func Load(data []byte) (map[store.Key]store.Record, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	batch := make(map[store.Key]store.Record)
	for name, d := range f.Domains {
		if err := addRecordSet(batch, store.ScopeBase, name, d.Records); err != nil {
			return nil, err
		}
		if d.Wildcards != nil {
			if err := addRecordSet(batch, store.ScopeWildcard, "*."+name, d.Wildcards.Records); err != nil {
				return nil, err
			}
		}
		for sub, rs := range d.Subdomains {
			fqdn := sub + "." + name
			if err := addRecordSet(batch, store.ScopeSubdomain, fqdn, rs.Records); err != nil {
				return nil, err
			}
		}
	}

	if err := validateCNAMEExclusivity(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func addRecordSet(batch map[store.Key]store.Record, scope store.Scope, domainName string, raw map[string]json.RawMessage) error {
	for mnemonic, msg := range raw {
		typ, err := store.ParseRecordType(mnemonic)
		if err != nil {
			return fmt.Errorf("%w: domain %q: %v", ErrConfig, domainName, err)
		}

		values, err := decodeValues(typ, msg)
		if err != nil {
			return fmt.Errorf("%w: domain %q type %s: %v", ErrConfig, domainName, mnemonic, err)
		}
		if len(values) == 0 {
			return fmt.Errorf("%w: domain %q type %s has no values", ErrConfig, domainName, mnemonic)
		}

		key := store.NewKey(scope, domainName, typ)
		batch[key] = store.Record{Key: key, Values: values}
	}
	return nil
}

// decodeValues renders one type's JSON value list as the store's
// ordered-string representation. MX and SRV arrive as structured objects
// and are flattened to "priority exchange" and "priority weight port
// target" strings respectively, matching what internal/wire expects when
// encoding RDATA.
func decodeValues(typ store.RecordType, msg json.RawMessage) ([]string, error) {
	switch typ {
	case store.TypeMX:
		var entries []mxEntry
		if err := json.Unmarshal(msg, &entries); err != nil {
			return nil, err
		}
		values := make([]string, len(entries))
		for i, e := range entries {
			values[i] = fmt.Sprintf("%d %s", helpers.ClampIntToUint16(e.Priority), e.Value)
		}
		return values, nil

	case store.TypeSRV:
		var entries []srvEntry
		if err := json.Unmarshal(msg, &entries); err != nil {
			return nil, err
		}
		values := make([]string, len(entries))
		for i, e := range entries {
			values[i] = fmt.Sprintf("%d %d %d %s",
				helpers.ClampIntToUint16(e.Priority), helpers.ClampIntToUint16(e.Weight),
				helpers.ClampIntToUint16(e.Port), e.Target)
		}
		return values, nil

	default:
		var values []string
		if err := json.Unmarshal(msg, &values); err != nil {
			return nil, err
		}
		return values, nil
	}
}

// validateCNAMEExclusivity re-checks I2 at load time so a bad zone file
// is rejected with ErrConfig before it ever reaches the store.
func validateCNAMEExclusivity(batch map[store.Key]store.Record) error {
	hasCNAME := make(map[string]bool)
	hasOther := make(map[string]bool)
	for k := range batch {
		if k.Scope != store.ScopeBase {
			continue
		}
		if k.Type == store.TypeCNAME {
			hasCNAME[k.Domain] = true
		} else {
			hasOther[k.Domain] = true
		}
	}
	for domainName := range hasCNAME {
		if hasOther[domainName] {
			return fmt.Errorf("%w: domain %q mixes CNAME with other record types", ErrConfig, domainName)
		}
	}
	return nil
}
