package zoneconfig_test

import (
	"testing"

	"github.com/ngrigoriev/zonewarden/internal/store"
	"github.com/ngrigoriev/zonewarden/internal/zoneconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleZone = `{
  "domains": {
    "example.com": {
      "records": {
        "A": ["93.184.216.34"],
        "MX": [{"priority": 10, "value": "mail.example.com"}]
      },
      "wildcards": {
        "records": {
          "A": ["9.9.9.9"]
        }
      },
      "subdomains": {
        "www": {
          "records": {
            "A": ["1.1.1.1"]
          }
        }
      }
    },
    "alias.test": {
      "records": {
        "CNAME": ["example.com"]
      }
    }
  }
}`

func TestLoadBuildsExpectedBatch(t *testing.T) {
	batch, err := zoneconfig.Load([]byte(sampleZone))
	require.NoError(t, err)

	base := batch[store.NewKey(store.ScopeBase, "example.com", store.TypeA)]
	assert.Equal(t, []string{"93.184.216.34"}, base.Values)

	mx := batch[store.NewKey(store.ScopeBase, "example.com", store.TypeMX)]
	assert.Equal(t, []string{"10 mail.example.com"}, mx.Values)

	wildcard := batch[store.NewKey(store.ScopeWildcard, "*.example.com", store.TypeA)]
	assert.Equal(t, []string{"9.9.9.9"}, wildcard.Values)

	sub := batch[store.NewKey(store.ScopeSubdomain, "www.example.com", store.TypeA)]
	assert.Equal(t, []string{"1.1.1.1"}, sub.Values)

	alias := batch[store.NewKey(store.ScopeBase, "alias.test", store.TypeCNAME)]
	assert.Equal(t, []string{"example.com"}, alias.Values)
}

func TestLoadRejectsCNAMEExclusivityViolation(t *testing.T) {
	const bad = `{
      "domains": {
        "example.com": {
          "records": {
            "A": ["1.2.3.4"],
            "CNAME": ["other.example.com"]
          }
        }
      }
    }`

	_, err := zoneconfig.Load([]byte(bad))
	assert.ErrorIs(t, err, zoneconfig.ErrConfig)
}

func TestLoadRejectsUnknownRecordType(t *testing.T) {
	const bad = `{
      "domains": {
        "example.com": {
          "records": {
            "PTR": ["nope.example.com"]
          }
        }
      }
    }`

	_, err := zoneconfig.Load([]byte(bad))
	assert.ErrorIs(t, err, zoneconfig.ErrConfig)
}

func TestLoadRejectsEmptyValueList(t *testing.T) {
	const bad = `{
      "domains": {
        "example.com": {
          "records": {
            "A": []
          }
        }
      }
    }`

	_, err := zoneconfig.Load([]byte(bad))
	assert.ErrorIs(t, err, zoneconfig.ErrConfig)
}

func TestLoadFileWrapsIOError(t *testing.T) {
	_, err := zoneconfig.LoadFile("/nonexistent/zonewarden-test-fixture.json")
	assert.ErrorIs(t, err, zoneconfig.ErrIO)
}
