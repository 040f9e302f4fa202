package query

import (
	"net/url"
	"strings"
)

// Key identifies one cache entry. Build keys with [NewKey] so equal queries
// share an entry regardless of parameter order.
type Key struct {
	Resource string
	Params   string
}

// NewKey normalizes params into a stable, sorted encoding. Empty values are
// kept: a caller that wants defaults folded in passes them explicitly.
func NewKey(resource string, params map[string]string) Key {
	if len(params) == 0 {
		return Key{Resource: resource}
	}
	v := make(url.Values, len(params))
	for k, val := range params {
		v.Set(strings.TrimSpace(k), strings.TrimSpace(val))
	}
	return Key{Resource: resource, Params: v.Encode()}
}

func (k Key) String() string {
	if k.Params == "" {
		return k.Resource
	}
	return k.Resource + "?" + k.Params
}
