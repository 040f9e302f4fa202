package session

import (
	"maps"
	"strconv"
)

// State is the coarse session state.
type State uint8

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// UserRecord is the profile returned by the API. Its shape is not validated
// beyond being a JSON object.
type UserRecord map[string]any

// ID returns the user id. Numeric ids are formatted in base 10.
func (u UserRecord) ID() string {
	for _, k := range []string{"id", "_id"} {
		switch v := u[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		}
	}
	return ""
}

func (u UserRecord) Name() string  { return u.str("name") }
func (u UserRecord) Email() string { return u.str("email") }
func (u UserRecord) Role() string  { return u.str("role") }

func (u UserRecord) str(key string) string {
	v, _ := u[key].(string)
	return v
}

// Clone returns a shallow copy.
func (u UserRecord) Clone() UserRecord {
	if u == nil {
		return nil
	}
	return maps.Clone(u)
}

// Session is a point-in-time view of the store.
type Session struct {
	User            UserRecord
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Error           string
	State           State
}

func (s Session) clone() Session {
	s.User = s.User.Clone()
	return s
}
