package trace

import (
	"regexp"
	"strings"
)

// Detailer selects which groups of events a trace adapter reports.
type Detailer interface {
	Details() Details
}

var _ Detailer = Details(0)

// Details is a bit set of event groups.
type Details uint64

const (
	SQLConnEvents Details = 1 << iota
	SQLStmtEvents
	SQLCursorEvents
	SQLTxEvents
	SQLWarningEvents

	SQLEvents = SQLConnEvents | SQLStmtEvents | SQLCursorEvents | SQLTxEvents | SQLWarningEvents

	DetailsAll = ^Details(0)
)

// namedDetails is ordered by name.
var namedDetails = []struct {
	details Details
	name    string
}{
	{SQLEvents, "sqlcore"},
	{SQLConnEvents, "sqlcore.conn"},
	{SQLCursorEvents, "sqlcore.cursor"},
	{SQLStmtEvents, "sqlcore.stmt"},
	{SQLTxEvents, "sqlcore.tx"},
	{SQLWarningEvents, "sqlcore.warning"},
}

var defaultDetails = DetailsAll

func (d Details) Details() Details {
	return d
}

func (d Details) String() string {
	var names []string
	for _, nd := range namedDetails {
		if d&nd.details == nd.details {
			names = append(names, nd.name)
		}
	}

	return strings.Join(names, "|")
}

type MatchDetailsOption func(defaults *Details)

// WithDefaultDetails sets the details MatchDetails falls back to.
func WithDefaultDetails(d Details) MatchDetailsOption {
	return func(defaults *Details) {
		*defaults = d
	}
}

// MatchDetails returns the union of details whose names match the regular
// expression pattern, or the default details when nothing matches or the
// pattern is invalid.
func MatchDetails(pattern string, opts ...MatchDetailsOption) Details {
	fallback := defaultDetails
	for _, opt := range opts {
		if opt != nil {
			opt(&fallback)
		}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fallback
	}
	var d Details
	for _, nd := range namedDetails {
		if re.MatchString(nd.name) {
			d |= nd.details
		}
	}
	if d == 0 {
		return fallback
	}

	return d
}
