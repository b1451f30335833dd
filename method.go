package docroute

import (
	"net/http"
	"strings"
)

// MethodFilter is a set of HTTP verbs.
type MethodFilter uint16

// Method bits.
const (
	MethodGet MethodFilter = 1 << iota
	MethodHead
	MethodPut
	MethodPost
	MethodDelete
	MethodOptions
	MethodPatch
	MethodTrace

	MethodAny = MethodGet | MethodHead | MethodPut | MethodPost |
		MethodDelete | MethodOptions | MethodPatch | MethodTrace
)

// allMethods lists the single-verb filters in document order. The index of
// a verb here is its slot in a MethodRouter.
var allMethods = [...]MethodFilter{
	MethodGet,
	MethodPut,
	MethodPost,
	MethodDelete,
	MethodOptions,
	MethodHead,
	MethodPatch,
	MethodTrace,
}

var methodNames = map[MethodFilter]string{
	MethodGet:     http.MethodGet,
	MethodHead:    http.MethodHead,
	MethodPut:     http.MethodPut,
	MethodPost:    http.MethodPost,
	MethodDelete:  http.MethodDelete,
	MethodOptions: http.MethodOptions,
	MethodPatch:   http.MethodPatch,
	MethodTrace:   http.MethodTrace,
}

// ParseMethod returns the filter for a single verb name.
func ParseMethod(name string) (MethodFilter, bool) {
	name = strings.ToUpper(name)
	for m, n := range methodNames {
		if n == name {
			return m, true
		}
	}
	return 0, false
}

// Has reports whether every verb of other is in f.
func (f MethodFilter) Has(other MethodFilter) bool {
	return other != 0 && f&other == other
}

// Methods returns the verb names in f, in document order.
func (f MethodFilter) Methods() []string {
	var names []string
	for _, m := range allMethods {
		if f&m != 0 {
			names = append(names, methodNames[m])
		}
	}
	return names
}

// String joins the verb names with "|".
func (f MethodFilter) String() string {
	if f == 0 {
		return "NONE"
	}
	return strings.Join(f.Methods(), "|")
}
