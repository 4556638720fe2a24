package telemetry

import (
	"fmt"
)

// API is where scrapers, the poster resolver and the service send everything
// worth knowing about a run. Production uses SlogAPI, tests use Recorder and
// assert on what was reported.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a component that has broken in a way that should be addressed.
	//
	// The `id` should point at the **component** that broke, not the specific line. If a grid item
	// on a letterboxd page could not be read, the id is `scraper.extract-film`, and the detail of what
	// went wrong goes into the params (usually as an error wrapped with fmt.Errorf).
	//
	// Formatting rules:
	// 1) all lowercase
	// 2) use underscores for large components
	// 3) use dashes for methods part of a larger component
	//
	// Use ScopedAPI to prefix the package, ids only need `<struct or intf>.<method>`.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something that went wrong upstream and was recovered from, like a
	// page fetch that ended pagination early, a tmdb search that failed, or a first search result
	// that looks like a different film. The caller still gets a usable (possibly partial) result.
	//
	// For what value to provide as `id` refer to ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug reports the normal flow of a request, such as which page is being fetched or why
	// a title resolved to no poster. It is only logged with -v.
	ReportDebug(msg string, params ...any)

	// ReportCount reports a gauge-like value at the current time, like the number of rated films in
	// a scrape or the poster cache size before it is cleared. Counts are points over time and should
	// not be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace, so "resolver.match" reported by the poster
// resolver comes out as "posters: resolver.match". Scopes nest.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s: %s", s.namespace, id), count)
}
