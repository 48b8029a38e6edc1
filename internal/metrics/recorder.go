// Package metrics records build and render counters.
package metrics

import "time"

// Result labels page render outcomes.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
	ResultMissing Result = "missing" // tutorial href not found, request redirected
)

// Route names the page variant being rendered.
type Route string

const (
	RouteEntry    Route = "entry"
	RouteTutorial Route = "tutorial"
	RouteNotFound Route = "not_found"
)

// Recorder is the set of hooks the site assembler and server report to.
type Recorder interface {
	IncPageRender(route Route, result Result)
	ObserveContentLoad(d time.Duration, pages int, failed int)
	ObserveBuild(d time.Duration, success bool)
	IncRateLimited()
}

// NoopRecorder is used when metrics are disabled.
type NoopRecorder struct{}

func (NoopRecorder) IncPageRender(Route, Result)                {}
func (NoopRecorder) ObserveContentLoad(time.Duration, int, int) {}
func (NoopRecorder) ObserveBuild(time.Duration, bool)           {}
func (NoopRecorder) IncRateLimited()                            {}
