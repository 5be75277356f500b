// Package fetch provides the HTTP client used by the traversal engine.
//
// The crawler core treats fetching and JSON decoding as external
// collaborators: this package owns header construction, redirect policy,
// timeouts, and body limits, while the engine only decides what to fetch
// and what to do with the decoded document.
//
// Design decision: header names and values are validated when the client is
// built, not when requests are issued. Bad headers are a configuration
// mistake and should abort the run before the first request, matching the
// error taxonomy used across restmap.
package fetch
