// Package log provides slog helpers that keep credentials out of crawl logs.
//
// restmap sends user-supplied headers (Authorization, API keys, cookies)
// with every request and logs request metadata at debug level. The
// RedactingHandler sits between the application and the real slog handler
// and masks any attribute that looks like a credential before it is written.
package log
