// Package forward implements the origin-facing half of an HTTP/1.1 proxy:
// dialing (or reusing) a connection to an origin server, relaying a
// client's request and the origin's response, and tunnelling CONNECT
// traffic. It does not listen, parse incoming requests or dispatch to
// workers; those are the caller's concern.
package forward

import "strings"

// Header is a single request header as received from the client, kept in
// the order it arrived so buildRequest can preserve that order on the wire.
type Header struct {
	Name  string
	Value string
}

// Request is the parsed client request this package forwards. The caller
// (a request parser outside this package) is responsible for producing it.
type Request struct {
	Method  string
	Target  string
	Version string
	Host    string
	Port    string
	Headers []Header
	Body    []byte
}

// Get looks up a header by case-insensitive name, returning the first
// matching value and whether it was present.
func (r *Request) Get(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// PortOrDefault returns r.Port, or "80" when it was left empty by the
// parser.
func (r *Request) PortOrDefault() string {
	if r.Port == "" {
		return "80"
	}
	return r.Port
}
