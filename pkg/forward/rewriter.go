package forward

import (
	"bytes"
	"strings"
)

// hopByHop is the set of headers stripped from the forwarded request,
// matched case-insensitively, verbatim from §4.C and the source's
// buildForwardRequest.
var hopByHop = map[string]struct{}{
	"connection":          {},
	"keep-alive":          {},
	"proxy-connection":    {},
	"proxy-authorization": {},
	"te":                  {},
	"trailer":             {},
	"transfer-encoding":   {},
	"upgrade":             {},
}

func isHopByHop(name string) bool {
	_, ok := hopByHop[strings.ToLower(name)]
	return ok
}

// buildRequest serializes req the way it is sent to the origin: request
// line, surviving headers in their original order, a single appended
// Connection: keep-alive, and the blank line terminating the header block.
// The body, if any, is the caller's concern to append (§4.C/§4.E/§4.F).
func buildRequest(req *Request) []byte {
	var buf bytes.Buffer
	buf.WriteString(req.Method)
	buf.WriteByte(' ')
	buf.WriteString(req.Target)
	buf.WriteByte(' ')
	buf.WriteString(req.Version)
	buf.WriteString("\r\n")
	for _, h := range req.Headers {
		if isHopByHop(h.Name) {
			continue
		}
		buf.WriteString(h.Name)
		buf.WriteString(": ")
		buf.WriteString(h.Value)
		buf.WriteString("\r\n")
	}
	buf.WriteString("Connection: keep-alive\r\n")
	buf.WriteString("\r\n")
	return buf.Bytes()
}
