package forward

import (
	"bytes"
	"strconv"
	"strings"
)

// responseFraming is what the response relay learned by scanning the
// origin's header section: how to find the end of the body, and whether
// the origin offered to keep the connection alive.
type responseFraming struct {
	KeepAlive            bool
	ContentLengthPresent bool // a Content-Length header was seen at all
	HasContentLength     bool // ...and it parsed to a usable value
	ContentLength        int64
	Chunked              bool
}

// declaresFraming reports whether the origin named any body-length
// mechanism, valid or not. When false, §4.D case 3 applies: the body is
// implicitly empty and the relay ends right after the header section.
func (f responseFraming) declaresFraming() bool {
	return f.ContentLengthPresent || f.Chunked
}

// parseResponseHeaders scans a complete header section (the bytes before
// the "\r\n\r\n" delimiter, CRLF-terminated lines) field by field,
// case-insensitively, per §4.D's resolution of Open Question 3: matching is
// structured, not a fixed-offset substring search, so "connection:
// Keep-Alive" or folded whitespace are recognized the same as the exact
// casing the source looked for. The header bytes themselves are forwarded
// to the client unparsed and unmodified — this function only classifies
// them.
//
// A Content-Length that fails to parse is not used as a length, but still
// counts as declared framing (ContentLengthPresent) rather than being
// rejected outright: unlike the request direction (§4.F, which answers the
// client with 400), a response-direction framing defect has no client to
// reject the origin on behalf of, so the relay falls back to the weakest
// framing it can still honor, which in practice means it keeps forwarding
// bytes until the origin closes the connection.
func parseResponseHeaders(section []byte) responseFraming {
	var f responseFraming
	f.ContentLength = -1

	lines := bytes.Split(section, []byte("\r\n"))
	for i, line := range lines {
		if i == 0 {
			// status line
			continue
		}
		if len(line) == 0 {
			continue
		}
		idx := bytes.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(string(line[:idx]))
		value := strings.TrimSpace(string(line[idx+1:]))

		switch {
		case strings.EqualFold(name, "Connection"):
			if strings.EqualFold(value, "keep-alive") {
				f.KeepAlive = true
			}
		case strings.EqualFold(name, "Content-Length"):
			f.ContentLengthPresent = true
			n, err := strconv.ParseInt(value, 10, 63)
			if err == nil && n >= 0 {
				f.HasContentLength = true
				f.ContentLength = n
			}
		case strings.EqualFold(name, "Transfer-Encoding"):
			if strings.EqualFold(strings.TrimSpace(value), "chunked") {
				f.Chunked = true
			}
		}
	}
	return f
}
