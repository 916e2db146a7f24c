package forward

import "testing"

func TestParseResponseHeadersContentLength(t *testing.T) {
	section := []byte("HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 42\r\nConnection: keep-alive")
	f := parseResponseHeaders(section)

	if !f.ContentLengthPresent || !f.HasContentLength {
		t.Fatalf("expected Content-Length to be recognized: %+v", f)
	}
	if f.ContentLength != 42 {
		t.Errorf("ContentLength = %d, want 42", f.ContentLength)
	}
	if !f.KeepAlive {
		t.Errorf("expected KeepAlive true")
	}
	if f.Chunked {
		t.Errorf("expected Chunked false")
	}
	if !f.declaresFraming() {
		t.Errorf("expected declaresFraming true")
	}
}

func TestParseResponseHeadersChunked(t *testing.T) {
	section := []byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked")
	f := parseResponseHeaders(section)
	if !f.Chunked {
		t.Fatalf("expected Chunked true: %+v", f)
	}
	if f.HasContentLength {
		t.Errorf("expected no Content-Length")
	}
}

func TestParseResponseHeadersMalformedContentLength(t *testing.T) {
	section := []byte("HTTP/1.1 200 OK\r\nContent-Length: not-a-number")
	f := parseResponseHeaders(section)
	if !f.ContentLengthPresent {
		t.Fatalf("expected ContentLengthPresent true for a junk value")
	}
	if f.HasContentLength {
		t.Fatalf("expected HasContentLength false for a junk value")
	}
	if !f.declaresFraming() {
		t.Errorf("a present-but-junk Content-Length still declares framing")
	}
}

func TestParseResponseHeadersNoFraming(t *testing.T) {
	section := []byte("HTTP/1.1 204 No Content\r\nServer: test")
	f := parseResponseHeaders(section)
	if f.declaresFraming() {
		t.Fatalf("expected no framing declared: %+v", f)
	}
}

func TestParseResponseHeadersCaseInsensitiveConnection(t *testing.T) {
	section := []byte("HTTP/1.1 200 OK\r\nCONNECTION: Keep-Alive")
	f := parseResponseHeaders(section)
	if !f.KeepAlive {
		t.Fatalf("expected case-insensitive Connection match to set KeepAlive")
	}
}

func TestRelayShouldStop(t *testing.T) {
	cases := []struct {
		name    string
		framing responseFraming
		chunk   []byte
		got     int64
		want    bool
	}{
		{"content-length reached", responseFraming{HasContentLength: true, ContentLength: 5}, nil, 5, true},
		{"content-length not reached", responseFraming{HasContentLength: true, ContentLength: 5}, nil, 3, false},
		{"chunked terminator present", responseFraming{Chunked: true}, []byte("abc0\r\n\r\n"), 8, true},
		{"chunked terminator absent", responseFraming{Chunked: true}, []byte("abc"), 3, false},
		{"no framing at all", responseFraming{}, []byte("anything"), 8, true},
		{"present but malformed content-length", responseFraming{ContentLengthPresent: true}, []byte("abc"), 3, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := relayShouldStop(c.framing, c.chunk, c.got); got != c.want {
				t.Errorf("relayShouldStop() = %v, want %v", got, c.want)
			}
		})
	}
}
