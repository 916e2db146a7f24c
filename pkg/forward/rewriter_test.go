package forward

import (
	"strings"
	"testing"
)

func TestBuildRequestStripsHopByHopHeaders(t *testing.T) {
	req := &Request{
		Method:  "GET",
		Target:  "http://example.com/path",
		Version: "HTTP/1.1",
		Headers: []Header{
			{Name: "Host", Value: "example.com"},
			{Name: "Connection", Value: "keep-alive"},
			{Name: "Proxy-Connection", Value: "keep-alive"},
			{Name: "Proxy-Authorization", Value: "Basic xyz"},
			{Name: "TE", Value: "trailers"},
			{Name: "Trailer", Value: "X-Foo"},
			{Name: "Transfer-Encoding", Value: "chunked"},
			{Name: "Upgrade", Value: "h2c"},
			{Name: "Accept", Value: "*/*"},
		},
	}

	out := string(buildRequest(req))

	if !strings.HasPrefix(out, "GET http://example.com/path HTTP/1.1\r\n") {
		t.Fatalf("unexpected request line: %q", out)
	}
	for _, dropped := range []string{"Proxy-Connection", "Proxy-Authorization", "TE:", "Trailer:", "Transfer-Encoding", "Upgrade"} {
		if strings.Contains(out, dropped) {
			t.Errorf("expected %q to be stripped, got: %q", dropped, out)
		}
	}
	if !strings.Contains(out, "Host: example.com\r\n") {
		t.Errorf("expected Host header to survive, got: %q", out)
	}
	if !strings.Contains(out, "Accept: */*\r\n") {
		t.Errorf("expected Accept header to survive, got: %q", out)
	}
	if strings.Count(out, "Connection: keep-alive\r\n") != 1 {
		t.Errorf("expected exactly one appended Connection: keep-alive, got: %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\n") {
		t.Errorf("expected request to terminate with blank line, got: %q", out)
	}
}

func TestBuildRequestPreservesHeaderOrder(t *testing.T) {
	req := &Request{
		Method:  "GET",
		Target:  "/",
		Version: "HTTP/1.1",
		Headers: []Header{
			{Name: "X-First", Value: "1"},
			{Name: "X-Second", Value: "2"},
			{Name: "X-Third", Value: "3"},
		},
	}

	out := string(buildRequest(req))
	firstIdx := strings.Index(out, "X-First")
	secondIdx := strings.Index(out, "X-Second")
	thirdIdx := strings.Index(out, "X-Third")
	if !(firstIdx < secondIdx && secondIdx < thirdIdx) {
		t.Fatalf("expected headers in original order, got: %q", out)
	}
}

func TestIsHopByHopCaseInsensitive(t *testing.T) {
	for _, name := range []string{"connection", "CONNECTION", "Connection", "keep-ALIVE"} {
		if !isHopByHop(name) {
			t.Errorf("expected %q to be treated as hop-by-hop", name)
		}
	}
	if isHopByHop("Content-Type") {
		t.Errorf("expected Content-Type to survive rewriting")
	}
}
