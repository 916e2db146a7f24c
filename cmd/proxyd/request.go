package main

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/simult/proxyd/pkg/forward"
)

// readRequest is the "small request-line reader" §2/component K calls for:
// it owns exactly enough HTTP/1.1 parsing to turn bytes off the wire into a
// forward.Request, the input the engine expects but never produces itself.
// It is deliberately minimal — no pipelining, no continuation lines, no
// trailers — the parser the spec places out of scope, stood in for.
func readRequest(r *bufio.Reader) (*forward.Request, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed request line %q", line)
	}
	req := &forward.Request{
		Method:  parts[0],
		Target:  parts[1],
		Version: parts[2],
	}

	for {
		hline, err := readLine(r)
		if err != nil {
			return nil, err
		}
		if hline == "" {
			break
		}
		name, value, ok := strings.Cut(hline, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header %q", hline)
		}
		req.Headers = append(req.Headers, forward.Header{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}

	if req.Method == "CONNECT" {
		host, port, err := net.SplitHostPort(req.Target)
		if err != nil {
			return nil, fmt.Errorf("malformed CONNECT target %q: %w", req.Target, err)
		}
		req.Host, req.Port = host, port
		return req, nil
	}

	u, err := url.Parse(req.Target)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("malformed absolute-form target %q", req.Target)
	}
	host, port := u.Hostname(), u.Port()
	req.Host, req.Port = host, port

	if clValue, ok := req.Get("Content-Length"); ok {
		n, err := strconv.ParseInt(clValue, 10, 63)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("malformed Content-Length %q", clValue)
		}
		if n > 0 {
			req.Body = make([]byte, n)
			if _, err := io.ReadFull(r, req.Body); err != nil {
				return nil, err
			}
		}
		return req, nil
	}

	if teValue, ok := req.Get("Transfer-Encoding"); ok && strings.Contains(teValue, "chunked") {
		body, err := readAvailableChunkedPrefix(r)
		if err != nil {
			return nil, err
		}
		req.Body = body
	}

	return req, nil
}

// readAvailableChunkedPrefix reads whatever of a chunked body bufio's
// buffer already has pending without blocking for the terminator — the
// remainder, if any, is picked up by forward.ForwardPost's continuation
// read straight from the client socket.
func readAvailableChunkedPrefix(r *bufio.Reader) ([]byte, error) {
	n := r.Buffered()
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
