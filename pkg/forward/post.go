package forward

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"strings"
)

// ForwardPost implements §4.F: like ForwardGet, but validates the request's
// body framing before dialing, appends the pre-read body to the forwarded
// request, and — for a chunked upload the parser hadn't finished reading —
// continues reading from the client and forwarding to the origin until the
// chunk terminator is seen.
func (e *Engine) ForwardPost(req *Request, client net.Conn, clientID string, log Logger) {
	host, port := req.Host, req.PortOrDefault()
	key := host + ":" + port

	clValue, hasCL := req.Get("Content-Length")
	if hasCL {
		if n, err := strconv.ParseInt(clValue, 10, 63); err != nil || n < 0 {
			logf(log, Error, clientID, "invalid Content-Length %q from client %s", clValue, clientID)
			writeBadRequest(client)
			e.recordExchange(req.Method, nil, key, "400")
			return
		}
	}

	teValue, hasTE := req.Get("Transfer-Encoding")
	chunked := hasTE && strings.Contains(strings.ToLower(teValue), "chunked")

	if !hasCL && !chunked && len(req.Body) > 0 {
		logf(log, Error, clientID, "POST body without Content-Length or chunked framing from client %s", clientID)
		writeBadRequest(client)
		e.recordExchange(req.Method, nil, key, "400")
		return
	}

	logf(log, Debug, clientID, "forwarding POST %s to %s", req.Target, key)

	bc, err := e.dialer.Dial(context.Background(), host, port)
	if err != nil {
		logf(log, Error, clientID, "dial %s failed: %v", key, err)
		writeBadGateway(client)
		e.recordExchange(req.Method, nil, key, "502")
		return
	}

	reqBytes := buildRequest(req)
	reqBytes = append(reqBytes, req.Body...)
	if werr := sendToOrigin(bc, reqBytes); werr != nil {
		logf(log, Error, clientID, "send request to %s failed: %v", key, werr)
		bc.Close()
		writeInternalServerError(client)
		e.recordExchange(req.Method, nil, key, "500")
		return
	}

	if chunked && !bytes.Contains(req.Body, chunkedTerminator) {
		logf(log, Debug, clientID, "reading additional chunked data from client %s", clientID)
		if cerr := readChunkedBodyFromClient(client, bc, e.opts.ReadBufferSize); cerr != nil {
			logf(log, Error, clientID, "reading chunked body from client %s failed: %v", clientID, cerr)
			bc.Close()
			e.recordExchange(req.Method, nil, key, "")
			return
		}
	}

	keepAlive, rerr := relayResponse(bc, client, e.opts.ReadBufferSize)
	if rerr != nil {
		logf(log, Error, clientID, "relay from %s failed: %v", key, rerr)
		bc.Close()
		e.recordExchange(req.Method, nil, key, "")
		return
	}

	logf(log, Info, clientID, "completed forwarding POST for client %s", clientID)
	e.recordExchange(req.Method, bc, key, "200")
	e.dialer.Release(host, port, bc, keepAlive)
}
