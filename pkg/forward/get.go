package forward

import (
	"context"
	"net"
)

// ForwardGet implements §4.E: dial the origin (or reuse a pooled
// connection), send the rewritten request line and headers, relay the
// response back to client, then return the origin connection to the pool
// or close it depending on what the origin advertised.
func (e *Engine) ForwardGet(req *Request, client net.Conn, clientID string, log Logger) {
	e.forwardNoBody(req, client, clientID, log)
}

// forwardNoBody is shared by GET and any other method §4.E covers that
// never carries a request body to the origin.
func (e *Engine) forwardNoBody(req *Request, client net.Conn, clientID string, log Logger) {
	host, port := req.Host, req.PortOrDefault()
	key := host + ":" + port

	logf(log, Debug, clientID, "forwarding %s %s to %s", req.Method, req.Target, key)

	bc, err := e.dialer.Dial(context.Background(), host, port)
	if err != nil {
		logf(log, Error, clientID, "dial %s failed: %v", key, err)
		writeBadGateway(client)
		e.recordExchange(req.Method, nil, key, "502")
		return
	}

	if werr := sendToOrigin(bc, buildRequest(req)); werr != nil {
		logf(log, Error, clientID, "send request to %s failed: %v", key, werr)
		bc.Close()
		writeInternalServerError(client)
		e.recordExchange(req.Method, nil, key, "500")
		return
	}

	keepAlive, rerr := relayResponse(bc, client, e.opts.ReadBufferSize)
	if rerr != nil {
		logf(log, Error, clientID, "relay from %s failed: %v", key, rerr)
		bc.Close()
		e.recordExchange(req.Method, nil, key, "")
		return
	}

	logf(log, Info, clientID, "completed forwarding %s for client %s", req.Method, clientID)
	e.recordExchange(req.Method, bc, key, "200")
	e.dialer.Release(host, port, bc, keepAlive)
}
