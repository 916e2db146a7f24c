package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"net"

	"github.com/simult/proxyd/pkg/forward"
)

// proxyHandler adapts forward.Engine to accepter.Handler, the way
// pkg/app.accepterHandler adapts lb.Frontend to the same interface: it owns
// nothing but a reference to the engine and a logger, and reads exactly one
// request per connection (no pipelining, per §1's non-goals).
type proxyHandler struct {
	engine *forward.Engine
	log    forward.Logger
}

func (h *proxyHandler) Serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	clientID := randomClientID()
	r := bufio.NewReader(conn)

	req, err := readRequest(r)
	if err != nil {
		h.log.Log(forward.Error, clientID, "reading request failed: "+err.Error())
		return
	}

	switch req.Method {
	case "CONNECT":
		h.engine.ForwardConnect(req, conn, clientID, h.log)
	case "POST", "PUT", "PATCH":
		h.engine.ForwardPost(req, conn, clientID, h.log)
	default:
		h.engine.ForwardGet(req, conn, clientID, h.log)
	}
}

func randomClientID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b[:])
}
