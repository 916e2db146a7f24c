package forward

import (
	"fmt"
	"net"
)

// MalformedRequestError marks a request the engine refuses to forward
// because its framing is ambiguous (§7 MalformedRequest): a Content-Length
// that doesn't parse, or a body with no declared framing at all.
type MalformedRequestError struct {
	Reason string
}

func (e *MalformedRequestError) Error() string {
	return "malformed request: " + e.Reason
}

// writeErrorResponse writes one of the three synthesized error bodies §6
// fixes the exact shape of. Write failures are not reported back up: the
// client connection is in an unknown state either way and there is nothing
// further this engine can do about it.
func writeErrorResponse(client net.Conn, code int, text string) {
	body := fmt.Sprintf("<html><body><h1>%d %s</h1></body></html>", code, text)
	resp := fmt.Sprintf(
		"HTTP/1.1 %d %s\r\nContent-Type: text/html\r\nConnection: close\r\nContent-Length: %d\r\n\r\n%s",
		code, text, len(body), body,
	)
	client.Write([]byte(resp))
}

func writeBadGateway(client net.Conn) {
	writeErrorResponse(client, 502, "Bad Gateway")
}

func writeInternalServerError(client net.Conn) {
	writeErrorResponse(client, 500, "Internal Server Error")
}

func writeBadRequest(client net.Conn) {
	writeErrorResponse(client, 400, "Bad Request")
}
