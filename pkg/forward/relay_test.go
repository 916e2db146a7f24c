package forward

import (
	"io"
	"net"
	"testing"
	"time"
)

// relayOrigin and relayClient wire relayResponse to in-process net.Pipe
// ends so the test can feed raw bytes as "origin" without opening a real
// socket, the same trick pkg/hc's tests use a loopback listener for.
func relayOrigin(t *testing.T, response []byte) (*bufConn, net.Conn) {
	t.Helper()
	a, b := net.Pipe()
	go func() {
		b.Write(response)
		b.Close()
	}()
	return newBufConn(a), a
}

func TestRelayResponseContentLength(t *testing.T) {
	response := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\nConnection: keep-alive\r\n\r\nhello"
	bc, _ := relayOrigin(t, []byte(response))

	clientRead, clientWrite := net.Pipe()
	out := make(chan []byte, 1)
	go func() {
		buf, _ := io.ReadAll(clientRead)
		out <- buf
	}()

	keepAlive, err := relayResponse(bc, clientWrite, 64)
	clientWrite.Close()
	if err != nil {
		t.Fatalf("relayResponse error: %v", err)
	}
	if !keepAlive {
		t.Errorf("expected keepAlive true")
	}

	select {
	case got := <-out:
		if string(got) != response {
			t.Errorf("relayed bytes = %q, want %q", got, response)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for relayed bytes")
	}
}

func TestRelayResponseNoFramingStopsImmediately(t *testing.T) {
	response := "HTTP/1.1 204 No Content\r\nServer: test\r\n\r\n"
	a, b := net.Pipe()
	go func() {
		b.Write([]byte(response))
		// deliberately never close b: relayResponse must stop on its own
		// once it sees no framing was declared, without waiting for EOF.
	}()
	bc := newBufConn(a)

	clientRead, clientWrite := net.Pipe()
	out := make(chan []byte, 1)
	go func() {
		buf, _ := io.ReadAll(io.LimitReader(clientRead, int64(len(response))))
		out <- buf
	}()

	done := make(chan struct{})
	var err error
	go func() {
		_, err = relayResponse(bc, clientWrite, 64)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relayResponse did not return for a response with no declared framing")
	}
	if err != nil {
		t.Fatalf("relayResponse error: %v", err)
	}
	clientWrite.Close()
	<-out
}

func TestRelayResponseChunked(t *testing.T) {
	response := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n"
	bc, _ := relayOrigin(t, []byte(response))

	clientRead, clientWrite := net.Pipe()
	out := make(chan []byte, 1)
	go func() {
		buf, _ := io.ReadAll(clientRead)
		out <- buf
	}()

	_, err := relayResponse(bc, clientWrite, 64)
	clientWrite.Close()
	if err != nil {
		t.Fatalf("relayResponse error: %v", err)
	}

	select {
	case got := <-out:
		if string(got) != response {
			t.Errorf("relayed bytes = %q, want %q", got, response)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for relayed bytes")
	}
}
