package printer

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p, err := New(Config{Type: ""})
	require.NoError(t, err)
	assert.Equal(t, "none", p.Type())
	assert.NoError(t, p.Print(context.Background(), []byte("x")))

	_, err = New(Config{Type: "usb"})
	assert.Error(t, err)
	_, err = New(Config{Type: "network"})
	assert.Error(t, err)
	_, err = New(Config{Type: "bluetooth"})
	assert.Error(t, err)
}

func TestNetworkPrinter_Print(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		b, _ := io.ReadAll(conn)
		received <- b
	}()

	p, err := New(Config{Type: "network", Address: ln.Addr().String(), Timeout: time.Second})
	require.NoError(t, err)
	require.NoError(t, p.Print(context.Background(), []byte("hello")))

	select {
	case b := <-received:
		assert.Equal(t, []byte("hello"), b)
	case <-time.After(2 * time.Second):
		t.Fatal("printer did not receive data")
	}
}

func TestDocument_Columns(t *testing.T) {
	doc := NewDocument(0)
	assert.Equal(t, Width58mm, doc.Width())

	doc.KeyValue("Total:", "30.00")
	out := doc.Bytes()
	line := string(bytes.TrimPrefix(out, []byte{ESC, '@'}))
	assert.Equal(t, "Total:"+strings.Repeat(" ", 21)+"30.00\n", line)

	doc = NewDocument(Width58mm)
	doc.KeyValue("A very long key that overflows the paper", "1.00")
	line = string(bytes.TrimPrefix(doc.Bytes(), []byte{ESC, '@'}))
	assert.Len(t, line, Width58mm+1)
	assert.Contains(t, line, " 1.00\n")
}
