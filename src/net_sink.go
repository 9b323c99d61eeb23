package fusex

/*------------------------------------------------------------------
 *
 * Purpose:   	Provide decoded messages to other applications over TCP.
 *
 * Description:	Listens on a TCP port.  Every connected client gets a
 *		copy of every message, one per line, in the same format
 *		as the console:  F<seq>: "<text>"
 *
 *		Anything a client sends is read and thrown away; the
 *		read is only there to notice when it goes away.
 *
 *		A client that errors on write is disconnected.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const MAX_NET_CLIENTS = 3

const NET_WRITE_TIMEOUT = 2 * time.Second

type NetSink struct {
	mu       sync.Mutex
	listener net.Listener
	clients  [MAX_NET_CLIENTS]net.Conn
	logger   *log.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

/*-------------------------------------------------------------------
 *
 * Name:        ListenNetSink
 *
 * Inputs:	addr	- Like ":8009".  Port 0 picks a free one.
 *
 *		dnssdName - Announce the service with DNS-SD under this
 *			  name.  Empty for a name based on the host name.
 *
 *		announce - False to skip DNS-SD entirely.
 *
 *--------------------------------------------------------------------*/

func ListenNetSink(addr string, announce bool, dnssdName string, logger *log.Logger) (*NetSink, error) {
	var listener, listenErr = net.Listen("tcp", addr)
	if listenErr != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, listenErr)
	}

	var ctx, cancel = context.WithCancel(context.Background())

	var ns = &NetSink{ //nolint:exhaustruct
		listener: listener,
		logger:   logger,
		cancel:   cancel,
	}

	ns.wg.Add(1)
	go ns.acceptLoop()

	if announce {
		dnsSDAnnounce(ctx, dnssdName, ns.Port(), logger)
	}

	return ns, nil
}

// Port actually listened on.
func (ns *NetSink) Port() int {
	var tcpAddr, ok = ns.listener.Addr().(*net.TCPAddr)
	if !ok {
		return 0
	}

	return tcpAddr.Port
}

func (ns *NetSink) freeSlot() int {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	for c := range MAX_NET_CLIENTS {
		if ns.clients[c] == nil {
			return c
		}
	}

	return -1
}

func (ns *NetSink) acceptLoop() {
	defer ns.wg.Done()

	for {
		var client = ns.freeSlot()

		if client < 0 {
			time.Sleep(time.Second) /* wait then check again if more clients allowed. */
			continue
		}

		ns.logger.Debug("Ready to accept TCP client application", "client", client, "port", ns.Port())

		var conn, acceptErr = ns.listener.Accept()
		if errors.Is(acceptErr, net.ErrClosed) {
			return
		}

		if acceptErr != nil {
			ns.logger.Warn("Accept failed", "err", acceptErr)
			continue
		}

		ns.mu.Lock()
		ns.clients[client] = conn
		ns.mu.Unlock()

		ns.logger.Info("Attached to TCP client application", "client", client, "remote", conn.RemoteAddr())

		ns.wg.Add(1)
		go ns.drain(client, conn)
	}
}

// drain discards client input until the connection goes away.
func (ns *NetSink) drain(client int, conn net.Conn) {
	defer ns.wg.Done()

	var _, _ = io.Copy(io.Discard, conn)

	ns.disconnect(client, conn)
}

func (ns *NetSink) disconnect(client int, conn net.Conn) {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if ns.clients[client] != conn {
		return
	}

	conn.Close()
	ns.clients[client] = nil

	ns.logger.Info("Closing connection to TCP client application", "client", client)
}

// Clients is the number attached right now.
func (ns *NetSink) Clients() int {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	var n = 0

	for _, c := range ns.clients {
		if c != nil {
			n++
		}
	}

	return n
}

func (ns *NetSink) WriteMessage(m Message) error {
	var line = []byte(FormatMessage(m) + "\r\n")

	ns.mu.Lock()
	var clients = ns.clients
	ns.mu.Unlock()

	for client, conn := range clients {
		if conn == nil {
			continue
		}

		conn.SetWriteDeadline(time.Now().Add(NET_WRITE_TIMEOUT))

		var _, err = conn.Write(line)
		if err != nil {
			ns.logger.Warn("Write to TCP client failed", "client", client, "err", err)
			ns.disconnect(client, conn)
		}
	}

	return nil
}

func (ns *NetSink) Close() error {
	ns.cancel()

	var err = ns.listener.Close()

	ns.mu.Lock()
	for client, conn := range ns.clients {
		if conn != nil {
			conn.Close()
			ns.clients[client] = nil
		}
	}
	ns.mu.Unlock()

	ns.wg.Wait()

	return err
}
