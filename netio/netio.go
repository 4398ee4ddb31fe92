// Package netio is the socket layer: it binds one UDP socket per
// configured input port, designates one of them as the outbound socket,
// and multiplexes reads across all of them into a single queue the
// control loop drains on its own schedule.
//
// Go's net package has no direct equivalent of select(2) across several
// file descriptors, so each socket gets its own reader goroutine bounded
// by a short read deadline — the idiomatic Go substitute for a
// multiplexed wait, and the same shape as a connection's own reader
// goroutine feeding a single dispatch point.
package netio

import (
	"context"
	"net"
	"time"

	"github.com/jackyisme123/RIP-v2/queue"
	"github.com/jackyisme123/RIP-v2/ripmetrics"
	"github.com/jackyisme123/RIP-v2/wire"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var loopback = net.IPv4(127, 0, 0, 1)

// readPollInterval bounds how long a reader goroutine blocks on one
// ReadFromUDP call before it rechecks for cancellation. It is shorter
// than the control loop's own ~1s wait so shutdown is prompt.
const readPollInterval = 250 * time.Millisecond

// Datagram is one received UDP payload, tagged with the local port it
// arrived on (so the router can tell which socket, and so defensively
// which expected neighbor, it came in from).
type Datagram struct {
	Payload  []byte
	FromPort int
}

// Layer owns every UDP socket for one router process.
type Layer struct {
	conns    map[int]*net.UDPConn
	output   *net.UDPConn
	incoming *queue.Queue[Datagram]
	wake     chan struct{}
	metrics  *ripmetrics.Counters
	log      *logrus.Entry
}

// Bind opens one UDP socket per port in ports, all on loopback, and
// starts a reader goroutine for each. The first port is used as the
// outbound socket, matching the reference router's "first input socket
// doubles as the sender" convention. A bind failure here is fatal per
// the error-handling design: the caller should log which port failed
// and exit.
func Bind(ctx context.Context, ports []int, metrics *ripmetrics.Counters, log *logrus.Entry) (*Layer, error) {
	if len(ports) == 0 {
		return nil, errors.New("no input ports configured")
	}
	l := &Layer{
		conns:    make(map[int]*net.UDPConn, len(ports)),
		incoming: queue.New[Datagram](),
		wake:     make(chan struct{}, 1),
		metrics:  metrics,
		log:      log,
	}
	for _, port := range ports {
		conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: loopback, Port: port})
		if err != nil {
			l.Close()
			return nil, errors.Wrapf(err, "binding input socket on port %d", port)
		}
		l.conns[port] = conn
		if l.output == nil {
			l.output = conn
		}
		go l.readLoop(ctx, conn, port)
	}
	return l, nil
}

func (l *Layer) readLoop(ctx context.Context, conn *net.UDPConn, port int) {
	buf := make([]byte, wire.MaxPacketBytes)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := conn.SetReadDeadline(time.Now().Add(readPollInterval)); err != nil {
			return
		}
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			// Socket was closed out from under us, most likely during
			// shutdown, but could also be a genuine unexpected I/O error.
			if l.log != nil {
				l.log.WithError(err).WithField("port", port).Debug("socket reader exiting")
			}
			return
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		l.incoming.Push(Datagram{Payload: payload, FromPort: port})
		select {
		case l.wake <- struct{}{}:
		default:
		}
	}
}

// Notify returns the channel the control loop selects on to learn a
// datagram is ready to Drain. Receiving from it is non-blocking to
// produce: reader goroutines use a try-send so a burst of datagrams
// coalesces into a single wakeup.
func (l *Layer) Notify() <-chan struct{} {
	return l.wake
}

// Drain removes and returns every datagram queued since the last Drain.
func (l *Layer) Drain() []Datagram {
	n := l.incoming.Len()
	if n == 0 {
		return nil
	}
	out := make([]Datagram, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, l.incoming.Pop())
	}
	return out
}

// Send transmits payload to the given loopback port from the designated
// output socket. A send failure is logged by the caller and retried
// naturally on the next periodic tick; Send itself does not retry.
func (l *Layer) Send(port int, payload []byte) error {
	_, err := l.output.WriteToUDP(payload, &net.UDPAddr{IP: loopback, Port: port})
	if l.metrics != nil {
		if err != nil {
			l.metrics.PacketsDropped.Increment()
		} else {
			l.metrics.PacketsSent.Increment()
		}
	}
	return err
}

// Close shuts down every bound socket. Safe to call more than once.
func (l *Layer) Close() {
	for _, c := range l.conns {
		_ = c.Close()
	}
}
