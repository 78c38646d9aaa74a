package smpp

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/codcod/smpp/pdu"
	"github.com/codcod/smpp/validate"
)

// tcpKeepAliveListener sets TCP keep-alive timeouts on accepted
// connections. It's used by ListenAndServe so
// dead TCP connections (e.g. closing laptop mid-download) eventually
// go away.
type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (ln tcpKeepAliveListener) Accept() (c net.Conn, err error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return
	}
	tc.SetKeepAlive(true)
	tc.SetKeepAlivePeriod(3 * time.Minute)
	return tc, nil
}

// Server implements SMPP SMSC server.
type Server struct {
	Addr        string
	SessionConf *SessionConf
	// MaxConnections caps the number of simultaneously active sessions.
	// Zero means unlimited.
	MaxConnections int

	wg         sync.WaitGroup
	mu         sync.Mutex
	listeners  map[net.Listener]struct{}
	doneChan   chan struct{}
	activeSess map[*Session]struct{}

	shuttingDown bool
	shutdownDone chan struct{}
}

// NewServer creates new SMPP server for managing SMSC sessions.
// Sessions will use provided SessionConf as template configuration. Every
// accepted connection launches with a keepalive prober and a stale-pending
// reaper already running, per the connection defaults below, unless conf
// already set them explicitly.
func NewServer(addr string, conf SessionConf) *Server {
	if conf.EnquireLinkInterval == 0 {
		conf.EnquireLinkInterval = 60 * time.Second
	}
	if conf.PendingTTL == 0 {
		conf.PendingTTL = 30 * time.Second
	}
	return &Server{
		Addr:           addr,
		SessionConf:    &conf,
		MaxConnections: 100,
	}
}

// ListenAndServe starts server listening. Blocking function.
func (srv *Server) ListenAndServe() error {
	addr := srv.Addr
	if addr == "" {
		addr = ":2775"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	return srv.Serve(tcpKeepAliveListener{ln.(*net.TCPListener)})
}

// Serve accepts incoming connections and starts SMPP sessions.
func (srv *Server) Serve(ln net.Listener) error {
	defer ln.Close()
	srv.trackListener(ln, true)
	// acceptBackoff paces retries after a temporary Accept error (e.g. the
	// process is briefly out of file descriptors) without the classic
	// hand-rolled doubling-with-cap loop.
	acceptBackoff := backoff.NewExponentialBackOff()
	acceptBackoff.InitialInterval = 5 * time.Millisecond
	acceptBackoff.MaxInterval = 1 * time.Second
	acceptBackoff.MaxElapsedTime = 0
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-srv.getDoneChan():
				return nil
			default:
			}
			if ne, ok := err.(net.Error); ok && ne.Temporary() {
				time.Sleep(acceptBackoff.NextBackOff())
				continue
			}
			return err
		}
		acceptBackoff.Reset()

		if srv.atCapacity() {
			conn.Close()
			continue
		}

		srv.wg.Add(1)
		go func(conf SessionConf) {
			defer srv.wg.Done()
			conf.Type = SMSC
			sess := NewSession(conn, conf)
			srv.trackSess(sess, true)
			select {
			case <-sess.NotifyClosed():
			case <-srv.getDoneChan():
				sess.Close()
			}
			srv.trackSess(sess, false)
		}(*srv.SessionConf)
	}
}

// Outbind dials addr as an SMSC-initiated connection using this Server's
// template SessionConf, sends outbind, and registers the resulting session
// so it shows up in Broadcast and participates in Shutdown/Close like any
// accepted connection. The ESME on the other end is expected to answer
// with a normal bind sequence on the same connection.
func (srv *Server) Outbind(ctx context.Context, addr, systemID, password string) (*Session, error) {
	sess, err := Outbind(ctx, addr, systemID, password, *srv.SessionConf)
	if err != nil {
		return nil, err
	}
	srv.trackSess(sess, true)
	srv.wg.Add(1)
	go func() {
		defer srv.wg.Done()
		select {
		case <-sess.NotifyClosed():
		case <-srv.getDoneChan():
			sess.Close()
		}
		srv.trackSess(sess, false)
	}()
	return sess, nil
}

// Unbind gracefully closes server by sending Unbind requests to all connected peers.
func (srv *Server) Unbind(ctx context.Context) error {
	srv.mu.Lock()
	for sess := range srv.activeSess {
		Unbind(ctx, sess)
	}
	srv.mu.Unlock()
	return srv.Close()
}

// ShutdownNotifier selects what Server.Shutdown sends to still-connected
// peers during the notify phase.
type ShutdownNotifier int

const (
	// NotifyUnbind sends a protocol-level unbind, the default.
	NotifyUnbind ShutdownNotifier = iota
	// NotifyAdvisory sends a deliver_sm carrying a plain-text warning
	// instead of unbinding, letting the peer finish in-flight work on its
	// own schedule before the grace period forces it closed. The message
	// text is fixed, not derived from anything the peer sent.
	NotifyAdvisory
)

func (n ShutdownNotifier) String() string {
	if n == NotifyAdvisory {
		return "advisory"
	}
	return "unbind"
}

// ShutdownConf configures the multi-phase graceful shutdown sequence run by
// Server.Shutdown.
type ShutdownConf struct {
	// GracePeriod is how long voluntarily-disconnecting clients are given
	// after the notify phase. Default 15s; negative values are rejected and
	// values above 1h are clamped to 1h.
	GracePeriod time.Duration
	// ReminderDelay is measured from the start of GracePeriod; the
	// reminder fires once ReminderDelay has elapsed, with
	// GracePeriod-ReminderDelay of the grace period left. Default 5s;
	// negative values are rejected and values above 1h are clamped to 1h.
	ReminderDelay time.Duration
	// ShutdownTimeout bounds the forced-disconnect phase that starts once
	// GracePeriod elapses. Default 10s; negative values are rejected and
	// values above 1h are clamped to 1h.
	ShutdownTimeout time.Duration
	// Notifier picks how still-connected peers are told about the
	// shutdown. Default NotifyUnbind.
	Notifier ShutdownNotifier
	// OnComplete, if set, fires once every phase has finished and the
	// session registry has been drained.
	OnComplete func()
}

// maxShutdownPeriod bounds every configurable duration in ShutdownConf.
const maxShutdownPeriod = time.Hour

func (c *ShutdownConf) applyDefaults() error {
	if c.GracePeriod == 0 {
		c.GracePeriod = 15 * time.Second
	}
	if c.ReminderDelay == 0 {
		c.ReminderDelay = 5 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	for _, d := range []*time.Duration{&c.GracePeriod, &c.ReminderDelay, &c.ShutdownTimeout} {
		if *d > maxShutdownPeriod {
			*d = maxShutdownPeriod
		}
	}
	if err := validate.Duration("grace_period", c.GracePeriod, maxShutdownPeriod); err != nil {
		return err
	}
	if err := validate.Duration("reminder_delay", c.ReminderDelay, maxShutdownPeriod); err != nil {
		return err
	}
	if err := validate.Duration("shutdown_timeout", c.ShutdownTimeout, maxShutdownPeriod); err != nil {
		return err
	}
	return nil
}

// Shutdown runs the quiesce -> notify -> grace period -> reminder -> force
// -> drain sequence described for the listener: it stops accepting new
// connections, asks bound clients to unbind, waits out the grace period
// re-notifying stragglers at the reminder mark, then forcibly disconnects
// whoever is left. It always returns within GracePeriod+ShutdownTimeout
// plus a small epsilon for the force-disconnect fan-out, and is safe to
// call concurrently or more than once — later callers just wait on the
// first call's completion.
func (srv *Server) Shutdown(ctx context.Context, conf ShutdownConf) error {
	if err := conf.applyDefaults(); err != nil {
		return err
	}
	srv.mu.Lock()
	if srv.shuttingDown {
		done := srv.shutdownDone
		srv.mu.Unlock()
		<-done
		return nil
	}
	srv.shuttingDown = true
	srv.shutdownDone = make(chan struct{})
	done := srv.shutdownDone
	srv.closeDoneChanLocked()
	srv.closeListenersLocked()
	srv.mu.Unlock()
	defer close(done)

	notify := func() {
		srv.mu.Lock()
		targets := make([]*Session, 0, len(srv.activeSess))
		for sess := range srv.activeSess {
			targets = append(targets, sess)
		}
		srv.mu.Unlock()
		for _, sess := range targets {
			nctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			switch conf.Notifier {
			case NotifyAdvisory:
				SendDeliverSm(nctx, sess, &pdu.DeliverSm{
					SourceAddr:   "smsc",
					ShortMessage: "server shutting down, please unbind",
				})
			default:
				SendUnbind(nctx, sess, &pdu.Unbind{})
			}
			cancel()
		}
	}
	notify()

	reminder := time.NewTimer(conf.ReminderDelay)
	graceDeadline := time.NewTimer(conf.GracePeriod)
	defer reminder.Stop()
	defer graceDeadline.Stop()

grace:
	for {
		select {
		case <-reminder.C:
			notify()
		case <-graceDeadline.C:
			break grace
		case <-srv.allClosed():
			break grace
		}
	}

	force, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer cancel()
	srv.mu.Lock()
	remaining := make([]*Session, 0, len(srv.activeSess))
	for sess := range srv.activeSess {
		remaining = append(remaining, sess)
	}
	srv.mu.Unlock()
	var wg sync.WaitGroup
	for _, sess := range remaining {
		wg.Add(1)
		go func(sess *Session) {
			defer wg.Done()
			closed := make(chan struct{})
			go func() { sess.Close(); close(closed) }()
			select {
			case <-closed:
			case <-force.Done():
			}
		}(sess)
	}
	wg.Wait()

	srv.mu.Lock()
	srv.activeSess = nil
	srv.mu.Unlock()
	if conf.OnComplete != nil {
		conf.OnComplete()
	}
	return nil
}

// allClosed returns a channel closed once the active session set is empty.
// It's polled via a short ticker rather than fanning out NotifyClosed
// subscriptions, since the set mutates as clients disconnect mid-wait.
func (srv *Server) allClosed() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		t := time.NewTicker(50 * time.Millisecond)
		defer t.Stop()
		for range t.C {
			srv.mu.Lock()
			n := len(srv.activeSess)
			srv.mu.Unlock()
			if n == 0 {
				close(ch)
				return
			}
		}
	}()
	return ch
}

// Broadcast sends a deliver_sm with the given source address and text to
// every currently bound Receiver/Transceiver session concurrently. It
// returns the number of sessions that acknowledged with ESME_ROK and the
// number that failed or timed out; a per-client failure never aborts the
// broadcast for the others.
func (srv *Server) Broadcast(ctx context.Context, sourceAddr, text string) (ok, failed int) {
	srv.mu.Lock()
	targets := make([]*Session, 0, len(srv.activeSess))
	for sess := range srv.activeSess {
		sess.mu.Lock()
		state := sess.state
		sess.mu.Unlock()
		if state != StateBoundRx && state != StateBoundTRx {
			continue
		}
		targets = append(targets, sess)
	}
	srv.mu.Unlock()

	type result struct{ ok bool }
	results := make(chan result, len(targets))
	var wg sync.WaitGroup
	for _, sess := range targets {
		wg.Add(1)
		go func(sess *Session) {
			defer wg.Done()
			resp, err := SendDeliverSm(ctx, sess, &pdu.DeliverSm{
				SourceAddr:      sourceAddr,
				DestinationAddr: sess.SystemID(),
				ShortMessage:    text,
			})
			results <- result{ok: err == nil && resp != nil}
		}(sess)
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	for r := range results {
		if r.ok {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// Close implements closer interface.
func (srv *Server) Close() error {
	srv.mu.Lock()
	srv.closeDoneChanLocked()
	err := srv.closeListenersLocked()
	srv.mu.Unlock()
	srv.wg.Wait()
	return err
}

func (srv *Server) getDoneChan() <-chan struct{} {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.getDoneChanLocked()
}

func (srv *Server) getDoneChanLocked() chan struct{} {
	if srv.doneChan == nil {
		srv.doneChan = make(chan struct{})
	}
	return srv.doneChan
}

func (srv *Server) closeDoneChanLocked() {
	ch := srv.getDoneChanLocked()
	select {
	case <-ch:
		// Already closed. Don't close again.
	default:
		// Safe to close here. We're the only closer, guarded by srv.mu.
		close(ch)
	}
}

func (srv *Server) trackListener(ln net.Listener, add bool) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.listeners == nil {
		srv.listeners = make(map[net.Listener]struct{})
	}
	if add {
		// If the *Server is being reused after a previous
		// Close or Shutdown, reset its doneChan:
		if len(srv.listeners) == 0 && len(srv.activeSess) == 0 {
			srv.doneChan = nil
		}
		srv.listeners[ln] = struct{}{}
	} else {
		delete(srv.listeners, ln)
	}
}

func (srv *Server) closeListenersLocked() error {
	var err error
	for ln := range srv.listeners {
		if cerr := ln.Close(); cerr != nil && err == nil {
			err = cerr
		}
		delete(srv.listeners, ln)
	}
	return err
}

func (srv *Server) atCapacity() bool {
	if srv.MaxConnections == 0 {
		return false
	}
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return len(srv.activeSess) >= srv.MaxConnections
}

func (srv *Server) trackSess(sess *Session, add bool) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.activeSess == nil {
		srv.activeSess = make(map[*Session]struct{})
	}
	if add {
		srv.activeSess[sess] = struct{}{}
	} else {
		delete(srv.activeSess, sess)
	}
}
