package main

import (
	"errors"
	"sync"
	"time"
)

// BackendKind identifies one of the supported store categories. At most one
// live connection exists per kind.
type BackendKind string

const (
	KindRedis    BackendKind = "redis"
	KindMySQL    BackendKind = "mysql"
	KindPostgres BackendKind = "postgres"
	KindSQLite   BackendKind = "sqlite"
	KindMongo    BackendKind = "mongo"
)

var (
	// ErrNotConnected is reported by every backend operation issued before a
	// successful connect has populated that backend's slot.
	ErrNotConnected = errors.New("not connected")

	// ErrUnknownBackend is reported for a kind outside the supported set.
	ErrUnknownBackend = errors.New("unknown backend kind")
)

// Registry holds the single live connection slot per backend kind, plus at
// most one tunnel session per kind. Slots for different kinds never contend;
// a slot's lock is held only for the instant of a swap or read, never across
// a network call, so a long-running query cannot block a reconnect.
type Registry struct {
	slots map[BackendKind]*slot
}

type slot struct {
	mu        sync.Mutex
	handle    any
	closeFn   func() error
	params    ConnectParams
	tunnel    *TunnelSession
	createdAt time.Time
}

func NewRegistry() *Registry {
	r := &Registry{slots: make(map[BackendKind]*slot)}
	for _, k := range []BackendKind{KindRedis, KindMySQL, KindPostgres, KindSQLite, KindMongo} {
		r.slots[k] = &slot{}
	}
	return r
}

// Set replaces the slot for kind unconditionally: last writer wins. The
// previous handle is closed, as is any tunnel session that was feeding it.
// tun may be nil for direct connections.
func (r *Registry) Set(kind BackendKind, handle any, closeFn func() error, params ConnectParams, tun *TunnelSession) error {
	s, ok := r.slots[kind]
	if !ok {
		return ErrUnknownBackend
	}

	s.mu.Lock()
	oldClose, oldTunnel, oldCreated := s.closeFn, s.tunnel, s.createdAt
	s.handle = handle
	s.closeFn = closeFn
	s.params = params
	s.tunnel = tun
	s.createdAt = time.Now()
	s.mu.Unlock()

	// Release replaced resources outside the lock.
	if oldClose != nil {
		logError("replacing %s connection (age %s)", kind, time.Since(oldCreated).Round(time.Second))
		if err := oldClose(); err != nil {
			logError("closing replaced %s connection: %v", kind, err)
		}
	}
	if oldTunnel != nil && oldTunnel != tun {
		oldTunnel.Close()
	}
	return nil
}

// Get returns the live handle for kind, or ErrNotConnected when the slot is
// empty. The lock is held only while the handle is copied out.
func (r *Registry) Get(kind BackendKind) (any, error) {
	s, ok := r.slots[kind]
	if !ok {
		return nil, ErrUnknownBackend
	}
	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()
	if h == nil {
		return nil, ErrNotConnected
	}
	return h, nil
}

// Params returns the connect parameters recorded with the live handle.
// Needed by operations that re-target the connection (use_database).
func (r *Registry) Params(kind BackendKind) (ConnectParams, error) {
	s, ok := r.slots[kind]
	if !ok {
		return ConnectParams{}, ErrUnknownBackend
	}
	s.mu.Lock()
	h, p := s.handle, s.params
	s.mu.Unlock()
	if h == nil {
		return ConnectParams{}, ErrNotConnected
	}
	return p, nil
}

// Tunnel returns the tunnel session feeding the kind's live handle, nil for
// direct connections.
func (r *Registry) Tunnel(kind BackendKind) (*TunnelSession, error) {
	s, ok := r.slots[kind]
	if !ok {
		return nil, ErrUnknownBackend
	}
	s.mu.Lock()
	tun := s.tunnel
	s.mu.Unlock()
	return tun, nil
}

// Close releases every live handle and tunnel. Called on shutdown.
func (r *Registry) Close() {
	for kind, s := range r.slots {
		s.mu.Lock()
		closeFn, tun := s.closeFn, s.tunnel
		s.handle, s.closeFn, s.tunnel = nil, nil, nil
		s.mu.Unlock()
		if closeFn != nil {
			if err := closeFn(); err != nil {
				logError("closing %s connection: %v", kind, err)
			}
		}
		if tun != nil {
			tun.Close()
		}
	}
}
