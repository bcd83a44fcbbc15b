package mapview

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// subscriberBuffer bounds how many undelivered updates a slow consumer may
// hold before further updates to it are dropped.
const subscriberBuffer = 8

type update struct {
	pos Position
	err error
}

// ClientGeolocator is a Geolocator fed by the browser. The page forwards
// every navigator.geolocation result through Push or PushError.
type ClientGeolocator struct {
	clock clockwork.Clock

	mu     sync.Mutex
	last   *Position
	subs   map[int]chan update
	nextID int
}

// NewClientGeolocator creates a geolocator with no fix.
func NewClientGeolocator(clock clockwork.Clock) *ClientGeolocator {
	return &ClientGeolocator{
		clock: clock,
		subs:  make(map[int]chan update),
	}
}

// Push records a fix and hands it to every waiting consumer. A zero
// timestamp is replaced with the current time.
func (g *ClientGeolocator) Push(pos Position) {
	if pos.Timestamp.IsZero() {
		pos.Timestamp = g.clock.Now()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = &pos
	g.broadcastLocked(update{pos: pos})
}

// PushError hands a failure to every waiting consumer. The last fix is kept.
func (g *ClientGeolocator) PushError(code ErrorCode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.broadcastLocked(update{err: &GeolocationError{Code: code}})
}

// Last returns the most recent fix, if any.
func (g *ClientGeolocator) Last() (Position, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last == nil {
		return Position{}, false
	}
	return *g.last, true
}

// CurrentPosition returns the cached fix when it is no older than
// opts.MaximumAge, otherwise waits up to opts.Timeout for the next result.
func (g *ClientGeolocator) CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error) {
	g.mu.Lock()
	if pos, ok := g.freshLocked(opts.MaximumAge); ok {
		g.mu.Unlock()
		return pos, nil
	}
	id, ch := g.subscribeLocked()
	g.mu.Unlock()
	defer g.unsubscribe(id)

	timer := g.clock.NewTimer(opts.Timeout)
	defer timer.Stop()

	select {
	case u := <-ch:
		if u.err != nil {
			return Position{}, u.err
		}
		return u.pos, nil
	case <-timer.Chan():
		return Position{}, &GeolocationError{Code: CodeTimeout}
	case <-ctx.Done():
		return Position{}, ctx.Err()
	}
}

// Watch streams results until ctx is cancelled. A fresh cached fix is
// delivered first. When opts.Timeout passes without any result a timeout
// error is reported and the wait starts over.
func (g *ClientGeolocator) Watch(ctx context.Context, opts PositionOptions, onFix func(Position), onErr func(error)) error {
	g.mu.Lock()
	cached, haveCached := g.freshLocked(opts.MaximumAge)
	id, ch := g.subscribeLocked()
	g.mu.Unlock()
	defer g.unsubscribe(id)

	if haveCached {
		onFix(cached)
	}

	timer := g.clock.NewTimer(opts.Timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u := <-ch:
			if !timer.Stop() {
				select {
				case <-timer.Chan():
				default:
				}
			}
			timer.Reset(opts.Timeout)
			if u.err != nil {
				onErr(u.err)
				continue
			}
			onFix(u.pos)
		case <-timer.Chan():
			onErr(&GeolocationError{Code: CodeTimeout})
			timer.Reset(opts.Timeout)
		}
	}
}

func (g *ClientGeolocator) freshLocked(maxAge time.Duration) (Position, bool) {
	if g.last == nil || g.clock.Since(g.last.Timestamp) > maxAge {
		return Position{}, false
	}
	return *g.last, true
}

func (g *ClientGeolocator) subscribeLocked() (int, <-chan update) {
	id := g.nextID
	g.nextID++
	ch := make(chan update, subscriberBuffer)
	g.subs[id] = ch
	return id, ch
}

func (g *ClientGeolocator) unsubscribe(id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.subs, id)
}

func (g *ClientGeolocator) broadcastLocked(u update) {
	for _, ch := range g.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
