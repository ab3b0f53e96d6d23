package server

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/patchbaylabs/patchbay/pkg/editor"
	"github.com/patchbaylabs/patchbay/pkg/store"
)

// docSession is one open document: the shared editor session, its
// display name, the WebSocket subscriber set, and the autosave loop.
type docSession struct {
	id   string
	name string
	sess *editor.Session

	mu   sync.Mutex
	subs map[chan struct{}]struct{}

	saveCh chan struct{}
	done   chan struct{}
}

// subscribe registers a change channel. Every applied change sends one
// (coalesced) signal.
func (d *docSession) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	d.mu.Lock()
	d.subs[ch] = struct{}{}
	d.mu.Unlock()
	return ch
}

func (d *docSession) unsubscribe(ch chan struct{}) {
	d.mu.Lock()
	delete(d.subs, ch)
	d.mu.Unlock()
}

// notify fans an applied change out to subscribers and the autosave
// loop. Sends never block: a pending signal already covers the change.
func (d *docSession) notify() {
	d.mu.Lock()
	for ch := range d.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	d.mu.Unlock()
	select {
	case d.saveCh <- struct{}{}:
	default:
	}
}

// registry tracks open sessions by document ID, opening them lazily
// from the store.
type registry struct {
	store  store.Store
	logger *log.Logger

	mu   sync.Mutex
	open map[string]*docSession
}

func newRegistry(st store.Store, logger *log.Logger) *registry {
	return &registry{
		store:  st,
		logger: logger,
		open:   make(map[string]*docSession),
	}
}

// get returns the open session for id, loading the document from the
// store on first access.
func (r *registry) get(ctx context.Context, id string) (*docSession, error) {
	r.mu.Lock()
	if ds, ok := r.open[id]; ok {
		r.mu.Unlock()
		return ds, nil
	}
	r.mu.Unlock()

	// Load outside the lock; a concurrent open for the same ID is
	// resolved below by keeping the first one in.
	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ds := &docSession{
		id:     id,
		name:   rec.Name,
		sess:   editor.NewSession(rec.Document, editor.Options{Logger: r.logger}),
		subs:   make(map[chan struct{}]struct{}),
		saveCh: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	ds.sess.Watch(ds.notify)

	r.mu.Lock()
	if existing, ok := r.open[id]; ok {
		r.mu.Unlock()
		ds.sess.Close()
		return existing, nil
	}
	r.open[id] = ds
	r.mu.Unlock()

	go r.autosave(ds)
	r.logger.Debug("session opened", "docID", id)
	return ds, nil
}

// autosave persists the session after every applied change until the
// session is dropped. Store failures are retried with backoff and
// logged; the session keeps editing either way.
func (r *registry) autosave(ds *docSession) {
	for {
		select {
		case <-ds.done:
			return
		case <-ds.saveCh:
		}
		if err := r.save(context.Background(), ds); err != nil {
			r.logger.Error("autosave failed", "docID", ds.id, "error", err)
		}
	}
}

func (r *registry) save(ctx context.Context, ds *docSession) error {
	rec := &store.Record{
		ID:       ds.id,
		Name:     ds.name,
		Document: ds.sess.Document(),
	}
	return store.RetryWithBackoff(ctx, func() error {
		return r.store.Put(ctx, rec)
	})
}

// drop closes the session for id and evicts it. No-op when the
// document is not open.
func (r *registry) drop(id string) {
	r.mu.Lock()
	ds, ok := r.open[id]
	if ok {
		delete(r.open, id)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	close(ds.done)
	ds.sess.Close()
	r.logger.Debug("session closed", "docID", id)
}

// closeAll saves and closes every open session.
func (r *registry) closeAll(ctx context.Context) {
	r.mu.Lock()
	open := make([]*docSession, 0, len(r.open))
	for _, ds := range r.open {
		open = append(open, ds)
	}
	r.open = make(map[string]*docSession)
	r.mu.Unlock()

	for _, ds := range open {
		if err := r.save(ctx, ds); err != nil {
			r.logger.Error("final save failed", "docID", ds.id, "error", err)
		}
		close(ds.done)
		ds.sess.Close()
	}
}
