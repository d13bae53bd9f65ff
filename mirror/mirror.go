// mirror/mirror.go
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ViniZap4/stride-server/domain"
	"github.com/ViniZap4/stride-server/metrics"
	"github.com/ViniZap4/stride-server/store"
)

// Remote is a per-account document holding one field per tracked key.
type Remote interface {
	Pull(ctx context.Context, account string) (map[string]json.RawMessage, error)
	Push(ctx context.Context, account, key string, value json.RawMessage) error
	Clear(ctx context.Context, account, key string) error
}

type write struct {
	account string
	key     string
	value   json.RawMessage // nil clears the field
}

// Store writes through to a local store and, while an account is attached,
// queues one remote write per change to a tracked key. A single worker
// applies the queue in order. Remote failures are logged and counted.
type Store struct {
	local   store.Store
	remote  Remote
	log     zerolog.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	account string
	queue   []write
	wake    chan struct{}
	// inflight counts queued writes plus the one being applied; idle is
	// closed whenever it drops to zero.
	inflight int
	idle     chan struct{}

	stop chan struct{}
	done chan struct{}
}

func New(local store.Store, remote Remote, log zerolog.Logger, m *metrics.Metrics) *Store {
	s := &Store{
		local:   local,
		remote:  remote,
		log:     log.With().Str("component", "mirror").Logger(),
		metrics: m,
		wake:    make(chan struct{}, 1),
		idle:    closedChan(),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Store) Get(key string) (string, bool, error) {
	return s.local.Get(key)
}

func (s *Store) Keys() ([]string, error) {
	return s.local.Keys()
}

func (s *Store) Set(key, value string) error {
	if err := s.local.Set(key, value); err != nil {
		return err
	}
	s.enqueue(key, encodeValue(value))
	return nil
}

func (s *Store) Remove(key string) error {
	if err := s.local.Remove(key); err != nil {
		return err
	}
	s.enqueue(key, nil)
	return nil
}

// Attach pulls the account record into the local store and starts
// mirroring. Hydration writes go straight to the local store and are not
// pushed back.
func (s *Store) Attach(ctx context.Context, account string) error {
	if account == "" {
		return &domain.ValidationError{Field: "account", Reason: "required"}
	}
	doc, err := s.remote.Pull(ctx, account)
	if err != nil {
		return &domain.PersistenceError{Op: "pull", Key: account, Err: err}
	}
	for key, raw := range doc {
		if !store.IsTracked(key) {
			continue
		}
		if err := s.local.Set(key, decodeValue(raw)); err != nil {
			return fmt.Errorf("hydrate %s: %w", key, err)
		}
	}
	s.mu.Lock()
	s.account = account
	s.mu.Unlock()
	s.log.Info().Str("account", account).Int("keys", len(doc)).Msg("account attached")
	return nil
}

// Detach stops mirroring. Writes already queued still go out.
func (s *Store) Detach() {
	s.mu.Lock()
	account := s.account
	s.account = ""
	s.mu.Unlock()
	if account != "" {
		s.log.Info().Str("account", account).Msg("account detached")
	}
}

func (s *Store) Account() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// Pending reports how many remote writes are waiting for the worker.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Flush blocks until every write queued so far, and any queued while it
// waits, has been attempted.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the worker after the queue drains.
func (s *Store) Close() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
}

func (s *Store) enqueue(key string, value json.RawMessage) {
	if !store.IsTracked(key) {
		return
	}
	s.mu.Lock()
	if s.account == "" {
		s.mu.Unlock()
		return
	}
	if s.inflight == 0 {
		s.idle = make(chan struct{})
	}
	s.inflight++
	s.queue = append(s.queue, write{account: s.account, key: key, value: value})
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Store) run() {
	defer close(s.done)
	for {
		w, ok := s.next()
		if ok {
			s.apply(w)
			continue
		}
		select {
		case <-s.wake:
		case <-s.stop:
			if _, ok := s.peek(); !ok {
				return
			}
		}
	}
}

func (s *Store) next() (write, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return write{}, false
	}
	w := s.queue[0]
	s.queue = s.queue[1:]
	return w, true
}

func (s *Store) peek() (write, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return write{}, false
	}
	return s.queue[0], true
}

func (s *Store) apply(w write) {
	defer s.settle()
	ctx := context.Background()
	var err error
	op := "push"
	if w.value == nil {
		op = "clear"
		err = s.remote.Clear(ctx, w.account, w.key)
	} else {
		err = s.remote.Push(ctx, w.account, w.key, w.value)
	}
	s.metrics.RemoteWrite(err)
	if err != nil {
		perr := &domain.PersistenceError{Op: "remote " + op, Key: w.key, Err: err}
		s.metrics.PersistenceError("remote")
		s.log.Error().Err(perr).Str("account", w.account).Msg("remote write failed")
	}
}

func (s *Store) settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if s.inflight == 0 {
		close(s.idle)
	}
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

// encodeValue passes JSON through and wraps anything else as a JSON string.
func encodeValue(value string) json.RawMessage {
	if json.Valid([]byte(value)) {
		return json.RawMessage(value)
	}
	data, _ := json.Marshal(value)
	return data
}

// decodeValue reverses encodeValue for values read from the remote.
func decodeValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && !json.Valid([]byte(s)) {
		return s
	}
	return string(raw)
}
