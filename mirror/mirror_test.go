package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ViniZap4/stride-server/metrics"
	"github.com/ViniZap4/stride-server/store"
)

type call struct {
	op, account, key, value string
}

type fakeRemote struct {
	mu    sync.Mutex
	docs  map[string]map[string]json.RawMessage
	calls []call
	fail  bool
	block chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{docs: map[string]map[string]json.RawMessage{}}
}

func (f *fakeRemote) Pull(_ context.Context, account string) (map[string]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]json.RawMessage{}
	for k, v := range f.docs[account] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeRemote) Push(_ context.Context, account, key string, value json.RawMessage) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{"push", account, key, string(value)})
	if f.fail {
		return errors.New("remote down")
	}
	if f.docs[account] == nil {
		f.docs[account] = map[string]json.RawMessage{}
	}
	f.docs[account][key] = value
	return nil
}

func (f *fakeRemote) Clear(_ context.Context, account, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{"clear", account, key, ""})
	delete(f.docs[account], key)
	return nil
}

func (f *fakeRemote) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func newMirror(t *testing.T, remote Remote) (*Store, *store.Memory) {
	local := store.NewMemory()
	m := New(local, remote, zerolog.Nop(), metrics.New())
	t.Cleanup(m.Close)
	return m, local
}

func flush(t *testing.T, m *Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Flush(ctx))
}

func TestDetachedWritesStayLocal(t *testing.T) {
	remote := newFakeRemote()
	m, local := newMirror(t, remote)

	require.NoError(t, m.Set(store.KeyBookmarks, `[]`))
	flush(t, m)

	v, ok, _ := local.Get(store.KeyBookmarks)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)
	assert.Empty(t, remote.recorded())
}

func TestAttachHydratesWithoutEcho(t *testing.T) {
	remote := newFakeRemote()
	remote.docs["acc"] = map[string]json.RawMessage{
		store.KeyFolders: json.RawMessage(`[{"id":"f1","name":"Remote"}]`),
		"unrelated":      json.RawMessage(`1`),
	}
	m, local := newMirror(t, remote)

	require.NoError(t, m.Attach(context.Background(), "acc"))
	flush(t, m)

	v, ok, _ := local.Get(store.KeyFolders)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":"f1","name":"Remote"}]`, v)
	_, ok, _ = local.Get("unrelated")
	assert.False(t, ok)
	assert.Empty(t, remote.recorded())
	assert.Equal(t, "acc", m.Account())
}

func TestWritesArePushedInOrder(t *testing.T) {
	remote := newFakeRemote()
	m, _ := newMirror(t, remote)
	require.NoError(t, m.Attach(context.Background(), "acc"))

	require.NoError(t, m.Set(store.KeyTodos, `[1]`))
	require.NoError(t, m.Set(store.KeyTodos, `[1,2]`))
	require.NoError(t, m.Set("local-only", `x`))
	require.NoError(t, m.Remove(store.KeyBookmarks))
	require.NoError(t, m.Set(store.KeySearchHistory, `not json`))
	flush(t, m)

	assert.Equal(t, []call{
		{"push", "acc", store.KeyTodos, `[1]`},
		{"push", "acc", store.KeyTodos, `[1,2]`},
		{"clear", "acc", store.KeyBookmarks, ""},
		{"push", "acc", store.KeySearchHistory, `"not json"`},
	}, remote.recorded())
}

func TestRemoteFailureIsNotReturned(t *testing.T) {
	remote := newFakeRemote()
	remote.fail = true
	m, local := newMirror(t, remote)
	require.NoError(t, m.Attach(context.Background(), "acc"))

	require.NoError(t, m.Set(store.KeyStreak, `{}`))
	flush(t, m)

	v, _, _ := local.Get(store.KeyStreak)
	assert.Equal(t, `{}`, v)
	assert.Len(t, remote.recorded(), 1)
}

func TestDetachStopsMirroring(t *testing.T) {
	remote := newFakeRemote()
	m, _ := newMirror(t, remote)
	require.NoError(t, m.Attach(context.Background(), "acc"))
	m.Detach()
	assert.Equal(t, "", m.Account())

	require.NoError(t, m.Set(store.KeyTodos, `[]`))
	flush(t, m)
	assert.Empty(t, remote.recorded())
}

func TestFlushHonoursContext(t *testing.T) {
	remote := newFakeRemote()
	remote.block = make(chan struct{})
	m, _ := newMirror(t, remote)
	require.NoError(t, m.Attach(context.Background(), "acc"))
	require.NoError(t, m.Set(store.KeyTodos, `[]`))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Flush(ctx), context.DeadlineExceeded)
	close(remote.block)
	flush(t, m)
}

func TestFlushWhileWritersAreActive(t *testing.T) {
	remote := newFakeRemote()
	m, _ := newMirror(t, remote)
	require.NoError(t, m.Attach(context.Background(), "acc"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				assert.NoError(t, m.Set(store.KeyTodos, `[]`))
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				assert.NoError(t, m.Flush(ctx))
			}
		}()
	}
	wg.Wait()

	flush(t, m)
	assert.Len(t, remote.recorded(), 100)
	assert.Zero(t, m.Pending())
}

func TestFlushWithNothingQueued(t *testing.T) {
	m, _ := newMirror(t, newFakeRemote())
	flush(t, m)
}

func TestValueEncoding(t *testing.T) {
	assert.Equal(t, `[1]`, string(encodeValue(`[1]`)))
	assert.Equal(t, `"abc"`, string(encodeValue(`abc`)))
	assert.Equal(t, `abc`, decodeValue(json.RawMessage(`"abc"`)))
	assert.Equal(t, `{"a":1}`, decodeValue(json.RawMessage(`{"a":1}`)))
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db", migrateURL("postgres://u:p@h:5432/db"))
	assert.Equal(t, "pgx5://h/db", migrateURL("postgresql://h/db"))
	assert.Equal(t, "pgx5://h/db", migrateURL("pgx5://h/db"))
}
