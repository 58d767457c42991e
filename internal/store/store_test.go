package store

import (
	"errors"
	"testing"
	"time"
)

type testState struct {
	key string
	ver uint64
	val string
}

func (s *testState) Key() string     { return s.key }
func (s *testState) Version() uint64 { return s.ver }

func newTestStore() *MemoryStore[*testState, string] {
	return NewMemoryStore[*testState, string](func(key string) *testState {
		return &testState{key: key}
	})
}

func TestGetDefaultsAbsentKeys(t *testing.T) {
	s := newTestStore()
	got := s.Get("room1")
	if got.Key() != "room1" || got.Version() != 0 {
		t.Fatalf("expected default state at version 0, got %+v", got)
	}
	if n := s.GetStatesCreated(); n != 0 {
		t.Fatalf("Get must not count as state creation, got %d", n)
	}
}

func TestPutCAS(t *testing.T) {
	s := newTestStore()
	s.Put(&testState{key: "k", ver: 1, val: "a"})

	if err := s.PutCAS(2, &testState{key: "k", ver: 3}); !errors.Is(err, ErrVersionRace) {
		t.Fatalf("expected version race, got %v", err)
	}
	if err := s.PutCAS(1, &testState{key: "k", ver: 2, val: "b"}); err != nil {
		t.Fatalf("matching CAS must succeed: %v", err)
	}
	if got := s.Get("k"); got.val != "b" || got.ver != 2 {
		t.Fatalf("CAS write lost: %+v", got)
	}
	// Writing the same version back is a no-op success.
	if err := s.PutCAS(2, &testState{key: "k", ver: 2, val: "ignored"}); err != nil {
		t.Fatalf("no-op CAS must succeed: %v", err)
	}
	if got := s.Get("k"); got.val != "b" {
		t.Fatalf("no-op CAS must not write: %+v", got)
	}
}

func TestExecuteOperationPublishesInOrder(t *testing.T) {
	s := newTestStore()
	ch := s.Subscribe("k", "sub1")

	ver, err := s.ExecuteOperation("k", func(st *testState) (*testState, []string, error) {
		return &testState{key: "k", ver: st.ver + 1, val: "x"}, []string{"first", "second"}, nil
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if ver != 1 {
		t.Fatalf("expected committed version 1, got %d", ver)
	}
	if got := <-ch; got != "first" {
		t.Fatalf("expected first message first, got %q", got)
	}
	if got := <-ch; got != "second" {
		t.Fatalf("expected second message second, got %q", got)
	}
}

func TestExecuteOperationErrorWritesNothing(t *testing.T) {
	s := newTestStore()
	s.Put(&testState{key: "k", ver: 5, val: "keep"})
	ch := s.Subscribe("k", "sub1")

	boom := errors.New("boom")
	_, err := s.ExecuteOperation("k", func(st *testState) (*testState, []string, error) {
		return nil, []string{"never"}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected op error surfaced, got %v", err)
	}
	if got := s.Get("k"); got.val != "keep" || got.ver != 5 {
		t.Fatalf("failed op must not write: %+v", got)
	}
	select {
	case msg := <-ch:
		t.Fatalf("failed op must not publish, got %q", msg)
	default:
	}
}

func TestVersionsNonDecreasing(t *testing.T) {
	s := newTestStore()
	var seen []uint64
	for i := 0; i < 5; i++ {
		ver, err := s.ExecuteOperation("k", func(st *testState) (*testState, []string, error) {
			return &testState{key: "k", ver: st.ver + 1}, nil, nil
		})
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		seen = append(seen, ver)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] != seen[i-1]+1 {
			t.Fatalf("versions must increment by exactly one: %v", seen)
		}
	}
}

func TestPublishToSingleSubscriber(t *testing.T) {
	s := newTestStore()
	ch1 := s.Subscribe("k", "sub1")
	ch2 := s.Subscribe("k", "sub2")

	if err := s.PublishToSingleSubscriber("k", "sub1", "only-you"); err != nil {
		t.Fatalf("targeted publish: %v", err)
	}
	if got := <-ch1; got != "only-you" {
		t.Fatalf("expected targeted delivery, got %q", got)
	}
	select {
	case msg := <-ch2:
		t.Fatalf("untargeted subscriber must not receive, got %q", msg)
	default:
	}
	if err := s.PublishToSingleSubscriber("k", "nobody", "x"); !errors.Is(err, ErrNotSubscribed) {
		t.Fatalf("expected ErrNotSubscribed, got %v", err)
	}
}

func TestUnsubscribeDropsEmptyKeys(t *testing.T) {
	s := newTestStore()
	ch := s.Subscribe("k", "sub1")
	s.Unsubscribe("k", "sub1")
	if _, open := <-ch; open {
		t.Fatalf("unsubscribe must close the channel")
	}
	if states, subs := s.Stats(); states != 0 || subs != 0 {
		t.Fatalf("stateless key must be dropped entirely: states=%d subs=%d", states, subs)
	}
}

func TestPruneEvictsStaleStates(t *testing.T) {
	s := newTestStore()
	now := time.Unix(1000, 0)
	s.now = func() time.Time { return now }

	s.Put(&testState{key: "idle", ver: 1})
	s.Put(&testState{key: "watched", ver: 1})
	s.Subscribe("watched", "sub1")

	now = now.Add(90 * time.Minute)
	if evicted := s.Prune(); evicted != 1 {
		t.Fatalf("expected only the subscriber-less state evicted, got %d", evicted)
	}
	if states, _ := s.Stats(); states != 1 {
		t.Fatalf("watched state must survive the idle TTL, got %d states", states)
	}

	now = now.Add(time.Hour)
	if evicted := s.Prune(); evicted != 1 {
		t.Fatalf("expected the watched state evicted after the full TTL, got %d", evicted)
	}
}

func TestStatsAndKeys(t *testing.T) {
	s := newTestStore()
	s.Put(&testState{key: "a", ver: 1})
	s.Put(&testState{key: "b", ver: 1})
	s.Subscribe("a", "s1")
	s.Subscribe("a", "s2")

	states, subs := s.Stats()
	if states != 2 || subs != 2 {
		t.Fatalf("expected 2 states / 2 subscribers, got %d/%d", states, subs)
	}
	if n := s.GetStatesCreated(); n != 2 {
		t.Fatalf("expected 2 states created, got %d", n)
	}
	keys := s.GetAllKeys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
}
