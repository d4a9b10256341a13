package lifecycle

import (
	"context"
	"sync"
)

// serializer ensures at most one of {ATTACH, DETACH, RELEASE} runs at a
// time for a room. It is modelled as a single-slot queue: each call to
// run enqueues an operationRecord, chained behind whatever record was
// last enqueued (the "tail"). Because the hand-off to the next tail
// happens under the serialiser's own mutex, waiters observe strict FIFO
// ordering even though the wait itself happens outside the lock.
//
// This intentionally avoids an unbounded pool of concurrently blocked
// goroutines racing a single mutex: only one operation body is ever
// running, and the queue order is determined at enqueue time, not at
// wake time.
type serializer struct {
	mu   sync.Mutex
	tail *operationRecord

	waiting *broadcaster[WaitEvent]
}

func newSerializer() *serializer {
	return &serializer{waiting: newBroadcaster[WaitEvent]()}
}

// subscribeWaiting exposes the waiting-operation event stream for tests
// and debug introspection. It carries no semantic weight.
func (s *serializer) subscribeWaiting(bufferSize int) (uint64, <-chan WaitEvent) {
	return s.waiting.Subscribe(bufferSize)
}

func (s *serializer) unsubscribeWaiting(id uint64) {
	s.waiting.Unsubscribe(id)
}

// run enqueues body under kind, waits for any in-flight operation to
// complete, then executes body and reports its completion to the next
// waiter (if any). The context is only consulted by body; run itself
// never abandons a queued operation; once queued, an operation runs to
// completion.
func (s *serializer) run(ctx context.Context, kind OperationKind, body func(ctx context.Context) error) error {
	rec := newOperationRecord(kind)

	s.mu.Lock()
	waitFor := s.tail
	s.tail = rec
	s.mu.Unlock()

	if waitFor != nil {
		s.waiting.Publish(WaitEvent{WaitingOperationID: rec.id, WaitedOperationID: waitFor.id})
		<-waitFor.done
	}

	err := body(ctx)

	s.mu.Lock()
	if s.tail == rec {
		s.tail = nil
	}
	s.mu.Unlock()

	rec.finish(err)
	return err
}
