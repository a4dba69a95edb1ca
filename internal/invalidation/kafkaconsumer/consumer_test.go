package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"

	"github.com/rescuedogs/rescue-edge/internal/invalidation"
)

type fakeInvalidator struct {
	failFirst atomic.Bool
	mu        sync.Mutex
	urls      []string
	purges    int
}

func (f *fakeInvalidator) Invalidate(_ context.Context, src string) (int, error) {
	f.mu.Lock()
	f.urls = append(f.urls, src)
	f.mu.Unlock()
	if f.failFirst.Load() {
		f.failFirst.Store(false)
		return 0, errors.New("boom")
	}
	return 1, nil
}

func (f *fakeInvalidator) InvalidateAll(context.Context) error {
	f.mu.Lock()
	f.purges++
	f.mu.Unlock()
	return nil
}

type sess struct {
	ctx    context.Context
	mu     sync.Mutex
	marked []int64
}

func (s *sess) Claims() map[string][]int32 { return nil }
func (s *sess) MemberID() string           { return "" }
func (s *sess) GenerationID() int32        { return 0 }
func (s *sess) MarkMessage(m *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	s.marked = append(s.marked, m.Offset)
	s.mu.Unlock()
}
func (s *sess) ResetOffset(_ string, _ int32, _ int64, _ string) {}
func (s *sess) MarkOffset(_ string, _ int32, _ int64, _ string)  {}
func (s *sess) Context() context.Context                         { return s.ctx }
func (s *sess) Errors() <-chan error                             { return nil }
func (s *sess) Commit()                                          {}

type claim struct {
	part int32
	msgs chan *sarama.ConsumerMessage
}

func (c *claim) Topic() string                            { return "image-invalidation" }
func (c *claim) Partition() int32                         { return c.part }
func (c *claim) InitialOffset() int64                     { return 0 }
func (c *claim) HighWaterMarkOffset() int64               { return 0 }
func (c *claim) Messages() <-chan *sarama.ConsumerMessage { return c.msgs }

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func eventBytes(op, url string, ts time.Time) []byte {
	b, _ := json.Marshal(invalidation.Event{Version: 1, Op: op, ImageURL: url, TS: ts, Source: "test"})
	return b
}

func msgAt(off int64, value []byte) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "image-invalidation", Partition: 0, Offset: off, Value: value}
}

func newConsumerForTest(inv Invalidator) *Consumer {
	cfg := Config{Brokers: []string{"x"}, Topic: "image-invalidation", GroupID: "g", DedupeSize: 16}
	return New(cfg, nil, inv)
}

func TestSinglePartition_OrderAndCommitAfterWork(t *testing.T) {
	inv := &fakeInvalidator{}
	c := newConsumerForTest(inv)

	g := &groupHandler{process: c.ProcessOne}
	s := &sess{ctx: t.Context()}
	ch := make(chan *sarama.ConsumerMessage, 2)
	ch <- msgAt(10, eventBytes(invalidation.OpUpdate, "https://img.example.org/a.jpg", base))
	ch <- msgAt(11, eventBytes(invalidation.OpDelete, "https://img.example.org/b.jpg", base))
	close(ch)

	if err := g.ConsumeClaim(s, &claim{msgs: ch}); err != nil {
		t.Fatalf("ConsumeClaim: %v", err)
	}
	if len(s.marked) != 2 || s.marked[0] != 10 || s.marked[1] != 11 {
		t.Fatalf("marked offsets=%v want [10 11]", s.marked)
	}
	if len(inv.urls) != 2 || inv.urls[0] != "https://img.example.org/a.jpg" {
		t.Fatalf("invalidated=%v", inv.urls)
	}
}

func TestRetry_CommitOnceAfterSuccess(t *testing.T) {
	inv := &fakeInvalidator{}
	inv.failFirst.Store(true)
	c := newConsumerForTest(inv)
	ctx := context.Background()

	msg := msgAt(5, eventBytes(invalidation.OpUpdate, "https://img.example.org/a.jpg", base))
	if err := c.ProcessOne(ctx, msg); err == nil {
		t.Fatalf("expected error on first attempt")
	}

	s := &sess{ctx: ctx}
	g := &groupHandler{process: c.ProcessOne}
	ch := make(chan *sarama.ConsumerMessage, 1)
	ch <- msg
	close(ch)
	if err := g.ConsumeClaim(s, &claim{msgs: ch}); err != nil {
		t.Fatalf("ConsumeClaim: %v", err)
	}
	if len(s.marked) != 1 || s.marked[0] != 5 {
		t.Fatalf("marked=%v want [5]", s.marked)
	}
	if len(inv.urls) != 2 {
		t.Fatalf("expected redelivery to invalidate again, got %v", inv.urls)
	}
}

func TestFailure_NotMarked(t *testing.T) {
	inv := &fakeInvalidator{}
	inv.failFirst.Store(true)
	c := newConsumerForTest(inv)

	s := &sess{ctx: t.Context()}
	g := &groupHandler{process: c.ProcessOne}
	ch := make(chan *sarama.ConsumerMessage, 1)
	ch <- msgAt(7, eventBytes(invalidation.OpUpdate, "https://img.example.org/a.jpg", base))
	close(ch)

	if err := g.ConsumeClaim(s, &claim{msgs: ch}); err == nil {
		t.Fatal("expected error")
	}
	if len(s.marked) != 0 {
		t.Fatalf("failed message must not be marked, got %v", s.marked)
	}
}

func TestPoisonMessages_Skipped(t *testing.T) {
	inv := &fakeInvalidator{}
	c := newConsumerForTest(inv)
	ctx := context.Background()

	for i, v := range [][]byte{
		[]byte("{not json"),
		eventBytes("rename", "https://img.example.org/a.jpg", base),
		eventBytes(invalidation.OpUpdate, "/relative.jpg", base),
	} {
		if err := c.ProcessOne(ctx, msgAt(int64(i), v)); err != nil {
			t.Fatalf("case %d: poison message should be skipped, got %v", i, err)
		}
	}
	if len(inv.urls) != 0 || inv.purges != 0 {
		t.Fatalf("nothing should be invalidated: %v purges=%d", inv.urls, inv.purges)
	}
}

func TestStaleEvents_Deduped(t *testing.T) {
	inv := &fakeInvalidator{}
	c := newConsumerForTest(inv)
	ctx := context.Background()
	u := "https://img.example.org/a.jpg"

	_ = c.ProcessOne(ctx, msgAt(1, eventBytes(invalidation.OpUpdate, u, base.Add(time.Minute))))
	_ = c.ProcessOne(ctx, msgAt(2, eventBytes(invalidation.OpUpdate, u, base)))
	_ = c.ProcessOne(ctx, msgAt(3, eventBytes(invalidation.OpUpdate, u, base.Add(time.Minute))))
	_ = c.ProcessOne(ctx, msgAt(4, eventBytes(invalidation.OpDelete, u, base.Add(2*time.Minute))))

	if len(inv.urls) != 2 {
		t.Fatalf("applied=%v want 2 (first and newest)", inv.urls)
	}
}

func TestPurgeAll(t *testing.T) {
	inv := &fakeInvalidator{}
	c := newConsumerForTest(inv)

	if err := c.ProcessOne(context.Background(), msgAt(1, eventBytes(invalidation.OpPurgeAll, "", base))); err != nil {
		t.Fatal(err)
	}
	if inv.purges != 1 || len(inv.urls) != 0 {
		t.Fatalf("purges=%d urls=%v", inv.purges, inv.urls)
	}
}

func TestVersionDedupe(t *testing.T) {
	d := newVersionDedupe(2)
	if _, ok := d.claim("a", 5); !ok {
		t.Fatal("first version should apply")
	}
	if _, ok := d.claim("a", 5); ok {
		t.Fatal("same version should be stale")
	}
	if _, ok := d.claim("a", 4); ok {
		t.Fatal("older version should be stale")
	}
	if _, ok := d.claim("a", 6); !ok {
		t.Fatal("newer version should apply")
	}
}

func TestVersionDedupe_UndoRestoresPrevious(t *testing.T) {
	d := newVersionDedupe(4)
	d.claim("a", 5)

	undo, ok := d.claim("a", 9)
	if !ok {
		t.Fatal("newer version should apply")
	}
	undo()
	if _, ok := d.claim("a", 3); ok {
		t.Fatal("undo must keep the earlier applied version")
	}
	if _, ok := d.claim("a", 9); !ok {
		t.Fatal("undone version should apply on redelivery")
	}

	undoNew, _ := d.claim("b", 1)
	undoNew()
	if _, ok := d.claim("b", 1); !ok {
		t.Fatal("undo of a first version should forget the key")
	}

	stale, _ := d.claim("c", 1)
	d.claim("c", 2)
	stale()
	if _, ok := d.claim("c", 2); ok {
		t.Fatal("undo must not roll back a newer version")
	}
}

func TestFailedApply_KeepsSupersededEventsStale(t *testing.T) {
	inv := &fakeInvalidator{}
	c := newConsumerForTest(inv)
	ctx := context.Background()
	u := "https://img.example.org/a.jpg"

	if err := c.ProcessOne(ctx, msgAt(1, eventBytes(invalidation.OpUpdate, u, base.Add(time.Minute)))); err != nil {
		t.Fatal(err)
	}
	inv.failFirst.Store(true)
	if err := c.ProcessOne(ctx, msgAt(2, eventBytes(invalidation.OpUpdate, u, base.Add(2*time.Minute)))); err == nil {
		t.Fatal("expected failure")
	}
	if err := c.ProcessOne(ctx, msgAt(3, eventBytes(invalidation.OpUpdate, u, base))); err != nil {
		t.Fatal(err)
	}
	if err := c.ProcessOne(ctx, msgAt(2, eventBytes(invalidation.OpUpdate, u, base.Add(2*time.Minute)))); err != nil {
		t.Fatal(err)
	}
	if len(inv.urls) != 3 {
		t.Fatalf("applied=%v want first, failed and redelivered attempts only", inv.urls)
	}
}

func TestStart_RequiresInvalidator(t *testing.T) {
	if err := New(Config{}, nil, nil).Start(t.Context()); err == nil {
		t.Fatal("expected error without invalidator")
	}
}

func TestTombstones_MarkedWithoutApplying(t *testing.T) {
	inv := &fakeInvalidator{}
	c := newConsumerForTest(inv)

	s := &sess{ctx: t.Context()}
	g := &groupHandler{process: c.ProcessOne}
	ch := make(chan *sarama.ConsumerMessage, 2)
	ch <- msgAt(1, nil)
	ch <- msgAt(2, eventBytes(invalidation.OpDelete, "https://img.example.org/a.jpg", base))
	close(ch)

	if err := g.ConsumeClaim(s, &claim{msgs: ch}); err != nil {
		t.Fatal(err)
	}
	if len(s.marked) != 2 || s.marked[0] != 1 || s.marked[1] != 2 {
		t.Fatalf("marked=%v want [1 2]", s.marked)
	}
	if len(inv.urls) != 1 {
		t.Fatalf("tombstone must not invalidate: %v", inv.urls)
	}
}
