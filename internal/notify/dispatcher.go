package notify

import (
	"context"
	"sync"

	"novelhub/pkg/logger"
)

// FollowerSource resolves the current follower set of a novel. The snapshot
// is taken when the worker picks the job up, not when it was enqueued.
type FollowerSource interface {
	FollowerIDs(ctx context.Context, novelID string) ([]string, error)
}

type job struct {
	novelID       string
	chapterID     string
	chapterNumber int
}

// Dispatcher fans new-chapter events out to followers on a background
// worker. Enqueueing never blocks the write path and delivery failures
// never reach the caller.
type Dispatcher struct {
	followers FollowerSource
	transport Transport
	log       *logger.Logger

	queue chan job
	wg    sync.WaitGroup
	once  sync.Once
}

func NewDispatcher(followers FollowerSource, transport Transport, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		followers: followers,
		transport: transport,
		log:       log,
		queue:     make(chan job, 64),
	}
}

func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for j := range d.queue {
			d.fanOut(j)
		}
	}()
}

// Stop drains the queue and waits for in-flight fan-outs.
func (d *Dispatcher) Stop() {
	d.once.Do(func() { close(d.queue) })
	d.wg.Wait()
}

// NotifyFollowers enqueues a fan-out and returns immediately. A full queue
// drops the event with a log line; delivery is best-effort by contract.
func (d *Dispatcher) NotifyFollowers(novelID, chapterID string, chapterNumber int) {
	select {
	case d.queue <- job{novelID: novelID, chapterID: chapterID, chapterNumber: chapterNumber}:
	default:
		d.log.Warn("notification queue full, dropping fan-out",
			"novel_id", novelID, "chapter_id", chapterID)
	}
}

func (d *Dispatcher) fanOut(j job) {
	ctx := context.Background()

	followerIDs, err := d.followers.FollowerIDs(ctx, j.novelID)
	if err != nil {
		d.log.Error("follower snapshot failed", "novel_id", j.novelID, "err", err)
		return
	}

	for _, followerID := range followerIDs {
		n := Notification{
			FollowerID:    followerID,
			Type:          NewChapterMessageType,
			NovelID:       j.novelID,
			ChapterID:     j.chapterID,
			ChapterNumber: j.chapterNumber,
		}
		if err := d.transport.Send(n); err != nil {
			d.log.Warn("notification delivery failed",
				"follower_id", followerID, "chapter_id", j.chapterID, "err", err)
		}
	}
}
