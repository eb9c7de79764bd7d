package storage

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/creativeprojects/anthill/lib"
	"github.com/creativeprojects/anthill/mailbox"
	"github.com/sourcegraph/conc"
)

type persistResult struct {
	Written int
	Skipped int
	Failed  int
}

// persister downloads the missing messages and hands them over to the store.
// Each worker owns its session: the first worker reuses the listing session,
// the others open their own only when there's still work in the queue.
type persister struct {
	open    func(ctx context.Context) (Session, error)
	store   Store
	workers int
	log     lib.Logger

	written atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

func (p *persister) run(ctx context.Context, first Session, delta []mailbox.Message) persistResult {
	queue := make(chan mailbox.Message, len(delta))
	for _, msg := range delta {
		queue <- msg
	}
	close(queue)

	workers := p.workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(delta) {
		workers = len(delta)
	}

	wg := conc.NewWaitGroup()
	for id := 0; id < workers; id++ {
		id := id
		wg.Go(func() {
			if id == 0 {
				p.work(ctx, id, first, queue)
				return
			}
			if len(queue) == 0 || ctx.Err() != nil {
				return
			}
			session, err := p.open(ctx)
			if err != nil {
				p.log.Errorf("worker %d cannot open session: %s", id, err)
				return
			}
			defer func() {
				if err := session.Close(); err != nil {
					p.log.Warnf("worker %d: error closing session: %s", id, err)
				}
			}()
			p.work(ctx, id, session, queue)
		})
	}
	wg.Wait()

	// left over after cancellation
	for msg := range queue {
		p.log.Debugf("message uid=%d not processed", msg.Uid)
		p.failed.Add(1)
	}

	return persistResult{
		Written: int(p.written.Load()),
		Skipped: int(p.skipped.Load()),
		Failed:  int(p.failed.Load()),
	}
}

func (p *persister) work(ctx context.Context, id int, session Session, queue <-chan mailbox.Message) {
	for {
		if ctx.Err() != nil {
			return
		}
		msg, ok := <-queue
		if !ok {
			return
		}
		p.save(id, session, msg)
	}
}

func (p *persister) save(id int, session Session, msg mailbox.Message) {
	body, err := session.FetchBody(msg.Uid)
	if err != nil {
		if errors.Is(err, lib.ErrNoBody) {
			p.log.Warnf("message uid=%d %s: no body returned, skipping", msg.Uid, msg.MessageID)
			p.skipped.Add(1)
			return
		}
		p.log.Errorf("worker %d: %s", id, err)
		p.failed.Add(1)
		return
	}
	filename, err := p.store.Deliver(msg, body)
	if err != nil {
		p.log.Errorf("worker %d: %s", id, err)
		p.failed.Add(1)
		return
	}
	p.log.Debugf("message uid=%d %s saved to %q", msg.Uid, msg.MessageID, filename)
	p.written.Add(1)
}
