package crawler

import (
	"context"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/newstrail/newstrail/pkg/domain"
	"github.com/newstrail/newstrail/pkg/feed"
	"github.com/newstrail/newstrail/pkg/normalize"
	"github.com/newstrail/newstrail/pkg/store"
)

// Session is one poll cycle's handle on the shared store
type Session interface {
	CheckAndRecord(ctx context.Context, art domain.ArticleIdentity) (store.Outcome, error)
	Append(ctx context.Context, art domain.ArticleIdentity, articleText string) error
	Release() error
}

// acquireFunc checks a session out of the shared pool
type acquireFunc func(ctx context.Context) (Session, error)

// Worker owns one feed's lifecycle: poll, extract, dedup, sink, sleep,
// forever. A worker never migrates between feeds, and nothing that goes wrong
// inside a cycle escapes it.
type Worker struct {
	src      domain.FeedSource
	strategy feed.Strategy
	acquire  acquireFunc
	interval time.Duration
}

func newWorker(src domain.FeedSource, strategy feed.Strategy, acquire acquireFunc, interval time.Duration) *Worker {
	return &Worker{src: src, strategy: strategy, acquire: acquire, interval: interval}
}

// Run loops poll cycles until the context is canceled
func (w *Worker) Run(ctx context.Context) {
	for {
		w.cycle(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.interval):
		}
	}
}

// cycle performs one full pass over the feed: acquire a store session for the
// whole cycle, extract the current entries, and process them sequentially in
// source order. The session is released at cycle end, not per article.
func (w *Worker) cycle(ctx context.Context) {
	session, err := w.acquire(ctx)
	if err != nil {
		if ctx.Err() == nil {
			lgr.Printf("[ERROR] failed to acquire store session for %s: %v", w.src.Publisher, err)
		}
		return
	}
	defer func() {
		if err := session.Release(); err != nil {
			lgr.Printf("[WARN] failed to release store session for %s: %v", w.src.Publisher, err)
		}
	}()

	entries, err := w.strategy.Extract(ctx)
	if err != nil {
		lgr.Printf("[ERROR] feed cycle failed for %s: %v", w.src.Publisher, err)
		return
	}

	for _, entry := range entries {
		w.processEntry(ctx, session, entry)
	}
}

// processEntry runs one article through the dedup gate and, when new, through
// normalization into the relevancy sink
func (w *Worker) processEntry(ctx context.Context, session Session, entry feed.Entry) {
	outcome, err := session.CheckAndRecord(ctx, entry.Identity)
	if err != nil {
		lgr.Printf("[ERROR] dedup check failed for %q from %s: %v", entry.Identity.Title, w.src.Publisher, err)
		return
	}
	if outcome == store.OutcomeAlreadySeen {
		return
	}

	lgr.Printf("[DEBUG] read %q from %s", entry.Identity.Title, w.src.Publisher)
	if err := session.Append(ctx, entry.Identity, normalize.Normalize(entry.Text)); err != nil {
		lgr.Printf("[ERROR] failed to sink %q from %s: %v", entry.Identity.Title, w.src.Publisher, err)
	}
}
