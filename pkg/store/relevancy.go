package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-pkgz/lgr"

	"github.com/newstrail/newstrail/pkg/domain"
)

// Append hands a newly-seen article to the downstream relevancy store. Only
// called after CheckAndRecord reported a new identity, so a uniqueness
// conflict here is a data-quality anomaly: it is logged as a warning and the
// article is dropped, which is not a pipeline failure.
func (s *Session) Append(ctx context.Context, art domain.ArticleIdentity, articleText string) error {
	query, args, err := sq.Insert("crawler_to_relevancy").
		Columns("publisher", "title", "article_text", "link").
		Values(art.Publisher, art.Title, articleText, art.Link).ToSql()
	if err != nil {
		return fmt.Errorf("build relevancy insert: %w", err)
	}

	conflict, err := retryExec(ctx, s.retryDelay, func() error {
		_, execErr := s.conn.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("append %q from %s to relevancy: %w", art.Title, art.Publisher, err)
	}
	if conflict {
		lgr.Printf("[WARN] could not send %q from %s to relevancy, duplicate record", art.Title, art.Publisher)
	}
	return nil
}
