package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/newstrail/newstrail/pkg/domain"
)

// Outcome reports what CheckAndRecord decided about an identity
type Outcome int

const (
	// OutcomeNew means this call recorded the identity for the first time
	OutcomeNew Outcome = iota
	// OutcomeAlreadySeen means the identity was recorded previously, possibly
	// by a concurrent worker racing on the same article
	OutcomeAlreadySeen
)

func (o Outcome) String() string {
	if o == OutcomeNew {
		return "new"
	}
	return "already seen"
}

// CheckAndRecord atomically records the identity as seen and reports whether
// it was new. A cheap pre-check avoids the insert in the common repeat-poll
// case; the insert's own uniqueness constraint resolves any race between the
// check and the insert.
func (s *Session) CheckAndRecord(ctx context.Context, art domain.ArticleIdentity) (Outcome, error) {
	query, args, err := sq.Select("1").From("seen_coverage").
		Where(sq.Eq{"title": art.Title, "publisher": art.Publisher}).
		Limit(1).ToSql()
	if err != nil {
		return OutcomeAlreadySeen, fmt.Errorf("build seen query: %w", err)
	}

	var one int
	err = s.conn.GetContext(ctx, &one, query, args...)
	if err == nil {
		return OutcomeAlreadySeen, nil
	}
	if !errors.Is(err, sql.ErrNoRows) && classify(err) == kindFatal {
		return OutcomeAlreadySeen, fmt.Errorf("check seen: %w", err)
	}
	// no row found, or a transient check failure: the insert below decides

	digest := sha256.Sum256([]byte(art.Link))
	query, args, err = sq.Insert("seen_coverage").
		Columns("title", "publisher", "article_url_sha256").
		Values(art.Title, art.Publisher, hex.EncodeToString(digest[:])).ToSql()
	if err != nil {
		return OutcomeAlreadySeen, fmt.Errorf("build seen insert: %w", err)
	}

	conflict, err := retryExec(ctx, s.retryDelay, func() error {
		_, execErr := s.conn.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return OutcomeAlreadySeen, fmt.Errorf("record seen %q from %s: %w", art.Title, art.Publisher, err)
	}
	if conflict {
		return OutcomeAlreadySeen, nil
	}
	return OutcomeNew, nil
}
