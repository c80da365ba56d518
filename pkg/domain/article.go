package domain

// ArticleIdentity identifies an article across poll cycles. Uniqueness is
// decided by (Title, Publisher) alone; Link is kept for auditing because the
// same article often reappears with different tracking parameters in the URL.
type ArticleIdentity struct {
	Title     string
	Publisher string
	Link      string
}
