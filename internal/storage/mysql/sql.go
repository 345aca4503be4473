package mysql

// Note: `text` is reserved; keep it quoted everywhere.
const insertReviewsPrefix = "INSERT INTO reviews\n  (id, type, status, rating, `text`, categories, submitted_at, guest_name, listing_name, channel, approved)\nVALUES "

// Use VALUES(col) for broad compatibility; COALESCE keeps old value if new is NULL.
// approved is absent on purpose: re-ingesting must not clobber curation state.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  type         = VALUES(type),\n" +
	"  status       = VALUES(status),\n" +
	"  rating       = COALESCE(VALUES(rating), reviews.rating),\n" +
	"  `text`       = VALUES(`text`),\n" +
	"  categories   = COALESCE(VALUES(categories), reviews.categories),\n" +
	"  submitted_at = COALESCE(VALUES(submitted_at), reviews.submitted_at),\n" +
	"  guest_name   = COALESCE(VALUES(guest_name), reviews.guest_name),\n" +
	"  listing_name = VALUES(listing_name),\n" +
	"  channel      = VALUES(channel)\n"

const insertMissSQL = `
INSERT INTO ingest_misses (listing_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE seen_at = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ / MUTATION QUERIES
// -----------------------------------------------------------------------------

// The store is a flat record list; the engine reads it wholesale and
// aggregates in memory. Submission order keeps reads reproducible.
const readAllSQL = `
SELECT
  id,
  type,
  status,
  rating,
  ` + "`text`" + `,
  categories,
  submitted_at,
  guest_name,
  listing_name,
  channel,
  approved
FROM reviews
ORDER BY submitted_at, id
`

const selectApprovedSQL = `SELECT approved FROM reviews WHERE id = ?`

const updateApprovedSQL = `UPDATE reviews SET approved = ? WHERE id = ?`

const deleteReviewSQL = `DELETE FROM reviews WHERE id = ?`
