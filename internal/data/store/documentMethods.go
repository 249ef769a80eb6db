package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/readstash/internal/domain/docModel"
)

// Fixed-width variant of RFC3339Nano so stored timestamps compare
// correctly as strings in ORDER BY and cutoff scans.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (s *SQLiteDocumentStore) CreateDocument(ctx context.Context, doc docModel.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &docModel.StorageError{Op: "create", Err: err}
	}
	defer tx.Rollback()

	var published sql.NullString
	if doc.PublishedDate != nil {
		published = sql.NullString{String: doc.PublishedDate.UTC().Format(timeLayout), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, canonical_url, title, author, published_date, source_type,
		                       content, summary, summary_status, embedding_status, read_status,
		                       created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.Id, doc.CanonicalURL, doc.Title, nullable(doc.Author), published,
		string(doc.SourceType), doc.Content, doc.Summary, string(doc.SummaryStatus),
		string(doc.EmbeddingStatus), boolToInt(doc.ReadStatus),
		doc.CreatedAt.UTC().Format(timeLayout), doc.UpdatedAt.UTC().Format(timeLayout))
	if err != nil {
		// The unique index backs up the advisory-lock dedup check.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			existing, lookupErr := s.GetDocumentByURL(ctx, doc.CanonicalURL)
			if lookupErr == nil {
				return &docModel.ConflictError{ExistingId: existing.Id, CanonicalURL: doc.CanonicalURL}
			}
			return &docModel.ConflictError{CanonicalURL: doc.CanonicalURL}
		}
		return &docModel.StorageError{Op: "create", Err: err}
	}

	if err := replaceTagsTx(ctx, tx, doc.Id, doc.Tags); err != nil {
		return &docModel.StorageError{Op: "create tags", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &docModel.StorageError{Op: "create commit", Err: err}
	}
	return nil
}

func replaceTagsTx(ctx context.Context, tx *sql.Tx, docId string, tags []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM document_tags WHERE document_id = ?", docId); err != nil {
		return err
	}
	for _, name := range tags {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name) VALUES (?)", name); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO document_tags (document_id, tag_id)
			SELECT ?, id FROM tags WHERE name = ?`, docId, name); err != nil {
			return err
		}
	}
	return nil
}

const documentColumns = `id, canonical_url, title, author, published_date, source_type,
	content, summary, summary_status, embedding_status, read_status, created_at, updated_at`

func (s *SQLiteDocumentStore) GetDocument(ctx context.Context, id string) (docModel.Document, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	return s.scanDocument(ctx, row)
}

func (s *SQLiteDocumentStore) GetDocumentByURL(ctx context.Context, canonicalURL string) (docModel.Document, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE canonical_url = ?", canonicalURL)
	return s.scanDocument(ctx, row)
}

func (s *SQLiteDocumentStore) ListDocuments(ctx context.Context, filter docModel.ListFilter) ([]docModel.Document, int, error) {
	query := "SELECT " + documentColumns + " FROM documents"
	countQuery := "SELECT COUNT(*) FROM documents"
	var params []any
	var where []string

	if filter.ReadStatus != nil {
		where = append(where, "read_status = ?")
		params = append(params, boolToInt(*filter.ReadStatus))
	}
	if len(filter.Tags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Tags)), ",")
		where = append(where, fmt.Sprintf(`id IN (
			SELECT document_id FROM document_tags dt
			JOIN tags t ON dt.tag_id = t.id
			WHERE t.name IN (%s))`, placeholders))
		for _, t := range filter.Tags {
			params = append(params, t)
		}
	}
	if len(where) > 0 {
		clause := " WHERE " + strings.Join(where, " AND ")
		query += clause
		countQuery += clause
	}

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, params...).Scan(&total); err != nil {
		return nil, 0, &docModel.StorageError{Op: "count", Err: err}
	}

	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	params = append(params, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, &docModel.StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	docs, err := s.collectDocuments(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (s *SQLiteDocumentStore) ListDocumentIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM documents")
	if err != nil {
		return nil, &docModel.StorageError{Op: "list ids", Err: err}
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &docModel.StorageError{Op: "list ids", Err: err}
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteDocumentStore) UpdateDocument(ctx context.Context, id string, update docModel.DocumentUpdate) (docModel.Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return docModel.Document{}, &docModel.StorageError{Op: "update", Err: err}
	}
	defer tx.Rollback()

	var sets []string
	var params []any
	if update.Title != nil {
		sets = append(sets, "title = ?")
		params = append(params, *update.Title)
	}
	if update.ReadStatus != nil {
		sets = append(sets, "read_status = ?")
		params = append(params, boolToInt(*update.ReadStatus))
	}
	sets = append(sets, "updated_at = ?")
	params = append(params, time.Now().UTC().Format(timeLayout), id)

	res, err := tx.ExecContext(ctx,
		"UPDATE documents SET "+strings.Join(sets, ", ")+" WHERE id = ?", params...)
	if err != nil {
		return docModel.Document{}, &docModel.StorageError{Op: "update", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return docModel.Document{}, docModel.ErrNotFound
	}

	if update.Tags != nil {
		if err := replaceTagsTx(ctx, tx, id, *update.Tags); err != nil {
			return docModel.Document{}, &docModel.StorageError{Op: "update tags", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return docModel.Document{}, &docModel.StorageError{Op: "update commit", Err: err}
	}
	return s.GetDocument(ctx, id)
}

func (s *SQLiteDocumentStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return &docModel.StorageError{Op: "delete", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return docModel.ErrNotFound
	}
	// Tags without any remaining document drop out of the catalog lazily;
	// document_tags rows cascade with the row.
	return nil
}

// SearchFullText ranks with bm25 over title/content/summary. bm25 returns
// more negative values for better matches, so the score is negated.
func (s *SQLiteDocumentStore) SearchFullText(ctx context.Context, query string, limit int) ([]docModel.ScoredDocument, error) {
	match := buildMatchExpression(query)
	if match == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixedDocumentColumns("d")+`, bm25(documents_fts) AS rank
		FROM documents d
		JOIN documents_fts fts ON d.rowid = fts.rowid
		WHERE documents_fts MATCH ?
		ORDER BY rank ASC, d.created_at DESC
		LIMIT ?`, match, limit)
	if err != nil {
		return nil, &docModel.StorageError{Op: "fts search", Err: err}
	}
	defer rows.Close()

	var hits []docModel.ScoredDocument
	for rows.Next() {
		doc, rank, err := s.scanDocumentWithRank(ctx, rows)
		if err != nil {
			return nil, err
		}
		hits = append(hits, docModel.ScoredDocument{Document: doc, Score: -rank})
	}
	return hits, rows.Err()
}

// buildMatchExpression quotes each token so user input cannot inject FTS5
// query syntax. Tokens are OR-ed: more matching tokens rank higher via bm25.
func buildMatchExpression(query string) string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9')
	})
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+f+`"`)
	}
	return strings.Join(quoted, " OR ")
}

func (s *SQLiteDocumentStore) ListTags(ctx context.Context) ([]docModel.TagCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name, COUNT(dt.document_id) AS count
		FROM tags t
		JOIN document_tags dt ON t.id = dt.tag_id
		GROUP BY t.id, t.name
		ORDER BY count DESC, t.name`)
	if err != nil {
		return nil, &docModel.StorageError{Op: "list tags", Err: err}
	}
	defer rows.Close()

	var tags []docModel.TagCount
	for rows.Next() {
		var tc docModel.TagCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			return nil, &docModel.StorageError{Op: "list tags", Err: err}
		}
		tags = append(tags, tc)
	}
	return tags, rows.Err()
}

func (s *SQLiteDocumentStore) SetSummary(ctx context.Context, id string, summary string, status docModel.SummaryStatus) error {
	return s.statusUpdate(ctx,
		"UPDATE documents SET summary = ?, summary_status = ?, updated_at = ? WHERE id = ?",
		summary, string(status), time.Now().UTC().Format(timeLayout), id)
}

func (s *SQLiteDocumentStore) SetSummaryStatus(ctx context.Context, id string, status docModel.SummaryStatus) error {
	return s.statusUpdate(ctx,
		"UPDATE documents SET summary_status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().UTC().Format(timeLayout), id)
}

func (s *SQLiteDocumentStore) SetEmbeddingStatus(ctx context.Context, id string, status docModel.EmbeddingStatus) error {
	return s.statusUpdate(ctx,
		"UPDATE documents SET embedding_status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().UTC().Format(timeLayout), id)
}

func (s *SQLiteDocumentStore) statusUpdate(ctx context.Context, query string, params ...any) error {
	res, err := s.db.ExecContext(ctx, query, params...)
	if err != nil {
		return &docModel.StorageError{Op: "status update", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return docModel.ErrNotFound
	}
	return nil
}

// ListStaleEnrichment finds documents whose enrichment is stuck: failed, or
// still pending/in-flight with no progress since olderThan.
func (s *SQLiteDocumentStore) ListStaleEnrichment(ctx context.Context, olderThan time.Time, limit int) ([]docModel.StaleEnrichment, error) {
	cutoff := olderThan.UTC().Format(timeLayout)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, 'summary' FROM documents
		WHERE summary_status = 'failed'
		   OR (summary_status IN ('pending', 'generating') AND updated_at < ?)
		UNION ALL
		SELECT id, 'embedding' FROM documents
		WHERE embedding_status = 'failed'
		   OR (embedding_status = 'pending' AND updated_at < ?)
		LIMIT ?`, cutoff, cutoff, limit)
	if err != nil {
		return nil, &docModel.StorageError{Op: "stale scan", Err: err}
	}
	defer rows.Close()

	var stale []docModel.StaleEnrichment
	for rows.Next() {
		var se docModel.StaleEnrichment
		if err := rows.Scan(&se.DocumentId, &se.Axis); err != nil {
			return nil, &docModel.StorageError{Op: "stale scan", Err: err}
		}
		stale = append(stale, se)
	}
	return stale, rows.Err()
}

// row scanning helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteDocumentStore) scanDocument(ctx context.Context, row rowScanner) (docModel.Document, error) {
	doc, err := scanDocumentColumns(row, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docModel.Document{}, docModel.ErrNotFound
		}
		return docModel.Document{}, &docModel.StorageError{Op: "get", Err: err}
	}
	if err := s.loadTags(ctx, &doc); err != nil {
		return docModel.Document{}, err
	}
	return doc, nil
}

func (s *SQLiteDocumentStore) scanDocumentWithRank(ctx context.Context, row rowScanner) (docModel.Document, float64, error) {
	var rank float64
	doc, err := scanDocumentColumns(row, &rank)
	if err != nil {
		return docModel.Document{}, 0, &docModel.StorageError{Op: "scan", Err: err}
	}
	if err := s.loadTags(ctx, &doc); err != nil {
		return docModel.Document{}, 0, err
	}
	return doc, rank, nil
}

func (s *SQLiteDocumentStore) collectDocuments(ctx context.Context, rows *sql.Rows) ([]docModel.Document, error) {
	var docs []docModel.Document
	for rows.Next() {
		doc, err := scanDocumentColumns(rows, nil)
		if err != nil {
			return nil, &docModel.StorageError{Op: "scan", Err: err}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, &docModel.StorageError{Op: "scan", Err: err}
	}
	for i := range docs {
		if err := s.loadTags(ctx, &docs[i]); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func scanDocumentColumns(row rowScanner, rank *float64) (docModel.Document, error) {
	var doc docModel.Document
	var author, published sql.NullString
	var sourceType, summaryStatus, embeddingStatus string
	var readStatus int
	var createdAt, updatedAt string

	dest := []any{
		&doc.Id, &doc.CanonicalURL, &doc.Title, &author, &published, &sourceType,
		&doc.Content, &doc.Summary, &summaryStatus, &embeddingStatus, &readStatus,
		&createdAt, &updatedAt,
	}
	if rank != nil {
		dest = append(dest, rank)
	}
	if err := row.Scan(dest...); err != nil {
		return doc, err
	}

	doc.Author = author.String
	if published.Valid {
		if t, err := time.Parse(timeLayout, published.String); err == nil {
			doc.PublishedDate = &t
		}
	}
	doc.SourceType = docModel.SourceType(sourceType)
	doc.SummaryStatus = docModel.SummaryStatus(summaryStatus)
	doc.EmbeddingStatus = docModel.EmbeddingStatus(embeddingStatus)
	doc.ReadStatus = readStatus != 0

	var err error
	if doc.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return doc, err
	}
	if doc.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return doc, err
	}
	return doc, nil
}

func (s *SQLiteDocumentStore) loadTags(ctx context.Context, doc *docModel.Document) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name FROM tags t
		JOIN document_tags dt ON t.id = dt.tag_id
		WHERE dt.document_id = ?
		ORDER BY t.name`, doc.Id)
	if err != nil {
		return &docModel.StorageError{Op: "load tags", Err: err}
	}
	defer rows.Close()

	doc.Tags = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return &docModel.StorageError{Op: "load tags", Err: err}
		}
		doc.Tags = append(doc.Tags, name)
	}
	return rows.Err()
}

func prefixedDocumentColumns(alias string) string {
	cols := strings.Split(documentColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
