package store

import (
	"context"
	"fmt"
	"strings"
)

// Search returns titles ranked by full-text relevance. An empty query
// returns the full title list. A query the index grammar rejects is retried
// as a quoted literal phrase, so malformed input degrades to exact-text
// matching rather than an error.
func (s *Store) Search(ctx context.Context, query string) ([]*Title, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, ListFilter{})
	}

	titles, err := s.searchMatch(ctx, query)
	if err == nil {
		return titles, nil
	}
	if !isQueryGrammarError(err) {
		return nil, err
	}

	titles, err = s.searchMatch(ctx, quoteLiteral(query))
	if err != nil {
		if isQueryGrammarError(err) {
			// Even the quoted form was rejected; report no matches rather
			// than surfacing a grammar error for user input.
			return nil, nil
		}
		return nil, err
	}
	return titles, nil
}

// isQueryGrammarError reports whether the index rejected the MATCH text
// itself, as opposed to a storage or context failure.
func isQueryGrammarError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"fts5: syntax error",
		"unknown special query",
		"malformed match",
		"unterminated string",
		"no such column",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func (s *Store) searchMatch(ctx context.Context, match string) ([]*Title, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+prefixedTitleColumns("t")+`
         FROM titles t
         JOIN title_search s ON s.title_id = t.id
         WHERE title_search MATCH ?
         ORDER BY bm25(title_search)`,
		match,
	)
	if err != nil {
		return nil, fmt.Errorf("search titles: %w", err)
	}
	defer rows.Close()

	return collectTitles(rows)
}

// quoteLiteral wraps each whitespace-separated token in FTS5 string quotes so
// operators and punctuation lose their query meaning.
func quoteLiteral(query string) string {
	fields := strings.Fields(query)
	quoted := make([]string, 0, len(fields))
	for _, field := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(field, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

func prefixedTitleColumns(alias string) string {
	cols := strings.Split(titleColumns, ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}
