package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// maxRows caps how many rows a tool call returns to the model.
const maxRows = 200

const queryTimeout = 10 * time.Second

var (
	errNotReadOnly = errors.New("security violation: only a single SELECT statement is allowed")

	forbiddenWords = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|DROP|ALTER|CREATE|TRUNCATE|REPLACE|MERGE|GRANT|REVOKE|ATTACH|DETACH|PRAGMA|VACUUM|INTO|CALL|EXEC|LOCK|SET)\b`)
	leadingWord    = regexp.MustCompile(`(?i)^\s*(SELECT|WITH)\b`)
	secretColumns  = regexp.MustCompile(`(?i)\bpassword_hash\b`)
)

// hiddenColumns never reach the model, even through SELECT *.
var hiddenColumns = map[string]bool{"password_hash": true}

// IsReadOnlyQuery reports whether query is one SELECT (or WITH ... SELECT)
// statement with no comments, no data-modifying keywords and no credential
// columns. It errs on the side of rejecting.
func IsReadOnlyQuery(query string) bool {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, ";")
	if q == "" || strings.Contains(q, ";") {
		return false
	}
	if strings.Contains(q, "--") || strings.Contains(q, "/*") || strings.Contains(q, "#") {
		return false
	}
	if !leadingWord.MatchString(q) {
		return false
	}
	return !forbiddenWords.MatchString(q) && !secretColumns.MatchString(q)
}

// runReadOnlyQuery executes query and encodes up to maxRows rows as JSON.
func (s *Service) runReadOnlyQuery(ctx context.Context, query string) (string, error) {
	if !IsReadOnlyQuery(query) {
		return "", errNotReadOnly
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if err != nil {
		return "", err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", err
	}

	table := []map[string]any{}
	for rows.Next() {
		if len(table) == maxRows {
			break
		}
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", fmt.Errorf("scanning row: %w", err)
		}
		entry := make(map[string]any, len(columns))
		for i, col := range columns {
			if hiddenColumns[strings.ToLower(col)] {
				continue
			}
			if b, ok := values[i].([]byte); ok {
				entry[col] = string(b)
			} else {
				entry[col] = values[i]
			}
		}
		table = append(table, entry)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	out, err := json.Marshal(table)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
