package repository

import (
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"
)

var (
	tablePlaceholder = regexp.MustCompile(`\{([a-z][a-z0-9_]*)\}`)
	identifierRe     = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Tables expands {name} placeholders into prefixed host table names.
type Tables string

// Expand replaces every {name} in query with the prefixed table name.
func (t Tables) Expand(query string) string {
	return tablePlaceholder.ReplaceAllString(query, string(t)+"$1")
}

// validIdentifier guards table and column names that come from data rather than code.
func validIdentifier(name string) bool {
	return identifierRe.MatchString(name)
}

// bindNamed compiles a :name query into the bindvar style of db, expanding slice arguments.
func bindNamed(db *sqlx.DB, query string, args map[string]interface{}) (string, []interface{}, error) {
	compiled, values, err := sqlx.Named(query, args)
	if err != nil {
		return "", nil, fmt.Errorf("compile named query: %w", err)
	}
	compiled, values, err = sqlx.In(compiled, values...)
	if err != nil {
		return "", nil, fmt.Errorf("expand query arguments: %w", err)
	}
	return db.Rebind(compiled), values, nil
}
