// Package migrate wraps golang-migrate for the ledger store's Postgres
// schema, the way the teacher's cmd/migrate package does for its own
// module schemas.
package migrate

const migrationSource = "internal/repository/postgres/migrations"
