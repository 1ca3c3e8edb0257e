package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/syshair?sslmode=disable", migrateURL("postgres://u:p@db:5432/syshair?sslmode=disable"))
	assert.Equal(t, "pgx5://u@db/syshair", migrateURL("postgresql://u@db/syshair"))
	assert.Equal(t, "pgx5://already", migrateURL("pgx5://already"))
}
