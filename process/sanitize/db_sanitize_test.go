package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	got := TableNames(" users, ratings ,,drop table x;, _tmp1 ,9bad")
	assert.Equal(t, []string{"users", "ratings", "_tmp1"}, got)
	assert.Len(t, TableNames(DefaultTables), 5)
}

func TestTruncateStatement(t *testing.T) {
	assert.Equal(t,
		`TRUNCATE TABLE "users", "ratings" RESTART IDENTITY CASCADE`,
		TruncateStatement([]string{"users", "ratings"}))
}
