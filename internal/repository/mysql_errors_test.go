package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsMySQLError(t *testing.T) {
	dup := &mysql.MySQLError{Number: mysqlDuplicateEntry, Message: "Duplicate entry"}
	wrapped := fmt.Errorf("insert club: %w", dup)

	assert.True(t, isMySQLError(dup, mysqlDuplicateEntry))
	assert.True(t, isMySQLError(wrapped, mysqlDuplicateEntry))
	assert.False(t, isMySQLError(wrapped, mysqlRowReferenced))
	assert.False(t, isMySQLError(errors.New("boom"), mysqlDuplicateEntry))
	assert.False(t, isMySQLError(nil, mysqlDuplicateEntry))
}
