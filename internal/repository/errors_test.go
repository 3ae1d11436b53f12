package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateEntry(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'REG-3-7-AAAAAAAAAA' for key 'registrations.qr_code'"}
	assert.True(t, IsDuplicateEntry(dup))
	assert.True(t, IsDuplicateEntry(fmt.Errorf("insert registration: %w", dup)))

	// Portable message fallback for non-MySQL backends.
	assert.True(t, IsDuplicateEntry(errors.New("UNIQUE constraint failed: registrations.qr_code")))
	assert.True(t, IsDuplicateEntry(errors.New("Error 1062: Duplicate entry")))

	assert.False(t, IsDuplicateEntry(nil))
	assert.False(t, IsDuplicateEntry(errors.New("connection refused")))
	assert.False(t, IsDuplicateEntry(&mysql.MySQLError{Number: 1452, Message: "foreign key constraint fails"}))
}
