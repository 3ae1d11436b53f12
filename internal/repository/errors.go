// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between failure scenarios
// without matching on message text. Absence of a row is reported as
// sql.ErrNoRows so callers can branch with errors.Is.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned by UserRepo.Create when the email is
// already taken. Handlers should translate this into an HTTP 409.
var ErrEmailExists = errors.New("email already exists")

const mysqlDupEntry = 1062

// IsDuplicateEntry reports whether err is a uniqueness-constraint
// violation. The MySQL error number is checked first; the message
// fallback keeps the QR retry loop working against other relational
// backends used in tests or future migrations.
func IsDuplicateEntry(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDupEntry
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "unique constraint")
}
