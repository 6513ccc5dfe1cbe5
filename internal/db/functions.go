package db

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"
)

// LowerUnicode is the SQL function folding text with Go's Unicode case
// mapping. SQLite's own lower() and LIKE only fold ASCII.
const LowerUnicode = "lower_unicode"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(LowerUnicode, 1, lowerUnicode)
}

func lowerUnicode(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
