package sqlwriter

import (
	"database/sql/driver"
	"encoding/json"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var (
	errNonFinite   = errors.New("non-finite float")
	errUnsupported = errors.New("unsupported value type")
	errInvalidText = errors.New("text is not NUL-free UTF-8")
)

// Dialect selects the SQL flavour of the rendered script
type Dialect string

const (
	// DialectSQLite targets SQLite and Cloudflare D1
	DialectSQLite Dialect = "sqlite"
	// DialectPostgres targets PostgreSQL
	DialectPostgres Dialect = "postgres"
)

// ParseDialect maps a configuration value to a Dialect
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "d1":
		return DialectSQLite, nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	default:
		return "", errors.Newf("sqlwriter: unknown dialect %q", name)
	}
}

func validIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// QuoteString renders s as a single-quoted SQL string literal
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// textLiteral quotes s, rejecting text neither SQLite nor PostgreSQL can read back
func textLiteral(s string) (string, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return "", errors.Wrap(errInvalidText, "contains NUL byte")
	}
	if !utf8.ValidString(s) {
		return "", errors.Wrap(errInvalidText, "invalid UTF-8")
	}
	return QuoteString(s), nil
}

// Literal renders a Go value as a SQL literal for the dialect
func (d Dialect) Literal(value any) (string, error) {
	if valuer, ok := value.(driver.Valuer); ok {
		if isNilPointer(value) {
			return "NULL", nil
		}
		resolved, err := valuer.Value()
		if err != nil {
			return "", errors.Wrap(err, "resolve driver value")
		}
		value = resolved
	}

	switch v := value.(type) {
	case nil:
		return "NULL", nil
	case string:
		return textLiteral(v)
	case json.RawMessage:
		if v == nil {
			return "NULL", nil
		}
		return textLiteral(string(v))
	case []byte:
		if v == nil {
			return "NULL", nil
		}
		return textLiteral(string(v))
	case bool:
		return d.boolLiteral(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return floatLiteral(float64(v), 32)
	case float64:
		return floatLiteral(v, 64)
	case time.Time:
		return QuoteString(v.UTC().Format(time.RFC3339)), nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "NULL", nil
		}
		return d.Literal(rv.Elem().Interface())
	}

	return "", errors.Wrapf(errUnsupported, "%T", value)
}

func (d Dialect) boolLiteral(v bool) string {
	if d == DialectPostgres {
		if v {
			return "TRUE"
		}
		return "FALSE"
	}
	if v {
		return "1"
	}
	return "0"
}

func floatLiteral(v float64, bitSize int) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", errors.Wrapf(errNonFinite, "%v", v)
	}
	return strconv.FormatFloat(v, 'f', -1, bitSize), nil
}

func isNilPointer(value any) bool {
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
