package types

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// Flag is a boolean persisted as a 0/1 integer, the way isActive and other
// switches are stored in every audited table.
type Flag bool

// Value implements driver.Valuer.
func (f Flag) Value() (driver.Value, error) {
	if f {
		return int64(1), nil
	}
	return int64(0), nil
}

// Scan implements sql.Scanner.
func (f *Flag) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = false
	case int64:
		*f = v != 0
	case int32:
		*f = v != 0
	case int16:
		*f = v != 0
	case bool:
		*f = Flag(v)
	case []byte:
		return f.parse(string(v))
	case string:
		return f.parse(v)
	default:
		return fmt.Errorf("types.Flag: cannot scan %T", src)
	}
	return nil
}

func (f *Flag) parse(s string) error {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = n != 0
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("types.Flag: %w", err)
	}
	*f = Flag(b)
	return nil
}

// Bool returns the plain bool.
func (f Flag) Bool() bool { return bool(f) }
