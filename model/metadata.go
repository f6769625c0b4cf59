package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/siherrmann/mailrag/helper"
)

// Well known email metadata keys.
const (
	MetadataSource  = "source"
	MetadataSubject = "subject"
)

// Metadata holds free-form email attributes, stored as JSONB in PostgreSQL.
type Metadata map[string]interface{}

// Value implements driver.Valuer. A nil map is stored as an empty object.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB columns.
func (m *Metadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case Metadata:
		*m = v
		return nil
	case []byte:
		return m.decode(v)
	case string:
		return m.decode([]byte(v))
	default:
		return helper.NewError("scan metadata", fmt.Errorf("unsupported type %T", value))
	}
}

func (m *Metadata) decode(b []byte) error {
	decoded := Metadata{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		return helper.NewError("decode metadata", err)
	}
	*m = decoded
	return nil
}

// String returns the value of key if it is a string.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}
