package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

const (
	NO_PAGINATION = 0

	DEFAULT_PAGE_SIZE = 20
)

const (
	LANGUAGE_EN_KEY = "en"
	LANGUAGE_HI_KEY = "hi"
)

// Metadata is a free-form JSON object stored in a jsonb column.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface.
func (m *Metadata) Scan(src interface{}) error {
	var raw []byte
	switch src := src.(type) {
	case []byte:
		raw = src
	case string:
		raw = []byte(src)
	case nil:
		*m = Metadata{}
		return nil
	default:
		return fmt.Errorf("pq: cannot convert %T to Metadata", src)
	}

	res := Metadata{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &res); err != nil {
			return err
		}
	}
	*m = res
	return nil
}

func (m Metadata) String(key string) string {
	v, _ := m[key].(string)
	return v
}

func (m Metadata) Bool(key string) bool {
	v, _ := m[key].(bool)
	return v
}
