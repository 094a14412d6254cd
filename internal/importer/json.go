package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleString can unmarshal from either string or number JSON values.
// Booleans are rendered as "true"/"false".
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	// Handle null
	if string(data) == "null" {
		*f = ""
		return nil
	}

	// Try string first
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(s)
		return nil
	}

	// Try number
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexibleString(n.String())
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexibleString(strconv.FormatBool(b))
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleString", string(data))
}

func (f FlexibleString) String() string {
	return string(f)
}

// ReadJSON parses a JSON array of study objects, as exported by the
// dashboard, into rows. Null values are treated as absent columns and string
// lists such as otherAuthors are joined with "; ". Nested objects are
// rejected per entry.
func ReadJSON(data []byte) ([]Row, []error) {
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, []error{fmt.Errorf("parsing study JSON: %w", err)}
	}

	var rows []Row
	var errs []error

	for i, entry := range entries {
		row, err := jsonEntryToRow(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i+1, err))
			continue
		}
		rows = append(rows, row)
	}

	return rows, errs
}

func jsonEntryToRow(entry map[string]json.RawMessage) (Row, error) {
	row := make(Row, len(entry))
	for key, raw := range entry {
		if string(raw) == "null" {
			continue
		}
		var v FlexibleString
		if err := json.Unmarshal(raw, &v); err == nil {
			row[key] = v.String()
			continue
		}
		var list []FlexibleString
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("field %q: unsupported value %s", key, string(raw))
		}
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = item.String()
		}
		row[key] = strings.Join(parts, "; ")
	}
	return row, nil
}
