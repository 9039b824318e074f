package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a numeric identifier that clients may send either as a number or as a
// numeric string, in JSON bodies and in form fields alike.
type ID uint

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if string(data) == "null" {
		*id = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return id.UnmarshalParam(s)
	}

	return id.UnmarshalParam(string(data))
}

// UnmarshalParam implements gin's binding.BindUnmarshaler for form fields.
func (id *ID) UnmarshalParam(param string) error {
	param = strings.TrimSpace(param)

	if param == "" {
		*id = 0
		return nil
	}

	parsed, err := strconv.ParseUint(param, 10, 32)

	if err != nil {
		return fmt.Errorf("invalid id %q", param)
	}

	*id = ID(parsed)

	return nil
}

func (id ID) Uint() uint {
	return uint(id)
}
