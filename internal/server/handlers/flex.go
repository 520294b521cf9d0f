package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// flexFloat decodes a JSON number, a numeric string, "" or null. HTML forms post
// their number inputs as strings.
type flexFloat struct {
	V   float64
	Set bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = flexFloat{}
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = flexFloat{}
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	// ParseFloat also reads "NaN" and "Inf", which slip past every range check
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("not a number: %s", s)
	}
	*f = flexFloat{V: v, Set: true}
	return nil
}

func (f flexFloat) Ptr() *float64 {
	if !f.Set {
		return nil
	}
	v := f.V
	return &v
}

// flexInt is a flexFloat that must hold a whole number: 2 and "2" decode, "2.9" does not.
type flexInt struct {
	V   int
	Set bool
}

func (n *flexInt) UnmarshalJSON(b []byte) error {
	var f flexFloat
	if err := f.UnmarshalJSON(b); err != nil {
		return err
	}
	if !f.Set {
		*n = flexInt{}
		return nil
	}
	if f.V != math.Trunc(f.V) || math.Abs(f.V) > math.MaxInt32 {
		return fmt.Errorf("not a whole number: %v", f.V)
	}
	*n = flexInt{V: int(f.V), Set: true}
	return nil
}

func (n flexInt) Ptr() *int {
	if !n.Set {
		return nil
	}
	v := n.V
	return &v
}

// flexID accepts 12 or "12".
type flexID int64

func (id *flexID) UnmarshalJSON(b []byte) error {
	var n flexInt
	if err := n.UnmarshalJSON(b); err != nil {
		return err
	}
	*id = flexID(n.V)
	return nil
}

// parseDeliveryTime accepts RFC 3339 and the datetime-local form value.
func parseDeliveryTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("delivery_time must be a date and time")
}
