package domain

import "encoding/json"

// OptionalString is a nullable string that remembers whether it appeared in
// the input at all. Three states: absent (Set false), explicitly null
// (Set true, Value nil), and present (Set true, Value non-nil).
type OptionalString struct {
	Set   bool
	Value *string
}

// String builds a present OptionalString.
func String(s string) OptionalString {
	return OptionalString{Set: true, Value: &s}
}

// Null builds an explicitly-null OptionalString.
func Null() OptionalString {
	return OptionalString{Set: true}
}

// UnmarshalJSON is only invoked when the key appears in the payload, so an
// omitted field leaves Set false.
func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
