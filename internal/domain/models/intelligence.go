package models

import (
	"encoding/json"
	"sort"
)

// StringSet is a set of unique strings. It marshals to JSON as a sorted
// array so that equal sets always serialize identically.
type StringSet map[string]struct{}

// NewStringSet creates a set from the given values
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts a value into the set
func (s StringSet) Add(v string) {
	s[v] = struct{}{}
}

// Contains reports whether v is in the set
func (s StringSet) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of elements
func (s StringSet) Len() int {
	return len(s)
}

// Values returns the elements in sorted order
func (s StringSet) Values() []string {
	values := make([]string, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Union returns a new set containing the elements of both sets.
// Either operand may be nil.
func (s StringSet) Union(other StringSet) StringSet {
	out := make(StringSet, len(s)+len(other))
	for v := range s {
		out[v] = struct{}{}
	}
	for v := range other {
		out[v] = struct{}{}
	}
	return out
}

// Equal reports whether both sets contain exactly the same elements
func (s StringSet) Equal(other StringSet) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes the set from an array
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}

// Intelligence is the structured artifact record harvested from
// conversation text, one set per category. The zero value is a valid
// empty record.
type Intelligence struct {
	UPIIDs             StringSet `json:"upiIds"`
	URLs               StringSet `json:"urls"`
	PhoneNumbers       StringSet `json:"phoneNumbers"`
	BankAccounts       StringSet `json:"bankAccounts"`
	Emails             StringSet `json:"emails"`
	SuspiciousKeywords StringSet `json:"suspiciousKeywords"`
}

// NewIntelligence returns an Intelligence with all categories initialized
func NewIntelligence() Intelligence {
	return Intelligence{
		UPIIDs:             NewStringSet(),
		URLs:               NewStringSet(),
		PhoneNumbers:       NewStringSet(),
		BankAccounts:       NewStringSet(),
		Emails:             NewStringSet(),
		SuspiciousKeywords: NewStringSet(),
	}
}

// Merge combines two intelligence records by per-category set union.
// Commutative, associative, idempotent; the zero Intelligence is the
// identity element.
func Merge(a, b Intelligence) Intelligence {
	return Intelligence{
		UPIIDs:             a.UPIIDs.Union(b.UPIIDs),
		URLs:               a.URLs.Union(b.URLs),
		PhoneNumbers:       a.PhoneNumbers.Union(b.PhoneNumbers),
		BankAccounts:       a.BankAccounts.Union(b.BankAccounts),
		Emails:             a.Emails.Union(b.Emails),
		SuspiciousKeywords: a.SuspiciousKeywords.Union(b.SuspiciousKeywords),
	}
}

// Equal reports whether both records contain the same values in every category
func (i Intelligence) Equal(other Intelligence) bool {
	return i.UPIIDs.Equal(other.UPIIDs) &&
		i.URLs.Equal(other.URLs) &&
		i.PhoneNumbers.Equal(other.PhoneNumbers) &&
		i.BankAccounts.Equal(other.BankAccounts) &&
		i.Emails.Equal(other.Emails) &&
		i.SuspiciousKeywords.Equal(other.SuspiciousKeywords)
}

// IsEmpty reports whether every category is empty
func (i Intelligence) IsEmpty() bool {
	return i.Total() == 0
}

// Total returns the number of values across all categories
func (i Intelligence) Total() int {
	return i.UPIIDs.Len() + i.URLs.Len() + i.PhoneNumbers.Len() +
		i.BankAccounts.Len() + i.Emails.Len() + i.SuspiciousKeywords.Len()
}

// HasCritical reports whether any of the categories that gate conversation
// escalation (payment handles, URLs, bank accounts) are non-empty. Phone
// numbers and emails deliberately do not count.
func (i Intelligence) HasCritical() bool {
	return i.UPIIDs.Len() > 0 || i.URLs.Len() > 0 || i.BankAccounts.Len() > 0
}
