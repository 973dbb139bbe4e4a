package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Tags is a set of opaque labels kept sorted and free of duplicates.
// It is stored as a JSON array.
type Tags []string

func NewTags(labels ...string) Tags {
	seen := make(map[string]bool, len(labels))
	tags := Tags{}
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		tags = append(tags, label)
	}
	sort.Strings(tags)
	return tags
}

func (t Tags) Contains(label string) bool {
	i := sort.SearchStrings(t, label)
	return i < len(t) && t[i] == label
}

// SubsetOf reports whether every tag of t is in other. The empty set is a
// subset of anything.
func (t Tags) SubsetOf(other Tags) bool {
	for _, label := range t {
		if !other.Contains(label) {
			return false
		}
	}
	return true
}

func (t Tags) Union(other Tags) Tags {
	merged := make([]string, 0, len(t)+len(other))
	merged = append(merged, t...)
	merged = append(merged, other...)
	return NewTags(merged...)
}

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	data, err := json.Marshal([]string(t))
	return string(data), err
}

func (t *Tags) Scan(src any) error {
	var labels []string
	if err := scanJSON(src, &labels); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	*t = NewTags(labels...)
	return nil
}

func (t *Tags) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	*t = NewTags(labels...)
	return nil
}

func (t *Tags) UnmarshalYAML(unmarshal func(any) error) error {
	var labels []string
	if err := unmarshal(&labels); err != nil {
		return err
	}
	*t = NewTags(labels...)
	return nil
}

// Values holds the chosen value(s) of an answer, in submission order.
type Values []string

func (v Values) Value() (driver.Value, error) {
	if v == nil {
		v = Values{}
	}
	data, err := json.Marshal([]string(v))
	return string(data), err
}

func (v *Values) Scan(src any) error {
	var values []string
	if err := scanJSON(src, &values); err != nil {
		return fmt.Errorf("values: %w", err)
	}
	*v = values
	return nil
}

func scanJSON(src any, dst any) error {
	switch src := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(src) == 0 {
			return nil
		}
		return json.Unmarshal(src, dst)
	case string:
		if src == "" {
			return nil
		}
		return json.Unmarshal([]byte(src), dst)
	default:
		return fmt.Errorf("cannot scan %T", src)
	}
}
