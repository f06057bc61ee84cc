package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// StringList maps a Postgres text[] column. Values never contain commas or
// braces in this schema (disease names), so the literal form stays simple.
type StringList []string

func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = StringList{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return l.parseFromString(v)
	case []byte:
		return l.parseFromString(string(v))
	default:
		return fmt.Errorf("StringList: unsupported Scan type %T", src)
	}
}

func (l StringList) Value() (driver.Value, error) {
	// Postgres array literal: {a,b}
	if len(l) == 0 {
		return "{}", nil
	}
	parts := make([]string, 0, len(l))
	for _, item := range l {
		parts = append(parts, `"`+strings.ReplaceAll(item, `"`, ``)+`"`)
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

func (l *StringList) parseFromString(s string) error {
	s = strings.TrimSpace(s)
	if s == "{}" || s == "" {
		*l = StringList{}
		return nil
	}
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if strings.TrimSpace(s) == "" {
		*l = StringList{}
		return nil
	}

	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		out = append(out, strings.TrimSpace(strings.Trim(r, `"`)))
	}
	*l = StringList(out)
	return nil
}

// ContainsOtherThan reports whether the list holds any entry besides the
// provided value, compared case-insensitively. Used for disease screening
// where "none" entries are ignored.
func (l StringList) ContainsOtherThan(ignored string) bool {
	for _, item := range l {
		if item != "" && !strings.EqualFold(item, ignored) {
			return true
		}
	}
	return false
}
