package models

import (
	"strings"
)

// AlertFilter narrows the active alert listing. Empty fields match everything.
type AlertFilter struct {
	Bounds    *Bounds
	AlertType AlertType
	Severity  Severity
}

// CacheKey renders the filter as a stable key fragment.
func (f AlertFilter) CacheKey() string {
	bounds := "*"
	if f.Bounds != nil {
		bounds = f.Bounds.String()
	}
	typ := string(f.AlertType)
	if typ == "" {
		typ = "*"
	}
	sev := string(f.Severity)
	if sev == "" {
		sev = "*"
	}
	return strings.Join([]string{typ, sev, bounds}, "|")
}

// Concern listing defaults.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ConcernFilter narrows the reviewer concern listing.
type ConcernFilter struct {
	Status   ConcernStatus
	Category ConcernCategory
	Search   string
	Page     int
	Limit    int
}

// Normalize clamps paging to sane values.
func (f *ConcernFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	f.Search = strings.TrimSpace(f.Search)
}

// Offset returns the row offset for the current page.
func (f ConcernFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
