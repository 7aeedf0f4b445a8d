package models

import (
	"strings"
	"time"
)

// FilterKind identifies what a stored filter value applies to.
type FilterKind string

const (
	FilterKeyword   FilterKind = "keyword"
	FilterExcluded  FilterKind = "excluded"
	FilterLocation  FilterKind = "location"
	FilterSeniority FilterKind = "seniority"
	FilterRemote    FilterKind = "remote"
)

// ParseFilterKind returns the FilterKind for a stored string value, or
// false when the value is not a known kind.
func ParseFilterKind(s string) (FilterKind, bool) {
	switch FilterKind(strings.ToLower(strings.TrimSpace(s))) {
	case FilterKeyword, FilterExcluded, FilterLocation, FilterSeniority, FilterRemote:
		return FilterKind(strings.ToLower(strings.TrimSpace(s))), true
	}
	return "", false
}

// RemotePreference is the user's stance on remote roles.
type RemotePreference string

const (
	RemoteYes RemotePreference = "yes"
	RemoteNo  RemotePreference = "no"
	RemoteAny RemotePreference = "any"
)

// ParseRemotePreference returns the RemotePreference for a stored string
// value, or false when the value is not a known preference.
func ParseRemotePreference(s string) (RemotePreference, bool) {
	switch RemotePreference(strings.ToLower(strings.TrimSpace(s))) {
	case RemoteYes, RemoteNo, RemoteAny:
		return RemotePreference(strings.ToLower(strings.TrimSpace(s))), true
	}
	return "", false
}

// Filter is one stored (kind, value) preference row.
type Filter struct {
	ID        int64      `json:"id,omitempty"`
	Kind      FilterKind `json:"kind"`
	Value     string     `json:"value"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
}

// FilterSet is the typed, folded view of all active filter rows that the
// matcher consumes. Zero value means no filtering.
type FilterSet struct {
	Keywords    []string         `json:"keywords,omitempty"`
	Excluded    []string         `json:"excluded,omitempty"`
	Locations   []string         `json:"locations,omitempty"`
	Seniorities []Seniority      `json:"seniorities,omitempty"`
	Remote      RemotePreference `json:"remote,omitempty"`
	Threshold   int              `json:"threshold"`
}

// DefaultThreshold is the alert threshold used until the user sets one.
const DefaultThreshold = 70

// FilterSetFromRecords folds raw filter rows into a FilterSet. Unknown
// kinds, unknown seniority levels and unknown remote preferences are
// discarded rather than carried as invalid values.
func FilterSetFromRecords(records []Filter) FilterSet {
	fs := FilterSet{Remote: RemoteAny, Threshold: DefaultThreshold}
	for _, r := range records {
		switch r.Kind {
		case FilterKeyword:
			fs.Keywords = append(fs.Keywords, r.Value)
		case FilterExcluded:
			fs.Excluded = append(fs.Excluded, r.Value)
		case FilterLocation:
			fs.Locations = append(fs.Locations, r.Value)
		case FilterSeniority:
			if level, ok := ParseSeniority(r.Value); ok {
				fs.Seniorities = append(fs.Seniorities, level)
			}
		case FilterRemote:
			if pref, ok := ParseRemotePreference(r.Value); ok {
				fs.Remote = pref
			}
		}
	}
	return fs
}

// WantsRemote reports whether the set restricts matching to remote roles.
func (fs *FilterSet) WantsRemote() bool {
	return fs.Remote == RemoteYes
}
