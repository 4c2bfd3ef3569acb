// Package metadata resolves application identifiers to store metadata
// (display name, genre, curated category). The data is produced by an
// external scraper; this package only reads and lightly edits it.
package metadata

import (
	"sort"

	"github.com/jengzang/mobiledna-go/internal/models"
)

// Provider looks up metadata for an application identifier
type Provider interface {
	Lookup(app string) (models.AppMeta, bool)
}

// Snapshot is an immutable-by-convention view of the metadata cache.
// Methods that change entries return a new Snapshot.
type Snapshot map[string]models.AppMeta

// Lookup implements Provider
func (s Snapshot) Lookup(app string) (models.AppMeta, bool) {
	m, ok := s[app]
	return m, ok
}

// Apps returns the known identifiers, sorted
func (s Snapshot) Apps() []string {
	out := make([]string, 0, len(s))
	for app := range s {
		out = append(out, app)
	}
	sort.Strings(out)
	return out
}

func (s Snapshot) clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Edit applies changes to one entry. With overwrite, every non-empty field
// of changes replaces the stored value; without it only empty fields are
// filled. Unknown identifiers get a new entry.
func (s Snapshot) Edit(app string, changes models.AppMeta, overwrite bool) Snapshot {
	out := s.clone()
	cur := out[app]
	set := func(dst *string, v string) {
		if v != "" && (overwrite || *dst == "") {
			*dst = v
		}
	}
	set(&cur.Name, changes.Name)
	set(&cur.Alias, changes.Alias)
	set(&cur.Company, changes.Company)
	set(&cur.Genre, changes.Genre)
	set(&cur.CustomCategory, changes.CustomCategory)
	set(&cur.Source, changes.Source)
	if changes.Installs != 0 && (overwrite || cur.Installs == 0) {
		cur.Installs = changes.Installs
	}
	if changes.Rating != 0 && (overwrite || cur.Rating == 0) {
		cur.Rating = changes.Rating
	}
	out[app] = cur
	return out
}

// WithAliases tags apps with a shared alias, e.g. {"facebook": [katana, orca]}.
// Apps missing from the snapshot are ignored.
func (s Snapshot) WithAliases(aliases map[string][]string) Snapshot {
	out := s.clone()
	for alias, apps := range aliases {
		for _, app := range apps {
			if m, ok := out[app]; ok {
				m.Alias = alias
				out[app] = m
			}
		}
	}
	return out
}

// Category resolves the category of app, "unknown" when p has no entry
func Category(p Provider, app string, preferCustom bool) string {
	if p == nil {
		return models.UnknownCategory
	}
	m, ok := p.Lookup(app)
	if !ok {
		return models.UnknownCategory
	}
	return m.Category(preferCustom)
}

// Name resolves the display name of app, "unknown" when p has no entry
func Name(p Provider, app string, useAlias bool) string {
	if p == nil {
		return models.UnknownCategory
	}
	m, ok := p.Lookup(app)
	if !ok {
		return models.UnknownCategory
	}
	return m.DisplayName(useAlias)
}
