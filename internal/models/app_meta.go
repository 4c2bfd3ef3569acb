package models

// UnknownCategory is used for apps without metadata
const UnknownCategory = "unknown"

// AppMeta holds store metadata for one application identifier
type AppMeta struct {
	Name           string  `json:"name,omitempty"`
	Alias          string  `json:"alias,omitempty"`
	Company        string  `json:"company,omitempty"`
	Genre          string  `json:"genre,omitempty"`
	CustomCategory string  `json:"custom_genre,omitempty"`
	Installs       int64   `json:"purchases,omitempty"`
	Rating         float64 `json:"rating,omitempty"`
	Source         string  `json:"source,omitempty"`
}

// Category resolves the category to annotate with: the curated category when
// preferCustom is set, the store genre otherwise. Missing values are unknown.
func (m AppMeta) Category(preferCustom bool) string {
	if preferCustom && m.CustomCategory != "" {
		return m.CustomCategory
	}
	if !preferCustom && m.Genre != "" {
		return m.Genre
	}
	return UnknownCategory
}

// DisplayName resolves the app name, optionally preferring the alias
func (m AppMeta) DisplayName(useAlias bool) string {
	if useAlias && m.Alias != "" {
		return m.Alias
	}
	if m.Name != "" {
		return m.Name
	}
	return UnknownCategory
}
