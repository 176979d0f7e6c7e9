// internal/domain/models/event.go
package models

// Event describes one festival event from the static catalog.
//
// Events are immutable once the catalog is loaded; Capacity is the maximum
// team size shown next to the roster (not an admission limit).
type Event struct {
	ID          string `yaml:"id" json:"id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Capacity    int    `yaml:"capacity" json:"capacity"`
}
