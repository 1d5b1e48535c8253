package models

// ItemKind tags which catalog collection an order or enrollment points at.
type ItemKind string

const (
	ItemCourse      ItemKind = "course"
	ItemMasterclass ItemKind = "masterclass"
)

// Valid reports whether k is a known catalog kind.
func (k ItemKind) Valid() bool {
	return k == ItemCourse || k == ItemMasterclass
}
