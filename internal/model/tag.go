package model

// TagCategory groups tags for network-health statistics.
type TagCategory string

// Tag category constants.
const (
	TagCategoryExternal TagCategory = "EXTERNAL"
	TagCategoryInternal TagCategory = "INTERNAL"
)

// Tag is a qualitative label from the static tag catalog.
type Tag struct {
	ID          string
	Label       string
	Description string
	Example     string
	Parent      TagCategory
}
