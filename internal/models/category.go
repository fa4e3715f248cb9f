package models

// Category is one of the fixed set of listing categories.
type Category string

// The fixed category enumeration. Unclassifiable input always resolves to
// CategoryOther, never an empty value.
const (
	CategoryElectronics  Category = "Electronics"
	CategoryFashion      Category = "Fashion"
	CategoryHomeGarden   Category = "Home & Garden"
	CategorySports       Category = "Sports & Outdoors"
	CategoryBeautyHealth Category = "Beauty & Health"
	CategoryToysKids     Category = "Toys & Kids"
	CategoryGaming       Category = "Gaming"
	CategoryAutomotive   Category = "Automotive"
	CategoryGroceries    Category = "Groceries"
	CategoryBooksMedia   Category = "Books & Media"
	CategoryTravel       Category = "Travel"
	CategoryOther        Category = "Other Deals"
)

// Categories lists every valid category in declaration order. The keyword
// strategy relies on this order to break scoring ties deterministically.
var Categories = []Category{
	CategoryElectronics,
	CategoryFashion,
	CategoryHomeGarden,
	CategorySports,
	CategoryBeautyHealth,
	CategoryToysKids,
	CategoryGaming,
	CategoryAutomotive,
	CategoryGroceries,
	CategoryBooksMedia,
	CategoryTravel,
	CategoryOther,
}

var categorySet = func() map[Category]struct{} {
	set := make(map[Category]struct{}, len(Categories))
	for _, c := range Categories {
		set[c] = struct{}{}
	}
	return set
}()

// Valid reports whether c belongs to the fixed enumeration.
func (c Category) Valid() bool {
	_, ok := categorySet[c]
	return ok
}

// ParseCategory resolves a label to a member of the enumeration. Unknown or
// empty labels resolve to CategoryOther.
func ParseCategory(label string) Category {
	c := Category(label)
	if c.Valid() {
		return c
	}
	return CategoryOther
}
