package classify

import (
	"context"
	"strings"

	"github.com/dealhound/dealhound/internal/models"
)

// categoryKeywords drives the keyword strategy. Matching is case-insensitive
// substring search over "title description".
var categoryKeywords = map[models.Category][]string{
	models.CategoryElectronics: {
		"iphone", "samsung", "xiaomi", "smartphone", "phone", "laptop", "tablet",
		"tv", "monitor", "headphone", "earbud", "speaker", "charger", "usb",
		"ssd", "camera", "smartwatch", "case", "powerbank",
	},
	models.CategoryFashion: {
		"shoes", "sneaker", "jacket", "hoodie", "t-shirt", "jeans", "dress",
		"watch", "backpack", "wallet", "sunglasses", "boots", "coat",
	},
	models.CategoryHomeGarden: {
		"vacuum", "kitchen", "sofa", "mattress", "lamp", "furniture", "garden",
		"grill", "drill", "tool", "cookware", "blender", "air fryer", "curtain",
	},
	models.CategorySports: {
		"bike", "bicycle", "fitness", "dumbbell", "treadmill", "tent", "camping",
		"hiking", "ski", "running", "yoga", "scooter", "helmet",
	},
	models.CategoryBeautyHealth: {
		"perfume", "shampoo", "cream", "makeup", "cosmetic", "toothbrush",
		"razor", "supplement", "vitamin", "skincare", "hair dryer",
	},
	models.CategoryToysKids: {
		"lego", "toy", "doll", "puzzle", "stroller", "diaper", "baby",
		"kids", "playmobil", "board game",
	},
	models.CategoryGaming: {
		"playstation", "ps5", "xbox", "nintendo", "switch", "gaming", "gamepad",
		"controller", "steam", "rtx", "geforce", "console",
	},
	models.CategoryAutomotive: {
		"car", "tire", "tyre", "motor", "oil", "dashcam", "wiper", "battery",
		"rims", "navigation",
	},
	models.CategoryGroceries: {
		"coffee", "tea", "chocolate", "snack", "drink", "food", "beer", "wine",
		"pasta", "olive oil",
	},
	models.CategoryBooksMedia: {
		"book", "ebook", "kindle", "audiobook", "vinyl", "blu-ray", "comic",
		"magazine", "subscription",
	},
	models.CategoryTravel: {
		"flight", "hotel", "trip", "holiday", "ticket", "luggage", "suitcase",
		"city break", "resort",
	},
}

// KeywordStrategy scores categories by keyword occurrences. It is total:
// every input resolves to a category, defaulting to "Other Deals" when no
// keyword matches anywhere.
type KeywordStrategy struct{}

// NewKeywordStrategy returns the keyword matcher.
func NewKeywordStrategy() *KeywordStrategy { return &KeywordStrategy{} }

// Classify picks the category with the highest keyword occurrence count.
// Ties keep the first-seen highest scorer in enumeration order.
func (s *KeywordStrategy) Classify(_ context.Context, item models.RawItem) (models.Category, error) {
	haystack := strings.ToLower(item.Title + " " + item.Description)

	best := models.CategoryOther
	bestScore := 0
	for _, category := range models.Categories {
		score := 0
		for _, keyword := range categoryKeywords[category] {
			score += strings.Count(haystack, keyword)
		}
		if score > bestScore {
			best = category
			bestScore = score
		}
	}

	return best, nil
}
