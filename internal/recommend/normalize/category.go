package normalize

import (
	"regexp"
	"strings"
)

// GenericCategory is used when a label cannot be mapped.
const GenericCategory = "음식점"

var categoryTable = map[string]string{
	"Korean Restaurant":          "한식당",
	"Korean Barbecue Restaurant": "한식당/고기집",
	"Barbecue Restaurant":        "바비큐/구이",
	"Asian Restaurant":           "아시아 음식",
	"Korean Food":                "한식당",

	"Japanese Restaurant":       "일식당",
	"Sushi Restaurant":          "초밥/스시",
	"Ramen Restaurant":          "라멘/면요리",
	"Izakaya Restaurant":        "이자카야",
	"Tempura Restaurant":        "덴푸라/튀김",
	"Okonomiyaki Restaurant":    "오코노미야키",
	"Japanese Curry Restaurant": "일식 카레",

	"Chinese Restaurant":  "중식당",
	"Dim Sum Restaurant":  "딤섬/중식당",
	"Szechuan Restaurant": "사천요리",

	"Italian Restaurant":  "이탈리안",
	"Pizza Restaurant":    "피자",
	"Pasta Restaurant":    "파스타",
	"Steak House":         "스테이크하우스",
	"European Restaurant": "유럽식 레스토랑",
	"French Restaurant":   "프렌치 레스토랑",
	"Spanish Restaurant":  "스페인 요리",

	"Fast Food Restaurant":     "패스트푸드",
	"Hamburger Restaurant":     "버거",
	"Chicken Restaurant":       "치킨",
	"Fried Chicken Restaurant": "치킨",

	"Cafe":         "카페",
	"Coffee Shop":  "카페",
	"Bakery":       "베이커리",
	"Dessert Shop": "디저트",

	"Seafood Restaurant":      "해산물요리",
	"Fish & Chips Restaurant": "생선요리",

	"Noodle Shop":       "면요리",
	"Noodle Restaurant": "면요리",
	"Sandwich Shop":     "샌드위치",
	"BBQ Restaurant":    "바비큐/구이",
	"Buffet Restaurant": "뷔페",

	"Vegan Restaurant":      "비건/채식",
	"Vegetarian Restaurant": "채식 식당",
	"Bar":                   "바/펍",
	"Pub":                   "펍",
	"Wine Bar":              "와인바",
	"Beer Hall":             "맥주집",
	"Restaurant":            GenericCategory,
}

type keywordRule struct {
	keywords []string
	category string
}

// Checked in order; the first rule with a matching substring wins.
var keywordRules = []keywordRule{
	{[]string{"sushi"}, "초밥/스시"},
	{[]string{"ramen"}, "라멘/면요리"},
	{[]string{"noodle"}, "면요리"},
	{[]string{"bbq", "barbecue"}, "바비큐/구이"},
	{[]string{"korean"}, "한식당"},
	{[]string{"japanese"}, "일식당"},
	{[]string{"chinese", "szechuan"}, "중식당"},
	{[]string{"pizza"}, "피자"},
	{[]string{"pasta"}, "파스타"},
	{[]string{"steak"}, "스테이크하우스"},
	{[]string{"chicken"}, "치킨"},
	{[]string{"burger", "hamburger"}, "버거"},
	{[]string{"cafe", "coffee"}, "카페"},
	{[]string{"seafood", "fish"}, "해산물요리"},
	{[]string{"buffet"}, "뷔페"},
	{[]string{"dessert", "bakery"}, "디저트"},
	{[]string{"bar", "pub"}, "바/펍"},
}

var restaurantWord = regexp.MustCompile(`[Rr]estaurant`)

// TranslateCategory maps a provider category label into the service's
// category vocabulary.
func TranslateCategory(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return GenericCategory
	}
	if kr, ok := categoryTable[label]; ok {
		return kr
	}

	lower := strings.ToLower(label)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}

	if restaurantWord.MatchString(label) {
		rest := strings.TrimSpace(restaurantWord.ReplaceAllString(label, ""))
		if rest == "" {
			return GenericCategory
		}
		return rest
	}
	return label
}

var displayCategoryTable = map[string]string{
	"Sushi Restaurant":    "초밥집",
	"Korean Restaurant":   "한식",
	"Japanese Restaurant": "일식",
	"Chinese Restaurant":  "중식",
	"Barbecue Restaurant": "바비큐",
	"Diner":               GenericCategory,
	"Restaurant":          GenericCategory,
}

// DisplayCategory returns a category fit for generated sentences: Hangul
// labels are kept, anything else collapses to a known word or the generic
// category. Empty input yields "".
func DisplayCategory(category string) string {
	if category == "" {
		return ""
	}
	if ContainsHangul(category) {
		return category
	}
	if kr, ok := displayCategoryTable[category]; ok {
		return kr
	}
	return GenericCategory
}
