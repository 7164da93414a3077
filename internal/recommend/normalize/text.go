package normalize

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const summaryMaxRunes = 80

var menuKeywords = []string{
	"김치찌개", "된장찌개", "불고기", "삼겹살", "갈비",
	"냉면", "비빔밥", "떡볶이", "라볶이", "튀김", "순대", "김밥",
	"칼국수", "국수",
	"초밥", "스시", "라멘", "우동", "돈카츠", "텐동",
	"짜장면", "짬뽕", "탕수육", "마라탕",
	"만두", "샤오롱바오", "소롱포", "딤섬",
	"양고기", "양꼬치", "양갈비",
	"파스타", "피자", "리조또", "스테이크",
	"치킨", "버거", "뷔페",
}

var englishMenu = []struct{ en, kr string }{
	{"sushi", "초밥"},
	{"ramen", "라멘"},
	{"udon", "우동"},
	{"pasta", "파스타"},
	{"pizza", "피자"},
	{"steak", "스테이크"},
	{"bbq", "바비큐"},
	{"barbecue", "바비큐"},
	{"burger", "버거"},
	{"sandwich", "샌드위치"},
	{"chicken", "치킨"},
	{"noodle", "면요리"},
	{"noodles", "면요리"},
	{"curry", "카레"},
	{"coffee", "커피"},
	{"buffet", "뷔페"},
	{"dumpling", "만두"},
	{"dumplings", "만두"},
	{"xiao long bao", "샤오롱바오"},
	{"xiaolongbao", "샤오롱바오"},
	{"xialongbao", "샤오롱바오"},
	{"dim sum", "딤섬"},
	{"dimsum", "딤섬"},
	{"lamb", "양고기"},
	{"mutton", "양고기"},
}

// ContainsHangul reports whether s has at least one Hangul syllable.
func ContainsHangul(s string) bool {
	for _, r := range s {
		if r >= '가' && r <= '힣' {
			return true
		}
	}
	return false
}

// MenuKeywords extracts up to four menu items mentioned in one review.
func MenuKeywords(review string) []string {
	if review == "" {
		return nil
	}
	var found []string
	for _, kw := range menuKeywords {
		if strings.Contains(review, kw) {
			found = append(found, kw)
		}
	}
	lower := strings.ToLower(review)
	for _, m := range englishMenu {
		if strings.Contains(lower, m.en) {
			found = append(found, m.kr)
		}
	}
	found = dedupe(found)
	if len(found) > 4 {
		found = found[:4]
	}
	return found
}

// MenuText names the first two menu items found across reviews, or falls
// back to a sentence built from the category or the place name.
func MenuText(name, category string, reviews []string) string {
	var menus []string
	for _, r := range reviews {
		menus = append(menus, MenuKeywords(r)...)
	}
	menus = dedupe(menus)
	if len(menus) > 0 {
		if len(menus) > 2 {
			menus = menus[:2]
		}
		return strings.Join(menus, ", ")
	}

	if cat := DisplayCategory(category); cat != "" && cat != GenericCategory {
		return cat + " 위주의 인기 메뉴를 즐길 수 있는 곳이에요."
	}
	return name + "만의 인기 메뉴를 즐길 수 있는 곳이에요."
}

// Summary uses the first Hangul review, trimmed, or a generated sentence.
func Summary(name, category string, rating *float64, distanceKm float64, reviews []string) string {
	for _, r := range reviews {
		if !ContainsHangul(r) {
			continue
		}
		s := strings.TrimSpace(strings.ReplaceAll(r, `\n`, " "))
		if utf8.RuneCountInString(s) > summaryMaxRunes {
			s = strings.TrimRightFunc(string([]rune(s)[:summaryMaxRunes]), unicode.IsSpace) + "..."
		}
		return s
	}
	return generatedSummary(name, category, rating, distanceKm)
}

func generatedSummary(name, category string, rating *float64, distanceKm float64) string {
	ratingText := "무난한 평점"
	if rating != nil && *rating >= 4.0 {
		ratingText = "평균 이상 좋은 평점"
	}
	distanceText := "주변에서"
	if distanceKm <= 0.5 {
		distanceText = "현재 위치와 매우 가까워"
	}
	cat := DisplayCategory(category)
	if cat == "" {
		cat = "이 곳"
	}
	return fmt.Sprintf("%s은(는) %s 메뉴를 즐길 수 있는 곳입니다. %s을 받고 있으며, %s 가볍게 방문하기 좋습니다.",
		name, cat, ratingText, distanceText)
}

// Tags builds the hashtag list. text is scanned for lunch and dinner mentions.
func Tags(category string, rating *float64, distanceKm float64, preferred bool, text string) []string {
	var tags []string
	switch {
	case distanceKm <= 0.3:
		tags = append(tags, "#도보5분이내")
	case distanceKm <= 1.0:
		tags = append(tags, "#도보10~15분이내")
	default:
		tags = append(tags, "#차로가기좋은")
	}

	if rating != nil {
		switch {
		case *rating >= 4.5:
			tags = append(tags, "#평점매우좋은")
		case *rating >= 4.0:
			tags = append(tags, "#평점좋은")
		default:
			tags = append(tags, "#무난한평점")
		}
	}

	if category != "" {
		tags = append(tags, "#"+category)
	}
	if preferred {
		tags = append(tags, "#내취향저격")
	}
	if strings.Contains(text, "점심") || strings.Contains(text, "런치") {
		tags = append(tags, "#점심메뉴")
	}
	if strings.Contains(text, "저녁") || strings.Contains(text, "디너") {
		tags = append(tags, "#저녁메뉴")
	}
	return tags
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
