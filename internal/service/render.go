package service

import (
	"fmt"
	"strconv"
	"strings"

	"bridge/internal/model"
)

// User-facing reply fragments. The conversational contract is Arabic
// text only; failures are delivered through these, never as HTTP errors.
const (
	MsgNoResults    = "ما لقيت نتائج على المواصفات الحالية. تبي أوسع البحث أو أعدّل الشروط؟"
	MsgReset        = "تم مسح الشروط. قول مواصفاتك من جديد (ماركة/موديل/سعر/مدينة/سنة…)."
	MsgRateLimited  = "فيه ضغط على خدمة حراج الآن. جرّب بعد لحظات."
	MsgSearchFailed = "صار خطأ أثناء البحث. حاول مرة ثانية."
	MsgNeutralAck   = "أرسل مواصفات السيارة اللي تبيها (ماركة/موديل/سعر/مدينة/سنة…)."
)

// FormatResults renders at most limit listings as one block per item,
// separated by blank lines. An empty result set gets the no-results
// message instead.
func FormatResults(items []model.Listing, limit int) string {
	if len(items) == 0 {
		return MsgNoResults
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	lines := make([]string, 0, len(items))
	for _, it := range items {
		car := it.Car
		if car == nil {
			car = &model.Car{}
		}
		title := it.Title
		if title == "" {
			title = strings.TrimSpace(car.Make + " " + car.Model)
		}
		price := "—"
		if it.Price > 0 {
			price = strconv.Itoa(it.Price)
		}
		city := ""
		if it.City != nil {
			city = it.City.Name
		}
		lines = append(lines, fmt.Sprintf("• %s — سنة %d — %s ريال — %s — %s/%s\n%s",
			title, car.Year, price, city, car.Fuel, car.Gear, it.URL))
	}
	return strings.Join(lines, "\n\n")
}

// FormatSummary renders the accumulated criteria as a one-line suffix,
// or "" when nothing is set yet. Field order is fixed.
func FormatSummary(p *model.Preferences) string {
	if p == nil {
		return ""
	}
	var bits []string
	add := func(key, val string) {
		bits = append(bits, key+":"+val)
	}
	if p.Make != nil {
		add("make", *p.Make)
	}
	if p.Model != nil {
		add("model", *p.Model)
	}
	if p.City != nil {
		add("city", *p.City)
	}
	if p.YearMin != nil {
		add("year_min", strconv.Itoa(*p.YearMin))
	}
	if p.YearMax != nil {
		add("year_max", strconv.Itoa(*p.YearMax))
	}
	if p.PriceMin != nil {
		add("price_min", strconv.Itoa(*p.PriceMin))
	}
	if p.PriceMax != nil {
		add("price_max", strconv.Itoa(*p.PriceMax))
	}
	if p.Gear != nil {
		add("gear", *p.Gear)
	}
	if p.Fuel != nil {
		add("fuel", *p.Fuel)
	}
	if len(bits) == 0 {
		return ""
	}
	return "— الشروط الحالية: " + strings.Join(bits, " | ")
}
