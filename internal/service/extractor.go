package service

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"bridge/internal/model"
	"bridge/internal/utils"
)

// brandAlias binds a matchable keyword to its canonical brand value.
// Aliases are probed in declaration order; the first hit wins and at
// most one brand is extracted per text.
type brandAlias struct {
	keyword   string
	canonical string
}

var brandVocab = []brandAlias{
	{"تويوتا", "تويوتا"},
	{"نيسان", "نيسان"},
	{"هوندا", "هوندا"},
	{"هيونداي", "هيونداي"},
	{"كيا", "كيا"},
	{"لكزس", "لكزس"},
	{"مرسيدس", "مرسيدس"},
	{"بي ام", "بي ام"},
	{"bmw", "بي ام"},
	{"شفر", "شفر"},
	{"فورد", "فورد"},
	{"مازدا", "مازدا"},
	{"جيب", "جيب"},
	{"دودج", "دودج"},
	{"شيري", "شيري"},
	{"جيلي", "جيلي"},
}

var cityVocab = []string{
	"الرياض", "جدة", "الدمام", "الخبر", "مكة", "المدينة",
	"بريدة", "الطائف", "أبها", "حائل", "ينبع", "جازان",
}

// Tokens that may directly follow a brand name without being a model
// (prepositions and the dialogue skip word).
var modelStopWords = map[string]bool{
	"تحت":  true,
	"من":   true,
	"الى":  true,
	"إلى":  true,
	"فوق":  true,
	"عن":   true,
	"تخطي": true,
}

var (
	autoGearWords   = []string{"اوتومات", "أوتومات", "اوتو"}
	manualGearWords = []string{"عادي", "مانيوال"}

	// Ordered: hybrid before electric before diesel before gasoline so
	// overlapping substrings cannot shadow each other.
	fuelVocab = []struct{ keyword, canonical string }{
		{"هايبرد", "هايبرد"},
		{"كهرب", "كهرب"},
		{"ديزل", "ديزل"},
		{"بنزين", "بنزين"},
	}
)

var (
	yearRegex       = regexp.MustCompile(`20\d{2}`)
	priceUnderRegex = regexp.MustCompile(`تحت\s*(\d+)`)
	priceRangeRegex = regexp.MustCompile(`من\s*(\d+)\s*(?:الف|ألف)?\s*(?:الى|إلى|-)\s*(\d+)`)
	numberRegex     = regexp.MustCompile(`^\d+$`)
)

// Extractor scans free text against the fixed vehicle vocabularies and
// produces a partially filled preference record. Extraction never
// fails: whatever cannot be recognized is simply left unset.
type Extractor struct{}

// NewExtractor creates a new lexical extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses one turn of user text into preferences.
func (e *Extractor) Extract(text string) *model.Preferences {
	t := utils.Normalize(text)
	p := &model.Preferences{}
	if t == "" {
		return p
	}

	e.extractBrand(t, p)
	e.extractGear(t, p)
	e.extractFuel(t, p)
	e.extractYears(t, p)
	e.extractPrice(t, p)
	e.extractCity(t, p)

	return p
}

func (e *Extractor) extractBrand(t string, p *model.Preferences) {
	for _, b := range brandVocab {
		idx := strings.Index(t, b.keyword)
		if idx < 0 {
			continue
		}
		canonical := b.canonical
		p.Make = &canonical
		e.extractModel(t[idx+len(b.keyword):], p)
		return
	}
}

// extractModel takes the token immediately after the brand match,
// rejecting prepositions and bare numbers (a trailing year or price is
// not a model name).
func (e *Extractor) extractModel(rest string, p *model.Preferences) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return
	}
	tok := fields[0]
	if modelStopWords[tok] || numberRegex.MatchString(tok) {
		return
	}
	p.Model = &tok
}

func (e *Extractor) extractGear(t string, p *model.Preferences) {
	for _, w := range autoGearWords {
		if strings.Contains(t, w) {
			gear := "اوتوماتيك"
			p.Gear = &gear
			return
		}
	}
	for _, w := range manualGearWords {
		if strings.Contains(t, w) {
			gear := "عادي"
			p.Gear = &gear
			return
		}
	}
}

func (e *Extractor) extractFuel(t string, p *model.Preferences) {
	for _, f := range fuelVocab {
		if strings.Contains(t, f.keyword) {
			canonical := f.canonical
			p.Fuel = &canonical
			return
		}
	}
}

// extractYears picks up to two 4-digit tokens starting with "20" and
// assigns them sorted ascending; a single token becomes the minimum.
func (e *Extractor) extractYears(t string, p *model.Preferences) {
	matches := yearRegex.FindAllString(t, 2)
	switch len(matches) {
	case 0:
		return
	case 1:
		y, _ := strconv.Atoi(matches[0])
		p.YearMin = &y
	default:
		a, _ := strconv.Atoi(matches[0])
		b, _ := strconv.Atoi(matches[1])
		years := []int{a, b}
		sort.Ints(years)
		p.YearMin = &years[0]
		p.YearMax = &years[1]
	}
}

// extractPrice applies the two price patterns. The "from A to B" range
// is matched last and overwrites a "under N" hit on the same text.
func (e *Extractor) extractPrice(t string, p *model.Preferences) {
	if m := priceUnderRegex.FindStringSubmatch(t); m != nil {
		val, _ := strconv.Atoi(m[1])
		val = scaleThousands(val)
		p.PriceMax = &val
	}
	if m := priceRangeRegex.FindStringSubmatch(t); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		lo = scaleThousands(lo)
		hi = scaleThousands(hi)
		p.PriceMin = &lo
		p.PriceMax = &hi
	}
}

// scaleThousands treats small numbers as thousands of riyals; values of
// 1000 and above are assumed to already be in full units.
func scaleThousands(v int) int {
	if v < 1000 {
		return v * 1000
	}
	return v
}

func (e *Extractor) extractCity(t string, p *model.Preferences) {
	for _, c := range cityVocab {
		if strings.Contains(t, c) {
			city := c
			p.City = &city
			return
		}
	}
}
