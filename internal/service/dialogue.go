package service

import (
	"regexp"
	"strconv"
	"strings"

	"bridge/internal/model"
	"bridge/internal/utils"
)

// Step names one clarification question of the guided dialogue. The
// zero-based values order the fixed question sequence; StepReady is the
// terminal state and StepNone marks "no question outstanding".
type Step int

const (
	StepNone Step = iota - 1
	StepBudget
	StepUsage
	StepSize
	StepBrand
	StepYear
	StepCity
	StepReady
)

// dialogueSteps is the fixed question order scanned on every turn.
var dialogueSteps = []Step{StepBudget, StepUsage, StepSize, StepBrand, StepYear, StepCity}

// Prompt returns the Arabic clarification question for the step.
func (s Step) Prompt() string {
	switch s {
	case StepBudget:
		return "كم أقصى ميزانية عندك تقريبًا؟ (مثال: 60 ألف)"
	case StepUsage:
		return "وش استخدامك الأساسي للسيارة؟ (عائلي / دوام / مشاوير / بر)"
	case StepSize:
		return "تفضل سيارة صغيرة ولا متوسطة ولا كبيرة؟"
	case StepBrand:
		return "فيه ماركة معينة تفضلها؟ أو قول ما يهم."
	case StepYear:
		return "وش أقل موديل يناسبك؟ (مثال: 2018)"
	case StepCity:
		return "بأي مدينة تبي تدور؟"
	}
	return ""
}

// profile keys written by the dialogue normalizers.
const (
	profileUsage  = "usage"
	profileSize   = "size"
	profileBrand  = "brand"
	brandAnyValue = "any"
)

var usageKeywords = []struct{ keyword, value string }{
	{"عائل", "family"},
	{"دوام", "work"},
	{"عمل", "work"},
	{"مشاوير", "daily"},
	{"بر", "offroad"},
	{"رحلات", "offroad"},
	{"سفر", "travel"},
}

var sizeKeywords = []struct{ keyword, value string }{
	{"صغير", "small"},
	{"متوسط", "medium"},
	{"كبير", "large"},
	{"دفع رباعي", "suv"},
	{"جيب", "suv"},
}

// Small closed list for "any brand is fine" answers.
var noPreferenceWords = []string{"ما يهم", "مايهم", "اي شي", "أي شي", "ما عندي", "الكل", "مافرق", "ما فرق"}

var integerRegex = regexp.MustCompile(`\d+`)

// Plausible model-year window accepted by the year normalizer.
const (
	yearLowerBound = 1980
	yearUpperBound = 2035
)

// onboardingQuestion is one open-ended profiling question asked before
// the structured step list. Answers are kept verbatim as profile notes.
type onboardingQuestion struct {
	key    string
	prompt string
}

var onboardingQuestions = []onboardingQuestion{
	{"current_car", "يا هلا! أول شي، وش سيارتك الحالية؟"},
	{"priorities", "وش أهم شي تدور عليه بالسيارة الجاية؟ (أمان / اقتصادية / فخامة…)"},
	{profileUsage, "وش استخدامك الأساسي لها؟"},
	{profileSize, "تحب الحجم الصغير ولا الكبير؟"},
	{"condition", "تبيها جديدة ولا مستعملة؟"},
}

// DialogueController drives the guided clarification sequence: it
// normalizes step answers into the preference record or profile notes
// and decides which question, if any, is still open.
type DialogueController struct{}

// NewDialogueController creates a dialogue controller.
func NewDialogueController() *DialogueController {
	return &DialogueController{}
}

// NextStep scans the fixed step list in order and returns the first
// step whose criterion is still unanswered, or StepReady when the
// record is complete enough to search.
func (d *DialogueController) NextStep(p *model.Preferences, profile map[string]string) Step {
	for _, s := range dialogueSteps {
		if !stepSatisfied(s, p, profile) {
			return s
		}
	}
	return StepReady
}

func stepSatisfied(s Step, p *model.Preferences, profile map[string]string) bool {
	switch s {
	case StepBudget:
		return p.PriceMax != nil
	case StepUsage:
		return profile[profileUsage] != ""
	case StepSize:
		return profile[profileSize] != ""
	case StepBrand:
		return p.Make != nil || profile[profileBrand] != ""
	case StepYear:
		return p.YearMin != nil
	case StepCity:
		return p.City != nil
	}
	return true
}

// Apply parses the free-text answer for the given step and returns the
// updated preference record. Answers that do not map to a preference
// field land in the profile map. Unparseable answers change nothing,
// which leaves the step open and re-asks the question.
func (d *DialogueController) Apply(s Step, answer string, p *model.Preferences, profile map[string]string) *model.Preferences {
	t := utils.Normalize(answer)
	if t == "" {
		return p
	}

	next := &model.Preferences{}
	switch s {
	case StepBudget:
		if v, ok := firstInteger(t); ok && v > 0 {
			budget := scaleThousands(v)
			next.PriceMax = &budget
		}
	case StepUsage:
		if v, ok := matchKeyword(t, usageKeywords); ok {
			profile[profileUsage] = v
		}
	case StepSize:
		if v, ok := matchKeyword(t, sizeKeywords); ok {
			profile[profileSize] = v
		}
	case StepBrand:
		for _, b := range brandVocab {
			if strings.Contains(t, b.keyword) {
				canonical := b.canonical
				next.Make = &canonical
				return model.MergePreferences(p, next)
			}
		}
		for _, w := range noPreferenceWords {
			if strings.Contains(t, w) {
				profile[profileBrand] = brandAnyValue
				break
			}
		}
	case StepYear:
		if v, ok := firstInteger(t); ok && v >= yearLowerBound && v <= yearUpperBound {
			next.YearMin = &v
		}
	case StepCity:
		for _, c := range cityVocab {
			if strings.Contains(t, c) {
				city := c
				next.City = &city
				break
			}
		}
	}
	return model.MergePreferences(p, next)
}

// OnboardingDone reports whether all profiling questions were answered.
func (d *DialogueController) OnboardingDone(step int) bool {
	return step >= len(onboardingQuestions)
}

// OnboardingPrompt returns the profiling question at step.
func (d *DialogueController) OnboardingPrompt(step int) string {
	if step < 0 || step >= len(onboardingQuestions) {
		return ""
	}
	return onboardingQuestions[step].prompt
}

// RecordOnboardingAnswer stores the raw answer for the question at step
// as a profile note. The cursor only moves forward.
func (d *DialogueController) RecordOnboardingAnswer(step int, answer string, profile map[string]string) {
	if step < 0 || step >= len(onboardingQuestions) {
		return
	}
	profile[onboardingQuestions[step].key] = strings.TrimSpace(answer)
}

func firstInteger(t string) (int, bool) {
	m := integerRegex.FindString(t)
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

func matchKeyword(t string, vocab []struct{ keyword, value string }) (string, bool) {
	for _, kw := range vocab {
		if strings.Contains(t, kw.keyword) {
			return kw.value, true
		}
	}
	return "", false
}
