package service

import (
	"context"
	"strings"
	"testing"

	"bridge/internal/model"
)

// fakeSearcher records calls and plays back a scripted result.
type fakeSearcher struct {
	calls  []map[string]any
	result *model.SearchResult
	err    error
}

func (f *fakeSearcher) Search(ctx context.Context, filters map[string]any, page, limit int) (*model.SearchResult, error) {
	f.calls = append(f.calls, filters)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &model.SearchResult{}, nil
}

func newTestBridge(searcher Searcher, mode string) (*Bridge, SessionStore) {
	store := NewMemoryStore()
	b := NewBridge(store, NewExtractor(), NewDialogueController(), searcher, nil, BridgeOptions{
		Mode:         mode,
		Page:         1,
		Limit:        10,
		DisplayLimit: 5,
	})
	return b, store
}

func turn(conv, text string) *model.TurnRequest {
	return &model.TurnRequest{UserID: "u1", ConversationID: conv, Text: text}
}

func TestHandleTurn_AccumulatesAcrossTurns(t *testing.T) {
	fake := &fakeSearcher{}
	b, _ := newTestBridge(fake, ModeOff)

	b.HandleTurn(context.Background(), turn("c1", "ابي تويوتا"))
	b.HandleTurn(context.Background(), turn("c1", "تحت 60"))

	if len(fake.calls) != 2 {
		t.Fatalf("expected 2 searches, got %d", len(fake.calls))
	}
	second := fake.calls[1]
	if second["make"] != "تويوتا" {
		t.Errorf("make = %v, want تويوتا", second["make"])
	}
	if second["priceMax"] != 60000 {
		t.Errorf("priceMax = %v, want 60000", second["priceMax"])
	}
	if _, ok := second["cityName"]; ok {
		t.Error("city should still be absent")
	}
}

func TestHandleTurn_ConversationsAreIsolated(t *testing.T) {
	fake := &fakeSearcher{}
	b, _ := newTestBridge(fake, ModeOff)

	b.HandleTurn(context.Background(), turn("c1", "تويوتا"))
	b.HandleTurn(context.Background(), turn("c2", "نيسان"))

	if fake.calls[0]["make"] != "تويوتا" || fake.calls[1]["make"] != "نيسان" {
		t.Errorf("conversations interfered: %v / %v", fake.calls[0], fake.calls[1])
	}
}

func TestHandleTurn_ResetClearsEverything(t *testing.T) {
	fake := &fakeSearcher{}
	b, store := newTestBridge(fake, ModeOff)

	b.HandleTurn(context.Background(), turn("c1", "تويوتا تحت 60 الرياض"))
	reply := b.HandleTurn(context.Background(), turn("c1", "ابدأ من جديد"))

	if reply != MsgReset {
		t.Errorf("reset reply = %q, want reset message", reply)
	}
	searches := len(fake.calls)
	if searches != 1 {
		t.Errorf("reset turn should not search, got %d searches", searches)
	}
	if !store.GetOrCreate("c1").Prefs.IsEmpty() {
		t.Errorf("session prefs not cleared: %+v", store.GetOrCreate("c1").Prefs)
	}

	// Reset wins even when the turn also carries criteria.
	b.HandleTurn(context.Background(), turn("c1", "نيسان"))
	reply = b.HandleTurn(context.Background(), turn("c1", "نيسان reset"))
	if reply != MsgReset {
		t.Errorf("embedded reset ignored, reply = %q", reply)
	}
	if !store.GetOrCreate("c1").Prefs.IsEmpty() {
		t.Error("session should be empty after embedded reset")
	}
}

func TestHandleTurn_RateLimitedReply(t *testing.T) {
	fake := &fakeSearcher{err: ErrRateLimited}
	b, _ := newTestBridge(fake, ModeOff)

	reply := b.HandleTurn(context.Background(), turn("c1", "تويوتا"))
	if !strings.Contains(reply, MsgRateLimited) {
		t.Errorf("reply = %q, want rate-limit message", reply)
	}
}

func TestHandleTurn_QueryErrorReply(t *testing.T) {
	fake := &fakeSearcher{err: &QueryError{Status: 400, Detail: "bad filter"}}
	b, _ := newTestBridge(fake, ModeOff)

	reply := b.HandleTurn(context.Background(), turn("c1", "تويوتا"))
	if !strings.Contains(reply, MsgSearchFailed) {
		t.Errorf("reply = %q, want search-failed message", reply)
	}
}

func TestHandleTurn_EmptyResults(t *testing.T) {
	fake := &fakeSearcher{result: &model.SearchResult{}}
	b, _ := newTestBridge(fake, ModeOff)

	reply := b.HandleTurn(context.Background(), turn("c1", "تويوتا"))
	if !strings.Contains(reply, MsgNoResults) {
		t.Errorf("reply = %q, want no-results message", reply)
	}
}

func TestHandleTurn_AppendsSummary(t *testing.T) {
	fake := &fakeSearcher{result: &model.SearchResult{Total: 1, Items: []model.Listing{sampleListing(1)}}}
	b, _ := newTestBridge(fake, ModeOff)

	reply := b.HandleTurn(context.Background(), turn("c1", "تويوتا تحت 60"))
	if !strings.Contains(reply, "— الشروط الحالية: ") {
		t.Errorf("reply missing summary suffix: %q", reply)
	}
	if !strings.Contains(reply, "make:تويوتا") {
		t.Errorf("summary missing make: %q", reply)
	}
}

func TestHandleTurn_GuidedAsksQuestionsInOrder(t *testing.T) {
	fake := &fakeSearcher{}
	b, _ := newTestBridge(fake, ModeGuided)
	ctx := context.Background()

	reply := b.HandleTurn(ctx, turn("c1", "ابي سيارة"))
	if reply != StepBudget.Prompt() {
		t.Fatalf("first question = %q, want budget prompt", reply)
	}

	reply = b.HandleTurn(ctx, turn("c1", "60"))
	if reply != StepUsage.Prompt() {
		t.Fatalf("second question = %q, want usage prompt", reply)
	}

	reply = b.HandleTurn(ctx, turn("c1", "عائلي"))
	if reply != StepSize.Prompt() {
		t.Fatalf("third question = %q, want size prompt", reply)
	}

	reply = b.HandleTurn(ctx, turn("c1", "متوسطة"))
	if reply != StepBrand.Prompt() {
		t.Fatalf("fourth question = %q, want brand prompt", reply)
	}

	reply = b.HandleTurn(ctx, turn("c1", "ما يهم"))
	if reply != StepYear.Prompt() {
		t.Fatalf("fifth question = %q, want year prompt", reply)
	}

	reply = b.HandleTurn(ctx, turn("c1", "2018"))
	if reply != StepCity.Prompt() {
		t.Fatalf("sixth question = %q, want city prompt", reply)
	}

	if len(fake.calls) != 0 {
		t.Fatalf("no search should run before the record is complete, got %d", len(fake.calls))
	}

	// Last answer completes the record and triggers the search.
	b.HandleTurn(ctx, turn("c1", "الرياض"))
	if len(fake.calls) != 1 {
		t.Fatalf("expected exactly one search, got %d", len(fake.calls))
	}
	filters := fake.calls[0]
	if filters["priceMax"] != 60000 || filters["yearMin"] != 2018 || filters["cityName"] != "الرياض" {
		t.Errorf("compiled filters = %v", filters)
	}
	if _, ok := filters["make"]; ok {
		t.Error("no-preference brand should not compile a make filter")
	}
}

func TestHandleTurn_GuidedSkipsAnsweredSteps(t *testing.T) {
	fake := &fakeSearcher{}
	b, _ := newTestBridge(fake, ModeGuided)
	ctx := context.Background()

	// The opening turn already carries budget, brand, year and city.
	reply := b.HandleTurn(ctx, turn("c1", "تويوتا 2018 الرياض تحت 70"))
	if reply != StepUsage.Prompt() {
		t.Fatalf("first open step should be usage, got %q", reply)
	}

	b.HandleTurn(ctx, turn("c1", "دوام"))
	reply = b.HandleTurn(ctx, turn("c1", "صغيرة"))

	if len(fake.calls) != 1 {
		t.Fatalf("expected search after last open step, got %d", len(fake.calls))
	}
	if fake.calls[0]["make"] != "تويوتا" {
		t.Errorf("make = %v", fake.calls[0]["make"])
	}
	if !strings.Contains(reply, "— الشروط الحالية: ") {
		t.Errorf("search reply missing summary: %q", reply)
	}
}

func TestHandleTurn_GuidedReAsksOnUnparseableAnswer(t *testing.T) {
	fake := &fakeSearcher{}
	b, _ := newTestBridge(fake, ModeGuided)
	ctx := context.Background()

	b.HandleTurn(ctx, turn("c1", "ابي سيارة"))
	reply := b.HandleTurn(ctx, turn("c1", "والله ما ادري"))
	if reply != StepBudget.Prompt() {
		t.Errorf("expected budget re-ask, got %q", reply)
	}
}

func TestHandleTurn_OnboardingAsksProfileQuestionsFirst(t *testing.T) {
	fake := &fakeSearcher{}
	b, store := newTestBridge(fake, ModeOnboarding)
	ctx := context.Background()

	d := NewDialogueController()
	reply := b.HandleTurn(ctx, turn("c1", "هلا"))
	if reply != d.OnboardingPrompt(0) {
		t.Fatalf("first reply = %q, want first profiling question", reply)
	}

	answers := []string{"كامري 2012", "اقتصادية", "عائلي", "كبيرة", "مستعملة"}
	var last string
	for _, ans := range answers {
		last = b.HandleTurn(ctx, turn("c1", ans))
	}

	// After profiling, the structured sequence begins at budget.
	if last != StepBudget.Prompt() {
		t.Fatalf("post-onboarding reply = %q, want budget prompt", last)
	}

	sess := store.GetOrCreate("c1")
	if sess.Profile["current_car"] != "كامري 2012" {
		t.Errorf("current_car = %q", sess.Profile["current_car"])
	}
	if sess.Profile["condition"] != "مستعملة" {
		t.Errorf("condition = %q", sess.Profile["condition"])
	}
	if len(fake.calls) != 0 {
		t.Errorf("no search expected during onboarding, got %d", len(fake.calls))
	}
}

func TestHandleTurn_ResetDuringGuidedDialogue(t *testing.T) {
	fake := &fakeSearcher{}
	b, store := newTestBridge(fake, ModeGuided)
	ctx := context.Background()

	b.HandleTurn(ctx, turn("c1", "ابي سيارة"))
	b.HandleTurn(ctx, turn("c1", "60"))
	reply := b.HandleTurn(ctx, turn("c1", "مسح الشروط"))

	if reply != MsgReset {
		t.Fatalf("reset reply = %q", reply)
	}
	sess := store.GetOrCreate("c1")
	if !sess.Prefs.IsEmpty() || len(sess.Profile) != 0 || sess.Pending != StepNone {
		t.Errorf("session not fully cleared: %+v", sess)
	}

	// The next turn starts the dialogue over from the first step.
	reply = b.HandleTurn(ctx, turn("c1", "ابي سيارة"))
	if reply != StepBudget.Prompt() {
		t.Errorf("expected dialogue restart at budget, got %q", reply)
	}
}
