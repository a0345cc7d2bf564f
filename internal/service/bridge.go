package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"bridge/internal/model"
	"bridge/internal/repository"
	"bridge/internal/utils"
)

// Dialogue modes.
const (
	ModeOff        = "off"
	ModeGuided     = "guided"
	ModeOnboarding = "onboarding"
)

// Phrases that wipe the conversation's criteria. Checked before any
// other processing of the turn.
var resetPhrases = []string{"امسح", "ابدأ من جديد", "ابدا من جديد", "reset", "مسح الشروط"}

// BridgeOptions tunes the per-turn pipeline.
type BridgeOptions struct {
	// Mode selects free-text only (off), the clarification sequence
	// (guided) or profiling questions first (onboarding).
	Mode string
	// Page and Limit parameterize the outbound search call.
	Page  int
	Limit int
	// DisplayLimit caps how many results one reply renders.
	DisplayLimit int
}

// Bridge runs the conversational pipeline for one turn: reset check,
// extraction, merge, optional guided dialogue, filter compilation,
// search and rendering, with the session store updated on the way.
type Bridge struct {
	store     SessionStore
	extractor *Extractor
	dialogue  *DialogueController
	searcher  Searcher
	repo      *repository.PostgresRepository
	opts      BridgeOptions
}

// NewBridge wires the turn pipeline. repo may be nil; turn logging is
// then disabled.
func NewBridge(store SessionStore, extractor *Extractor, dialogue *DialogueController, searcher Searcher, repo *repository.PostgresRepository, opts BridgeOptions) *Bridge {
	if opts.Mode == "" {
		opts.Mode = ModeOff
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.DisplayLimit <= 0 {
		opts.DisplayLimit = 5
	}
	return &Bridge{
		store:     store,
		extractor: extractor,
		dialogue:  dialogue,
		searcher:  searcher,
		repo:      repo,
		opts:      opts,
	}
}

// IsReset reports whether the turn text contains a reset trigger.
func IsReset(text string) bool {
	t := utils.Normalize(text)
	for _, phrase := range resetPhrases {
		if strings.Contains(t, phrase) {
			return true
		}
	}
	return false
}

// HandleTurn processes one conversational turn and returns the reply
// text. It never returns an error: every failure becomes reply text.
func (b *Bridge) HandleTurn(ctx context.Context, msg *model.TurnRequest) string {
	if IsReset(msg.Text) {
		b.store.Reset(msg.ConversationID)
		return MsgReset
	}

	sess := b.store.GetOrCreate(msg.ConversationID)
	prefs := model.MergePreferences(sess.Prefs, b.extractor.Extract(msg.Text))

	switch b.opts.Mode {
	case ModeOnboarding:
		if !b.dialogue.OnboardingDone(sess.OnboardingStep) {
			if sess.OnboardingAsked {
				b.dialogue.RecordOnboardingAnswer(sess.OnboardingStep, msg.Text, sess.Profile)
				sess.OnboardingStep++
			}
			if !b.dialogue.OnboardingDone(sess.OnboardingStep) {
				sess.Prefs = prefs
				sess.OnboardingAsked = true
				prompt := b.dialogue.OnboardingPrompt(sess.OnboardingStep)
				b.store.Put(msg.ConversationID, sess)
				return prompt
			}
		}
		return b.guidedTurn(ctx, msg, sess, prefs)
	case ModeGuided:
		return b.guidedTurn(ctx, msg, sess, prefs)
	default:
		sess.Prefs = prefs
		b.store.Put(msg.ConversationID, sess)
		return b.search(ctx, msg, prefs)
	}
}

// guidedTurn consumes the turn text as the answer to the pending
// clarification step, then either asks the next open question or
// proceeds to search.
func (b *Bridge) guidedTurn(ctx context.Context, msg *model.TurnRequest, sess *Session, prefs *model.Preferences) string {
	if sess.Pending != StepNone {
		prefs = b.dialogue.Apply(sess.Pending, msg.Text, prefs, sess.Profile)
	}
	sess.Prefs = prefs

	next := b.dialogue.NextStep(prefs, sess.Profile)
	if next != StepReady {
		sess.Pending = next
		b.store.Put(msg.ConversationID, sess)
		return next.Prompt()
	}

	sess.Pending = StepNone
	b.store.Put(msg.ConversationID, sess)
	return b.search(ctx, msg, prefs)
}

// search compiles the accumulated record, executes the query and
// renders the reply, mapping errors onto the conversational messages.
func (b *Bridge) search(ctx context.Context, msg *model.TurnRequest, prefs *model.Preferences) string {
	startTime := time.Now()
	filters := CompileFilters(prefs)

	var reply string
	resultCount := 0
	result, err := b.searcher.Search(ctx, filters, b.opts.Page, b.opts.Limit)
	switch {
	case errors.Is(err, ErrRateLimited):
		reply = MsgRateLimited
	case err != nil:
		log.Printf("search failed for conversation %s: %v", msg.ConversationID, err)
		reply = MsgSearchFailed
	default:
		resultCount = len(result.Items)
		reply = FormatResults(result.Items, b.opts.DisplayLimit)
	}

	if summary := FormatSummary(prefs); summary != "" {
		reply += "\n\n" + summary
	}

	b.logTurn(msg, prefs, filters, resultCount, len(reply), time.Since(startTime))
	return reply
}

// logTurn records the turn for analytics, off the reply path.
func (b *Bridge) logTurn(msg *model.TurnRequest, prefs *model.Preferences, filters map[string]any, resultCount, replyChars int, took time.Duration) {
	if b.repo == nil {
		return
	}
	entry := model.TurnLog{
		TurnID:         uuid.NewString(),
		ConversationID: msg.ConversationID,
		UserID:         msg.UserID,
		Query:          msg.Text,
		Prefs:          prefs,
		Filters:        filters,
		ResultCount:    resultCount,
		ReplyChars:     replyChars,
		ResponseTimeMs: int(took.Milliseconds()),
	}
	go func() {
		if err := b.repo.LogTurn(context.Background(), entry); err != nil {
			log.Printf("failed to log turn: %v", err)
		}
	}()
}
