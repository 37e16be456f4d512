package leaderboard

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Navigation reactions the bot attaches to its own leaderboard replies.
// They are paging input, never usage data.
const (
	BackReaction    = "⬅️"
	ForwardReaction = "➡️"
)

// IsNavigation reports whether an emote name is one of the paging arrows.
func IsNavigation(emote string) bool {
	return emote == BackReaction || emote == ForwardReaction
}

// NavClient is the subset of the platform client the pager calls.
type NavClient interface {
	EditMessage(ctx context.Context, channelID, messageID, content string) error
	DeleteReaction(ctx context.Context, channelID, messageID, userID, emote string) error
}

// Pager owns the page state of every outstanding leaderboard message. The
// mutex is held across the whole read-modify-render-edit span of a
// navigation event, so two clicks on the same message never compute from a
// stale page. Entries are never removed; message IDs are not reused.
type Pager struct {
	mu     sync.Mutex
	pages  map[string]int
	view   *Service
	client NavClient
}

func NewPager(view *Service, client NavClient) *Pager {
	return &Pager{
		pages:  make(map[string]int),
		view:   view,
		client: client,
	}
}

// Track registers a freshly sent leaderboard message at page zero.
func (p *Pager) Track(messageID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.pages[messageID]; !ok {
		p.pages[messageID] = 0
	}
}

// Page returns the current page for a tracked message.
func (p *Pager) Page(messageID string) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	page, ok := p.pages[messageID]
	return page, ok
}

// HandleNavigation processes one paging click. The page number is committed
// only after a successful render and edit; any failure leaves the displayed
// message and the stored page exactly as they were. The triggering reaction
// is deleted in every handled case so the arrow stays reusable.
func (p *Pager) HandleNavigation(ctx context.Context, channelID, messageID, userID, emote string, fromBot bool) {
	if fromBot {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	page, ok := p.pages[messageID]
	if !ok {
		log.Warn().Str("messageId", messageID).Msg("Navigation reaction on untracked message")
		return
	}

	switch emote {
	case BackReaction:
		if page == 0 {
			// Cannot go before the first page.
			p.dismiss(ctx, channelID, messageID, userID, emote)
			return
		}
		p.transition(ctx, channelID, messageID, userID, emote, page-1)
	case ForwardReaction:
		p.transition(ctx, channelID, messageID, userID, emote, page+1)
	}
}

// transition attempts to move a tracked message to the given page.
// Caller holds p.mu.
func (p *Pager) transition(ctx context.Context, channelID, messageID, userID, emote string, next int) {
	content, err := p.view.RenderPage(ctx, next)
	if err != nil {
		log.Error().Err(err).Int("page", next).Msg("Failed to render leaderboard page")
		p.dismiss(ctx, channelID, messageID, userID, emote)
		return
	}

	if content == "" {
		// Past the last page; keep the current one.
		p.dismiss(ctx, channelID, messageID, userID, emote)
		return
	}

	if err := p.client.EditMessage(ctx, channelID, messageID, content); err != nil {
		log.Error().Err(err).Str("messageId", messageID).Msg("Failed to edit leaderboard message")
		p.dismiss(ctx, channelID, messageID, userID, emote)
		return
	}

	p.pages[messageID] = next
	p.dismiss(ctx, channelID, messageID, userID, emote)
}

func (p *Pager) dismiss(ctx context.Context, channelID, messageID, userID, emote string) {
	if err := p.client.DeleteReaction(ctx, channelID, messageID, userID, emote); err != nil {
		log.Error().Err(err).Str("messageId", messageID).Msg("Failed to delete navigation reaction")
	}
}
