// Package bot runs the staff moderation bot on Telegram: it announces new reviews with an
// Approve button and answers a few commands in the staff chat.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"dhaba/config"
	"dhaba/models"
	"dhaba/services"
)

const (
	approvePrefix = "approve:"
	pendingLimit  = 10
)

// sender is the part of *tgbotapi.BotAPI the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api       *tgbotapi.BotAPI
	out       sender
	staffChat int64
	catalog   *services.CatalogService
	reviews   *services.ReviewService
	log       *zap.Logger

	// in-flight notifications; closed stops new ones once Close has begun
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func New(cfg config.TelegramConfig, catalog *services.CatalogService, reviews *services.ReviewService, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	b := newBot(api, cfg.StaffChatID, catalog, reviews, log)
	b.api = api
	log.Info("Telegram bot authorized", zap.String("username", api.Self.UserName))
	return b, nil
}

func newBot(out sender, staffChat int64, catalog *services.CatalogService, reviews *services.ReviewService, log *zap.Logger) *Bot {
	return &Bot{
		out:       out,
		staffChat: staffChat,
		catalog:   catalog,
		reviews:   reviews,
		log:       log,
	}
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "pending", Description: "Reviews waiting for approval"},
		tgbotapi.BotCommand{Command: "approve", Description: "Approve reviews by id"},
		tgbotapi.BotCommand{Command: "stats", Description: "Menu and review counts"},
	)
	_, err := b.out.Request(cfg)
	return err
}

// Run long-polls Telegram until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if b.api == nil {
		return fmt.Errorf("telegram bot not connected")
	}
	if err := b.setBotCommands(); err != nil {
		b.log.Warn("Failed to register bot commands", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.Close()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	if msg.Chat.ID != b.staffChat {
		b.log.Debug("Ignoring message from non-staff chat", zap.Int64("chat_id", msg.Chat.ID))
		return
	}

	cmd, args := splitCommand(msg.Text)
	switch cmd {
	case "start", "help":
		b.send(msg.Chat.ID, helpText)
	case "pending":
		b.handlePending(ctx, msg.Chat.ID)
	case "approve":
		b.handleApprove(ctx, msg.Chat.ID, args)
	case "stats":
		b.handleStats(ctx, msg.Chat.ID)
	}
}

const helpText = "Commands:\n/pending - reviews waiting for approval\n/approve <id> [id...] - approve reviews\n/stats - menu and review counts"

// splitCommand turns "/approve@DhabaBot 3 4" into ("approve", "3 4"). Non-commands give "".
func splitCommand(text string) (cmd, args string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(rest)
}

func (b *Bot) handlePending(ctx context.Context, chatID int64) {
	no := false
	pending, err := b.reviews.ListReviews(ctx, services.ReviewFilter{Approved: &no, Limit: pendingLimit})
	if err != nil {
		b.log.Error("List pending reviews", zap.Error(err))
		b.send(chatID, "Could not load reviews.")
		return
	}
	if len(pending) == 0 {
		b.send(chatID, "No reviews waiting for approval.")
		return
	}
	for i := range pending {
		b.sendWithInline(chatID, reviewCard(&pending[i]), approveKeyboard(pending[i].ID))
	}
}

func (b *Bot) handleApprove(ctx context.Context, chatID int64, args string) {
	ids, err := parseApproveArgs(args)
	if err != nil {
		b.send(chatID, err.Error()+"\nUsage: /approve <id> [id...]")
		return
	}
	n, err := b.reviews.ApproveReviews(ctx, ids)
	if err != nil {
		b.log.Error("Approve reviews", zap.Error(err))
		b.send(chatID, "Could not approve reviews.")
		return
	}
	b.send(chatID, approvedText(n))
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) {
	cc, err := b.catalog.Counts(ctx)
	if err != nil {
		b.log.Error("Catalog counts", zap.Error(err))
		b.send(chatID, "Could not load stats.")
		return
	}
	rc, err := b.reviews.Counts(ctx)
	if err != nil {
		b.log.Error("Review counts", zap.Error(err))
		b.send(chatID, "Could not load stats.")
		return
	}
	b.send(chatID, statsText(cc, rc))
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Message.Chat == nil || cq.Message.Chat.ID != b.staffChat {
		b.answer(cq.ID, "Unauthorized.")
		return
	}
	if !strings.HasPrefix(cq.Data, approvePrefix) {
		b.answer(cq.ID, "")
		return
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(cq.Data, approvePrefix), 10, 64)
	if err != nil || id <= 0 {
		b.answer(cq.ID, "Invalid review.")
		return
	}
	n, err := b.reviews.ApproveReviews(ctx, []int64{id})
	if err != nil {
		b.log.Error("Approve review from button", zap.Int64("review_id", id), zap.Error(err))
		b.answer(cq.ID, "Could not approve.")
		return
	}
	if n == 0 {
		b.answer(cq.ID, "Review no longer exists.")
		return
	}
	b.answer(cq.ID, "✅ Approved.")

	edit := tgbotapi.NewEditMessageText(cq.Message.Chat.ID, cq.Message.MessageID, cq.Message.Text+"\n\n✅ Approved")
	if _, err := b.out.Send(edit); err != nil {
		b.log.Warn("Edit review card", zap.Int64("review_id", id), zap.Error(err))
	}
}

// ReviewSubmitted posts the new review to the staff chat. Sending happens in the background.
func (b *Bot) ReviewSubmitted(_ context.Context, r *models.Review) {
	text, kb := reviewCard(r), approveKeyboard(r.ID)
	b.notify("review_submitted", func() {
		b.sendWithInline(b.staffChat, "New review waiting for approval\n\n"+text, kb)
	})
}

func (b *Bot) CatalogReseeded(_ context.Context, res *services.SeedResult) {
	text := fmt.Sprintf("Menu reseeded: %d categories, %d items.", res.Categories, res.Items)
	b.notify("catalog_reseeded", func() { b.send(b.staffChat, text) })
}

func (b *Bot) notify(kind string, fn func()) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.log.Warn("Bot closed, notification dropped", zap.String("kind", kind))
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		fn()
	}()
}

// Close stops accepting notifications and waits for those already queued.
func (b *Bot) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.out.Send(msg); err != nil {
		b.log.Warn("Telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendWithInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.out.Send(msg); err != nil {
		b.log.Warn("Telegram send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.out.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Debug("Answer callback failed", zap.Error(err))
	}
}

func approveKeyboard(reviewID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", approvePrefix+strconv.FormatInt(reviewID, 10)),
		),
	)
}

func reviewCard(r *models.Review) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Review #%d  %s (%d/5)\n", r.ID, r.Stars(), r.Rating)
	sb.WriteString(r.ReviewerName)
	if r.Source != "" {
		fmt.Fprintf(&sb, " via %s", r.Source)
	}
	sb.WriteString("\n\n")
	sb.WriteString(r.Body)
	return sb.String()
}

func approvedText(n int64) string {
	return fmt.Sprintf("%d review(s) approved.", n)
}

func statsText(cc *services.CatalogCounts, rc *services.ReviewCounts) string {
	return fmt.Sprintf("Menu: %d categories, %d items (%d available, %d featured, %d need verification)\nReviews: %d total, %d approved, %d pending",
		cc.Categories, cc.Items, cc.Available, cc.Featured, cc.NeedsVerification,
		rc.Total, rc.Approved, rc.Pending)
}

// parseApproveArgs accepts ids separated by spaces or commas.
func parseApproveArgs(args string) ([]int64, error) {
	fields := strings.FieldsFunc(args, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 0 {
		return nil, fmt.Errorf("no review ids given")
	}
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid review id %q", f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
