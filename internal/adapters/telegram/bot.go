// Package telegram is the presentation layer: it wires the resolution core
// to Telegram messages, inline keyboards and callback queries.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mehranbolhasani/weekeepediabot/internal/core/domain"
	"github.com/mehranbolhasani/weekeepediabot/internal/core/ports"
	"github.com/mehranbolhasani/weekeepediabot/internal/core/usecase"
	"github.com/mehranbolhasani/weekeepediabot/internal/observability/metrics"
)

const (
	serviceName = "bot"

	callbackActionOpen   = "wiki"
	callbackActionLonger = "longer"

	greeting = "🔍 *Welcome to Wikipedia Bot!*\n\n" +
		"📚 Just send me any topic and I'll find the Wikipedia article for you!\n\n" +
		"✨ *Examples:*\n• Pink Floyd\n• Artificial Intelligence\n• Albert Einstein\n\n" +
		"Use /search <topic> to pick from matching articles yourself."

	notFoundGuidance = "💡 *Try:*\n• Being more specific\n• Using the full name\n• Checking your spelling\n• Searching for a related topic"

	// Telegram caps photo captions well below the message limit.
	captionMaxLen = 1024
)

// apiSender is the slice of *tgbotapi.BotAPI the handler needs; tests plug
// in a recorder.
type apiSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api       apiSender
	updates   tgbotapi.UpdatesChannel
	stop      func()
	resolver  ports.TopicResolver
	formatter *usecase.Formatter
	longForm  *usecase.Formatter
	chunker   ports.Chunker
	pending   *PendingStore
	queue     ports.EventQueue
	limiter   *rate.Limiter
	metrics   *metrics.BotMetrics
}

type BotOptions struct {
	Resolver      ports.TopicResolver
	Formatter     *usecase.Formatter
	LongFormatter *usecase.Formatter
	Chunker       ports.Chunker
	Pending       *PendingStore
	Queue         ports.EventQueue
	Metrics       *metrics.BotMetrics
	// SendsPerSecond bounds outbound messages; Telegram throttles bots
	// around 30 messages per second across all chats.
	SendsPerSecond float64
}

func New(token string, opts BotOptions) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	bot := newBot(api, opts)
	bot.updates = api.GetUpdatesChan(updateConfig)
	bot.stop = api.StopReceivingUpdates
	return bot, nil
}

func newBot(api apiSender, opts BotOptions) *Bot {
	sendsPerSecond := opts.SendsPerSecond
	if sendsPerSecond <= 0 {
		sendsPerSecond = 25
	}
	pending := opts.Pending
	if pending == nil {
		pending = NewPendingStore(0)
	}
	return &Bot{
		api:       api,
		resolver:  opts.Resolver,
		formatter: opts.Formatter,
		longForm:  opts.LongFormatter,
		chunker:   opts.Chunker,
		pending:   pending,
		queue:     opts.Queue,
		limiter:   rate.NewLimiter(rate.Limit(sendsPerSecond), 5),
		metrics:   opts.Metrics,
	}
}

// Run consumes updates until ctx is cancelled. Each update is handled in its
// own goroutine; the core is stateless so concurrent resolutions are safe.
func (b *Bot) Run(ctx context.Context) error {
	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()
	if b.stop != nil {
		defer b.stop()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sweep.C:
			if removed := b.pending.Sweep(); removed > 0 {
				slog.Debug("pending_choices_swept", "removed", removed)
			}
		case update, ok := <-b.updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil && strings.TrimSpace(update.Message.Text) != "":
		b.resolveAndReply(ctx, update.Message.Chat.ID, update.Message.Text, false)
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.sendText(ctx, message.Chat.ID, greeting, nil)
	case "search":
		query := strings.TrimSpace(message.CommandArguments())
		if query == "" {
			b.sendText(ctx, message.Chat.ID, "Usage: /search <topic>", nil)
			return
		}
		b.resolveAndReply(ctx, message.Chat.ID, query, true)
	default:
		b.sendText(ctx, message.Chat.ID, "Unknown command. Send me a topic instead!", nil)
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		slog.Warn("callback_ack_failed", "error", err)
	}
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	action, key, ok := parseCallbackData(callback.Data)
	if !ok {
		return
	}
	if b.metrics != nil {
		b.metrics.CallbackHandled(serviceName, action)
	}

	title, ok := b.pending.Get(key)
	if !ok {
		b.sendText(ctx, chatID, "🤔 That choice expired. Send the topic again!", nil)
		return
	}

	switch action {
	case callbackActionOpen:
		b.resolveAndReply(ctx, chatID, title, false)
	case callbackActionLonger:
		b.sendLongerSummary(ctx, chatID, title)
	}
}

// resolveAndReply runs the core resolution and renders whichever outcome it
// produced. choices selects the explicit-choice flow used by /search.
func (b *Bot) resolveAndReply(ctx context.Context, chatID int64, query string, choices bool) {
	start := time.Now()
	var outcome domain.Outcome
	if choices {
		outcome = b.resolver.ResolveChoices(ctx, query)
	} else {
		outcome = b.resolver.Resolve(ctx, query)
	}
	if b.metrics != nil {
		b.metrics.RecordResolution(serviceName, string(outcome.Status), time.Since(start))
	}
	b.publishLookup(ctx, outcome)

	switch outcome.Status {
	case domain.StatusResolved:
		b.sendArticle(ctx, chatID, outcome.Article, b.formatter)
	case domain.StatusAmbiguous:
		b.sendOptions(ctx, chatID,
			fmt.Sprintf("🔀 *%s* matches several articles. Pick one:", escapeMarkdown(outcome.Query)),
			outcome.Options)
	case domain.StatusNotFound:
		if len(outcome.Suggestions) > 0 {
			b.sendOptions(ctx, chatID,
				fmt.Sprintf("🤔 *Couldn't find '%s'*\n\n💡 *Did you mean one of these instead?*", escapeMarkdown(outcome.Query)),
				outcome.Suggestions)
			return
		}
		b.sendText(ctx, chatID,
			fmt.Sprintf("🤔 *Couldn't find '%s'*\n\n%s", escapeMarkdown(outcome.Query), notFoundGuidance), nil)
	}
}

// sendArticle formats, chunks and transmits a resolved article. Only the
// last chunk carries the keyboard; when a thumbnail is available and the
// whole text fits a caption, it goes out as a photo instead.
func (b *Bot) sendArticle(ctx context.Context, chatID int64, article *domain.Article, formatter *usecase.Formatter) {
	text := formatter.Format(article)
	keyboard := b.articleKeyboard(article)

	if article.ImageURL != "" && len([]rune(text)) <= captionMaxLen {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(article.ImageURL))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeMarkdown
		photo.ReplyMarkup = keyboard
		if b.send(ctx, photo, "photo") {
			return
		}
		// Photo delivery is best-effort; fall through to plain text.
	}

	chunks := b.chunker.Split(text)
	for i, chunk := range chunks {
		body := chunk
		if len(chunks) > 1 {
			body = fmt.Sprintf("📚 *Part %d/%d*\n\n%s", i+1, len(chunks), chunk)
		}
		msg := tgbotapi.NewMessage(chatID, body)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if i == len(chunks)-1 {
			msg.ReplyMarkup = keyboard
		}
		b.send(ctx, msg, "article")
	}
}

func (b *Bot) sendLongerSummary(ctx context.Context, chatID int64, title string) {
	outcome := b.resolver.Resolve(ctx, title)
	if outcome.Status != domain.StatusResolved {
		b.sendText(ctx, chatID,
			fmt.Sprintf("🤔 *Couldn't load a detailed summary for '%s'*\n\n💡 *Try the regular search instead!*", escapeMarkdown(title)), nil)
		return
	}
	b.sendArticle(ctx, chatID, outcome.Article, b.longForm)
}

func (b *Bot) sendOptions(ctx context.Context, chatID int64, text string, titles []string) {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(titles))
	for _, title := range titles {
		key := b.pending.Put(title)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(title, buildCallbackData(callbackActionOpen, key)),
		))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.sendText(ctx, chatID, text, &keyboard)
}

func (b *Bot) articleKeyboard(article *domain.Article) *tgbotapi.InlineKeyboardMarkup {
	key := b.pending.Put(article.Title)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📖 Read Full Article", article.URL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Longer Summary", buildCallbackData(callbackActionLonger, key)),
		),
	)
	return &keyboard
}

func (b *Bot) sendText(ctx context.Context, chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	b.send(ctx, msg, "text")
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable, kind string) bool {
	if err := b.limiter.Wait(ctx); err != nil {
		return false
	}
	if _, err := b.api.Send(c); err != nil {
		slog.Warn("telegram_send_failed", "kind", kind, "error", err)
		return false
	}
	if b.metrics != nil {
		b.metrics.MessageSent(serviceName, kind)
	}
	return true
}

func (b *Bot) publishLookup(ctx context.Context, outcome domain.Outcome) {
	if b.queue == nil {
		return
	}
	event := domain.LookupEvent{
		ID:     uuid.NewString(),
		Query:  outcome.Query,
		Status: outcome.Status,
		At:     time.Now().UTC(),
	}
	if outcome.Article != nil {
		event.Title = outcome.Article.Title
		event.URL = outcome.Article.URL
	}
	if err := b.queue.PublishLookup(ctx, event); err != nil {
		slog.Warn("lookup_publish_failed", "query", event.Query, "error", err)
	}
}

func buildCallbackData(action, key string) string {
	return action + ":" + key
}

func parseCallbackData(data string) (action, key string, ok bool) {
	action, key, found := strings.Cut(data, ":")
	if !found || key == "" {
		return "", "", false
	}
	switch action {
	case callbackActionOpen, callbackActionLonger:
		return action, key, true
	default:
		return "", "", false
	}
}

// escapeMarkdown neutralizes the legacy-Markdown control characters inside
// user-supplied text so a stray underscore cannot break the reply.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
