package bot

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	applog "avtosotuv/internal/log"
)

const openButtonText = "🚗 Mashina Bozori"

// webAppMarkup is an inline keyboard with a single Mini App button. The
// library has no web_app button type, so the markup is sent as plain JSON.
type webAppMarkup struct {
	InlineKeyboard [][]webAppButton `json:"inline_keyboard"`
}

type webAppButton struct {
	Text   string     `json:"text"`
	WebApp webAppInfo `json:"web_app"`
}

type webAppInfo struct {
	URL string `json:"url"`
}

func openAppMarkup(url string) webAppMarkup {
	return webAppMarkup{InlineKeyboard: [][]webAppButton{{{Text: openButtonText, WebApp: webAppInfo{URL: url}}}}}
}

// Bot is the launcher bot: it answers a few commands and points users at the Mini App.
type Bot struct {
	api        *tgbotapi.BotAPI
	miniAppURL string
}

func New(token, miniAppURL string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Bot{api: api, miniAppURL: miniAppURL}, nil
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	applog.L().Info("bot.start", zap.String("username", b.api.Self.UserName), zap.String("mini_app", b.miniAppURL))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			applog.L().Info("bot.stop")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			reply, ok := Reply(update.Message, b.miniAppURL)
			if !ok {
				continue
			}
			if _, err := b.api.Send(reply); err != nil {
				applog.L().Warn("bot.send.fail", zap.Int64("chat_id", reply.ChatID), zap.Error(err))
			}
		}
	}
}

// Reply builds the answer to msg. Unknown commands get no answer.
func Reply(msg *tgbotapi.Message, miniAppURL string) (tgbotapi.MessageConfig, bool) {
	if msg.Chat == nil {
		return tgbotapi.MessageConfig{}, false
	}
	chatID := msg.Chat.ID

	switch {
	case msg.IsCommand() && msg.Command() == "start":
		name := "do'st"
		if msg.From != nil && msg.From.FirstName != "" {
			name = msg.From.FirstName
		}
		out := tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"🚗 <b>Assalomu alaykum, %s!</b>\n\n"+
				"<b>AvtoSotuv</b> — Telegram orqali mashina oldi-sotdi platformasi.\n\n"+
				"✅ Mashina e'lonlarini ko'ring\n"+
				"✅ O'z mashinangizni joylashtiring\n"+
				"✅ Eng qulay narxlarni toping\n\n"+
				"<i>Quyidagi tugmani bosib boshlang</i> 👇",
			html.EscapeString(name)))
		out.ParseMode = tgbotapi.ModeHTML
		out.ReplyMarkup = openAppMarkup(miniAppURL)
		return out, true

	case msg.IsCommand() && msg.Command() == "help":
		out := tgbotapi.NewMessage(chatID,
			"ℹ️ <b>AvtoSotuv yordam</b>\n\n"+
				"📱 /start — Botni ishga tushirish\n"+
				"❓ /help — Yordam\n\n"+
				"🚗 Mashina bozorini ochish uchun \"Mashina Bozori\" tugmasini bosing.")
		out.ParseMode = tgbotapi.ModeHTML
		return out, true

	case msg.IsCommand():
		return tgbotapi.MessageConfig{}, false
	}

	out := tgbotapi.NewMessage(chatID, "🚗 Mashina bozorini ochish uchun /start buyrug'ini yuboring yoki quyidagi tugmani bosing:")
	out.ReplyMarkup = openAppMarkup(miniAppURL)
	return out, true
}
