package notify

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v3"

	"yasno-exporter/internal/schedule"
)

const (
	msgStatusOff      = "🔴 <b>%s</b>: power is OFF since %s, expected back around %s"
	msgStatusPossible = "🟡 <b>%s</b>: possible outage since %s, until around %s"
	msgStatusOn       = "🟢 <b>%s</b>: power is back ON since %s"
	msgStatusUnknown  = "⚪ <b>%s</b>: no schedule data since %s"
)

var htmlOpts = &tele.SendOptions{ParseMode: tele.ModeHTML, DisableWebPagePreview: true}

// Telegram pushes status change messages to a single channel or chat.
type Telegram struct {
	bot  *tele.Bot
	chat *tele.Chat
	loc  *time.Location
	log  zerolog.Logger
}

func NewTelegram(token string, chatID int64, logger zerolog.Logger) (*Telegram, error) {
	bot, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	loc, err := time.LoadLocation("Europe/Kyiv")
	if err != nil {
		loc = time.UTC
	}
	return &Telegram{
		bot:  bot,
		chat: &tele.Chat{ID: chatID},
		loc:  loc,
		log:  logger,
	}, nil
}

// StatusChanged sends one message per group status flip. Send errors
// are logged, never propagated; notification delivery must not affect
// the refresh path.
func (t *Telegram) StatusChanged(group string, from, to schedule.Status, at time.Time, until time.Duration) {
	local := at.In(t.loc)
	timeStr := local.Format("15:04")
	backStr := local.Add(until).Format("15:04")

	var msg string
	switch to {
	case schedule.StatusUnavailable:
		msg = fmt.Sprintf(msgStatusOff, group, timeStr, backStr)
	case schedule.StatusPossible:
		msg = fmt.Sprintf(msgStatusPossible, group, timeStr, backStr)
	case schedule.StatusAvailable:
		msg = fmt.Sprintf(msgStatusOn, group, timeStr)
	default:
		msg = fmt.Sprintf(msgStatusUnknown, group, timeStr)
	}

	if _, err := t.bot.Send(t.chat, msg, htmlOpts); err != nil {
		t.log.Error().Err(err).Str("group", group).Msg("telegram notification failed")
	}
}
