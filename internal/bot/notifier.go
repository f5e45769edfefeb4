// Package bot sends processing notifications to a Telegram chat and reads
// the tail of the errors log.
package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"trend-audio-remux/internal/logging"
	"trend-audio-remux/internal/model"
)

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Notifier struct {
	tg     Sender
	chatID int64
	log    *logging.Logger
}

func NewNotifier(token string, chatID int64, log *logging.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = false
	log.Infof("telegram: notifying chat %d as @%s", chatID, api.Self.UserName)
	return NewNotifierWithSender(api, chatID, log), nil
}

func NewNotifierWithSender(tg Sender, chatID int64, log *logging.Logger) *Notifier {
	return &Notifier{tg: tg, chatID: chatID, log: log}
}

// Processed reports a finished /process-video run. Delivery failures are
// only logged.
func (n *Notifier) Processed(filename string, res *model.ReplaceResult, archiveKey string) {
	n.send(FormatProcessed(filename, res, archiveKey))
}

func (n *Notifier) Alert(text string) {
	n.send(text)
}

func (n *Notifier) send(text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := n.tg.Send(msg); err != nil {
		n.log.Errorf("telegram: send to %d: %v", n.chatID, err)
	}
}

func FormatProcessed(filename string, res *model.ReplaceResult, archiveKey string) string {
	var b strings.Builder
	if res.Silent {
		fmt.Fprintf(&b, "🔇 %s processed without music\n", filename)
		if res.FetchError != "" {
			fmt.Fprintf(&b, "Reason: %s\n", res.FetchError)
		}
	} else {
		fmt.Fprintf(&b, "🎵 %s processed\n", filename)
	}
	if res.Track != nil {
		fmt.Fprintf(&b, "Track: %s\n", res.Track)
	}
	fmt.Fprintf(&b, "Duration: %.1fs", res.VideoDuration)
	if res.Loops > 1 {
		fmt.Fprintf(&b, ", track looped %d times", res.Loops)
	}
	if archiveKey != "" {
		fmt.Fprintf(&b, "\nArchived: %s", archiveKey)
	}
	return b.String()
}
