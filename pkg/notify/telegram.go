package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ostanin/volback/pkg/domain"
)

const DefaultAPIBaseURL = "https://api.telegram.org"

// Telegram delivers operator notifications through the Bot API. One
// sendMessage call is made per configured chat, concurrently; the
// notification as a whole succeeds only if every chat accepts it.
type Telegram struct {
	logger logrus.FieldLogger

	client  *http.Client
	baseURL string
	token   string
	chatIds []string
}

func NewTelegram(logger logrus.FieldLogger, client *http.Client, baseURL, token string, chatIds []string) *Telegram {
	if client == nil {
		client = http.DefaultClient
	}

	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}

	return &Telegram{
		logger:  logger,
		client:  client,
		baseURL: baseURL,
		token:   token,
		chatIds: chatIds,
	}
}

type sendMessageRequest struct {
	ChatId      string       `json:"chat_id"`
	Text        string       `json:"text"`
	ParseMode   string       `json:"parse_mode"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

type replyMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type inlineButton struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Notify(ctx context.Context, msg domain.Message) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, chatId := range t.chatIds {
		chatId := chatId

		g.Go(func() error {
			return t.send(ctx, chatId, msg)
		})
	}

	return g.Wait()
}

func (t *Telegram) send(ctx context.Context, chatId string, msg domain.Message) error {
	payload := sendMessageRequest{
		ChatId:    chatId,
		Text:      msg.Text,
		ParseMode: "HTML",
	}

	if msg.ButtonURL != "" {
		payload.ReplyMarkup = &replyMarkup{
			InlineKeyboard: [][]inlineButton{
				{{Text: msg.ButtonText, URL: msg.ButtonURL}},
			},
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "unable to marshal sendMessage request")
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token), bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "unable to build sendMessage request")
	}

	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "unable to send message to chat %s", chatId)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.Wrapf(err, "unable to decode sendMessage response for chat %s", chatId)
	}

	// the Bot API reports failures both as non-2xx statuses and as ok=false
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices || !result.OK {
		return errors.Errorf("sendMessage to chat %s failed: status %d: %s", chatId, resp.StatusCode, result.Description)
	}

	t.logger.WithField("chat_id", chatId).Debug("Notification delivered")

	return nil
}
