package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Messenger is the outbound contract the conversation engines consume.
// Calls are fire-and-forget beyond the returned error: failures are surfaced
// to the user by the engine, never retried here.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) error
	EditMessageText(ctx context.Context, chatID int64, messageID int64, text string, opts *SendOptions) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string, text string) error
}

// Client talks to the Telegram Bot API for a single bot token.
type Client struct {
	BaseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Client{
		BaseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID                int64                 `json:"chat_id"`
	Text                  string                `json:"text"`
	ParseMode             string                `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool                  `json:"disable_web_page_preview,omitempty"`
	ReplyMarkup           *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type editMessageTextRequest struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

type answerCallbackQueryRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

type apiResponse struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description"`
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) error {
	req := sendMessageRequest{ChatID: chatID, Text: text}
	if opts != nil {
		req.ParseMode = opts.ParseMode
		req.DisableWebPagePreview = opts.DisableWebPreview
		req.ReplyMarkup = opts.ReplyMarkup
	}
	return c.call(ctx, "sendMessage", req)
}

func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int64, text string, opts *SendOptions) error {
	req := editMessageTextRequest{ChatID: chatID, MessageID: messageID, Text: text}
	if opts != nil {
		req.ParseMode = opts.ParseMode
		req.ReplyMarkup = opts.ReplyMarkup
	}
	return c.call(ctx, "editMessageText", req)
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID string, text string) error {
	return c.call(ctx, "answerCallbackQuery", answerCallbackQueryRequest{
		CallbackQueryID: callbackQueryID,
		Text:            text,
	})
}

func (c *Client) call(ctx context.Context, method string, body interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.BaseURL, c.token, method)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var apiResp apiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return fmt.Errorf("telegram %s: unexpected response: %s", method, string(bodyBytes))
	}
	if !apiResp.Ok {
		return fmt.Errorf("telegram %s: %s", method, apiResp.Description)
	}
	return nil
}
