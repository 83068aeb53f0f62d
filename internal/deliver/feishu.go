// Package deliver pushes rendered reports to a Feishu group bot webhook.
package deliver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/ppiankov/aidaily/internal/model"
	"github.com/ppiankov/aidaily/internal/worker"
	"go.uber.org/zap"
)

// Sender delivers report content; false means at least one message failed
type Sender interface {
	Send(ctx context.Context, content string) bool
	SendCard(ctx context.Context, card any) bool
	SendErrorNotification(ctx context.Context, message string) bool
}

// FeishuSender posts text and card messages to a group bot webhook
type FeishuSender struct {
	webhookURL string
	secret     string
	maxLength  int
	appName    string
	version    string

	httpClient *http.Client
	limiter    *worker.Limiter
	now        func() time.Time
}

// NewFeishuSender creates a sender from the Feishu section of the config
func NewFeishuSender(cfg model.FeishuConfig, app model.AppConfig) *FeishuSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxLength := cfg.MaxLength
	if maxLength <= 0 {
		maxLength = 3000
	}

	return &FeishuSender{
		webhookURL: cfg.WebhookURL,
		secret:     cfg.WebhookSecret,
		maxLength:  maxLength,
		appName:    app.Name,
		version:    app.Version,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    worker.NewIntervalLimiter(cfg.ChunkDelay),
		now:        time.Now,
	}
}

type textContent struct {
	Text string `json:"text"`
}

type message struct {
	MsgType   string       `json:"msg_type"`
	Content   *textContent `json:"content,omitempty"`
	Card      any          `json:"card,omitempty"`
	Timestamp string       `json:"timestamp,omitempty"`
	Sign      string       `json:"sign,omitempty"`
}

// webhookResult covers both response shapes the webhook returns
type webhookResult struct {
	StatusCode    *int   `json:"StatusCode"`
	StatusMessage string `json:"StatusMessage"`
	Code          *int   `json:"code"`
	Msg           string `json:"msg"`
}

func (r webhookResult) ok() bool {
	return (r.StatusCode != nil && *r.StatusCode == 0) || (r.Code != nil && *r.Code == 0)
}

// Send posts content as text, chunking it on paragraph boundaries when it is too long.
// Every chunk is attempted even after a failure.
func (s *FeishuSender) Send(ctx context.Context, content string) bool {
	if utf8.RuneCountInString(content) <= s.maxLength {
		return s.post(ctx, message{MsgType: "text", Content: &textContent{Text: content}})
	}

	chunks := Split(content, s.maxLength)
	zap.L().Info("sending long message in chunks",
		zap.Int("runes", utf8.RuneCountInString(content)),
		zap.Int("chunks", len(chunks)),
	)

	allOK := true
	for i, chunk := range chunks {
		if err := s.limiter.Wait(ctx, s.webhookURL); err != nil {
			zap.L().Error("chunk delivery interrupted", zap.Int("chunk", i+1), zap.Int("of", len(chunks)), zap.Error(err))
			allOK = false
			continue
		}
		if !s.post(ctx, message{MsgType: "text", Content: &textContent{Text: chunk}}) {
			zap.L().Error("chunk delivery failed", zap.Int("chunk", i+1), zap.Int("of", len(chunks)))
			allOK = false
		}
	}
	return allOK
}

// SendCard posts an interactive card
func (s *FeishuSender) SendCard(ctx context.Context, card any) bool {
	return s.post(ctx, message{MsgType: "interactive", Card: card})
}

// SendTestMessage verifies the webhook connection
func (s *FeishuSender) SendTestMessage(ctx context.Context) bool {
	content := fmt.Sprintf(`🌈 %[1]s AI daily system test

🔧 System status: running
⏰ Test time: %[2]s
✅ Feishu connection: OK

This is a test message. If you can read it, the webhook is configured correctly.

---
%[1]s v%[3]s`, s.appName, s.now().Format("2006-01-02 15:04:05"), s.version)

	ok := s.Send(ctx, content)
	if ok {
		zap.L().Info("test message delivered")
	} else {
		zap.L().Error("test message failed")
	}
	return ok
}

// SendErrorNotification reports a failed run to the group
func (s *FeishuSender) SendErrorNotification(ctx context.Context, errMessage string) bool {
	content := fmt.Sprintf(`⚠️ %s AI daily error

Time: %s
Error: %s

Please check the service logs.`, s.appName, s.now().Format("2006-01-02 15:04:05"), errMessage)
	return s.Send(ctx, content)
}

// SendStartupNotification announces the scheduler and its trigger times
func (s *FeishuSender) SendStartupNotification(ctx context.Context, schedule model.ScheduleConfig) bool {
	content := fmt.Sprintf(`🚀 %s AI daily scheduler started

📥 Data collection: daily at %s
📤 Report delivery: daily at %s
🩺 Health check: hourly

Version %s`, s.appName, schedule.DataCollectionTime, schedule.DailyReportTime, s.version)
	return s.Send(ctx, content)
}

func (s *FeishuSender) post(ctx context.Context, msg message) bool {
	if s.webhookURL == "" {
		zap.L().Error("feishu webhook URL is not configured")
		return false
	}

	if s.secret != "" {
		ts := strconv.FormatInt(s.now().Unix(), 10)
		msg.Timestamp = ts
		msg.Sign = Sign(ts, s.secret)
	}

	if err := s.do(ctx, msg); err != nil {
		zap.L().Error("feishu delivery failed", zap.String("msg_type", msg.MsgType), zap.Error(err))
		return false
	}
	zap.L().Info("feishu message delivered", zap.String("msg_type", msg.MsgType))
	return true
}

func (s *FeishuSender) do(ctx context.Context, msg message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d %s", resp.StatusCode, string(respBody))
	}

	var result webhookResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !result.ok() {
		return fmt.Errorf("webhook rejected message: %s", string(respBody))
	}
	return nil
}
