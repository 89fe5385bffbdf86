package middleware

import (
	"crypto/md5"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/slack-go/slack"
)

type AlertConfig struct {
	WebhookURL  string
	Environment string
	AppName     string
}

// ErrorAlertMiddleware posts deduplicated ops alerts to a Slack webhook when
// a request handler panics. The HTTP response itself is handled further down
// the stack; this layer only observes and reports.
type ErrorAlertMiddleware struct {
	config        AlertConfig
	alertedErrors map[string]time.Time // hash -> last alert time
	mutex         sync.Mutex
	alertCooldown time.Duration // prevent spam
}

func NewErrorAlertMiddleware(config AlertConfig) *ErrorAlertMiddleware {
	return &ErrorAlertMiddleware{
		config:        config,
		alertedErrors: make(map[string]time.Time),
		alertCooldown: 10 * time.Minute, // Don't alert same error more than once per 10min
	}
}

// HTTPMiddleware wraps HTTP handlers with panic recovery and alerting
func (m *ErrorAlertMiddleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer m.recoverAndAlert(w, fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

func (m *ErrorAlertMiddleware) recoverAndAlert(w http.ResponseWriter, context string) {
	if r := recover(); r != nil {
		errorMsg := fmt.Sprintf("%s: PANIC - %v", context, r)
		log.Printf("❌ %s", errorMsg)
		m.alert(errorMsg, context+" (PANIC)")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (m *ErrorAlertMiddleware) alert(errorMsg, context string) {
	if m.config.WebhookURL == "" {
		return // Alerts disabled
	}

	hash := fmt.Sprintf("%x", md5.Sum([]byte(errorMsg)))

	m.mutex.Lock()
	if lastAlert, exists := m.alertedErrors[hash]; exists && time.Since(lastAlert) < m.alertCooldown {
		m.mutex.Unlock()
		return // Skip alert - too recent
	}
	m.alertedErrors[hash] = time.Now()
	m.mutex.Unlock()

	// Send asynchronously so alerting never slows down a request
	go m.sendAlert(errorMsg, context)
}

func (m *ErrorAlertMiddleware) sendAlert(errorMsg, context string) {
	msg := &slack.WebhookMessage{
		Blocks: &slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewHeaderBlock(slack.NewTextBlockObject(
					slack.PlainTextType,
					fmt.Sprintf("🚨 %s Error Alert", m.config.AppName),
					true, false,
				)),
				slack.NewSectionBlock(nil, []*slack.TextBlockObject{
					slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Service:* %s", m.config.AppName), false, false),
					slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Environment:* %s", m.config.Environment), false, false),
					slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Context:* %s", context), false, false),
				}, nil),
				slack.NewSectionBlock(slack.NewTextBlockObject(
					slack.MarkdownType,
					fmt.Sprintf("*Error:*\n```%s```", errorMsg),
					false, false,
				), nil, nil),
			},
		},
	}

	if err := slack.PostWebhook(m.config.WebhookURL, msg); err != nil {
		log.Printf("❌ Failed to send alert: %v", err)
	}
}
