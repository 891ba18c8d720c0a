package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/buildhook/pkg/domain/interfaces"
	"github.com/m-mizutani/buildhook/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// maxWebhookBodySize bounds how much of a request body is read. GitHub caps
// push payloads at 25 MB.
const maxWebhookBodySize = 25 * 1024 * 1024

const responseOK = "OK"

// WebhookHandler handles push notifications
type WebhookHandler struct {
	secret           string
	triggeredMessage string
	webhookUC        interfaces.WebhookUseCase
}

// HandlerOption configures a WebhookHandler
type HandlerOption func(*WebhookHandler)

// WithHandlerSecret enables signature verification with secret
func WithHandlerSecret(secret string) HandlerOption {
	return func(h *WebhookHandler) {
		h.secret = secret
	}
}

// WithHandlerTriggeredMessage sets the body returned when a build starts
func WithHandlerTriggeredMessage(msg string) HandlerOption {
	return func(h *WebhookHandler) {
		h.triggeredMessage = msg
	}
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhookUC interfaces.WebhookUseCase, opts ...HandlerOption) *WebhookHandler {
	h := &WebhookHandler{
		triggeredMessage: DefaultTriggeredMessage,
		webhookUC:        webhookUC,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes webhook requests. The sender always gets 200: a payload
// that cannot be read or parsed is answered like any non-matching push, and
// the build starts only after the response has been flushed.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		logger.Warn("Failed to read request body", "error", err)
		body = nil
	}
	defer r.Body.Close()

	logger.Info("Webhook received",
		"event_type", github.WebHookType(r),
		"headers", r.Header,
		"body", string(body),
	)

	event := &model.PushEvent{
		DeliveryID: github.DeliveryID(r),
		ReceivedAt: time.Now(),
	}

	if err := h.verifySignature(r, body); err != nil {
		logger.Warn("Invalid webhook signature, ignoring payload",
			"error", err,
			"delivery_id", event.DeliveryID,
			"remote_addr", r.RemoteAddr,
		)
	} else {
		event.RepositoryFullName, event.Ref = parsePushPayload(r.Header.Get("Content-Type"), body)
	}

	decision := h.webhookUC.Evaluate(ctx, event)

	msg := responseOK
	if decision != nil && decision.ShouldBuild {
		msg = h.triggeredMessage
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, msg); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	h.webhookUC.Trigger(ctx, decision)
}

// verifySignature checks X-Hub-Signature-256, or the legacy SHA-1
// X-Hub-Signature, against the raw body. Without a secret every request passes.
func (h *WebhookHandler) verifySignature(r *http.Request, body []byte) error {
	if h.secret == "" {
		return nil
	}

	signature := r.Header.Get(github.SHA256SignatureHeader)
	if signature == "" {
		signature = r.Header.Get(github.SHA1SignatureHeader)
	}
	if signature == "" {
		return goerr.New("missing signature header")
	}

	return github.ValidateSignature(signature, body, []byte(h.secret))
}

// parsePushPayload extracts repository.full_name and ref from a JSON or
// form-encoded body. Other content types are not read at all. Missing, null
// and malformed fields yield empty strings.
func parsePushPayload(contentType string, body []byte) (repository, ref string) {
	if len(body) == 0 {
		return "", ""
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mediaType == "application/x-www-form-urlencoded":
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return "", ""
		}
		// GitHub's form content type wraps the JSON document in "payload"
		if payload := form.Get("payload"); payload != "" {
			return parseJSONPushPayload([]byte(payload))
		}
		return form.Get("repository[full_name]"), form.Get("ref")

	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		return parseJSONPushPayload(body)

	default:
		return "", ""
	}
}

// pushTarget holds the only fields the trigger decision reads. The rest of
// the push document is skipped, so its shape never affects the decision.
type pushTarget struct {
	Repository *struct {
		FullName *string `json:"full_name"`
	} `json:"repository"`
	Ref *string `json:"ref"`
}

func parseJSONPushPayload(data []byte) (repository, ref string) {
	var target pushTarget
	if err := json.Unmarshal(data, &target); err != nil {
		// A type mismatch leaves that field unset but keeps the others.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return "", ""
		}
	}

	if target.Repository != nil && target.Repository.FullName != nil {
		repository = *target.Repository.FullName
	}
	if target.Ref != nil {
		ref = *target.Ref
	}
	return repository, ref
}
