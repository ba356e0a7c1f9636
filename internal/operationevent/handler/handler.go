// Package handler exposes trigger notifications over HTTP.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/valyala/fastjson"

	"opevent/internal/operationevent/models"
	"opevent/internal/operationevent/store/receipts"
	"opevent/internal/platform/metrics"
	"opevent/pkg/platform/httputil"
	"opevent/pkg/platform/sentinel"
	"opevent/pkg/platform/uow"
	"opevent/pkg/requestcontext"
)

const defaultMaxBodyBytes = 1 << 20

// Dispatcher routes notifications to their handlers.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification) error
}

// ReceiptRecorder stores accepted notifications.
type ReceiptRecorder interface {
	Record(ctx context.Context, r receipts.Receipt) error
}

// Handler accepts notification batches. Each batch runs in one unit of work:
// its events are released when every notification was handled and are
// dropped otherwise.
type Handler struct {
	logger     *slog.Logger
	dispatcher Dispatcher
	runner     uow.Runner
	receipts   ReceiptRecorder
	metrics    *metrics.Metrics
	parsers    fastjson.ParserPool
	maxBody    int64
}

// Option configures the Handler.
type Option func(*Handler)

// WithReceipts records a receipt per notification inside the batch's unit.
func WithReceipts(r ReceiptRecorder) Option {
	return func(h *Handler) {
		h.receipts = r
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithMaxBodyBytes bounds the request body.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

// New creates a Handler.
func New(dispatcher Dispatcher, runner uow.Runner, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:     logger,
		dispatcher: dispatcher,
		runner:     runner,
		maxBody:    defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the signal routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/signals/{signal}", h.handleSignal)
}

type acceptedResponse struct {
	Accepted int `json:"accepted"`
}

// handleSignal dispatches a batch of notifications for one signal.
func (h *Handler) handleSignal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	signal := models.Signal(chi.URLParam(r, "signal"))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("body exceeds %d bytes: %w", tooLarge.Limit, sentinel.ErrInvalidInput)
		}
		h.logger.WarnContext(ctx, "failed to read signal body",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	p := h.parsers.Get()
	defer h.parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid signal body",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, fmt.Errorf("invalid JSON: %v: %w", err, sentinel.ErrInvalidInput))
		return
	}

	notifications, err := decodeBatch(signal, v)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid signal batch",
			"signal", string(signal),
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	err = h.runner.RunInTx(ctx, func(ctx context.Context) error {
		for _, n := range notifications {
			if h.receipts != nil {
				receipt := receipts.Receipt{Signal: n.Signal, Kind: n.Kind, RequestID: requestID}
				if err := h.receipts.Record(ctx, receipt); err != nil {
					return fmt.Errorf("record receipt: %w", err)
				}
			}
			if err := h.dispatcher.Dispatch(ctx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log := h.logger.ErrorContext
		if errors.Is(err, sentinel.ErrInvalidInput) || errors.Is(err, sentinel.ErrUnknownKind) {
			log = h.logger.WarnContext
		}
		log(ctx, "signal batch rejected",
			"signal", string(signal),
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.AddNotificationsAccepted(string(signal), len(notifications))
	}
	httputil.WriteJSON(w, http.StatusAccepted, acceptedResponse{Accepted: len(notifications)})
}
