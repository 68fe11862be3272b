package core

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/1abhi6/BharatLens/pkg/ai"
	"github.com/1abhi6/BharatLens/pkg/metrics"
)

type Metrics struct {
	apiResponseTime    *prometheus.HistogramVec
	apiErrorCounter    *prometheus.CounterVec
	llmRequestTime     *prometheus.HistogramVec
	llmError           *prometheus.CounterVec
	extractionTime     *prometheus.HistogramVec
	transcribeState    *prometheus.CounterVec
	speechError        *prometheus.CounterVec
	abandonedTurns     *prometheus.CounterVec
	backgroundTurnTime *prometheus.HistogramVec
	turnsInFlight      *prometheus.GaugeVec
}

func NewMetrics(ns, system string) *Metrics {
	return NewMetricsWithRegistry(ns, system, prometheus.NewRegistry())
}

func NewMetricsWithRegistry(ns, system string, registry *prometheus.Registry) *Metrics {
	metrics.SetupMetricsManager(ns, system, registry)

	return &Metrics{
		apiResponseTime:    metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:    metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		llmRequestTime:     metrics.NewHistogramVec("llm_request_time", []string{"target"}),
		llmError:           metrics.NewCounterVec("llm_error", []string{"target"}),
		extractionTime:     metrics.NewHistogramVec("extraction_time", []string{"kind", "status"}),
		transcribeState:    metrics.NewCounterVec("transcription_state", []string{"state"}),
		speechError:        metrics.NewCounterVec("speech_error", []string{"reason"}),
		abandonedTurns:     metrics.NewCounterVec("abandoned_turn", []string{"source"}),
		backgroundTurnTime: metrics.NewHistogramVec("background_turn_time", []string{"status"}),
		turnsInFlight:      metrics.NewGaugeVec("turns_in_flight", []string{"kind"}),
	}
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) LLMRequestTimer(target string) *prometheus.Timer {
	return prometheus.NewTimer(m.llmRequestTime.WithLabelValues(target))
}

func (m *Metrics) LLMErrorInc(target string) {
	m.llmError.WithLabelValues(target).Inc()
}

func (m *Metrics) ObserveExtraction(kind, status string, seconds float64) {
	m.extractionTime.WithLabelValues(kind, status).Observe(seconds)
}

func (m *Metrics) TranscriptionStateInc(state string) {
	m.transcribeState.WithLabelValues(state).Inc()
}

func (m *Metrics) SpeechErrorInc(reason string) {
	m.speechError.WithLabelValues(reason).Inc()
}

func (m *Metrics) AbandonedTurnInc(source string) {
	m.abandonedTurns.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveBackgroundTurn(status string, seconds float64) {
	m.backgroundTurnTime.WithLabelValues(status).Observe(seconds)
}

// TurnStarted and TurnFinished bracket the part of a turn that runs after the user message is stored.
func (m *Metrics) TurnStarted(kind string) {
	m.turnsInFlight.WithLabelValues(kind).Inc()
}

func (m *Metrics) TurnFinished(kind string) {
	m.turnsInFlight.WithLabelValues(kind).Dec()
}

// meteredCompleter records latency and failures of every completion call.
type meteredCompleter struct {
	ai.Completer
	metrics *Metrics
	model   string
}

func (m *meteredCompleter) Complete(ctx context.Context, messages []ai.Message) (ai.CompleteResult, error) {
	timer := m.metrics.LLMRequestTimer(m.model)
	defer timer.ObserveDuration()

	res, err := m.Completer.Complete(ctx, messages)
	if err != nil {
		m.metrics.LLMErrorInc(m.model)
	}
	return res, err
}
