package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	DispatchBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orgnotify_dispatch_batches_total", Help: "Provider batch call outcomes"},
		[]string{"result"},
	)
	MessagesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orgnotify_messages_total", Help: "Messages by terminal status"},
		[]string{"status"},
	)
	WebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orgnotify_webhook_events_total", Help: "Delivery webhook events by provider status"},
		[]string{"status"},
	)
	TriggerSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orgnotify_trigger_sends_total", Help: "Automated trigger send outcomes"},
		[]string{"kind", "result"},
	)
	ProviderLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "orgnotify_provider_send_latency_seconds", Help: "Gateway send call latency"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(DispatchBatches, MessagesFinished, WebhookEvents, TriggerSends, ProviderLatency)
}
