// Package metrics счётчики Prometheus монитора
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "embmonitor"

var (
	BytesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "link_bytes_received_total",
		Help:      "Байт принято из последовательного порта",
	})
	LinesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lines_received_total",
		Help:      "Строк телеметрии принято от устройства",
	})
	DecodeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decode_failures_total",
		Help:      "Каналов, отброшенных из-за ошибки разбора",
	}, []string{"channel"})
	CommandsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_sent_total",
		Help:      "Команд отправлено устройству",
	}, []string{"command"})
	AlertsRaised = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_raised_total",
		Help:      "Переходов канала в состояние ALERT",
	}, []string{"channel"})
	ChannelValue = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "channel_value",
		Help:      "Последнее измеренное значение канала",
	}, []string{"channel"})
	ChannelAlert = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "channel_alert",
		Help:      "1, если канал в состоянии ALERT",
	}, []string{"channel"})
	LinkConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "link_connected",
		Help:      "1, пока порт устройства открыт",
	})
)

var register sync.Once

// Register регистрирует метрики в реестре по умолчанию. Повторные вызовы ничего не делают
func Register() {
	register.Do(func() {
		prometheus.MustRegister(
			BytesReceived,
			LinesReceived,
			DecodeFailures,
			CommandsSent,
			AlertsRaised,
			ChannelValue,
			ChannelAlert,
			LinkConnected,
		)
	})
}

// Handler HTTP обработчик выдачи метрик
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
