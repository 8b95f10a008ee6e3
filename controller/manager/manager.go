package manager

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/kirsrus/embmonitor/controller"
	"github.com/kirsrus/embmonitor/model"
	"github.com/kirsrus/embmonitor/pkg/logger"
	"github.com/kirsrus/embmonitor/pkg/metrics"
	"github.com/kirsrus/embmonitor/service"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// Величина очереди публикации во внешнюю систему
	sampleCapacity = 10
)

// ConfigManager конфигурация Manager
type ConfigManager struct {
	Log *logrus.Logger

	MonitorCtl controller.MonitorCtl

	// Необязательные получатели образцов
	WebSvc       service.WebSvc
	PublisherSvc service.PublisherSvc

	SampleCapacity uint
}

// Manager основной менеджер работы со всеми сервисами. Инициируется через NewManager. Раздаёт
// образцы телеметрии в WEB и внешнюю систему и поднимает тревогу при переходе канала в ALERT
type Manager struct {
	ctx context.Context
	log *logrus.Entry

	monitorCtl controller.MonitorCtl

	webSvc       service.WebSvc
	publisherSvc service.PublisherSvc

	// Канал в состоянии ALERT по последнему полученному статусу
	alerting map[model.Channel]bool

	sampleCapacity uint
}

// NewManager конструктор Manager
func NewManager(ctx context.Context, config *ConfigManager) (*Manager, error) {
	if config == nil {
		return nil, errors.New("не передана конфигурация")
	}
	if config.Log == nil {
		config.Log = logger.Discard()
	}
	if config.MonitorCtl == nil {
		return nil, errors.New("не передан контроллер мониторинга")
	}

	manager := Manager{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "manager",
			"scope":  "controller",
		}),
		monitorCtl:   config.MonitorCtl,
		webSvc:       config.WebSvc,
		publisherSvc: config.PublisherSvc,

		alerting:       make(map[model.Channel]bool),
		sampleCapacity: sampleCapacity,
	}
	if config.SampleCapacity != 0 {
		manager.sampleCapacity = config.SampleCapacity
	}

	manager.configToLog()

	return &manager, nil
}

// Вывести значения конфигурации в лог
func (m *Manager) configToLog() {
	m.log.Debugf("sampleCapacity: %d", m.sampleCapacity)
	m.log.Debugf("web: %t", m.webSvc != nil)
	m.log.Debugf("publisher: %t", m.publisherSvc != nil)
}

// Публикация во внешнюю систему: образец или тревога
type publication struct {
	sample *model.TelemetrySample
	alert  *model.Alert
}

// Serve обработка поступающих образцов до окончания потока от устройства или отмены контекста.
// Образцы и тревоги разбираются в порядке поступления, публикация во внешнюю систему идёт в
// отдельной горутине и приём не задерживает
func (m *Manager) Serve() error {
	done := make(chan error, 1)

	g := new(errgroup.Group)

	var publications chan publication
	if m.publisherSvc != nil {
		publications = make(chan publication, m.sampleCapacity)
		g.Go(func() error {
			m.publishWorker(publications)
			return nil
		})
	}

	// Получение образцов от контроллера мониторинга
	g.Go(func() error {
		if publications != nil {
			defer close(publications)
		}
		for {
			sample, err := m.monitorCtl.EmmitSample()
			if err != nil {
				if err == io.EOF {
					m.log.Info("поток образцов завершён")
					return nil
				}
				return err
			}
			m.sampleReceived(sample, publications)
		}
	})

	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil && errors.Cause(err) != context.Canceled {
			return errors.Trace(err)
		}
		return nil
	case <-m.ctx.Done():
		return nil
	}
}

// Рассылка образца и проверка тревог
func (m *Manager) sampleReceived(sample *model.TelemetrySample, publications chan<- publication) {
	if m.webSvc != nil {
		m.webSvc.SampleReceived(*sample)
	}
	if publications != nil {
		select {
		case publications <- publication{sample: sample}:
		default:
			m.log.Warn("очередь publications переполнена, образец не опубликован")
		}
	}

	for _, c := range model.Channels {
		reading := sample.Channel(c)
		// Показания без статуса состояние тревоги не меняют
		if reading == nil || reading.Status == nil {
			continue
		}
		alerting := reading.Alerting()
		if alerting && !m.alerting[c] {
			m.alertRaised(newAlert(c, *reading, sample), publications)
		}
		m.alerting[c] = alerting
	}
}

// Поднятие тревоги по каналу. Тревога ждёт места в очереди публикации и не теряется
func (m *Manager) alertRaised(alert model.Alert, publications chan<- publication) {
	metrics.AlertsRaised.WithLabelValues(string(alert.Channel)).Inc()
	m.log.Warn(alert.Message)

	if m.webSvc != nil {
		m.webSvc.AlertRaised(alert)
	}
	if publications != nil {
		select {
		case publications <- publication{alert: &alert}:
		case <-m.ctx.Done():
		}
	}
}

// Публикация во внешнюю систему до закрытия очереди
func (m *Manager) publishWorker(publications <-chan publication) {
	for p := range publications {
		var err error
		if p.alert != nil {
			err = m.publisherSvc.PublishAlert(*p.alert)
		} else {
			err = m.publisherSvc.PublishSample(*p.sample)
		}
		if err != nil {
			m.log.Warn(err)
		}
	}
}

func newAlert(channel model.Channel, reading model.Reading, sample *model.TelemetrySample) model.Alert {
	unit := model.Unit(channel)
	return model.Alert{
		Channel:  channel,
		RaisedAt: sample.ReceivedAt,
		Reading:  reading,
		Unit:     unit,
		Message: fmt.Sprintf("тревога по каналу %s: значение %s, порог %s",
			channel, formatValue(reading.Value, unit), formatValue(reading.Threshold, unit)),
	}
}

func formatValue(v *float64, unit string) string {
	if v == nil {
		return "нет данных"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + " " + unit
}
