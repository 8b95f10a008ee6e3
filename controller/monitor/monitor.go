package monitor

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/kirsrus/embmonitor/model"
	"github.com/kirsrus/embmonitor/pkg/logger"
	"github.com/kirsrus/embmonitor/pkg/metrics"
	"github.com/kirsrus/embmonitor/pkg/telemetry"
	"github.com/kirsrus/embmonitor/service"

	"github.com/juju/errors"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	// Величина канала образцов телеметрии
	eventCapacity = 10
	// Через сколько последние показания канала считаются устаревшими
	staleAfter = 30 * time.Second
)

// Monitor контроллер мониторинга устройства. Инициализируется через NewMonitor. Читает строки
// из подключения, разбирает их и через EmmitSample отдаёт образцы телеметрии. Последние показания
// каждого канала хранятся staleAfter и доступны через Latest.
type Monitor struct {
	ctx context.Context
	log *logrus.Entry

	linkSvc service.LinkSvc
	decoder telemetry.Decoder

	latest *cache.Cache
	event  chan *model.TelemetrySample

	mu         sync.RWMutex
	monitoring map[model.Channel]bool

	eventCapacity uint
	staleAfter    time.Duration
}

// ConfigMonitor конфигурация Monitor
type ConfigMonitor struct {
	Log *logrus.Logger
	// Декодер строк. По умолчанию позиционный
	Decoder telemetry.Decoder
	// Величина канала образцов телеметрии
	EventCapacity uint
	// Через сколько показания канала считаются устаревшими
	StaleAfter time.Duration
}

// Показания канала с временем получения
type entry struct {
	reading    model.Reading
	receivedAt time.Time
}

// NewMonitor конструктор Monitor. Запускает цикл чтения подключения
func NewMonitor(ctx context.Context, linkSvc service.LinkSvc, config *ConfigMonitor) (*Monitor, error) {
	if config == nil {
		return nil, errors.New("не установлен config")
	}
	if config.Log == nil {
		config.Log = logger.Discard()
	}
	if linkSvc == nil {
		return nil, errors.New("не указано подключение linkSvc")
	}

	monitor := Monitor{
		ctx: ctx,
		log: config.Log.WithFields(map[string]interface{}{
			"module": "monitor",
			"scope":  "controller",
		}),
		linkSvc: linkSvc,
		decoder: config.Decoder,

		eventCapacity: eventCapacity,
		staleAfter:    staleAfter,
	}
	if monitor.decoder == nil {
		monitor.decoder = telemetry.Positional{}
	}
	if config.EventCapacity != 0 {
		monitor.eventCapacity = config.EventCapacity
	}
	if config.StaleAfter != 0 {
		monitor.staleAfter = config.StaleAfter
	}
	monitor.latest = cache.New(monitor.staleAfter, monitor.staleAfter*2)
	monitor.event = make(chan *model.TelemetrySample, monitor.eventCapacity)

	// При подключении оба канала включаются
	monitor.monitoring = make(map[model.Channel]bool, len(model.Channels))
	for _, c := range model.Channels {
		monitor.monitoring[c] = true
	}

	if err := linkSvc.Start(); err != nil {
		return nil, errors.Annotate(err, "запуск чтения из устройства")
	}
	go monitor.loop()

	return &monitor, nil
}

// Бесконечное получение строк от устройства до окончания потока
func (m *Monitor) loop() {
	m.log.Info("старт работы модуля")
	defer close(m.event)

	for {
		line, err := m.linkSvc.EmmitLine()
		if err != nil {
			switch {
			case err == io.EOF:
				m.log.Info("поток данных от устройства завершён")
			case errors.Cause(err) == context.Canceled:
				m.log.Info("завершение работы модуля")
			default:
				m.log.Error(errors.ErrorStack(err))
			}
			return
		}

		sample := m.handle(line)
		if sample == nil {
			continue
		}
		select {
		case m.event <- sample:
		default:
			m.log.Warn("очередь event переполнена")
		}
	}
}

// Разбор строки и обновление последних показаний. Возвращает nil, если в строке нет
// ни одного канала
func (m *Monitor) handle(line string) *model.TelemetrySample {
	metrics.LinesReceived.Inc()
	m.log.Debugf("получено: %s", line)

	sample, err := m.decoder.Decode(line)
	if err != nil {
		var decodeErr *model.DecodeError
		if errors.As(err, &decodeErr) {
			for _, c := range decodeErr.Channels {
				metrics.DecodeFailures.WithLabelValues(string(c)).Inc()
			}
		}
		m.log.Warn(err)
	}
	if sample.IsEmpty() {
		if err == nil {
			m.log.Debugf("в строке нет каналов телеметрии: %q", line)
		}
		return nil
	}
	sample.ReceivedAt = time.Now()

	for _, c := range model.Channels {
		reading := sample.Channel(c)
		if reading == nil {
			continue
		}
		m.latest.Set(string(c), entry{reading: *reading, receivedAt: sample.ReceivedAt}, cache.DefaultExpiration)
		if reading.Value != nil {
			metrics.ChannelValue.WithLabelValues(string(c)).Set(*reading.Value)
		}
		if reading.Status != nil {
			alert := 0.0
			if reading.Alerting() {
				alert = 1
			}
			metrics.ChannelAlert.WithLabelValues(string(c)).Set(alert)
		}
	}

	return &sample
}

// EmmitSample ожидает очередной образец телеметрии. Возвращает io.EOF, когда поток от
// устройства закончился, и ошибку контекста при принудительном завершении работы
func (m *Monitor) EmmitSample() (*model.TelemetrySample, error) {
	select {
	case <-m.ctx.Done():
		return nil, m.ctx.Err()
	case sample, ok := <-m.event:
		if !ok {
			return nil, io.EOF
		}
		return sample, nil
	}
}

// Latest последние показания каналов, полученные не раньше staleAfter назад
func (m *Monitor) Latest() model.TelemetrySample {
	var res model.TelemetrySample
	for _, c := range model.Channels {
		v, found := m.latest.Get(string(c))
		if !found {
			continue
		}
		e := v.(entry)
		reading := e.reading
		res.SetChannel(c, &reading)
		if e.receivedAt.After(res.ReceivedAt) {
			res.ReceivedAt = e.receivedAt
		}
	}
	return res
}

// Monitoring состояние мониторинга каналов
func (m *Monitor) Monitoring() map[model.Channel]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	res := make(map[model.Channel]bool, len(m.monitoring))
	for k, v := range m.monitoring {
		res[k] = v
	}
	return res
}

// SetMonitoring включает или выключает мониторинг канала на устройстве
func (m *Monitor) SetMonitoring(channel model.Channel, enabled bool) (model.Command, error) {
	if _, ok := model.ParseChannel(string(channel)); !ok {
		return model.Command{}, &model.ValidationError{Field: "channel", Value: string(channel), Msg: "неизвестный канал"}
	}
	cmd, err := model.MonitoringCommand(channel, enabled)
	if err != nil {
		return model.Command{}, errors.Trace(err)
	}
	if err := m.linkSvc.Send(cmd); err != nil {
		return model.Command{}, errors.Trace(err)
	}

	m.mu.Lock()
	m.monitoring[channel] = enabled
	m.mu.Unlock()

	m.log.Infof("мониторинг канала %s: %t", channel, enabled)
	return cmd, nil
}

// SetThreshold устанавливает порог канала. Некорректный ввод возвращает *model.ValidationError,
// при этом на устройство ничего не отправляется
func (m *Monitor) SetThreshold(channel model.Channel, text string) (model.Command, error) {
	cmd, err := telemetry.ParseThreshold(channel, text)
	if err != nil {
		m.log.Debug(err)
		return model.Command{}, err
	}
	if err := m.linkSvc.Send(cmd); err != nil {
		return model.Command{}, errors.Trace(err)
	}
	m.log.Infof("порог канала %s: %s", channel, cmd)
	return cmd, nil
}
