package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/kirsrus/embmonitor/model"
	"github.com/kirsrus/embmonitor/pkg/logger"
	"github.com/kirsrus/embmonitor/pkg/validator"
	"github.com/kirsrus/embmonitor/service"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

const (
	connectTimeout    = 5 * time.Second
	publishTimeout    = 2 * time.Second
	disconnectQuiesce = 250 // мс
	topic             = "embedded-monitor"
	clientID          = "embedded-monitor"
	alertTopic        = "alert"
)

// ConfigMqtt конфигурация Mqtt
type ConfigMqtt struct {
	Log *logrus.Logger

	// Адрес брокера, например tcp://localhost:1883
	Broker   string
	Topic    string
	ClientID string
	Qos      byte

	// Готовый клиент. Если не задан, создаётся по Broker
	Client paho.Client
}

// Mqtt пересылка телеметрии в брокер MQTT. Инициализируется через NewMqtt. Показания каждого канала
// уходят в <topic>/<канал>, тревоги в <topic>/alert
type Mqtt struct {
	log    *logrus.Entry
	client paho.Client

	topic string
	qos   byte

	// Подключение к брокеру установлено. Состояние пишется в лог только при его смене
	mu            sync.Mutex
	connectedFlag bool

	closeOnce sync.Once
}

// Сообщение с показаниями одного канала
type channelMessage struct {
	Channel    model.Channel `json:"channel"`
	ReceivedAt time.Time     `json:"receivedAt"`
	Unit       string        `json:"unit"`
	model.Reading
}

// NewMqtt конструктор Mqtt. Подключается к брокеру не дольше connectTimeout, дальше клиент
// переподключается сам. При отмене ctx отключается от брокера
func NewMqtt(ctx context.Context, config *ConfigMqtt) (service.PublisherSvc, error) {
	if config == nil {
		return nil, errors.New("не установлена конфигурация")
	}
	if config.Log == nil {
		config.Log = logger.Discard()
	}

	res := &Mqtt{
		log: config.Log.WithFields(map[string]interface{}{
			"module": "mqtt",
			"scope":  "service",
		}),
		topic: strings.TrimSuffix(topic, "/"),
		qos:   config.Qos,
	}
	if config.Topic != "" {
		res.topic = strings.TrimSuffix(config.Topic, "/")
	}
	if res.qos > 2 {
		return nil, errors.Errorf("некорректный qos %d", res.qos)
	}

	res.client = config.Client
	if res.client == nil {
		if err := validator.Get().Var(config.Broker, "required,broker"); err != nil {
			return nil, errors.Annotatef(err, "некорректный адрес брокера %q", config.Broker)
		}
		id := clientID
		if config.ClientID != "" {
			id = config.ClientID
		}
		opts := paho.NewClientOptions()
		opts.AddBroker(config.Broker)
		opts.SetClientID(id)
		opts.SetAutoReconnect(true)
		opts.SetConnectTimeout(connectTimeout)
		opts.SetOnConnectHandler(func(paho.Client) {
			res.setConnected(true, nil)
		})
		opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
			res.setConnected(false, err)
		})
		res.client = paho.NewClient(opts)
	}

	token := res.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errors.Errorf("не удалось подключиться к брокеру %s за %s", config.Broker, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, errors.Annotatef(err, "подключение к брокеру %s", config.Broker)
	}
	res.setConnected(true, nil)

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			res.Close()
		}()
	}

	return res, nil
}

// Фиксация состояния подключения
func (m *Mqtt) setConnected(connected bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connectedFlag == connected {
		return
	}
	m.connectedFlag = connected
	if connected {
		m.log.Info("подключение к брокеру установлено")
	} else {
		m.log.Warnf("подключение к брокеру потеряно: %v", err)
	}
}

// PublishSample публикует показания каждого канала, присутствующего в образце
func (m *Mqtt) PublishSample(sample model.TelemetrySample) error {
	for _, c := range model.Channels {
		reading := sample.Channel(c)
		if reading == nil {
			continue
		}
		msg := channelMessage{
			Channel:    c,
			ReceivedAt: sample.ReceivedAt,
			Unit:       model.Unit(c),
			Reading:    *reading,
		}
		if err := m.publish(m.topic+"/"+string(c), msg); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// PublishAlert публикует тревогу
func (m *Mqtt) PublishAlert(alert model.Alert) error {
	return errors.Trace(m.publish(m.topic+"/"+alertTopic, alert))
}

func (m *Mqtt) publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Trace(err)
	}
	token := m.client.Publish(topic, m.qos, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return errors.Errorf("публикация в %s не завершилась за %s", topic, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return errors.Annotatef(err, "публикация в %s", topic)
	}
	m.log.Debugf("опубликовано в %s", topic)
	return nil
}

// Close отключается от брокера. Повторные вызовы ничего не делают
func (m *Mqtt) Close() {
	m.closeOnce.Do(func() {
		m.client.Disconnect(disconnectQuiesce)
		m.log.Info("отключение от брокера")
	})
}
