package web

import (
	"time"

	"github.com/kirsrus/embmonitor/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo"
)

const (
	// Величина очереди сообщений одного подписчика
	subscriberCapacity = 10
	writeTimeout       = 5 * time.Second
)

// Типы сообщений потока
const (
	MessageSample = "sample"
	MessageAlert  = "alert"
)

// StreamMessage сообщение потока /api/stream
type StreamMessage struct {
	Type   string                 `json:"type"`
	Sample *model.TelemetrySample `json:"sample,omitempty"`
	Alert  *model.Alert           `json:"alert,omitempty"`
}

// StreamApi поток образцов и тревог по WebSocket. Каждый подписчик получает свою очередь в пуле
func (m *Web) StreamApi(path string) {
	m.e.GET(path, func(c echo.Context) error {
		conn, err := m.upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			m.log.Warnf("ошибка подключения WebSocket: %v", err)
			return nil
		}
		defer conn.Close()

		id := uuid.New().String() // Новый идентификатор канала в пуле каналов
		ch := make(chan StreamMessage, subscriberCapacity)
		m.subscribers.Store(id, ch)
		defer m.subscribers.Delete(id)
		m.log.Debugf("подписчик %s (%s) подключён, всего %d", id, c.RealIP(), m.subscriberCount())

		// Клиент ничего не присылает, чтение нужно только чтобы заметить закрытие
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(m.pingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-m.ctx.Done():
				return nil
			case <-closed:
				m.log.Debugf("подписчик %s отключился", id)
				return nil
			case msg := <-ch:
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(msg); err != nil {
					m.log.Debugf("подписчик %s: ошибка отправки: %v", id, err)
					return nil
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					return nil
				}
			}
		}
	})
}

// SampleReceived отсылка образца всем подписчикам потока
func (m *Web) SampleReceived(sample model.TelemetrySample) {
	m.broadcast(StreamMessage{Type: MessageSample, Sample: &sample})
}

// AlertRaised отсылка тревоги всем подписчикам потока
func (m *Web) AlertRaised(alert model.Alert) {
	m.broadcast(StreamMessage{Type: MessageAlert, Alert: &alert})
}

func (m *Web) broadcast(msg StreamMessage) {
	m.subscribers.Range(func(key, value interface{}) bool {
		ch, ok := value.(chan StreamMessage)
		if !ok {
			m.log.Errorf("в пуле подписчиков неожиданный тип данных: %T", value)
			return true
		}
		select {
		case ch <- msg:
		default:
			m.log.Warnf("очередь подписчика %s переполнена", key)
		}
		return true
	})
}

// Число подключённых подписчиков потока
func (m *Web) subscriberCount() int {
	count := 0
	m.subscribers.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}
