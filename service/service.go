package service

import (
	"github.com/kirsrus/embmonitor/model"
)

// LinkSvc подключение к устройству по последовательному порту. Держит порт открытым,
// пока не вызван Stop.
//go:generate mockery --dir . --name LinkSvc --output ./mocks
type LinkSvc interface {
	// Запускает цикл чтения строк. Повторный вызов при работающем цикле ничего не делает
	Start() error
	// Останавливает цикл чтения и освобождает порт. Можно вызывать многократно
	Stop() error
	// Отправляет команду устройству. На закрытом порту молча ничего не делает
	Send(model.Command) error
	// Ожидает очередную строку от устройства. По окончании потока возвращает io.EOF
	EmmitLine() (string, error)
	// Параметры подключения
	Info() model.DeviceInfo
}

// WebSvc сервис общения с WEB интерфейсом
//go:generate mockery --dir . --name WebSvc --output ./mocks
type WebSvc interface {
	// Хэндлер получения последних показаний
	SampleApi(string)
	// Хэндлеры команд устройству (включение каналов и пороги)
	CommandApi(string)
	// Хэндлер потока показаний по WebSocket
	StreamApi(string)
	// Хэндлер метрик Prometheus
	MetricsApi(string)
	// Запуск HTTP-сервера после регистрации хэндлеров
	Serve()
	// Отсылка нового образца телеметрии подписчикам
	SampleReceived(model.TelemetrySample)
	// Отсылка тревоги подписчикам
	AlertRaised(model.Alert)
}

// PublisherSvc пересылка телеметрии во внешнюю систему
//go:generate mockery --dir . --name PublisherSvc --output ./mocks
type PublisherSvc interface {
	// Публикует показания каналов образца
	PublishSample(model.TelemetrySample) error
	// Публикует тревогу
	PublishAlert(model.Alert) error
	// Отключается от внешней системы
	Close()
}
