package controller

import (
	"github.com/kirsrus/embmonitor/model"
)

// MonitorCtl контроллер мониторинга устройства
//go:generate mockery --dir . --name MonitorCtl --output ./mocks
type MonitorCtl interface {
	// Ожидает очередной образец телеметрии. По окончании потока от устройства возвращает io.EOF
	EmmitSample() (*model.TelemetrySample, error)
	// Последние не устаревшие показания по каждому каналу
	Latest() model.TelemetrySample
	// Включён ли мониторинг по каждому каналу
	Monitoring() map[model.Channel]bool
	// Включает или выключает мониторинг канала. Возвращает отправленную команду
	SetMonitoring(channel model.Channel, enabled bool) (model.Command, error)
	// Устанавливает порог канала из пользовательского ввода. Возвращает отправленную команду
	SetThreshold(channel model.Channel, text string) (model.Command, error)
}
