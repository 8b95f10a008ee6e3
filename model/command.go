package model

import (
	"fmt"
)

// CommandTerminator завершает каждую команду, отправляемую на устройство
const CommandTerminator = '\r'

// Command команда устройству. Создаётся через конструкторы ниже, подтверждения не ожидает
type Command struct {
	name      string
	threshold *int
}

var (
	TemperatureOn  = Command{name: "TEMPERATURE_ON"}
	TemperatureOff = Command{name: "TEMPERATURE_OFF"}
	VoltageOn      = Command{name: "VOLTAGE_ON"}
	VoltageOff     = Command{name: "VOLTAGE_OFF"}
)

// MonitoringCommand включение/выключение мониторинга канала
func MonitoringCommand(channel Channel, enabled bool) (Command, error) {
	switch channel {
	case ChannelTemperature:
		if enabled {
			return TemperatureOn, nil
		}
		return TemperatureOff, nil
	case ChannelVoltage:
		if enabled {
			return VoltageOn, nil
		}
		return VoltageOff, nil
	}
	return Command{}, fmt.Errorf("неизвестный канал %q", channel)
}

// ThresholdCommand установка порога канала в милли-единицах (милли-градусы, милли-вольты)
func ThresholdCommand(channel Channel, milli int) (Command, error) {
	switch channel {
	case ChannelTemperature:
		return Command{name: "TEMPERATURE_SET_THRESHOLD", threshold: &milli}, nil
	case ChannelVoltage:
		return Command{name: "VOLTAGE_SET_THRESHOLD", threshold: &milli}, nil
	}
	return Command{}, fmt.Errorf("неизвестный канал %q", channel)
}

// IsEmpty команда не задана
func (m Command) IsEmpty() bool {
	return m.name == ""
}

// String текст команды без терминатора
func (m Command) String() string {
	if m.threshold != nil {
		return fmt.Sprintf("%s=%d", m.name, *m.threshold)
	}
	return m.name
}

// Bytes команда в том виде, в каком уходит в порт
func (m Command) Bytes() []byte {
	return append([]byte(m.String()), CommandTerminator)
}
