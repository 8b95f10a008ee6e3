package model

import "time"

// Channel канал телеметрии устройства
type Channel string

const (
	ChannelTemperature Channel = "temperature"
	ChannelVoltage     Channel = "voltage"
)

// Channels все каналы в порядке их следования в строке телеметрии
var Channels = []Channel{ChannelTemperature, ChannelVoltage}

// ParseChannel проверяет имя канала
func ParseChannel(name string) (Channel, bool) {
	for _, c := range Channels {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// Статусы, которые присылает прошивка. Набор не закрытый: прочие значения передаются как есть
const (
	StatusNormal = "NORMAL"
	StatusAlert  = "ALERT"
)

// Reading показания одного канала. Любое из полей может отсутствовать,
// если строка от устройства оказалась обрезанной
type Reading struct {
	Value     *float64 `json:"value"`
	Threshold *float64 `json:"threshold"`
	Status    *string  `json:"status"`
}

// IsEmpty ни одно поле не заполнено
func (m Reading) IsEmpty() bool {
	return m.Value == nil && m.Threshold == nil && m.Status == nil
}

// Alerting устройство сообщает о превышении порога
func (m *Reading) Alerting() bool {
	return m != nil && m.Status != nil && *m.Status == StatusAlert
}

// TelemetrySample результат разбора одной строки телеметрии. Отсутствующий канал равен nil
type TelemetrySample struct {
	ReceivedAt  time.Time `json:"receivedAt"`
	Temperature *Reading  `json:"temperature"`
	Voltage     *Reading  `json:"voltage"`
}

// Channel показания указанного канала или nil
func (m TelemetrySample) Channel(channel Channel) *Reading {
	switch channel {
	case ChannelTemperature:
		return m.Temperature
	case ChannelVoltage:
		return m.Voltage
	}
	return nil
}

// SetChannel устанавливает показания канала. Пустые показания снимают канал целиком
func (m *TelemetrySample) SetChannel(channel Channel, reading *Reading) {
	if reading != nil && reading.IsEmpty() {
		reading = nil
	}
	switch channel {
	case ChannelTemperature:
		m.Temperature = reading
	case ChannelVoltage:
		m.Voltage = reading
	}
}

// IsEmpty в строке не нашлось ни одного канала
func (m TelemetrySample) IsEmpty() bool {
	return m.Temperature == nil && m.Voltage == nil
}

// Alert событие перехода канала в состояние ALERT
type Alert struct {
	Channel  Channel   `json:"channel"`
	RaisedAt time.Time `json:"raisedAt"`
	Reading  Reading   `json:"reading"`
	Unit     string    `json:"unit"`
	Message  string    `json:"message"`
}

// Unit единица измерения канала
func Unit(channel Channel) string {
	switch channel {
	case ChannelTemperature:
		return "°C"
	case ChannelVoltage:
		return "V"
	}
	return ""
}
