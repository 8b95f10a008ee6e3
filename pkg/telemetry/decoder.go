// Package telemetry разбор строк телеметрии устройства и подготовка команд порогов.
//
// Строка телеметрии состоит из полей "ключ=значение", разделённых ";". Наличие канала
// определяется по маркеру (temperature_measured, voltage_measured) в любом месте строки.
package telemetry

import (
	"strconv"
	"strings"

	"github.com/kirsrus/embmonitor/model"

	"github.com/juju/errors"
)

const (
	MarkerTemperature = "temperature_measured"
	MarkerVoltage     = "voltage_measured"
	KeyThreshold      = "threshold"
	KeyStatus         = "status"

	FieldSeparator    = ";"
	KeyValueSeparator = "="
)

// Имена декодеров для конфигурации
const (
	DecoderPositional = "positional"
	DecoderKeyed      = "keyed"
)

// Decoder превращает одну строку телеметрии в образец. Никогда не паникует: при ошибке
// разбора возвращает *model.DecodeError вместе с той частью образца, что удалось разобрать
type Decoder interface {
	Decode(line string) (model.TelemetrySample, error)
}

// NewDecoder возвращает декодер по имени из конфигурации
func NewDecoder(name string) (Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DecoderPositional:
		return Positional{}, nil
	case DecoderKeyed:
		return Keyed{}, nil
	}
	return nil, errors.Errorf("неизвестный декодер телеметрии %q", name)
}

// Значение поля: текст между первым и вторым "=", как его понимает прошивка
func fieldValue(field string) (string, error) {
	parts := strings.Split(field, KeyValueSeparator)
	if len(parts) < 2 {
		return "", errors.Errorf("в поле %q нет значения", field)
	}
	return parts[1], nil
}

func parseNumber(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.Errorf("%q не является числом", value)
	}
	return v, nil
}

// Накопитель результата: каналы, которые не удалось разобрать, и первая ошибка
type decodeResult struct {
	line   string
	sample model.TelemetrySample
	failed []model.Channel
	err    error
}

func (m *decodeResult) fail(channel model.Channel, err error) {
	m.failed = append(m.failed, channel)
	if m.err == nil {
		m.err = err
	}
	m.sample.SetChannel(channel, nil)
}

func (m *decodeResult) result() (model.TelemetrySample, error) {
	if len(m.failed) == 0 {
		return m.sample, nil
	}
	return m.sample, &model.DecodeError{Line: m.line, Channels: m.failed, Err: m.err}
}
