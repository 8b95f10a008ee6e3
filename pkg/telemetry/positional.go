package telemetry

import (
	"strings"

	"github.com/kirsrus/embmonitor/model"

	"github.com/juju/errors"
)

// Число полей в тройке канала: значение, порог, статус
const channelFields = 3

// Positional декодер строк текущей прошивки. Поля читаются строго по позициям:
//
//	temperature_measured=V;threshold=T;status=S                                       -> температура 0..2
//	voltage_measured=V;threshold=T;status=S                                           -> напряжение 0..2
//	temperature_measured=V;threshold=T;status=S;voltage_measured=V;threshold=T;status=S -> напряжение 3..5
//
// Напряжение смещается на позиции 3..5 всякий раз, когда в строке есть маркер температуры.
// Маркеры ищутся подстрокой по всей строке, ключи полей не проверяются.
type Positional struct{}

// Decode разбирает строку. Отсутствующие позиции дают отсутствующие поля, а не ошибку.
// Нечисловое значение или поле без "=" снимает весь канал
func (Positional) Decode(line string) (model.TelemetrySample, error) {
	res := decodeResult{line: line}
	fields := strings.Split(line, FieldSeparator)

	hasTemperature := strings.Contains(line, MarkerTemperature)
	hasVoltage := strings.Contains(line, MarkerVoltage)

	decode := func(channel model.Channel, offset int) {
		reading, err := readingAt(fields, offset)
		if err != nil {
			res.fail(channel, errors.Annotatef(err, "канал %s", channel))
			return
		}
		res.sample.SetChannel(channel, reading)
	}

	switch {
	case hasTemperature:
		decode(model.ChannelTemperature, 0)
		if hasVoltage {
			decode(model.ChannelVoltage, channelFields)
		}
	case hasVoltage:
		decode(model.ChannelVoltage, 0)
	}

	return res.result()
}

// Тройка значение/порог/статус начиная с позиции offset
func readingAt(fields []string, offset int) (*model.Reading, error) {
	reading := model.Reading{}

	if i := offset; i < len(fields) {
		value, err := numberAt(fields, i)
		if err != nil {
			return nil, err
		}
		reading.Value = &value
	}
	if i := offset + 1; i < len(fields) {
		threshold, err := numberAt(fields, i)
		if err != nil {
			return nil, err
		}
		reading.Threshold = &threshold
	}
	if i := offset + 2; i < len(fields) {
		value, err := fieldValue(fields[i])
		if err != nil {
			return nil, errors.Annotatef(err, "поле %d", i)
		}
		status := strings.TrimSpace(value)
		reading.Status = &status
	}

	return &reading, nil
}

func numberAt(fields []string, i int) (float64, error) {
	value, err := fieldValue(fields[i])
	if err != nil {
		return 0, errors.Annotatef(err, "поле %d", i)
	}
	number, err := parseNumber(value)
	if err != nil {
		return 0, errors.Annotatef(err, "поле %d", i)
	}
	return number, nil
}
