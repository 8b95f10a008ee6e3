package telemetry

import (
	"strings"

	"github.com/kirsrus/embmonitor/model"

	"github.com/juju/errors"
)

// Keyed декодер по ключам. Поле-маркер открывает канал, следующие за ним поля threshold и
// status относятся к открытому каналу. Позиции полей значения не имеют, неизвестные ключи
// и поля до первого маркера пропускаются. На строках текущей прошивки даёт тот же
// результат, что и Positional
type Keyed struct{}

// Decode разбирает строку
func (Keyed) Decode(line string) (model.TelemetrySample, error) {
	res := decodeResult{line: line}
	readings := make(map[model.Channel]*model.Reading)
	broken := make(map[model.Channel]bool)

	var current model.Channel
	for i, field := range strings.Split(line, FieldSeparator) {
		key, value, ok := strings.Cut(field, KeyValueSeparator)
		key = strings.TrimSpace(key)

		switch key {
		case MarkerTemperature:
			current = model.ChannelTemperature
		case MarkerVoltage:
			current = model.ChannelVoltage
		case KeyThreshold, KeyStatus:
		default:
			continue
		}
		if current == "" || broken[current] {
			continue
		}
		if !ok {
			broken[current] = true
			res.fail(current, errors.Errorf("канал %s: поле %d: в поле %q нет значения", current, i, field))
			continue
		}

		reading, found := readings[current]
		if !found {
			reading = &model.Reading{}
			readings[current] = reading
		}

		switch key {
		case KeyStatus:
			status := strings.TrimSpace(value)
			reading.Status = &status
		default:
			number, err := parseNumber(value)
			if err != nil {
				broken[current] = true
				res.fail(current, errors.Annotatef(err, "канал %s: поле %d", current, i))
				continue
			}
			if key == KeyThreshold {
				reading.Threshold = &number
			} else {
				reading.Value = &number
			}
		}
	}

	for _, channel := range model.Channels {
		if reading, found := readings[channel]; found && !broken[channel] {
			res.sample.SetChannel(channel, reading)
		}
	}
	return res.result()
}
