package telemetry

import (
	"testing"

	"github.com/kirsrus/embmonitor/model"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func TestPositionalDecode(t *testing.T) {
	tests := []struct {
		name            string
		line            string
		wantTemperature *model.Reading
		wantVoltage     *model.Reading
		wantFailed      []model.Channel
	}{
		{
			name:            "только температура",
			line:            "temperature_measured=24.50;threshold=30.00;status=NORMAL",
			wantTemperature: &model.Reading{Value: f(24.5), Threshold: f(30), Status: s("NORMAL")},
		},
		{
			name:        "только напряжение",
			line:        "voltage_measured=3.30;threshold=5.00;status=ALERT",
			wantVoltage: &model.Reading{Value: f(3.3), Threshold: f(5), Status: s("ALERT")},
		},
		{
			name:            "оба канала",
			line:            "temperature_measured=24.50;threshold=30.00;status=NORMAL;voltage_measured=3.30;threshold=5.00;status=ALERT",
			wantTemperature: &model.Reading{Value: f(24.5), Threshold: f(30), Status: s("NORMAL")},
			wantVoltage:     &model.Reading{Value: f(3.3), Threshold: f(5), Status: s("ALERT")},
		},
		{
			name: "без маркеров",
			line: "hello;world=1",
		},
		{
			name: "пустая строка",
			line: "",
		},
		{
			name:            "обрезанная температура",
			line:            "temperature_measured=24.50",
			wantTemperature: &model.Reading{Value: f(24.5)},
		},
		{
			name:        "обрезанное напряжение",
			line:        "voltage_measured=3.30;threshold=5.00",
			wantVoltage: &model.Reading{Value: f(3.3), Threshold: f(5)},
		},
		{
			name:            "обрезанное напряжение в общей строке",
			line:            "temperature_measured=24.50;threshold=30.00;status=NORMAL;voltage_measured=3.30",
			wantTemperature: &model.Reading{Value: f(24.5), Threshold: f(30), Status: s("NORMAL")},
			wantVoltage:     &model.Reading{Value: f(3.3)},
		},
		{
			name:            "статус обрезается по краям и не проверяется",
			line:            "temperature_measured=24.50;threshold=30.00;status= WARMING \r",
			wantTemperature: &model.Reading{Value: f(24.5), Threshold: f(30), Status: s("WARMING")},
		},
		{
			name:            "пустой статус",
			line:            "temperature_measured=24.50;threshold=30.00;status=",
			wantTemperature: &model.Reading{Value: f(24.5), Threshold: f(30), Status: s("")},
		},
		{
			name:            "отрицательная температура",
			line:            "temperature_measured=-5.25;threshold=-1;status=ALERT",
			wantTemperature: &model.Reading{Value: f(-5.25), Threshold: f(-1), Status: s("ALERT")},
		},
		{
			name:       "нечисловое значение снимает канал",
			line:       "temperature_measured=abc;threshold=30.00;status=NORMAL",
			wantFailed: []model.Channel{model.ChannelTemperature},
		},
		{
			name:       "нечисловой порог снимает канал целиком",
			line:       "voltage_measured=3.30;threshold=;status=NORMAL",
			wantFailed: []model.Channel{model.ChannelVoltage},
		},
		{
			name:        "сбой температуры не трогает напряжение",
			line:        "temperature_measured=24.50;threshold=x;status=NORMAL;voltage_measured=3.30;threshold=5.00;status=NORMAL",
			wantVoltage: &model.Reading{Value: f(3.3), Threshold: f(5), Status: s("NORMAL")},
			wantFailed:  []model.Channel{model.ChannelTemperature},
		},
		{
			name:       "поле без знака равенства",
			line:       "temperature_measured=24.50;threshold;status=NORMAL",
			wantFailed: []model.Channel{model.ChannelTemperature},
		},
		{
			// Маркер напряжения в позиции 2 сдвигает чтение напряжения на 3..5, которых нет,
			// а температура ломается на поле статуса без "="
			name:       "маркер напряжения на месте статуса",
			line:       "temperature_measured=24.50;threshold=30.00;voltage_measured",
			wantFailed: []model.Channel{model.ChannelTemperature},
		},
		{
			// Маркер найден подстрокой в значении статуса: поля 3..5 читаются как напряжение
			name:            "маркер напряжения внутри значения",
			line:            "temperature_measured=1;threshold=2;status=voltage_measured;x=4;y=5;z=OK",
			wantTemperature: &model.Reading{Value: f(1), Threshold: f(2), Status: s("voltage_measured")},
			wantVoltage:     &model.Reading{Value: f(4), Threshold: f(5), Status: s("OK")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Positional{}.Decode(tt.line)

			assert.Equal(t, tt.wantTemperature, got.Temperature)
			assert.Equal(t, tt.wantVoltage, got.Voltage)

			if len(tt.wantFailed) == 0 {
				require.NoError(t, err)
				return
			}
			var decodeErr *model.DecodeError
			require.True(t, errors.As(err, &decodeErr), "ожидалась DecodeError, получено %v", err)
			assert.Equal(t, tt.wantFailed, decodeErr.Channels)
			assert.Equal(t, tt.line, decodeErr.Line)
		})
	}
}

func TestPositionalDecodeAlerting(t *testing.T) {
	got, err := Positional{}.Decode("voltage_measured=3.30;threshold=5.00;status=ALERT")
	require.NoError(t, err)
	assert.True(t, got.Voltage.Alerting())
	assert.False(t, got.Temperature.Alerting())
	assert.Nil(t, got.Temperature)
}

func TestNewDecoder(t *testing.T) {
	d, err := NewDecoder("")
	require.NoError(t, err)
	assert.IsType(t, Positional{}, d)

	d, err = NewDecoder(" Keyed ")
	require.NoError(t, err)
	assert.IsType(t, Keyed{}, d)

	_, err = NewDecoder("json")
	assert.Error(t, err)
}
