package telemetry

import (
	"testing"

	"github.com/kirsrus/embmonitor/model"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Строки текущей прошивки оба декодера разбирают одинаково
func TestKeyedMatchesPositional(t *testing.T) {
	lines := []string{
		"temperature_measured=24.50;threshold=30.00;status=NORMAL",
		"voltage_measured=3.30;threshold=5.00;status=ALERT",
		"temperature_measured=24.50;threshold=30.00;status=NORMAL;voltage_measured=3.30;threshold=5.00;status=ALERT",
		"temperature_measured=24.50;threshold=30.00",
		"no markers here",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			want, wantErr := Positional{}.Decode(line)
			got, err := Keyed{}.Decode(line)
			require.NoError(t, wantErr)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestKeyedDecode(t *testing.T) {
	tests := []struct {
		name            string
		line            string
		wantTemperature *model.Reading
		wantVoltage     *model.Reading
		wantFailed      []model.Channel
	}{
		{
			name:            "напряжение перед температурой",
			line:            "voltage_measured=3.30;threshold=5.00;status=ALERT;temperature_measured=24.50;threshold=30.00;status=NORMAL",
			wantTemperature: &model.Reading{Value: f(24.5), Threshold: f(30), Status: s("NORMAL")},
			wantVoltage:     &model.Reading{Value: f(3.3), Threshold: f(5), Status: s("ALERT")},
		},
		{
			name:            "обрезанная температура не сдвигает напряжение",
			line:            "temperature_measured=24.50;voltage_measured=3.30;threshold=5.00;status=NORMAL",
			wantTemperature: &model.Reading{Value: f(24.5)},
			wantVoltage:     &model.Reading{Value: f(3.3), Threshold: f(5), Status: s("NORMAL")},
		},
		{
			name:            "маркер внутри значения не открывает канал",
			line:            "temperature_measured=1;threshold=2;status=voltage_measured",
			wantTemperature: &model.Reading{Value: f(1), Threshold: f(2), Status: s("voltage_measured")},
		},
		{
			name:        "поля до маркера и неизвестные ключи пропускаются",
			line:        "threshold=9;uptime=100;voltage_measured=3.30;rssi=-40;status=NORMAL",
			wantVoltage: &model.Reading{Value: f(3.3), Status: s("NORMAL")},
		},
		{
			name:        "ошибка в одном канале",
			line:        "temperature_measured=hot;threshold=30.00;voltage_measured=3.30",
			wantVoltage: &model.Reading{Value: f(3.3)},
			wantFailed:  []model.Channel{model.ChannelTemperature},
		},
		{
			name:       "поле без значения",
			line:       "voltage_measured=3.30;status",
			wantFailed: []model.Channel{model.ChannelVoltage},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Keyed{}.Decode(tt.line)

			assert.Equal(t, tt.wantTemperature, got.Temperature)
			assert.Equal(t, tt.wantVoltage, got.Voltage)

			if len(tt.wantFailed) == 0 {
				require.NoError(t, err)
				return
			}
			var decodeErr *model.DecodeError
			require.True(t, errors.As(err, &decodeErr), "ожидалась DecodeError, получено %v", err)
			assert.Equal(t, tt.wantFailed, decodeErr.Channels)
		})
	}
}
