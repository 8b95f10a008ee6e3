package telemetry

import (
	"testing"

	"github.com/kirsrus/embmonitor/model"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		name    string
		channel model.Channel
		text    string
		want    string
		wantErr bool
	}{
		{"температура", model.ChannelTemperature, "23.456", "TEMPERATURE_SET_THRESHOLD=23456", false},
		{"напряжение", model.ChannelVoltage, "5", "VOLTAGE_SET_THRESHOLD=5000", false},
		{"пробелы по краям", model.ChannelVoltage, " 3.3 \n", "VOLTAGE_SET_THRESHOLD=3300", false},
		{"усечение", model.ChannelTemperature, "30.0009", "TEMPERATURE_SET_THRESHOLD=30000", false},
		{"отрицательное", model.ChannelTemperature, "-10.5", "TEMPERATURE_SET_THRESHOLD=-10500", false},
		{"экспонента", model.ChannelTemperature, "1e1", "TEMPERATURE_SET_THRESHOLD=10000", false},
		{"буквы", model.ChannelTemperature, "abc", "", true},
		{"пусто", model.ChannelVoltage, "  ", "", true},
		{"запятая", model.ChannelVoltage, "3,3", "", true},
		{"NaN", model.ChannelVoltage, "NaN", "", true},
		{"бесконечность", model.ChannelVoltage, "inf", "", true},
		{"неизвестный канал", model.Channel("pressure"), "1", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseThreshold(tt.channel, tt.text)
			if tt.wantErr {
				var validationErr *model.ValidationError
				require.True(t, errors.As(err, &validationErr), "ожидалась ValidationError, получено %v", err)
				assert.True(t, cmd.IsEmpty())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.String())
			assert.Equal(t, []byte(tt.want+"\r"), cmd.Bytes())
		})
	}
}
