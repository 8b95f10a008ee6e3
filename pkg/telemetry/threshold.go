package telemetry

import (
	"strconv"
	"strings"

	"github.com/kirsrus/embmonitor/model"
	"github.com/kirsrus/embmonitor/pkg/tool"
)

// ParseThreshold превращает введённый пользователем порог в целых единицах (°C, V) в команду
// установки порога в милли-единицах. Некорректный ввод возвращает *model.ValidationError
func ParseThreshold(channel model.Channel, text string) (model.Command, error) {
	field := string(channel) + ".threshold"
	if _, ok := model.ParseChannel(string(channel)); !ok {
		return model.Command{}, &model.ValidationError{Field: "channel", Value: string(channel), Msg: "неизвестный канал"}
	}

	input := strings.TrimSpace(text)
	if input == "" {
		return model.Command{}, &model.ValidationError{Field: field, Value: text, Msg: "значение не задано"}
	}
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return model.Command{}, &model.ValidationError{Field: field, Value: text, Msg: "ожидается число"}
	}
	milli, err := tool.ToMilli(value)
	if err != nil {
		return model.Command{}, &model.ValidationError{Field: field, Value: text, Msg: err.Error()}
	}

	return model.ThresholdCommand(channel, milli)
}
