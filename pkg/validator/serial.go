package validator

import (
	"net/url"

	"github.com/go-playground/validator/v10"
)

// Стандартные скорости последовательного порта
var baudRates = map[int64]struct{}{
	1200: {}, 2400: {}, 4800: {}, 9600: {}, 19200: {}, 38400: {},
	57600: {}, 115200: {}, 230400: {}, 460800: {}, 921600: {},
}

// Валидатор скорости последовательного порта
func validatorBaudRate(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case int:
		_, ok := baudRates[int64(v)]
		return ok
	case uint:
		_, ok := baudRates[int64(v)]
		return ok
	case int64:
		_, ok := baudRates[v]
		return ok
	}
	return false
}

// Валидатор адреса MQTT брокера
func validatorBroker(fl validator.FieldLevel) bool {
	address, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	addr, err := url.Parse(address)
	if err != nil {
		return false
	}
	switch addr.Scheme {
	case "tcp", "ssl", "ws", "wss", "mqtt", "mqtts":
		return addr.Host != ""
	}
	return false
}
