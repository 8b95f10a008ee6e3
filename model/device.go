package model

import (
	"fmt"
	"time"
)

// DefaultBaudRate скорость порта, на которой работает прошивка устройства
const DefaultBaudRate = 115200

// DeviceInfo описывает параметры подключения к устройству
type DeviceInfo struct {
	// Путь к порту (/dev/ttyACM0, COM3 и т.п.)
	Port string `conform:"trim" validate:"required"`
	// Скорость порта
	Baud int `validate:"required,baudrate"`
	// Таймаут блокирующего чтения
	ReadTimeout time.Duration `validate:"min=0"`
	// Пауза между опросами, если транспорт вернул пустое чтение без ожидания
	PollInterval time.Duration `validate:"min=0"`
}

// String краткое описание
func (m DeviceInfo) String() string {
	return fmt.Sprintf("%s@%d", m.Port, m.Baud)
}
