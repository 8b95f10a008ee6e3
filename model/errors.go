package model

import (
	"fmt"
	"strings"
)

// ConnectionError порт не удалось открыть (нет устройства, нет прав, порт занят).
// Для сессии ошибка фатальна и повторно не пробуется
type ConnectionError struct {
	Port string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("ошибка подключения к %s: %v", e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// DecodeError строка телеметрии разобрана не полностью. Каналы из Channels
// отброшены целиком, остальные каналы образца остаются в силе
type DecodeError struct {
	Line     string
	Channels []Channel
	Err      error
}

func (e *DecodeError) Error() string {
	names := make([]string, 0, len(e.Channels))
	for _, c := range e.Channels {
		names = append(names, string(c))
	}
	return fmt.Sprintf("строка %q: каналы [%s] не разобраны: %v", e.Line, strings.Join(names, ","), e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidationError некорректный ввод пользователя. До устройства такой ввод не доходит
type ValidationError struct {
	Field string
	Value string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("некорректное значение %s=%q: %s", e.Field, e.Value, e.Msg)
}
