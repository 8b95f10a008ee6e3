package config

import "time"

type (

	// Config конфигурация программы
	Config struct {

		// Описание логирования
		Log struct {

			// Путь к файлу лога
			Path string

			// Имя файла логирования
			Filename string `required:"true" default:"monitor.log"`

			// Уровень логирования
			Level string `required:"true" default:"info"`

			// Выводить лог только на консоль
			Console bool `default:"false"`
		}

		// Подключение к устройству
		Serial struct {

			// Порт устройства, например /dev/ttyACM0 или COM3
			Port string `required:"true"`

			// Скорость порта
			Baud int `default:"115200"`

			// Таймаут блокирующего чтения (в секундах)
			ReadTimeout time.Duration `default:"10"`

			// Пауза опроса, если порт вернул пустое чтение без ожидания (в милисекундах)
			PollInterval time.Duration `default:"100"`
		}

		// Протокол телеметрии
		Protocol struct {

			// Декодер строк: positional (текущая прошивка) или keyed
			Decoder string `default:"positional"`
		}

		// Обработка телеметрии
		Monitor struct {

			// Через сколько секунд последние показания канала считаются устаревшими
			StaleAfter time.Duration `default:"30"`

			// Величина очереди разобранных образцов
			EventCapacity uint `default:"10"`
		}

		// Обслуживание WEB-сервера
		Http struct {

			// Отключить API
			Disabled bool

			// Адрес, на котором слушает сервер
			Address string `default:":8080"`
		}

		// Пересылка телеметрии в MQTT. Пустой Broker отключает пересылку
		Mqtt struct {

			// Адрес брокера, например tcp://127.0.0.1:1883
			Broker string

			// Корневой топик
			Topic string `default:"embedded-monitor"`

			// Идентификатор клиента
			ClientID string `default:"embedded-monitor"`

			// QoS публикаций
			Qos byte
		}
	}
)
