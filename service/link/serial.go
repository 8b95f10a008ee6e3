package link

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/kirsrus/embmonitor/model"
	"github.com/kirsrus/embmonitor/pkg/logger"
	"github.com/kirsrus/embmonitor/pkg/metrics"
	"github.com/kirsrus/embmonitor/pkg/validator"
	"github.com/kirsrus/embmonitor/service"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"github.com/tarm/serial"
)

const (
	ReadTimeout   = 10 * time.Second
	PollInterval  = 100 * time.Millisecond
	LineCapacity  = 20
	readChunkSize = 256
	// Строка длиннее считается мусором и отбрасывается
	MaxLineLength = 4096
)

// ErrClosed порт уже освобождён через Stop
var ErrClosed = errors.New("подключение к устройству закрыто")

// Port открытый последовательный порт
type Port interface {
	io.ReadWriteCloser
	// Сбрасывает накопленные в буфере порта данные
	Flush() error
}

// Opener открывает порт. Подменяется в тестах
type Opener func(info model.DeviceInfo) (Port, error)

// OpenTarm открывает порт через github.com/tarm/serial. Чтение блокируется не дольше
// info.ReadTimeout, после чего возвращает пустой результат
func OpenTarm(info model.DeviceInfo) (Port, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        info.Port,
		Baud:        info.Baud,
		Parity:      serial.ParityNone,
		ReadTimeout: info.ReadTimeout,
	})
	if err != nil {
		return nil, err
	}
	return port, nil
}

// Serial подключение к устройству по последовательному порту. Инициируется через NewSerial.
// Чтение ведёт одна горутина цикла, запись команд идёт из горутины вызывающего под мьютексом,
// который защищает и закрытие порта.
type Serial struct {
	ctx  context.Context
	log  *logrus.Entry
	info model.DeviceInfo
	port Port

	mu          sync.Mutex
	running     bool
	stopped     bool
	lines       chan string
	linesClosed bool
	stop        chan struct{}
}

// ConfigSerial конфигурация Serial
type ConfigSerial struct {
	Log    *logrus.Logger
	Device model.DeviceInfo
	// Открытие порта. По умолчанию OpenTarm
	Opener Opener
}

// NewSerial открывает порт и сразу включает мониторинг обоих каналов (TEMPERATURE_ON, VOLTAGE_ON).
// Если порт не открылся, возвращается *model.ConnectionError. Отмена ctx равносильна Stop
func NewSerial(ctx context.Context, config *ConfigSerial) (service.LinkSvc, error) {
	if config == nil {
		return nil, errors.New("не задана конфигурация config")
	}
	if config.Log == nil {
		config.Log = logger.Discard()
	}
	info := config.Device
	if info.Baud == 0 {
		info.Baud = model.DefaultBaudRate
	}
	if info.ReadTimeout == 0 {
		info.ReadTimeout = ReadTimeout
	}
	if info.PollInterval == 0 {
		info.PollInterval = PollInterval
	}
	if err := validator.Get().ValidateWithConform(&info); err != nil {
		return nil, errors.Annotate(err, "некорректное описание устройства")
	}
	opener := config.Opener
	if opener == nil {
		opener = OpenTarm
	}

	log := config.Log.WithFields(map[string]interface{}{
		"module": "link",
		"scope":  "service",
		"port":   info.Port,
	})

	port, err := opener(info)
	if err != nil {
		metrics.LinkConnected.Set(0)
		log.Warnf("ошибка подключения: %v", err)
		return nil, errors.Trace(&model.ConnectionError{Port: info.Port, Err: err})
	}
	if err := port.Flush(); err != nil {
		log.Debugf("не удалось сбросить буфер порта: %v", err)
	}

	res := &Serial{
		ctx:   ctx,
		log:   log,
		info:  info,
		port:  port,
		lines: make(chan string, LineCapacity),
		stop:  make(chan struct{}),
	}

	// Устройство должно начать присылать оба канала
	for _, cmd := range []model.Command{model.TemperatureOn, model.VoltageOn} {
		if err := res.Send(cmd); err != nil {
			_ = res.Stop()
			return nil, errors.Trace(&model.ConnectionError{Port: info.Port, Err: err})
		}
	}

	log.Infof("подключение установлено (%d бод)", info.Baud)
	metrics.LinkConnected.Set(1)

	if ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				_ = res.Stop()
			case <-res.stop:
			}
		}()
	}

	return res, nil
}

// Info параметры подключения
func (m *Serial) Info() model.DeviceInfo {
	return m.info
}

// Start запускает цикл чтения строк. После завершения потока из-за ошибки чтения цикл можно
// запустить заново, пока порт не освобождён через Stop
func (m *Serial) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrClosed
	}
	if m.running {
		return nil
	}
	if m.linesClosed {
		m.lines = make(chan string, LineCapacity)
		m.linesClosed = false
	}
	m.running = true
	go m.loop(m.lines)

	return nil
}

// Stop останавливает цикл чтения и закрывает порт. Цикл замечает остановку не позднее
// чем через таймаут чтения
func (m *Serial) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return nil
	}
	m.stopped = true
	close(m.stop)
	if !m.running && !m.linesClosed {
		close(m.lines)
		m.linesClosed = true
	}
	metrics.LinkConnected.Set(0)

	if err := m.port.Close(); err != nil {
		m.log.Warnf("ошибка закрытия порта: %v", err)
	}
	m.log.Info("подключение закрыто")
	return nil
}

// Send пишет команду с завершающим \r. На закрытом порту команда отбрасывается без ошибки
func (m *Serial) Send(cmd model.Command) error {
	if cmd.IsEmpty() {
		return errors.New("команда не задана")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		m.log.Debugf("команда %s отброшена: порт закрыт", cmd)
		return nil
	}
	if _, err := m.port.Write(cmd.Bytes()); err != nil {
		m.log.Warnf("ошибка отправки команды %s: %v", cmd, err)
		return errors.Annotatef(err, "отправка команды %s", cmd)
	}
	metrics.CommandsSent.WithLabelValues(commandName(cmd)).Inc()
	m.log.Debugf("отправлена команда %s", cmd)
	return nil
}

// EmmitLine ожидает строку от устройства. Когда поток закончился (Stop, ошибка чтения)
// возвращает io.EOF, при отмене контекста его ошибку
func (m *Serial) EmmitLine() (string, error) {
	m.mu.Lock()
	lines := m.lines
	m.mu.Unlock()

	var done <-chan struct{}
	if m.ctx != nil {
		done = m.ctx.Done()
	}

	select {
	case line, ok := <-lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-done:
		return "", m.ctx.Err()
	}
}

// Цикл чтения. Разбивает поток на строки по \n и отдаёт их в lines, пока не вызван Stop
// или порт не вернул ошибку
func (m *Serial) loop(lines chan string) {
	m.log.Info("старт цикла чтения")
	defer func() {
		m.mu.Lock()
		close(lines)
		m.linesClosed = true
		m.running = false
		m.mu.Unlock()
		m.log.Info("завершение цикла чтения")
	}()

	buf := make([]byte, readChunkSize)
	var pending []byte
	// Остаток слишком длинной строки пропускается до ближайшего \n
	discarding := false

	for {
		select {
		case <-m.stop:
			return
		default:
		}

		n, err := m.port.Read(buf)
		if n > 0 {
			metrics.BytesReceived.Add(float64(n))
			data := buf[:n]
			if discarding {
				idx := bytes.IndexByte(data, '\n')
				if idx < 0 {
					data = nil
				} else {
					data = data[idx+1:]
					discarding = false
				}
			}
			pending = append(pending, data...)
			for {
				idx := bytes.IndexByte(pending, '\n')
				if idx < 0 {
					break
				}
				line := cleanLine(pending[:idx])
				pending = pending[idx+1:]
				if line == "" {
					continue
				}
				select {
				case lines <- line:
				case <-m.stop:
					return
				}
			}
			if len(pending) > MaxLineLength {
				m.log.Warnf("строка длиннее %d байт без перевода строки отброшена", MaxLineLength)
				pending = pending[:0]
				discarding = true
			}
		}

		if err != nil && err != io.EOF {
			select {
			case <-m.stop:
			default:
				m.log.Warnf("ошибка чтения из порта, поток завершён: %v", err)
			}
			return
		}

		// Пустое чтение: у блокирующего порта истёк таймаут, у неблокирующего данных ещё нет
		if n == 0 {
			select {
			case <-m.stop:
				return
			case <-time.After(m.info.PollInterval):
			}
		}
	}
}

// Строка без терминатора, пробелов по краям и некорректных UTF-8 последовательностей
func cleanLine(raw []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
}

// Имя команды без аргумента для метрик
func commandName(cmd model.Command) string {
	name, _, _ := strings.Cut(cmd.String(), "=")
	return name
}
