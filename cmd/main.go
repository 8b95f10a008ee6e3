package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/kirsrus/embmonitor/controller/manager"
	"github.com/kirsrus/embmonitor/controller/monitor"
	"github.com/kirsrus/embmonitor/model"
	"github.com/kirsrus/embmonitor/pkg/config"
	"github.com/kirsrus/embmonitor/pkg/logger"
	"github.com/kirsrus/embmonitor/pkg/metrics"
	"github.com/kirsrus/embmonitor/pkg/telemetry"
	"github.com/kirsrus/embmonitor/service"
	linkSvcMod "github.com/kirsrus/embmonitor/service/link"
	mqttSvcMod "github.com/kirsrus/embmonitor/service/mqtt"
	webSvcMod "github.com/kirsrus/embmonitor/service/web"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
)

var (
	cfg *config.Config
	log *logrus.Logger

	configPath = flag.String("config", config.FileName, "файл конфигурации")
	listPorts  = flag.Bool("ports", false, "вывести список последовательных портов и выйти")
)

func main() {
	flag.Parse()

	if *listPorts {
		ports, err := linkSvcMod.ListPorts()
		if err != nil {
			fmt.Printf("ОШИБКА: %v\n", err)
			os.Exit(1)
		}
		if len(ports) == 0 {
			fmt.Println("последовательные порты не найдены")
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	cfg = config.GetWithPath(*configPath)
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.WarnLevel
	}
	log = logger.GetWithConfig(logger.Config{
		Path:    cfg.Log.Path,
		File:    cfg.Log.Filename,
		Level:   level,
		Console: cfg.Log.Console,
	})

	err = run()
	if err != nil {
		var connErr *model.ConnectionError
		if errors.As(err, &connErr) {
			fmt.Printf("ОШИБКА: не удалось подключиться к устройству на %s: %v\n", connErr.Port, connErr.Err)
			fmt.Println("Проверьте порт в конфигурации или выведите список портов ключом -ports")
			os.Exit(1)
		}
		fmt.Printf("ОШИБКА: в процессе работы произошла ошибка: %v\n", err)
		fmt.Printf("Для подробностей смотри лог: %s/%s\n", cfg.Log.Path, cfg.Log.Filename)
		log.Fatal(errors.ErrorStack(err))
	}
}

func run() error {
	// Отлавливаем сигнал завершения работы программы
	chanInterrupt := make(chan os.Signal, 1)
	signal.Notify(chanInterrupt, os.Interrupt)

	done := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.Register()

	// region Подключение к устройству

	linkSvc, err := linkSvcMod.NewSerial(ctx, &linkSvcMod.ConfigSerial{
		Log: log,
		Device: model.DeviceInfo{
			Port:         cfg.Serial.Port,
			Baud:         cfg.Serial.Baud,
			ReadTimeout:  cfg.Serial.ReadTimeout,
			PollInterval: cfg.Serial.PollInterval,
		},
	})
	if err != nil {
		return errors.Trace(err)
	}
	defer linkSvc.Stop()

	// endregion
	// region Контроллер мониторинга

	decoder, err := telemetry.NewDecoder(cfg.Protocol.Decoder)
	if err != nil {
		return errors.Trace(err)
	}
	monitorCtl, err := monitor.NewMonitor(ctx, linkSvc, &monitor.ConfigMonitor{
		Log:           log,
		Decoder:       decoder,
		EventCapacity: cfg.Monitor.EventCapacity,
		StaleAfter:    cfg.Monitor.StaleAfter,
	})
	if err != nil {
		return errors.Trace(err)
	}

	// endregion
	// region Сервис WEB

	var webSvc service.WebSvc
	if !cfg.Http.Disabled {
		webSvc, err = webSvcMod.NewWeb(ctx, monitorCtl, &webSvcMod.ConfigWeb{
			Log:     log,
			Address: cfg.Http.Address,
		})
		if err != nil {
			return errors.Trace(err)
		}
		webSvc.SampleApi("/api/sample")
		webSvc.CommandApi("/api")
		webSvc.StreamApi("/api/stream")
		webSvc.MetricsApi("/metrics")
		webSvc.Serve()
	}

	// endregion
	// region Пересылка в MQTT

	var publisherSvc service.PublisherSvc
	if cfg.Mqtt.Broker != "" {
		publisherSvc, err = mqttSvcMod.NewMqtt(ctx, &mqttSvcMod.ConfigMqtt{
			Log:      log,
			Broker:   cfg.Mqtt.Broker,
			Topic:    cfg.Mqtt.Topic,
			ClientID: cfg.Mqtt.ClientID,
			Qos:      cfg.Mqtt.Qos,
		})
		if err != nil {
			// Без брокера мониторинг продолжает работать
			log.Warnf("пересылка в MQTT отключена: %v", err)
			publisherSvc = nil
		} else {
			defer publisherSvc.Close()
		}
	}

	// endregion
	// region Менеджер управления всеми

	managerCtl, err := manager.NewManager(ctx, &manager.ConfigManager{
		Log:          log,
		MonitorCtl:   monitorCtl,
		WebSvc:       webSvc,
		PublisherSvc: publisherSvc,
	})
	if err != nil {
		return errors.Trace(err)
	}

	go func() {
		done <- managerCtl.Serve()
	}()

	// endregion

	// Процесс завершения работы
	select {
	case err := <-done:
		if err != nil {
			return errors.Trace(err)
		}
		log.Info("поток данных от устройства завершён, завершение работы")
		return nil
	case <-chanInterrupt:
		log.Info("получена по каналу interrupt команда на завершение работы программы")
		cancel()
		if err := linkSvc.Stop(); err != nil {
			log.Warn(err)
		}
		time.Sleep(time.Second)
		return nil
	}
}
