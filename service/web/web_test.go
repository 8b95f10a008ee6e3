package web

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ctlmocks "github.com/kirsrus/embmonitor/controller/mocks"
	"github.com/kirsrus/embmonitor/model"

	"github.com/gorilla/websocket"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWeb(t *testing.T, monitorCtl *ctlmocks.MonitorCtl) (*Web, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc, err := NewWeb(ctx, monitorCtl, &ConfigWeb{Address: "127.0.0.1:0"})
	require.NoError(t, err)
	web := svc.(*Web)
	web.SampleApi("/api/sample")
	web.CommandApi("/api")
	web.StreamApi("/api/stream")
	web.MetricsApi("/metrics")

	server := httptest.NewServer(web.e)
	t.Cleanup(server.Close)
	return web, server
}

func post(t *testing.T, url, body string) (int, map[string]string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	res := make(map[string]string)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return resp.StatusCode, res
}

func TestNewWeb(t *testing.T) {
	_, err := NewWeb(context.Background(), new(ctlmocks.MonitorCtl), nil)
	assert.Error(t, err)
	_, err = NewWeb(context.Background(), nil, &ConfigWeb{})
	assert.Error(t, err)
}

func TestWeb_Sample(t *testing.T) {
	value, status := 21.5, model.StatusNormal
	monitorCtl := new(ctlmocks.MonitorCtl)
	monitorCtl.On("Latest").Return(model.TelemetrySample{
		Temperature: &model.Reading{Value: &value, Status: &status},
	})
	monitorCtl.On("Monitoring").Return(map[model.Channel]bool{
		model.ChannelTemperature: true,
		model.ChannelVoltage:     false,
	})
	_, server := newTestWeb(t, monitorCtl)

	resp, err := http.Get(server.URL + "/api/sample")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res sampleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.NotNil(t, res.Sample.Temperature)
	assert.Equal(t, 21.5, *res.Sample.Temperature.Value)
	assert.Nil(t, res.Sample.Temperature.Threshold)
	assert.Nil(t, res.Sample.Voltage)
	assert.False(t, res.Monitoring[model.ChannelVoltage])
}

func TestWeb_Monitoring(t *testing.T) {
	monitorCtl := new(ctlmocks.MonitorCtl)
	monitorCtl.On("SetMonitoring", model.ChannelVoltage, false).Return(model.VoltageOff, nil)
	_, server := newTestWeb(t, monitorCtl)

	code, res := post(t, server.URL+"/api/monitoring/voltage", `{"enabled": false}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "VOLTAGE_OFF", res["command"])

	code, _ = post(t, server.URL+"/api/monitoring/pressure", `{"enabled": true}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = post(t, server.URL+"/api/monitoring/voltage", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	monitorCtl.AssertNumberOfCalls(t, "SetMonitoring", 1)
}

func TestWeb_Threshold(t *testing.T) {
	cmd, err := model.ThresholdCommand(model.ChannelTemperature, 23456)
	require.NoError(t, err)

	monitorCtl := new(ctlmocks.MonitorCtl)
	monitorCtl.On("SetThreshold", model.ChannelTemperature, "23.456").Return(cmd, nil)
	monitorCtl.On("SetThreshold", model.ChannelTemperature, "5").Return(cmd, nil)
	monitorCtl.On("SetThreshold", model.ChannelVoltage, "abc").Return(model.Command{},
		&model.ValidationError{Field: "voltage.threshold", Value: "abc", Msg: "ожидается число"})
	monitorCtl.On("SetThreshold", model.ChannelVoltage, "1").Return(model.Command{},
		errors.New("порт недоступен"))
	_, server := newTestWeb(t, monitorCtl)

	code, res := post(t, server.URL+"/api/threshold/temperature", `{"value": "23.456"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "TEMPERATURE_SET_THRESHOLD=23456", res["command"])

	// Число вместо строки тоже принимается
	code, _ = post(t, server.URL+"/api/threshold/temperature", `{"value": 5}`)
	assert.Equal(t, http.StatusOK, code)

	code, res = post(t, server.URL+"/api/threshold/voltage", `{"value": "abc"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, res["message"], "abc")

	code, _ = post(t, server.URL+"/api/threshold/voltage", `{"value": "1"}`)
	assert.Equal(t, http.StatusServiceUnavailable, code)

	code, _ = post(t, server.URL+"/api/threshold/current", `{"value": "1"}`)
	assert.Equal(t, http.StatusNotFound, code)

	monitorCtl.AssertExpectations(t)
}

func TestWeb_Serve(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	monitorCtl := new(ctlmocks.MonitorCtl)
	monitorCtl.On("Latest").Return(model.TelemetrySample{})
	monitorCtl.On("Monitoring").Return(map[model.Channel]bool{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc, err := NewWeb(ctx, monitorCtl, &ConfigWeb{Address: addr})
	require.NoError(t, err)

	// До Serve порт никто не слушает
	_, err = http.Get("http://" + addr + "/health")
	require.Error(t, err)

	svc.SampleApi("/api/sample")
	svc.Serve()
	svc.Serve()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/api/sample")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWeb_HealthAndMetrics(t *testing.T) {
	_, server := newTestWeb(t, new(ctlmocks.MonitorCtl))

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "embmonitor_link_connected")
}

func TestWeb_Stream(t *testing.T) {
	web, server := newTestWeb(t, new(ctlmocks.MonitorCtl))

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return web.subscriberCount() == 1 }, time.Second, 10*time.Millisecond)

	value := 4.9
	web.SampleReceived(model.TelemetrySample{Voltage: &model.Reading{Value: &value}})
	web.AlertRaised(model.Alert{Channel: model.ChannelVoltage, Unit: "V", Message: "тревога"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageSample, msg.Type)
	require.NotNil(t, msg.Sample)
	require.NotNil(t, msg.Sample.Voltage)
	assert.Equal(t, 4.9, *msg.Sample.Voltage.Value)

	msg = StreamMessage{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageAlert, msg.Type)
	require.NotNil(t, msg.Alert)
	assert.Equal(t, model.ChannelVoltage, msg.Alert.Channel)

	// После отключения подписчик удаляется из пула
	conn.Close()
	require.Eventually(t, func() bool { return web.subscriberCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestThresholdText(t *testing.T) {
	assert.Equal(t, "23.5", thresholdText(json.RawMessage(`"23.5"`)))
	assert.Equal(t, "23.5", thresholdText(json.RawMessage(`23.5`)))
	assert.Equal(t, "", thresholdText(json.RawMessage(`null`)))
	assert.Equal(t, "", thresholdText(nil))
}
