package adapters

import (
	"crypto/tls"
	"fmt"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMQTTClient(mClient *MockPahoClient, params MQTTClientParams) *MQTTClient {
	params.ClientID = "test"
	params.Username = "admin"
	params.Password = "password"
	params.BrokerURL = "tcp://localhost:1883"
	params.NewClientFunc = func(options *mqtt.ClientOptions) mqtt.Client {
		return mClient
	}
	return NewMQTTClient(params)
}

func TestMQTTClient_Connect(t *testing.T) {
	mClient := &MockPahoClient{}
	mToken := &MockToken{}

	mqttClient := newTestMQTTClient(mClient, MQTTClientParams{})

	mClient.On("Connect").Return(mToken).Once()
	mToken.On("Done").Return(doneChannel()).Once()
	mToken.On("Error").Return(nil).Once()

	err := mqttClient.Connect()
	require.NoError(t, err)
	assert.Equal(t, true, mqttClient.IsConnected())

	status := mqttClient.Status()
	assert.Equal(t, uint64(0), status.MessageCount)
	assert.Equal(t, time.Unix(0, 0), status.LastTimePublished)
	assert.Equal(t, true, status.Connected)

	// already connected, no second paho connect
	err = mqttClient.Connect()
	require.NoError(t, err)

	mClient.AssertExpectations(t)
	mToken.AssertExpectations(t)
}

func TestMQTTClient_Connect_Error(t *testing.T) {
	mClient := &MockPahoClient{}
	mToken := &MockToken{}

	mqttClient := newTestMQTTClient(mClient, MQTTClientParams{})

	mClient.On("Connect").Return(mToken).Once()
	mToken.On("Done").Return(doneChannel()).Once()
	mToken.On("Error").Return(fmt.Errorf("internal")).Twice()

	err := mqttClient.Connect()
	require.Error(t, err)
	assert.Equal(t, false, mqttClient.IsConnected())

	mClient.AssertExpectations(t)
	mToken.AssertExpectations(t)
}

func TestMQTTClient_Connect_Timeout(t *testing.T) {
	mClient := &MockPahoClient{}
	mToken := &MockToken{}

	mqttClient := newTestMQTTClient(mClient, MQTTClientParams{
		ConnectTimeout: 10 * time.Millisecond,
	})

	mClient.On("Connect").Return(mToken).Once()
	mToken.On("Done").Return(pendingChannel()).Once()

	err := mqttClient.Connect()
	require.Error(t, err)
	require.Equal(t, ErrMQTTConnectTimeout, err)
	assert.Equal(t, false, mqttClient.IsConnected())

	mClient.AssertExpectations(t)
	mToken.AssertExpectations(t)
}

func TestMQTTClient_Disconnect(t *testing.T) {
	mClient := &MockPahoClient{}
	mToken := &MockToken{}

	mqttClient := newTestMQTTClient(mClient, MQTTClientParams{})

	mClient.On("Connect").Return(mToken).Once()
	mToken.On("Done").Return(doneChannel()).Once()
	mToken.On("Error").Return(nil).Once()

	err := mqttClient.Connect()
	require.NoError(t, err)
	assert.Equal(t, true, mqttClient.IsConnected())

	mClient.On("Disconnect", uint(mqttDisconnectQuiesce)).Return().Once()

	mqttClient.Disconnect()
	assert.Equal(t, false, mqttClient.IsConnected())

	mClient.AssertExpectations(t)
	mToken.AssertExpectations(t)
}

func TestMQTTClient_OnConnectionLost(t *testing.T) {
	mClient := &MockPahoClient{}
	mToken := &MockToken{}

	mqttClient := newTestMQTTClient(mClient, MQTTClientParams{})

	mClient.On("Connect").Return(mToken).Once()
	mToken.On("Done").Return(doneChannel()).Once()
	mToken.On("Error").Return(nil).Once()

	err := mqttClient.Connect()
	require.NoError(t, err)
	assert.Equal(t, true, mqttClient.IsConnected())

	mqttClient.OnConnectionLost(mClient, fmt.Errorf("connection lost"))
	assert.Equal(t, false, mqttClient.IsConnected())

	status := mqttClient.Status()
	assert.Equal(t, uint64(0), status.MessageCount)
	assert.Equal(t, false, status.Connected)

	mClient.AssertExpectations(t)
	mToken.AssertExpectations(t)
}

func TestMQTTClient_Publish(t *testing.T) {
	mClient := &MockPahoClient{}
	mToken := &MockToken{}

	mqttClient := newTestMQTTClient(mClient, MQTTClientParams{})

	mClient.On("Connect").Return(mToken).Once()
	mToken.On("Done").Return(doneChannel()).Twice()
	mToken.On("Error").Return(nil).Twice()

	err := mqttClient.Connect()
	require.NoError(t, err)

	topic := "home/livingroom/dht/state"
	qos := byte(0)
	retained := false
	payload := []byte(`{"temperature":21.5,"humidity":48.2}`)

	mClient.On("Publish", topic, qos, retained, payload).Return(mToken).Once()

	err = mqttClient.Publish(topic, qos, retained, payload)
	require.NoError(t, err)

	status := mqttClient.Status()
	assert.Equal(t, uint64(1), status.MessageCount)
	assert.True(t, time.Now().After(status.LastTimePublished))
	assert.Equal(t, true, status.Connected)

	mClient.AssertExpectations(t)
	mToken.AssertExpectations(t)
}

func TestMQTTClient_Publish_NotConnected(t *testing.T) {
	mClient := &MockPahoClient{}

	mqttClient := newTestMQTTClient(mClient, MQTTClientParams{})

	err := mqttClient.Publish("home/livingroom/dht/state", 0, false, []byte("{}"))
	require.Error(t, err)
	require.Equal(t, ErrMQTTNotConnected, err)

	status := mqttClient.Status()
	assert.Equal(t, uint64(0), status.MessageCount)
	assert.Equal(t, false, status.Connected)

	mClient.AssertExpectations(t)
}

func TestMQTTClient_Publish_Error(t *testing.T) {
	mClient := &MockPahoClient{}
	mToken := &MockToken{}

	mqttClient := newTestMQTTClient(mClient, MQTTClientParams{})

	mClient.On("Connect").Return(mToken).Once()
	mToken.On("Done").Return(doneChannel()).Twice()
	mToken.On("Error").Return(nil).Once()

	err := mqttClient.Connect()
	require.NoError(t, err)

	topic := "home/livingroom/dht/state"
	payload := []byte("{}")

	mClient.On("Publish", topic, byte(0), false, payload).Return(mToken).Once()
	mToken.On("Error").Return(fmt.Errorf("internal")).Twice()

	err = mqttClient.Publish(topic, 0, false, payload)
	require.Error(t, err)

	status := mqttClient.Status()
	assert.Equal(t, uint64(0), status.MessageCount)
	assert.Equal(t, true, status.Connected)

	mClient.AssertExpectations(t)
	mToken.AssertExpectations(t)
}

func TestMQTTClient_Publish_Timeout(t *testing.T) {
	mClient := &MockPahoClient{}
	mToken := &MockToken{}

	mqttClient := newTestMQTTClient(mClient, MQTTClientParams{
		PublishTimeout: 10 * time.Millisecond,
	})

	mClient.On("Connect").Return(mToken).Once()
	mToken.On("Done").Return(doneChannel()).Once()
	mToken.On("Error").Return(nil).Once()

	err := mqttClient.Connect()
	require.NoError(t, err)

	topic := "home/livingroom/dht/state"
	payload := []byte("{}")

	mClient.On("Publish", topic, byte(0), false, payload).Return(mToken).Once()
	mToken.On("Done").Return(pendingChannel()).Once()

	err = mqttClient.Publish(topic, 0, false, payload)
	require.Error(t, err)
	require.Equal(t, ErrMQTTPublishTimeout, err)

	status := mqttClient.Status()
	assert.Equal(t, uint64(0), status.MessageCount)

	mClient.AssertExpectations(t)
	mToken.AssertExpectations(t)
}

func TestMQTTClient_TLSOptionsPassedThrough(t *testing.T) {
	tlsConfig := &tls.Config{InsecureSkipVerify: true}

	var captured *mqtt.ClientOptions
	NewMQTTClient(MQTTClientParams{
		ClientID:  "test",
		BrokerURL: "ssl://localhost:8883",
		TLS:       tlsConfig,
		NewClientFunc: func(options *mqtt.ClientOptions) mqtt.Client {
			captured = options
			return &MockPahoClient{}
		},
	})

	require.NotNil(t, captured)
	assert.Equal(t, tlsConfig, captured.TLSConfig)
}
