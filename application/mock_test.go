package application

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockSensorReader struct {
	mock.Mock
}

func (m *MockSensorReader) Read(ctx context.Context) (Sample, error) {
	args := m.Called(ctx)
	return args.Get(0).(Sample), args.Error(1)
}

var _ SensorReader = &MockSensorReader{}

type MockMQTTClient struct {
	mock.Mock
}

func (m *MockMQTTClient) Publish(topic string, qos byte, retained bool, msg any) error {
	args := m.Called(topic, qos, retained, msg)
	return args.Error(0)
}

func (m *MockMQTTClient) Connect() error {
	return m.Called().Error(0)
}

func (m *MockMQTTClient) Disconnect() {
	m.Called()
}

func (m *MockMQTTClient) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *MockMQTTClient) Status() MQTTStatus {
	return m.Called().Get(0).(MQTTStatus)
}

var _ MQTTClient = &MockMQTTClient{}
