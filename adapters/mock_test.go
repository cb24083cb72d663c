package adapters

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/mock"
)

type MockPahoClient struct {
	mock.Mock
}

func (m *MockPahoClient) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *MockPahoClient) IsConnectionOpen() bool {
	return m.Called().Bool(0)
}

func (m *MockPahoClient) Connect() mqtt.Token {
	return token(m.Called())
}

func (m *MockPahoClient) Disconnect(quiesce uint) {
	m.Called(quiesce)
}

func (m *MockPahoClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	return token(m.Called(topic, qos, retained, payload))
}

func (m *MockPahoClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	return token(m.Called(topic, qos, callback))
}

func (m *MockPahoClient) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	return token(m.Called(filters, callback))
}

func (m *MockPahoClient) Unsubscribe(topics ...string) mqtt.Token {
	return token(m.Called(topics))
}

func (m *MockPahoClient) AddRoute(topic string, callback mqtt.MessageHandler) {
	m.Called(topic, callback)
}

func (m *MockPahoClient) OptionsReader() mqtt.ClientOptionsReader {
	return m.Called().Get(0).(mqtt.ClientOptionsReader)
}

func token(args mock.Arguments) mqtt.Token {
	if t := args.Get(0); t != nil {
		return t.(mqtt.Token)
	}
	return nil
}

var _ mqtt.Client = &MockPahoClient{}

type MockToken struct {
	mock.Mock
}

func (m *MockToken) Wait() bool {
	return m.Called().Bool(0)
}

func (m *MockToken) WaitTimeout(d time.Duration) bool {
	return m.Called(d).Bool(0)
}

func (m *MockToken) Done() <-chan struct{} {
	return m.Called().Get(0).(<-chan struct{})
}

func (m *MockToken) Error() error {
	return m.Called().Error(0)
}

var _ mqtt.Token = &MockToken{}

// doneChannel returns an already-closed channel, signalling a finished token.
func doneChannel() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// pendingChannel returns a channel that never closes, signalling a token that
// never finishes.
func pendingChannel() <-chan struct{} {
	return make(chan struct{})
}
