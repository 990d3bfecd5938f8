package events

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// DefaultTopicPrefix 未配置时使用的 topic 前缀
const DefaultTopicPrefix = "pganims/events"

// BrokerURL 从 PGANIMS_MQTT_URL 读取 MQTT broker 地址，未设置时返回默认值
func BrokerURL() string {
	if url := os.Getenv("PGANIMS_MQTT_URL"); url != "" {
		return url
	}
	return "tcp://localhost:1883"
}

// mqttPayload 每条通知发布的 JSON 内容
type mqttPayload struct {
	Kind     string `json:"kind"`
	Anim     int    `json:"anim"`
	Skeleton uint64 `json:"skeleton"`
}

// MQTTSink 把通知发布到 <prefix>/start 和 <prefix>/end
// 发布时不等待送达
type MQTTSink struct {
	client paho.Client
	prefix string
}

// NewMQTTSink 创建 sink，内部客户端尚未连接
func NewMQTTSink(clientID, prefix string) *MQTTSink {
	opts := paho.NewClientOptions().
		AddBroker(BrokerURL()).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	return NewMQTTSinkWithClient(paho.NewClient(opts), prefix)
}

// NewMQTTSinkWithClient 包装已有的客户端
func NewMQTTSinkWithClient(client paho.Client, prefix string) *MQTTSink {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &MQTTSink{client: client, prefix: prefix}
}

// Connect 连接 broker，超过 timeout 放弃
func (s *MQTTSink) Connect(timeout time.Duration) error {
	token := s.client.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt connect timeout after %s", timeout)
	}
	return token.Error()
}

// Disconnect 关闭连接
func (s *MQTTSink) Disconnect() {
	s.client.Disconnect(250)
}

// Topic 返回事件发布的 topic
func (s *MQTTSink) Topic(ev AnimEvent) string {
	return s.prefix + "/" + ev.Kind.String()
}

// Publish 以 QoS 0 发送 ev；未连接时丢弃
func (s *MQTTSink) Publish(ev AnimEvent) error {
	if !s.client.IsConnected() {
		return fmt.Errorf("mqtt: not connected")
	}
	body, err := json.Marshal(mqttPayload{
		Kind:     ev.Kind.String(),
		Anim:     ev.Anim,
		Skeleton: uint64(ev.Skeleton),
	})
	if err != nil {
		return fmt.Errorf("mqtt: encode event: %w", err)
	}
	s.client.Publish(s.Topic(ev), 0, false, body)
	return nil
}
