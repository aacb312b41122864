// testing.go provides a staged check of the broker connection.
package mqtt

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/JimmyVaras/ros-web-app/internal/observability/metrics"
)

// TestResult represents the result of one connection test stage.
type TestResult struct {
	Success   bool   `json:"success"`
	Stage     string `json:"stage"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp,omitempty"` // ISO8601 timestamp of the result
}

// TestStage represents a stage in the MQTT test process
type TestStage int

const (
	DNSResolution TestStage = iota
	TCPConnection
	MQTTConnection
	MessagePublish
)

// String returns the string representation of a test stage
func (s TestStage) String() string {
	switch s {
	case DNSResolution:
		return "DNS Resolution"
	case TCPConnection:
		return "TCP Connection"
	case MQTTConnection:
		return "MQTT Connection"
	case MessagePublish:
		return "Message Publishing"
	default:
		return "Unknown Stage"
	}
}

// Timeout constants for various test stages
const (
	dnsTimeout  = 5 * time.Second
	tcpTimeout  = 5 * time.Second
	mqttTimeout = 10 * time.Second
	pubTimeout  = 5 * time.Second
)

// runStage executes one stage under its own timeout.
func runStage(ctx context.Context, stage TestStage, timeout time.Duration, test func(context.Context) error) TestResult {
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := TestResult{
		Stage:     stage.String(),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if err := test(stageCtx); err != nil {
		result.Error = err.Error()
		result.Message = fmt.Sprintf("Failed to perform %s", stage)
		return result
	}
	result.Success = true
	result.Message = fmt.Sprintf("%s succeeded", stage)
	return result
}

// TestConnection checks DNS, TCP, the MQTT handshake and a test publish in
// order, sending one result per stage to results. It stops at the first
// failing stage and closes results when done.
func TestConnection(ctx context.Context, cfg Config, m *metrics.MQTTMetrics, testTopic string, results chan<- TestResult) {
	defer close(results)

	u, err := url.Parse(cfg.Broker)
	if err != nil || u.Host == "" {
		results <- TestResult{Stage: DNSResolution.String(), Message: "Invalid broker URL", Error: fmt.Sprintf("invalid broker URL %q", cfg.Broker)}
		return
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "1883"
	}

	stages := []struct {
		stage   TestStage
		timeout time.Duration
		test    func(context.Context) error
	}{
		{DNSResolution, dnsTimeout, func(ctx context.Context) error {
			if net.ParseIP(host) != nil {
				return nil
			}
			_, err := net.DefaultResolver.LookupHost(ctx, host)
			return err
		}},
		{TCPConnection, tcpTimeout, func(ctx context.Context) error {
			var d net.Dialer
			conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
			if err != nil {
				return err
			}
			return conn.Close()
		}},
	}

	for _, s := range stages {
		result := runStage(ctx, s.stage, s.timeout, s.test)
		results <- result
		if !result.Success {
			return
		}
	}

	cfg.ReconnectCooldown = 0
	c, err := newClient(cfg, m)
	if err != nil {
		results <- TestResult{Stage: MQTTConnection.String(), Message: "Failed to create client", Error: err.Error()}
		return
	}
	defer c.Disconnect()

	result := runStage(ctx, MQTTConnection, mqttTimeout, c.Connect)
	results <- result
	if !result.Success {
		return
	}

	results <- runStage(ctx, MessagePublish, pubTimeout, func(ctx context.Context) error {
		payload := fmt.Sprintf(`{"test":true,"client_id":%q,"timestamp":%q}`, cfg.ClientID, time.Now().Format(time.RFC3339))
		return c.Publish(ctx, testTopic, payload)
	})
}
