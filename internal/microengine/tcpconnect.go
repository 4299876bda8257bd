package microengine

//
// The tcp_connect test kind
//

import (
	"encoding/json"
	"net"
	"time"

	"github.com/ooni/probe-goja/internal/runtimex"
)

func init() {
	registry["tcp_connect"] = &tcpConnectMeasurer{}
}

// Options understood by tcp_connect:
//
//	timeout: connect timeout as a Go duration string (default "10s")

// tcpConnectTestKeys are the test keys produced by tcp_connect.
type tcpConnectTestKeys struct {
	Failure *string `json:"failure"`
	Success bool    `json:"success"`
	Target  string  `json:"target"`
}

// tcpConnectEvent is the test-specific event emitted per connect.
type tcpConnectEvent struct {
	Key     string `json:"key"`
	Success bool   `json:"success"`
	Target  string `json:"target"`
}

// tcpConnectMeasurer connects to its input endpoint (host:port).
type tcpConnectMeasurer struct{}

var _ measurer = &tcpConnectMeasurer{}

// testName implements measurer.
func (mx *tcpConnectMeasurer) testName() string {
	return "tcp_connect"
}

// testVersion implements measurer.
func (mx *tcpConnectMeasurer) testVersion() string {
	return "0.1.0"
}

// measure implements measurer.
func (mx *tcpConnectMeasurer) measure(env *measurerEnv, input string) any {
	timeout := timeoutOption(env.options, 10*time.Second)
	tk := &tcpConnectTestKeys{
		Failure: nil,
		Success: false,
		Target:  input,
	}
	dialer := &net.Dialer{Timeout: timeout}
	env.logger.Debugf("tcp_connect: connecting to %s", input)
	conn, err := dialer.Dial("tcp", input)
	if err != nil {
		env.logger.Warnf("tcp_connect: %s", err.Error())
		tk.Failure = failureString(err)
	} else {
		conn.Close()
		tk.Success = true
	}
	event := &tcpConnectEvent{
		Key:     "tcp_connect.result",
		Success: tk.Success,
		Target:  input,
	}
	env.emitEvent(string(runtimex.Try1(json.Marshal(event))))
	return tk
}
