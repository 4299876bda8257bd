package microengine

//
// The dns_lookup test kind
//

import (
	"encoding/json"
	"time"

	"github.com/miekg/dns"
	"github.com/ooni/probe-goja/internal/runtimex"
)

func init() {
	registry["dns_lookup"] = &dnsLookupMeasurer{}
}

// Options understood by dns_lookup:
//
//	resolver: address (host:port) of the resolver (default "8.8.8.8:53")
//	timeout:  query timeout as a Go duration string (default "10s")

// dnsLookupTestKeys are the test keys produced by dns_lookup.
type dnsLookupTestKeys struct {
	Addresses []string `json:"addresses"`
	Failure   *string  `json:"failure"`
	Resolver  string   `json:"resolver"`
	RTT       float64  `json:"rtt"`
}

// dnsLookupEvent is the test-specific event emitted after each query.
type dnsLookupEvent struct {
	Key   string `json:"key"`
	Query string `json:"query"`
	Rcode int    `json:"rcode"`
}

// dnsLookupMeasurer resolves the A records of its input domain using
// the configured resolver.
type dnsLookupMeasurer struct{}

var _ measurer = &dnsLookupMeasurer{}

// testName implements measurer.
func (mx *dnsLookupMeasurer) testName() string {
	return "dns_lookup"
}

// testVersion implements measurer.
func (mx *dnsLookupMeasurer) testVersion() string {
	return "0.1.0"
}

// measure implements measurer.
func (mx *dnsLookupMeasurer) measure(env *measurerEnv, input string) any {
	resolver := optionOrDefault(env.options, "resolver", "8.8.8.8:53")
	timeout := timeoutOption(env.options, 10*time.Second)
	tk := &dnsLookupTestKeys{
		Addresses: []string{},
		Failure:   nil,
		Resolver:  resolver,
		RTT:       0,
	}
	query := new(dns.Msg)
	query.SetQuestion(dns.Fqdn(input), dns.TypeA)
	client := &dns.Client{Timeout: timeout}
	env.logger.Debugf("dns_lookup: resolving %s using %s", input, resolver)
	response, rtt, err := client.Exchange(query, resolver)
	if err != nil {
		env.logger.Warnf("dns_lookup: %s", err.Error())
		tk.Failure = failureString(err)
		return tk
	}
	tk.RTT = rtt.Seconds()
	for _, answer := range response.Answer {
		if record, ok := answer.(*dns.A); ok {
			tk.Addresses = append(tk.Addresses, record.A.String())
		}
	}
	event := &dnsLookupEvent{
		Key:   "dns_lookup.answered",
		Query: input,
		Rcode: response.Rcode,
	}
	env.emitEvent(string(runtimex.Try1(json.Marshal(event))))
	env.logger.Debugf("dns_lookup: got %d addresses", len(tk.Addresses))
	return tk
}

// optionOrDefault returns the option value or the given default.
func optionOrDefault(options map[string]string, key, defaultValue string) string {
	if value := options[key]; value != "" {
		return value
	}
	return defaultValue
}

// timeoutOption parses the timeout option, falling back to the given
// default when the option is unset or malformed.
func timeoutOption(options map[string]string, defaultValue time.Duration) time.Duration {
	if value := options["timeout"]; value != "" {
		if timeout, err := time.ParseDuration(value); err == nil && timeout > 0 {
			return timeout
		}
	}
	return defaultValue
}

// failureString maps an error to the failure included in test keys.
func failureString(err error) *string {
	s := err.Error()
	return &s
}
