package notify

import (
	"log"
	"time"
)

// Message is one outbound alert mail
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Transport delivers a message over one mail channel
type Transport interface {
	Name() string
	Send(msg Message) error
}

// Config describes the mail relay account. Leaving Username or Password
// empty disables dispatch entirely.
type Config struct {
	Host         string
	TLSPort      int
	StartTLSPort int
	Username     string
	Password     string
	Timeout      time.Duration
}

// Dispatcher sends alert mail through an ordered list of transports: the
// first successful delivery wins, exhausting the list yields failure.
// Failures are swallowed; callers only ever see the boolean outcome.
type Dispatcher struct {
	sender     string
	transports []Transport
}

// NewDispatcher builds the production dispatcher: implicit TLS first, then
// plain SMTP with a STARTTLS session upgrade. With unconfigured credentials
// the dispatcher is created disabled and every Notify returns false.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Username == "" || cfg.Password == "" {
		return &Dispatcher{}
	}
	return &Dispatcher{
		sender: cfg.Username,
		transports: []Transport{
			&tlsTransport{cfg: cfg},
			&startTLSTransport{cfg: cfg},
		},
	}
}

// NewDispatcherWithTransports builds a dispatcher over explicit transports,
// used by tests to inject fakes.
func NewDispatcherWithTransports(sender string, transports ...Transport) *Dispatcher {
	return &Dispatcher{sender: sender, transports: transports}
}

// Enabled reports whether the dispatcher has any transport configured
func (d *Dispatcher) Enabled() bool {
	return len(d.transports) > 0
}

// Notify attempts delivery, fire-and-forget. No retries beyond the transport
// fallback, no queue; the caller's flow must never be aborted by a failure.
func (d *Dispatcher) Notify(to, subject, body string) bool {
	if !d.Enabled() {
		return false
	}
	msg := Message{From: d.sender, To: to, Subject: subject, Body: body}
	for _, t := range d.transports {
		if err := t.Send(msg); err != nil {
			log.Printf("notify: %s delivery to %s failed: %v", t.Name(), to, err)
			continue
		}
		return true
	}
	return false
}
