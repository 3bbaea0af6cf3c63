package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/go-zeromq/zmq4"
)

// Notifier publishes newly created records
type Notifier interface {
	Publish(entity string, record interface{}) error
	Close() error
}

// NopNotifier drops every record
type NopNotifier struct{}

func (NopNotifier) Publish(string, interface{}) error { return nil }
func (NopNotifier) Close() error                      { return nil }

// ZMQNotifier PUB socket; each message is a single frame "<EntityName> <json>"
// so subscribers can filter on the entity name prefix
type ZMQNotifier struct {
	mu   sync.Mutex
	sock zmq4.Socket
	addr string
}

// NewZMQNotifier bind a PUB socket on address, e.g. tcp://*:28400
func NewZMQNotifier(ctx context.Context, address string) (*ZMQNotifier, error) {
	sock := zmq4.NewPub(ctx)
	if err := sock.Listen(address); err != nil {
		sock.Close()
		return nil, fmt.Errorf("zmq listen %s: %w", address, err)
	}
	log.Printf("✅ ZMQ notifier listening on %s", address)
	return &ZMQNotifier{sock: sock, addr: address}, nil
}

// Publish send record under topic entity
func (n *ZMQNotifier) Publish(entity string, record interface{}) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", entity, err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sock.Send(zmq4.NewMsgString(entity + " " + string(data)))
}

// Close close the socket
func (n *ZMQNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sock.Close()
}
