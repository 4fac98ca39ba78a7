package probes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// KindKafka is the kind of KafkaProbe.
const KindKafka = "kafka"

type kafkaConn interface {
	SetDeadline(t time.Time) error
	Brokers() ([]kafka.Broker, error)
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

type kafkaDialFunc func(ctx context.Context, network, address string) (kafkaConn, error)

func dialKafka(ctx context.Context, network, address string) (kafkaConn, error) {
	conn, err := kafka.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// KafkaProbe passes when any broker answers a metadata request. With a
// topic set, the topic must also have at least one partition.
type KafkaProbe struct {
	brokers []string
	topic   string
	dial    kafkaDialFunc
}

// NewKafkaProbe creates a Kafka probe.
func NewKafkaProbe(brokers []string, topic string) (*KafkaProbe, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("%w: brokers", ErrMissingParam)
	}
	return &KafkaProbe{brokers: brokers, topic: topic, dial: dialKafka}, nil
}

func newKafkaFromParams(_ context.Context, params Params) (*KafkaProbe, error) {
	return NewKafkaProbe(params.List("brokers"), params.String("topic", ""))
}

// Kind implements observe.Kinded.
func (p *KafkaProbe) Kind() string { return KindKafka }

// Check implements health.Probe.
func (p *KafkaProbe) Check(ctx context.Context) error {
	failures := make([]string, 0, len(p.brokers))
	for _, broker := range p.brokers {
		err := p.checkBroker(ctx, broker)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		failures = append(failures, fmt.Sprintf("%s: %v", broker, err))
	}
	return fmt.Errorf("all brokers unreachable: %s", strings.Join(failures, "; "))
}

func (p *KafkaProbe) checkBroker(ctx context.Context, broker string) error {
	conn, err := p.dial(ctx, "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return err
		}
	}

	if p.topic == "" {
		_, err := conn.Brokers()
		return err
	}

	partitions, err := conn.ReadPartitions(p.topic)
	if err != nil {
		return err
	}
	if len(partitions) == 0 {
		return fmt.Errorf("topic %q has no partitions", p.topic)
	}
	return nil
}
