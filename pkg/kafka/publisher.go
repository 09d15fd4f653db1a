package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/pubsub"

	"github.com/Shopify/sarama"
)

type publisher struct {
	clientID string
	producer sarama.SyncProducer
}

func NewPublisher(cfg config.KafkaConfigs) (*publisher, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("no kafka broker configured")
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.ClientID = cfg.ClientID
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(cfg.Addrs, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("sarama.NewSyncProducer: %w", err)
	}

	return &publisher{clientID: cfg.ClientID, producer: producer}, nil
}

// NewPublisherWithProducer wraps an existing producer.
func NewPublisherWithProducer(clientID string, producer sarama.SyncProducer) *publisher {
	return &publisher{clientID: clientID, producer: producer}
}

func (p *publisher) Close() error {
	return p.producer.Close()
}

func (p *publisher) Publish(ctx context.Context, topic string, msg *pubsub.Pack) error {
	m := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg.Msg),
	}
	if len(msg.Key) > 0 {
		m.Key = sarama.ByteEncoder(msg.Key)
	}

	if _, _, err := p.producer.SendMessage(m); err != nil {
		return fmt.Errorf("p.producer.SendMessage: %w", err)
	}

	return nil
}

var _ pubsub.Publisher = (*publisher)(nil)
