package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/pubsub"
	"github.com/stretchr/testify/require"
)

func Test_Publisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(m *sarama.ProducerMessage) error {
		if m.Topic != "drp.gamification" {
			return errors.New("unexpected topic " + m.Topic)
		}

		key, err := m.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "0xabc" {
			return errors.New("unexpected key " + string(key))
		}

		return nil
	})

	p := NewPublisherWithProducer("drp-portal", producer)
	err := p.Publish(context.Background(), "drp.gamification", &pubsub.Pack{Key: []byte("0xabc"), Msg: []byte(`{"type":"xp-awarded"}`)})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func Test_Publisher_PublishFails(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisherWithProducer("drp-portal", producer)
	err := p.Publish(context.Background(), "drp.gamification", &pubsub.Pack{Msg: []byte("{}")})
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func Test_NewPublisher_NoBrokers(t *testing.T) {
	_, err := NewPublisher(config.KafkaConfigs{})
	require.Error(t, err)
}
