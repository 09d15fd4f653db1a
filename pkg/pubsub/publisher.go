package pubsub

import "context"

// Pack is one message on a topic. Key selects the partition.
type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(context.Context, string, *Pack) error
}
