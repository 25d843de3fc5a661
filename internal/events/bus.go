package events

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Change topics. One topic per subscription key so a subscription
// handle stays tied 1:1 to its input.
const (
	topicLessonsChanged = "lessons.changed."
	topicQuizzesChanged = "quizzes.changed."
)

func LessonsTopic(courseID string) string { return topicLessonsChanged + courseID }
func QuizzesTopic(courseID string) string { return topicQuizzesChanged + courseID }

// ChangeBus is the in-process change-notification fabric behind the
// repository subscription surface. Subscribers get a signal per change
// on their topic and re-read the current result set; delivery order
// within one topic follows publish order.
type ChangeBus struct {
	pubSub *gochannel.GoChannel
	logger *slog.Logger
}

func NewChangeBus(logger *slog.Logger) *ChangeBus {
	return &ChangeBus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(logger)),
		logger: logger,
	}
}

// NotifyChanged signals all subscribers of the topic.
func (b *ChangeBus) NotifyChanged(topic string) error {
	msg := message.NewMessage(watermill.NewUUID(), nil)
	return b.pubSub.Publish(topic, msg)
}

// Changes returns a signal channel for the topic. The channel is closed
// when ctx is cancelled; cancelling ctx is the unsubscribe handle.
func (b *ChangeBus) Changes(ctx context.Context, topic string) (<-chan struct{}, error) {
	messages, err := b.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}

	signals := make(chan struct{}, 1)
	go func() {
		defer close(signals)
		for msg := range messages {
			msg.Ack()
			select {
			case signals <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return signals, nil
}

func (b *ChangeBus) Close() error {
	return b.pubSub.Close()
}
