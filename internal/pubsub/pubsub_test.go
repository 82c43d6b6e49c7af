package pubsub_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edirooss/rediskv-server/internal/pubsub"
)

func Test_Publish_DeliversToExactChannelSubscriber(t *testing.T) {
	t.Parallel()

	hub := pubsub.NewHub(nil)
	sub := hub.NewSubscriber()
	hub.Subscribe("news", sub)

	n := hub.Publish("news", []byte("hello"))
	require.Equal(t, 1, n)

	msgs := sub.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, "message", msgs[0].Kind)
	require.Equal(t, "news", msgs[0].Channel)
	require.Equal(t, []byte("hello"), msgs[0].Payload)
}

func Test_Publish_DeliversToMatchingPattern(t *testing.T) {
	t.Parallel()

	hub := pubsub.NewHub(nil)
	sub := hub.NewSubscriber()
	hub.PSubscribe("news.*", sub)

	n := hub.Publish("news.sports", []byte("score"))
	require.Equal(t, 1, n)

	msgs := sub.Drain()
	require.Len(t, msgs, 1)
	require.Equal(t, "pmessage", msgs[0].Kind)
	require.Equal(t, "news.*", msgs[0].Pattern)
}

func Test_Publish_NoSubscribersReturnsZero(t *testing.T) {
	t.Parallel()

	hub := pubsub.NewHub(nil)
	require.Equal(t, 0, hub.Publish("nobody-listens", []byte("x")))
}

func Test_SPublish_NeverReachesPatternSubscribers(t *testing.T) {
	t.Parallel()

	hub := pubsub.NewHub(nil)
	patternSub := hub.NewSubscriber()
	shardSub := hub.NewSubscriber()
	hub.PSubscribe("*", patternSub)
	hub.SSubscribe("shard-chan", shardSub)

	n := hub.SPublish("shard-chan", []byte("x"))
	require.Equal(t, 1, n)
	require.Empty(t, patternSub.Drain())
	require.Len(t, shardSub.Drain(), 1)
}

func Test_UnsubscribeAll_RemovesFromEverySet(t *testing.T) {
	t.Parallel()

	hub := pubsub.NewHub(nil)
	sub := hub.NewSubscriber()
	hub.Subscribe("c", sub)
	hub.PSubscribe("p*", sub)
	hub.SSubscribe("s", sub)

	hub.UnsubscribeAll(sub)

	require.Equal(t, 0, hub.NumSub("c"))
	require.Equal(t, 0, hub.NumPat())
	require.Equal(t, 0, hub.NumShardSub("s"))
}

func Test_Subscriber_Deliver_DropsOldestWhenFull(t *testing.T) {
	t.Parallel()

	hub := pubsub.NewHub(nil)
	sub := hub.NewSubscriber()

	for i := 0; i < 1100; i++ {
		sub.Deliver(pubsub.Message{Kind: "message", Channel: "c", Payload: []byte{byte(i)}})
	}

	require.Positive(t, sub.Dropped())
	msgs := sub.Drain()
	require.Len(t, msgs, 1024)
	// the oldest entries were dropped, so the last delivered message must
	// be the newest one pushed in.
	require.Equal(t, byte(1099), msgs[len(msgs)-1].Payload[0])
}

func Test_Subscriber_Deliver_AfterCloseIsANoop(t *testing.T) {
	t.Parallel()

	hub := pubsub.NewHub(nil)
	sub := hub.NewSubscriber()
	sub.Close()
	sub.Close() // idempotent

	sub.Deliver(pubsub.Message{Kind: "message", Channel: "c"})
	require.Empty(t, sub.Drain())
}

func Test_ChannelsMatching_FiltersByPattern(t *testing.T) {
	t.Parallel()

	hub := pubsub.NewHub(nil)
	a, b := hub.NewSubscriber(), hub.NewSubscriber()
	hub.Subscribe("news.sports", a)
	hub.Subscribe("weather", b)

	require.ElementsMatch(t, []string{"news.sports"}, hub.ChannelsMatching("news.*"))
	require.ElementsMatch(t, []string{"news.sports", "weather"}, hub.ChannelsMatching("*"))
}
