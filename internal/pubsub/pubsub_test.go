package pubsub

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	name    string
	fail    bool
	inbox   []string
}

func (c *fakeClient) SendMessage(channel string, payload []byte) error {
	if c.fail {
		return errors.New("write failed")
	}
	c.inbox = append(c.inbox, channel+":"+string(payload))
	return nil
}

func TestSubscribeCountsDistinctChannels(t *testing.T) {
	r := New()
	c := &fakeClient{name: "a"}

	require.Equal(t, 1, r.Subscribe(c, "ch1"))
	require.Equal(t, 2, r.Subscribe(c, "ch2"))
	require.Equal(t, 2, r.Subscribe(c, "ch2"), "resubscribing does not change the count")
}

func TestUnsubscribeCount(t *testing.T) {
	r := New()
	c := &fakeClient{name: "a"}
	r.Subscribe(c, "ch1")
	r.Subscribe(c, "ch2")

	require.Equal(t, 1, r.Unsubscribe(c, "ch1"))
	require.Equal(t, 0, r.Unsubscribe(c, "ch2"))
}

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	r := New()
	a := &fakeClient{name: "a"}
	b := &fakeClient{name: "b"}
	r.Subscribe(a, "news")
	r.Subscribe(b, "news")

	n := r.Publish("news", []byte("hello"))
	require.Equal(t, 2, n)
	require.Equal(t, []string{"news:hello"}, a.inbox)
	require.Equal(t, []string{"news:hello"}, b.inbox)
}

func TestPublishCountIgnoresDeliveryFailure(t *testing.T) {
	r := New()
	good := &fakeClient{name: "good"}
	bad := &fakeClient{name: "bad", fail: true}
	r.Subscribe(good, "news")
	r.Subscribe(bad, "news")

	n := r.Publish("news", []byte("hi"))
	require.Equal(t, 2, n, "reply count is computed pre-delivery")
	require.Equal(t, 0, r.SubscriptionCount(bad), "failed recipient is dropped from the registry")
	require.Equal(t, 1, r.SubscriptionCount(good))
}

func TestDisconnectRemovesAllSubscriptions(t *testing.T) {
	r := New()
	c := &fakeClient{name: "a"}
	r.Subscribe(c, "ch1")
	r.Subscribe(c, "ch2")

	r.Disconnect(c)
	require.Equal(t, 0, r.SubscriptionCount(c))
	require.Equal(t, 0, r.Publish("ch1", []byte("x")))
}

func TestChannelsListsCurrentSubscriptions(t *testing.T) {
	r := New()
	c := &fakeClient{name: "a"}
	r.Subscribe(c, "ch1")
	r.Subscribe(c, "ch2")

	chans := r.Channels(c)
	require.ElementsMatch(t, []string{"ch1", "ch2"}, chans)
}
