package memrmw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikaelarguedas/rclgo/rmw"
)

func TestPublishDispatch(t *testing.T) {
	g := New()
	n, err := g.CreateNode("talker", "/")
	require.NoError(t, err)

	var got []interface{}
	_, err = n.CreateSubscription("/chatter", "std_msgs/msg/String",
		rmw.ProfileDefault, func(msg interface{}) {
			got = append(got, msg)
		})
	require.NoError(t, err)

	pub, err := n.CreatePublisher("/chatter", "std_msgs/msg/String", rmw.ProfileDefault)
	require.NoError(t, err)

	require.NoError(t, pub.Publish("one"))
	require.NoError(t, pub.Publish("two"))
	assert.Equal(t, []interface{}{"one", "two"}, got)

	require.NoError(t, pub.Close())
	assert.Error(t, pub.Publish("three"))
}

func TestGraphQueries(t *testing.T) {
	g := New()
	a, err := g.CreateNode("alpha", "/")
	require.NoError(t, err)
	b, err := g.CreateNode("beta", "/demo")
	require.NoError(t, err)

	_, err = a.CreatePublisher("/chatter", "std_msgs/msg/String", rmw.ProfileDefault)
	require.NoError(t, err)
	sub, err := b.CreateSubscription("/chatter", "std_msgs/msg/String",
		rmw.ProfileDefault, func(interface{}) {})
	require.NoError(t, err)

	topics, err := a.TopicNamesAndTypes()
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"/chatter": {"std_msgs/msg/String"}}, topics)

	pubs, err := b.CountPublishers("/chatter")
	require.NoError(t, err)
	assert.Equal(t, 1, pubs)
	subs, err := a.CountSubscribers("/chatter")
	require.NoError(t, err)
	assert.Equal(t, 1, subs)
	none, err := a.CountPublishers("/elsewhere")
	require.NoError(t, err)
	assert.Equal(t, 0, none)

	pairs, err := a.NodeNamesAndNamespaces()
	require.NoError(t, err)
	assert.ElementsMatch(t, [][2]string{{"alpha", "/"}, {"beta", "/demo"}}, pairs)

	require.NoError(t, sub.Close())
	subs, err = a.CountSubscribers("/chatter")
	require.NoError(t, err)
	assert.Equal(t, 0, subs)
}

func TestServiceCall(t *testing.T) {
	g := New()
	server, err := g.CreateNode("server", "/")
	require.NoError(t, err)
	caller, err := g.CreateNode("caller", "/")
	require.NoError(t, err)

	_, err = server.CreateService("/add", "demo/srv/Add", rmw.ProfileServicesDefault,
		func(req interface{}) (interface{}, error) {
			pair := req.([2]int)
			return pair[0] + pair[1], nil
		})
	require.NoError(t, err)

	// A second server on the same name is refused.
	_, err = server.CreateService("/add", "demo/srv/Add", rmw.ProfileServicesDefault,
		func(req interface{}) (interface{}, error) { return nil, nil })
	assert.Error(t, err)

	services, err := caller.ServiceNamesAndTypes()
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"/add": {"demo/srv/Add"}}, services)

	c, err := caller.CreateClient("/add", "demo/srv/Add", rmw.ProfileServicesDefault)
	require.NoError(t, err)
	resp, err := c.Call([2]int{2, 3})
	require.NoError(t, err)
	assert.Equal(t, 5, resp)
}

func TestCallWithoutServer(t *testing.T) {
	g := New()
	n, err := g.CreateNode("caller", "/")
	require.NoError(t, err)

	c, err := n.CreateClient("/missing", "demo/srv/Add", rmw.ProfileServicesDefault)
	require.NoError(t, err)
	_, err = c.Call(struct{}{})
	assert.Error(t, err)
}

func TestNodeDestroy(t *testing.T) {
	g := New()
	n, err := g.CreateNode("talker", "/")
	require.NoError(t, err)

	pub, err := n.CreatePublisher("/chatter", "std_msgs/msg/String", rmw.ProfileDefault)
	require.NoError(t, err)
	_, err = n.CreateSubscription("/chatter", "std_msgs/msg/String",
		rmw.ProfileDefault, func(interface{}) {})
	require.NoError(t, err)
	_, err = n.CreateService("/srv", "demo/srv/Noop", rmw.ProfileServicesDefault,
		func(req interface{}) (interface{}, error) { return nil, nil })
	require.NoError(t, err)

	require.NoError(t, n.Destroy())

	assert.Error(t, pub.Publish("late"))
	pubs, err := n.CountPublishers("/chatter")
	require.NoError(t, err)
	assert.Equal(t, 0, pubs)
	subs, err := n.CountSubscribers("/chatter")
	require.NoError(t, err)
	assert.Equal(t, 0, subs)
	services, err := n.ServiceNamesAndTypes()
	require.NoError(t, err)
	assert.Empty(t, services)

	_, err = n.CreatePublisher("/chatter", "std_msgs/msg/String", rmw.ProfileDefault)
	assert.Error(t, err)

	pairs, err := n.NodeNamesAndNamespaces()
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestDistinctGIDs(t *testing.T) {
	g := New()
	n, err := g.CreateNode("talker", "/")
	require.NoError(t, err)

	a, err := n.CreatePublisher("/chatter", "std_msgs/msg/String", rmw.ProfileDefault)
	require.NoError(t, err)
	b, err := n.CreatePublisher("/chatter", "std_msgs/msg/String", rmw.ProfileDefault)
	require.NoError(t, err)
	assert.NotEqual(t, a.GID(), b.GID())
}
