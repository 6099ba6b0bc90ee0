package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_events_published_total",
		Help: "Events published to the bus, by topic.",
	}, []string{"topic"})

	EventsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_events_dropped_total",
		Help: "Events published while the topic had no subscribers.",
	}, []string{"topic"})

	ActiveSubscriptions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "socialfeed_active_subscriptions",
		Help: "Currently registered bus subscribers, by topic.",
	}, []string{"topic"})

	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_mutations_total",
		Help: "Mutations handled by the feed service, by operation and outcome.",
	}, []string{"operation", "status"})

	GraphQLOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_graphql_operations_total",
		Help: "GraphQL operations received, by operation type.",
	}, []string{"type"})

	GeneratedPostsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialfeed_generated_posts_total",
		Help: "Posts synthesized by the background ticker.",
	})
)
