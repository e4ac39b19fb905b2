// Package event defines the push job events exchanged between the API
// server and the delivery worker over Kafka.
package event

import "github.com/utafrali/reputation-service/pkg/kafka"

const (
	// TypePushRequested is emitted whenever a reviewee's reputation
	// changes and subscribers need the fresh aggregate.
	TypePushRequested = "push.requested"

	// AggregateTypeReputation labels the aggregate carried by push events.
	AggregateTypeReputation = "reputation"

	// Source identifies this service in event envelopes.
	Source = "reputation-service"
)

// TopicPushRequested is the Kafka topic push jobs are published to.
var TopicPushRequested = kafka.Topic("push", "requested")

// PushJob is the payload of a push.requested event. It names the reviewee
// whose aggregate changed; the worker re-reads the current aggregate at
// delivery time, so stale jobs collapse into full-state pushes. URLs and
// the credential reference are captured at dispatch so a config change
// never strands already-queued jobs.
type PushJob struct {
	RevieweeID    string   `json:"reviewee_id"`
	URLs          []string `json:"urls"`
	CredentialRef string   `json:"credential_ref"`
}
