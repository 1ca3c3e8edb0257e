package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingTopics(t *testing.T) {
	existing := map[string]bool{TopicSubscriptionStatusChanged: true}

	missing := missingTopics(RequiredTopics(), existing)

	assert.ElementsMatch(t,
		[]string{TopicNotificationDispatched, TopicMarketingBroadcast},
		getTopicNamesFromConfig(missing))
}

func TestValidateBroker(t *testing.T) {
	assert.NoError(t, validateBroker("localhost:9092"))
	assert.Error(t, validateBroker("localhost"))
	assert.Error(t, validateBroker("localhost:abc"))
}
