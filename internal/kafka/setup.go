package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/syshair/backend/pkg/logger"
)

// RequiredTopics lists the topics the producer writes to.
func RequiredTopics() map[string]kafkaGo.TopicConfig {
	return map[string]kafkaGo.TopicConfig{
		TopicSubscriptionStatusChanged: {Topic: TopicSubscriptionStatusChanged, NumPartitions: 3, ReplicationFactor: 1},
		TopicNotificationDispatched:    {Topic: TopicNotificationDispatched, NumPartitions: 1, ReplicationFactor: 1},
		TopicMarketingBroadcast:        {Topic: TopicMarketingBroadcast, NumPartitions: 1, ReplicationFactor: 1},
	}
}

// EnsureKafkaTopics creates the missing topics on the first broker.
func EnsureKafkaTopics(ctx context.Context, brokers []string, log *logger.Logger) error {
	requiredTopics := RequiredTopics()
	log.Infow("Ensuring Kafka topics exist", "topics", getTopicNames(requiredTopics))

	if len(brokers) == 0 || brokers[0] == "" {
		return errors.New("kafka broker address is empty")
	}
	if err := validateBroker(brokers[0]); err != nil {
		return err
	}

	connCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	conn, err := kafkaGo.DialLeader(connCtx, "tcp", brokers[0], "", 0)
	if err != nil {
		return fmt.Errorf("kafka connection failed: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("kafka read partitions failed: %w", err)
	}

	existing := make(map[string]bool)
	for _, p := range partitions {
		existing[p.Topic] = true
	}

	toCreate := missingTopics(requiredTopics, existing)
	if len(toCreate) == 0 {
		log.Infow("All required topics already exist")
		return nil
	}

	if err := conn.CreateTopics(toCreate...); err != nil {
		if !errors.Is(err, kafkaGo.TopicAlreadyExists) {
			return fmt.Errorf("kafka create topics failed: %w", err)
		}
		log.Warnw("One or more topics already existed during creation", "topics", getTopicNamesFromConfig(toCreate))
	}
	log.Infow("Created Kafka topics", "topics", getTopicNamesFromConfig(toCreate))
	return nil
}

func validateBroker(addr string) error {
	_, portStr, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err != nil {
		return fmt.Errorf("invalid broker address %s: %w", addr, err)
	}
	if _, err := strconv.Atoi(portStr); err != nil {
		return fmt.Errorf("invalid broker port %s: %w", addr, err)
	}
	return nil
}

func missingTopics(required map[string]kafkaGo.TopicConfig, existing map[string]bool) []kafkaGo.TopicConfig {
	var out []kafkaGo.TopicConfig
	for name, cfg := range required {
		if !existing[name] {
			out = append(out, cfg)
		}
	}
	return out
}

func getTopicNames(topicMap map[string]kafkaGo.TopicConfig) []string {
	names := make([]string, 0, len(topicMap))
	for name := range topicMap {
		names = append(names, name)
	}
	return names
}

func getTopicNamesFromConfig(topicConfigs []kafkaGo.TopicConfig) []string {
	names := make([]string, 0, len(topicConfigs))
	for _, tc := range topicConfigs {
		names = append(names, tc.Topic)
	}
	return names
}
