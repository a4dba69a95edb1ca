package kafkaconsumer

import (
	"time"

	"github.com/rescuedogs/rescue-edge/internal/core/config"
)

type Config struct {
	Brokers             []string
	Topic               string
	GroupID             string
	SessionTimeout      time.Duration
	Heartbeat           time.Duration
	RebalanceTimeout    time.Duration
	InitialOffsetOldest bool
	DedupeSize          int
}

func FromConfig(c config.Config) Config {
	return Config{
		Brokers:          c.Kafka.Brokers,
		Topic:            c.Invalidation.Topic,
		GroupID:          c.Kafka.GroupID + "-invalidation",
		SessionTimeout:   30 * time.Second,
		Heartbeat:        3 * time.Second,
		RebalanceTimeout: 30 * time.Second,
		// cache state is in-process, so history before startup is irrelevant
		InitialOffsetOldest: false,
		DedupeSize:          8192,
	}
}
