package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type KafkaCfg struct {
	Brokers []string
	GroupID string
}

type TelemetryCfg struct {
	ReportEvery  int
	KafkaEnabled bool
	Topic        string
	QueueSize    int
}

type InvalidationCfg struct {
	Enabled bool
	Topic   string
}

type Config struct {
	Addr             string
	LogLevel         string
	LogConsole       bool
	LogSampleN       int
	CDNDomain        string
	SiteURL          string
	APIURL           string
	ImageCacheSize   int
	SlowQuality      int
	RedisEnabled     bool
	RedisAddr        string
	CacheTTL         time.Duration
	CacheOpTimeout   time.Duration
	PlaceholderColor string
	Kafka            KafkaCfg
	Telemetry        TelemetryCfg
	Invalidation     InvalidationCfg
	MetricsEnabled   bool
	MetricsAddr      string
	MetricsPath      string
}

func FromEnv() Config {
	cacheSize := getint("IMAGE_CACHE_SIZE", 500)
	if cacheSize < 1 {
		cacheSize = 1
	}
	slowQ := getint("SLOW_QUALITY", 60)
	if slowQ < 1 || slowQ > 100 {
		slowQ = 60
	}
	every := getint("TELEMETRY_REPORT_EVERY", 5)
	if every < 1 {
		every = 5
	}

	return Config{
		Addr:             getenv("ADDR", ":8090"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		LogConsole:       getbool("LOG_CONSOLE", false),
		LogSampleN:       getint("LOG_SAMPLE_N", 0),
		CDNDomain:        strings.ToLower(getenv("CDN_DOMAIN", "images.rescuedogs.me")),
		SiteURL:          strings.TrimRight(getenv("SITE_URL", "https://www.rescuedogs.me"), "/"),
		APIURL:           strings.TrimRight(getenv("API_URL", "http://localhost:8000"), "/"),
		ImageCacheSize:   cacheSize,
		SlowQuality:      slowQ,
		RedisEnabled:     getbool("REDIS_ENABLED", false),
		RedisAddr:        getenv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:         getduration("CACHE_TTL", 24*time.Hour),
		CacheOpTimeout:   getduration("CACHE_OP_TIMEOUT", 150*time.Millisecond),
		PlaceholderColor: getenv("PLACEHOLDER_COLOR", "#f3efe9"),
		Kafka: KafkaCfg{
			Brokers: splitCSV(getenv("KAFKA_BROKERS", "localhost:9092")),
			GroupID: getenv("KAFKA_GROUP_ID", "rescue-edge"),
		},
		Telemetry: TelemetryCfg{
			ReportEvery:  every,
			KafkaEnabled: getbool("TELEMETRY_KAFKA_ENABLED", false),
			Topic:        getenv("TELEMETRY_TOPIC", "image-telemetry"),
			QueueSize:    getint("TELEMETRY_QUEUE", 256),
		},
		Invalidation: InvalidationCfg{
			Enabled: getbool("INVALIDATION_ENABLED", false),
			Topic:   getenv("INVALIDATION_TOPIC", "image-invalidation"),
		},
		MetricsEnabled: getbool("METRICS_ENABLED", false),
		MetricsAddr:    getenv("METRICS_ADDR", ":9090"),
		MetricsPath:    getenv("METRICS_PATH", "/metrics"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// "a:9092, b:9092" -> [a:9092 b:9092]
func splitCSV(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if x := strings.TrimSpace(p); x != "" {
			out = append(out, x)
		}
	}
	return out
}
