package config

// Config 配置主体
type Config struct {
	Server                Server        `mapstructure:"server"`
	DB                    DBConfig      `mapstructure:"database"`
	Redis                 RedisConfig   `mapstructure:"redis"`
	Auth                  AuthConfig    `mapstructure:"auth"`
	Logstash              Logstash      `mapstructure:"logstash"`
	Kafka                 KafkaConfig   `mapstructure:"kafka"`
	KafkaProducer         KafkaProducer `mapstructure:"kafka_producer"`
	KafkaLikesConsumer    KafkaConsumer `mapstructure:"kafka_likes_consumer"`
	KafkaCommentsConsumer KafkaConsumer `mapstructure:"kafka_comments_consumer"`
}

// Server Server配置
type Server struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// AuthConfig 鉴权配置，签名密钥与 auth-service 共享，资料查询走 HTTP
type AuthConfig struct {
	Secret       string `mapstructure:"secret"`
	BaseURL      string `mapstructure:"base_url"`
	Timeout      int    `mapstructure:"timeout"`
	CacheSeconds int    `mapstructure:"cache_seconds"`
}

// Logstash 日志上报配置
type Logstash struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

// KafkaProducer 领域事件出站配置
type KafkaProducer struct {
	Topic           string `mapstructure:"topic"`
	DeadLetterTopic string `mapstructure:"dead_letter_topic"`
}

type KafkaConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}
