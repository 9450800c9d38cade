package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr           string
	AllowedOrigins string
	LogLevel       string
	LogPretty      bool

	AIDepth   int
	HintDepth int
	// AITimeout bounds one engine turn; past it the first legal move is played.
	AITimeout  time.Duration
	AIMaxNodes int

	ClockTime           time.Duration
	MatchmakingInterval time.Duration

	Advice AdviceConfig
}

type AdviceConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

const defaultAdviceEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"

func Default() Config {
	return Config{
		Addr:           ":3000",
		AllowedOrigins: "http://localhost:5173",
		LogLevel:       "info",

		AIDepth:    4,
		HintDepth:  3,
		AITimeout:  5 * time.Second,
		AIMaxNodes: 1 << 20,

		ClockTime:           10 * time.Minute,
		MatchmakingInterval: time.Second,

		Advice: AdviceConfig{
			Endpoint: defaultAdviceEndpoint,
			Timeout:  10 * time.Second,
		},
	}
}

// FromEnv returns Default overridden by DAMA_* variables. The advice key is
// read from GEMINI_API_KEY, falling back to GENAI_API_KEY.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	l := loader{lookup: lookup}

	l.str("DAMA_ADDR", &cfg.Addr)
	l.str("DAMA_ALLOWED_ORIGINS", &cfg.AllowedOrigins)
	l.str("DAMA_LOG_LEVEL", &cfg.LogLevel)
	l.boolean("DAMA_LOG_PRETTY", &cfg.LogPretty)
	l.positiveInt("DAMA_AI_DEPTH", &cfg.AIDepth)
	l.positiveInt("DAMA_HINT_DEPTH", &cfg.HintDepth)
	l.duration("DAMA_AI_TIMEOUT", &cfg.AITimeout)
	l.positiveInt("DAMA_AI_MAX_NODES", &cfg.AIMaxNodes)
	l.duration("DAMA_CLOCK", &cfg.ClockTime)
	l.duration("DAMA_MATCHMAKING_INTERVAL", &cfg.MatchmakingInterval)
	l.str("GENAI_API_KEY", &cfg.Advice.APIKey)
	l.str("GEMINI_API_KEY", &cfg.Advice.APIKey)
	l.str("DAMA_ADVICE_ENDPOINT", &cfg.Advice.Endpoint)
	l.duration("DAMA_ADVICE_TIMEOUT", &cfg.Advice.Timeout)

	if l.err != nil {
		return Config{}, l.err
	}
	return cfg, nil
}

type loader struct {
	lookup func(string) (string, bool)
	err    error
}

func (l *loader) get(key string) (string, bool) {
	if l.err != nil {
		return "", false
	}
	v, ok := l.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (l *loader) str(key string, dst *string) {
	if v, ok := l.get(key); ok {
		*dst = v
	}
}

func (l *loader) boolean(key string, dst *bool) {
	v, ok := l.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.err = fmt.Errorf("config: %s: %w", key, err)
		return
	}
	*dst = b
}

func (l *loader) positiveInt(key string, dst *int) {
	v, ok := l.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.err = fmt.Errorf("config: %s: %w", key, err)
		return
	}
	if n <= 0 {
		l.err = fmt.Errorf("config: %s: must be positive, got %d", key, n)
		return
	}
	*dst = n
}

func (l *loader) duration(key string, dst *time.Duration) {
	v, ok := l.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.err = fmt.Errorf("config: %s: %w", key, err)
		return
	}
	if d <= 0 {
		l.err = fmt.Errorf("config: %s: must be positive, got %s", key, d)
		return
	}
	*dst = d
}
