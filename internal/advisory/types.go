package advisory

import (
	"fmt"
	"time"

	"github.com/epivet/epivet-go/internal/conf"
	"github.com/epivet/epivet-go/internal/epidemic"
)

// Config holds the remote advisory service configuration.
type Config struct {
	Endpoint    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultConfig returns the default advisory service configuration.
func DefaultConfig() Config {
	return Config{
		Endpoint:    "https://api.deepseek.com/v1/chat/completions",
		Model:       "deepseek-chat",
		Temperature: 0.7,
		MaxTokens:   2000,
		Timeout:     30 * time.Second,
	}
}

// ConfigFromSettings builds the advisory configuration from loaded settings.
func ConfigFromSettings(s *conf.Settings) Config {
	return Config{
		Endpoint:    s.Advisory.Endpoint,
		APIKey:      s.Advisory.APIKey,
		Model:       s.Advisory.Model,
		Temperature: s.Advisory.Temperature,
		MaxTokens:   s.Advisory.MaxTokens,
		Timeout:     s.Advisory.Timeout,
	}
}

// Snapshot is the full parameter context of one advisory request. It is part
// of the cache key: the same question under different parameters is a
// different query.
type Snapshot struct {
	Params epidemic.Parameters  `json:"params"`
	Env    epidemic.Environment `json:"env"`
}

// cacheKey produces the canonical cache key for a query under this snapshot.
func (s Snapshot) cacheKey(query string) string {
	return fmt.Sprintf("%s|beta=%g|gamma=%g|pop=%d|infected=%d|temp=%g|humidity=%g|migration=%g",
		query,
		s.Params.Beta, s.Params.Gamma, s.Params.Population, s.Params.InitialInfected,
		s.Env.Temperature, s.Env.Humidity, s.Env.MigrationRate)
}

// prompt renders the full prompt sent to the remote service, embedding the
// parameter context so the answer reflects the current model state.
func (s Snapshot) prompt(query string) string {
	return fmt.Sprintf(`You are an animal disease transmission analyst. Current model parameters:
- transmission rate (beta): %g
- recovery rate (gamma): %g
- population: %d
- initial infected: %d
Environment factors:
- temperature: %g C
- humidity: %g %%
- migration rate: %g

Answer the user's question: %s`,
		s.Params.Beta, s.Params.Gamma, s.Params.Population, s.Params.InitialInfected,
		s.Env.Temperature, s.Env.Humidity, s.Env.MigrationRate,
		query)
}

// chatMessage is one turn of the remote chat completion request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the JSON body of the remote chat completion request.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// chatResponse is the JSON shape of a successful remote response.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Metrics represents advisory client performance metrics
type Metrics struct {
	APICalls      int64         `json:"api_calls"`
	CacheHits     int64         `json:"cache_hits"`
	CacheMisses   int64         `json:"cache_misses"`
	APIErrors     int64         `json:"api_errors"`
	TotalDuration time.Duration `json:"total_duration"`
	AvgDuration   time.Duration `json:"avg_duration"`
}
