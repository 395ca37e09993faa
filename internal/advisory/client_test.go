package advisory

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epivet/epivet-go/internal/epidemic"
	"github.com/epivet/epivet-go/internal/errors"
)

const testEndpoint = "https://advisory.test/v1/chat/completions"

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(Config{
		Endpoint:    testEndpoint,
		APIKey:      "test-key",
		Model:       "deepseek-chat",
		Temperature: 0.7,
		MaxTokens:   2000,
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)
	client.backoffUnit = time.Millisecond

	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	return client
}

func testSnapshot() Snapshot {
	return Snapshot{
		Params: epidemic.Parameters{
			Beta:            0.3,
			Gamma:           0.1,
			Population:      1000,
			InitialInfected: 1,
		},
		Env: epidemic.Environment{
			Temperature:   20,
			Humidity:      60,
			MigrationRate: 0.005,
		},
	}
}

func successResponder(content string) httpmock.Responder {
	return httpmock.NewJsonResponderOrPanic(200, map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{Endpoint: testEndpoint})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestNewClient_AppliesDefaults(t *testing.T) {
	client, err := NewClient(Config{APIKey: "test-key"})
	require.NoError(t, err)

	defaults := DefaultConfig()
	assert.Equal(t, defaults.Endpoint, client.config.Endpoint)
	assert.Equal(t, defaults.Model, client.config.Model)
	assert.Equal(t, defaults.MaxTokens, client.config.MaxTokens)
	assert.Equal(t, defaults.Timeout, client.config.Timeout)
}

func TestGetAdvisory_CachesIdenticalQueries(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder("POST", testEndpoint, successResponder("monitor the flock closely"))

	first, err := client.GetAdvisory(context.Background(), "how bad is it?", testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "monitor the flock closely", first)

	second, err := client.GetAdvisory(context.Background(), "how bad is it?", testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Only the first call reached the remote service.
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
	assert.Equal(t, 1, client.CacheCount())

	metrics := client.GetMetrics()
	assert.Equal(t, int64(1), metrics.APICalls)
	assert.Equal(t, int64(1), metrics.CacheHits)
	assert.Equal(t, int64(1), metrics.CacheMisses)
}

func TestGetAdvisory_SnapshotIsPartOfKey(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder("POST", testEndpoint, successResponder("answer"))

	_, err := client.GetAdvisory(context.Background(), "same question", testSnapshot())
	require.NoError(t, err)

	changed := testSnapshot()
	changed.Params.Beta = 0.5
	_, err = client.GetAdvisory(context.Background(), "same question", changed)
	require.NoError(t, err)

	assert.Equal(t, 2, httpmock.GetTotalCallCount())
	assert.Equal(t, 2, client.CacheCount())
}

func TestGetAdvisory_RetriesThenGivesUp(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewStringResponder(500, "internal error"))

	_, err := client.GetAdvisory(context.Background(), "query", testSnapshot())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.Equal(t, maxRetries, httpmock.GetTotalCallCount())
	// Failures are never cached; a later call tries the network again.
	assert.Zero(t, client.CacheCount())
}

func TestGetAdvisory_RecoversWithinRetryBudget(t *testing.T) {
	client := newTestClient(t)

	calls := 0
	httpmock.RegisterResponder("POST", testEndpoint,
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return httpmock.NewStringResponse(503, "unavailable"), nil
			}
			return successResponder("recovered answer")(req)
		})

	text, err := client.GetAdvisory(context.Background(), "query", testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "recovered answer", text)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, client.CacheCount())
}

func TestGetAdvisory_MalformedResponseNotRetried(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewStringResponder(200, `{"choices": []}`))

	_, err := client.GetAdvisory(context.Background(), "query", testSnapshot())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryResponseParsing))
	assert.NotErrorIs(t, err, ErrUnavailable)

	// A malformed but delivered response is a service bug; one attempt only.
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
	assert.Zero(t, client.CacheCount())
}

func TestGetAdvisory_CancelledContext(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder("POST", testEndpoint,
		httpmock.NewStringResponder(500, "internal error"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetAdvisory(ctx, "query", testSnapshot())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
}

func TestClearCache(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder("POST", testEndpoint, successResponder("answer"))

	_, err := client.GetAdvisory(context.Background(), "query", testSnapshot())
	require.NoError(t, err)
	require.Equal(t, 1, client.CacheCount())

	client.ClearCache()
	assert.Zero(t, client.CacheCount())

	_, err = client.GetAdvisory(context.Background(), "query", testSnapshot())
	require.NoError(t, err)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestSnapshot_CacheKey(t *testing.T) {
	base := testSnapshot()

	assert.Equal(t, base.cacheKey("q"), testSnapshot().cacheKey("q"))
	assert.NotEqual(t, base.cacheKey("q"), base.cacheKey("other"))

	changed := testSnapshot()
	changed.Env.Humidity = 80
	assert.NotEqual(t, base.cacheKey("q"), changed.cacheKey("q"))
}

func TestSnapshot_Prompt(t *testing.T) {
	prompt := testSnapshot().prompt("Will the outbreak peak soon?")

	assert.Contains(t, prompt, "transmission rate (beta): 0.3")
	assert.Contains(t, prompt, "population: 1000")
	assert.Contains(t, prompt, "Will the outbreak peak soon?")
}
