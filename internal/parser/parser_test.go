package parser

import (
	"context"
	"errors"
	"testing"

	"menucost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// MockLLM is a mock implementation of the LLM interface
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llms.ContentResponse), args.Error(1)
}

func TestParseValidResponse(t *testing.T) {
	mockLLM := new(MockLLM)
	mockLLM.On("Call", mock.Anything, mock.Anything).Return(`{
		"price_shocks": [{"ingredient": "tomato_sauce", "pct": 20}],
		"delays": [],
		"assumptions": {"lead_time_threshold_days": 5},
		"query_type": "price_shock",
		"category_filter": "",
		"user_intent": "tomato price increase"
	}`, nil)

	parser := NewQueryParser(mockLLM)
	query := parser.Parse(context.Background(), "tomato prices went up 20%")

	assert.False(t, query.ParseFailed)
	assert.Equal(t, models.QueryPriceShock, query.QueryType)
	require.Len(t, query.PriceShocks, 1)
	assert.Equal(t, "tomato_sauce", query.PriceShocks[0].Ingredient)
	assert.Equal(t, 20.0, query.PriceShocks[0].Pct)
	assert.Equal(t, "tomato prices went up 20%", query.OriginalQuery)
	mockLLM.AssertExpectations(t)
}

func TestParseExtractsJSONFromSurroundingText(t *testing.T) {
	mockLLM := new(MockLLM)
	mockLLM.On("Call", mock.Anything, mock.Anything).Return(
		`Sure, here is the structured query:
{"price_shocks": [], "delays": [{"ingredient": "guanciale", "extra_days": 4}], "assumptions": {"lead_time_threshold_days": 7}, "query_type": "delay", "user_intent": "guanciale delayed"}
Let me know if you need anything else.`, nil)

	parser := NewQueryParser(mockLLM)
	query := parser.Parse(context.Background(), "guanciale shipment is 4 days late")

	assert.False(t, query.ParseFailed)
	assert.Equal(t, models.QueryDelay, query.QueryType)
	require.Len(t, query.Delays, 1)
	assert.Equal(t, 4, query.Delays[0].ExtraDays)
	assert.Equal(t, 7, query.Threshold())
}

func TestParseFallbackOnLLMError(t *testing.T) {
	mockLLM := new(MockLLM)
	mockLLM.On("Call", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	parser := NewQueryParser(mockLLM)
	query := parser.Parse(context.Background(), "anything")

	assert.True(t, query.ParseFailed)
	assert.Equal(t, models.QueryGeneral, query.QueryType)
	assert.Empty(t, query.PriceShocks)
	assert.Empty(t, query.Delays)
	assert.Equal(t, models.DefaultLeadTimeThreshold, query.Threshold())
	assert.Equal(t, "anything", query.OriginalQuery)
}

func TestParseFallbackOnGarbageResponse(t *testing.T) {
	mockLLM := new(MockLLM)
	mockLLM.On("Call", mock.Anything, mock.Anything).Return("I cannot help with that.", nil)

	parser := NewQueryParser(mockLLM)
	query := parser.Parse(context.Background(), "tomato prices?")

	assert.True(t, query.ParseFailed)
	assert.Equal(t, models.QueryGeneral, query.QueryType)
}

func TestParseFallbackOnMissingRequiredKeys(t *testing.T) {
	mockLLM := new(MockLLM)
	// Valid JSON, but no delays/assumptions keys.
	mockLLM.On("Call", mock.Anything, mock.Anything).Return(
		`{"price_shocks": [], "query_type": "general"}`, nil)

	parser := NewQueryParser(mockLLM)
	query := parser.Parse(context.Background(), "hello")

	assert.True(t, query.ParseFailed)
}

func TestParseFallbackOnInvalidJSON(t *testing.T) {
	mockLLM := new(MockLLM)
	mockLLM.On("Call", mock.Anything, mock.Anything).Return(
		`{"price_shocks": [,], "delays": [], "assumptions": {}, "query_type": "general"}`, nil)

	parser := NewQueryParser(mockLLM)
	query := parser.Parse(context.Background(), "hello")

	assert.True(t, query.ParseFailed)
}

func TestExtractQueryBoundaries(t *testing.T) {
	// First '{' to last '}' even when braces appear inside strings.
	query, err := extractQuery(`{"price_shocks": [], "delays": [], "assumptions": {"lead_time_threshold_days": 5}, "query_type": "general", "user_intent": "curly {braces} inside"}`)
	require.NoError(t, err)
	assert.Equal(t, "curly {braces} inside", query.UserIntent)

	_, err = extractQuery("no json here")
	assert.Error(t, err)

	_, err = extractQuery("} backwards {")
	assert.Error(t, err)
}
