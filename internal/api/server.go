package api

import (
	"context"
	"net/http"
	"time"

	"menucost/internal/analysis"
	"menucost/internal/cost"
	"menucost/internal/data"
	"menucost/internal/models"
	"menucost/internal/monitoring"
	"menucost/internal/report"
	"menucost/internal/substitution"

	"github.com/gin-gonic/gin"
)

// QueryParser turns a free-text message into a structured query. Satisfied
// by the LLM parser; tests substitute a canned implementation.
type QueryParser interface {
	Parse(ctx context.Context, userInput string) models.StructuredQuery
}

// Server is the HTTP surface of the analysis service
type Server struct {
	Router *gin.Engine

	store        *data.Store
	costEngine   *cost.Engine
	subsEngine   *substitution.Engine
	orchestrator *analysis.Orchestrator
	parser       QueryParser
	convo        analysis.ConversationContext
	metrics      *monitoring.Metrics
	hub          *Hub
}

// ChatRequest is an incoming chat message
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse pairs the rendered answer with the raw analysis data
type ChatResponse struct {
	Response     string           `json:"response"`
	AnalysisData *analysis.Result `json:"analysis_data,omitempty"`
}

// NewServer wires the engines behind the HTTP routes
func NewServer(store *data.Store, costEngine *cost.Engine, subsEngine *substitution.Engine, queryParser QueryParser, convo analysis.ConversationContext, metrics *monitoring.Metrics) *Server {
	s := &Server{
		Router:       gin.Default(),
		store:        store,
		costEngine:   costEngine,
		subsEngine:   subsEngine,
		orchestrator: analysis.NewOrchestrator(costEngine, subsEngine, convo),
		parser:       queryParser,
		convo:        convo,
		metrics:      metrics,
		hub:          NewHub(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.Router.GET("/health", s.GetHealth)
	s.Router.POST("/chat", s.Chat)
	s.Router.POST("/reset", s.ResetConversation)
	s.Router.GET("/ws", s.handleWebSocket)

	v1 := s.Router.Group("/api/v1")
	{
		v1.POST("/analyze", s.Analyze)

		v1.GET("/costs/baseline", s.GetBaselineCosts)
		v1.POST("/costs/shocks", s.ApplyPriceShocks)
		v1.POST("/costs/delays", s.AnalyzeSupplyDelays)
		v1.GET("/costs/categories/:category", s.GetCategoryCosts)

		v1.GET("/substitutions/:ingredient", s.GetSubstitutions)
	}
}

// GetHealth reports data and engine readiness
func (s *Server) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"ingredients":        s.store.NumIngredients(),
		"menu_items":         s.store.NumMenuItems(),
		"bom_entries":        s.store.NumBOMEntries(),
		"substitution_rules": s.store.NumSubstitutionRules(),
		"uptime_seconds":     s.metrics.Uptime().Seconds(),
	})
}

// Chat is the conversational entry point: parse the message, run the
// analysis, render the answer. Parsing failures degrade to a general
// query rather than failing the request.
func (s *Server) Chat(c *gin.Context) {
	started := time.Now()
	defer func() { s.metrics.ObserveRequest("chat", time.Since(started)) }()

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := s.parser.Parse(c.Request.Context(), req.Message)
	if query.ParseFailed {
		s.metrics.RecordParseFailure()
	}

	result := s.runQuery(query)
	response := report.FormatResponse(query, result)
	s.convo.RecordExchange(req.Message, response, query)

	c.JSON(http.StatusOK, ChatResponse{Response: response, AnalysisData: result})
}

// ResetConversation clears conversation state for a fresh session. A
// no-op under the stateless context.
func (s *Server) ResetConversation(c *gin.Context) {
	s.convo.Clear()
	c.JSON(http.StatusOK, gin.H{"message": "Conversation reset successful", "status": "ready"})
}

// Analyze runs a caller-supplied structured query, bypassing the LLM
func (s *Server) Analyze(c *gin.Context) {
	started := time.Now()
	defer func() { s.metrics.ObserveRequest("analyze", time.Since(started)) }()

	var query models.StructuredQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if query.QueryType == "" {
		query.QueryType = models.QueryGeneral
	}

	c.JSON(http.StatusOK, s.runQuery(query))
}

// GetBaselineCosts returns the baseline cost breakdown of every dish
func (s *Server) GetBaselineCosts(c *gin.Context) {
	started := time.Now()
	defer func() { s.metrics.ObserveRequest("baseline", time.Since(started)) }()

	c.JSON(http.StatusOK, s.costEngine.CalculateBaselineCosts())
}

// ApplyPriceShocks runs a price-shock analysis with substitutions
func (s *Server) ApplyPriceShocks(c *gin.Context) {
	started := time.Now()
	defer func() { s.metrics.ObserveRequest("shocks", time.Since(started)) }()

	var req struct {
		PriceShocks []models.PriceShock `json:"price_shocks" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := models.DefaultQuery()
	query.QueryType = models.QueryPriceShock
	query.PriceShocks = req.PriceShocks
	c.JSON(http.StatusOK, s.runQuery(query))
}

// AnalyzeSupplyDelays runs a supply-delay analysis with substitutions
func (s *Server) AnalyzeSupplyDelays(c *gin.Context) {
	started := time.Now()
	defer func() { s.metrics.ObserveRequest("delays", time.Since(started)) }()

	var req struct {
		Delays        []models.SupplyDelay `json:"delays" binding:"required"`
		ThresholdDays int                  `json:"lead_time_threshold_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := models.DefaultQuery()
	query.QueryType = models.QueryDelay
	query.Delays = req.Delays
	if req.ThresholdDays > 0 {
		query.Assumptions.LeadTimeThresholdDays = req.ThresholdDays
	}
	c.JSON(http.StatusOK, s.runQuery(query))
}

// GetCategoryCosts lists a category's dishes sorted by cost percentage
func (s *Server) GetCategoryCosts(c *gin.Context) {
	started := time.Now()
	defer func() { s.metrics.ObserveRequest("categories", time.Since(started)) }()

	query := models.DefaultQuery()
	query.QueryType = models.QueryCategory
	query.CategoryFilter = c.Param("category")
	result := s.runQuery(query)

	c.JSON(http.StatusOK, gin.H{
		"category_filter": result.CategoryFilter,
		"category_dishes": result.CategoryDishes,
	})
}

// GetSubstitutions lists allowed substitution rules for one ingredient,
// optionally narrowed by a context query parameter.
func (s *Server) GetSubstitutions(c *gin.Context) {
	started := time.Now()
	defer func() { s.metrics.ObserveRequest("substitutions", time.Since(started)) }()

	ingredient := c.Param("ingredient")
	rules := s.subsEngine.GetSubstitutionsForIngredient(ingredient, c.Query("context"))
	c.JSON(http.StatusOK, gin.H{
		"ingredient":    ingredient,
		"substitutions": rules,
	})
}

// runQuery executes a query through the orchestrator, records metrics,
// and streams the outcome to websocket subscribers.
func (s *Server) runQuery(query models.StructuredQuery) *analysis.Result {
	result := s.orchestrator.ProcessQuery(query)

	s.metrics.RecordQuery(string(query.QueryType))
	if result.Error != "" {
		s.metrics.RecordAnalysisError()
	}

	s.hub.Broadcast(AnalysisEvent{
		QueryType:     string(query.QueryType),
		UserIntent:    query.UserIntent,
		Error:         result.Error,
		Timestamp:     time.Now(),
		Substitutions: len(result.AvailableSubstitutions),
	})

	return result
}
