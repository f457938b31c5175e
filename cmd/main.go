package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"menucost/internal/analysis"
	"menucost/internal/api"
	"menucost/internal/cost"
	"menucost/internal/data"
	"menucost/internal/monitoring"
	"menucost/internal/parser"
	"menucost/internal/substitution"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"gopkg.in/yaml.v3"
)

var (
	port        = flag.Int("port", 8080, "API server port")
	metricsPort = flag.Int("metrics-port", 9090, "Metrics server port")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	config, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	model, err := initializeLLM(config)
	if err != nil {
		log.Fatalf("Failed to initialize LLM: %v", err)
	}

	store, err := loadStore(config)
	if err != nil {
		log.Fatalf("Failed to load reference data: %v", err)
	}
	log.Printf("Data loaded: %d ingredients, %d menu items, %d BOM entries, %d substitution rules",
		store.NumIngredients(), store.NumMenuItems(), store.NumBOMEntries(), store.NumSubstitutionRules())

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	costEngine := cost.NewEngine(store)
	subsEngine := substitution.NewEngine(store)
	queryParser := parser.NewQueryParser(model)
	convo := analysis.NewStatelessContext()

	server := api.NewServer(store, costEngine, subsEngine, queryParser, convo, metrics)

	if config.Metrics.Enabled {
		mPort := *metricsPort
		if config.Metrics.Port > 0 {
			mPort = config.Metrics.Port
		}
		go startMetricsServer(mPort, config.Metrics.Path)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting API server on port %d", *port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

// Config represents the application configuration
type Config struct {
	Data struct {
		Source     string `yaml:"source"` // csv or sqlite
		CSVDir     string `yaml:"csv_dir"`
		SQLitePath string `yaml:"sqlite_path"`
		Seed       bool   `yaml:"seed"`
	} `yaml:"data"`
	Ollama struct {
		URL   string `yaml:"url"`
		Model string `yaml:"model"`
	} `yaml:"ollama"`
	LogLevel string `yaml:"log_level"`
	Metrics  struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

func loadConfig(path string) (*Config, error) {
	config := &Config{}
	config.Data.Source = "csv"
	config.Data.CSVDir = "data"
	config.Data.SQLitePath = "menucost.db"
	config.Ollama.URL = "http://localhost:11434"
	config.Ollama.Model = "llama3.2:1b"
	config.Metrics.Enabled = true
	config.Metrics.Path = "/metrics"

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Config file %s not found, using defaults", path)
			return config, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return config, nil
}

func initializeLLM(config *Config) (llms.LLM, error) {
	llm, err := ollama.New(
		ollama.WithModel(config.Ollama.Model),
		ollama.WithServerURL(config.Ollama.URL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Ollama client: %w", err)
	}
	log.Printf("LLM parser initialized with %s", config.Ollama.Model)
	return llm, nil
}

func loadStore(config *Config) (*data.Store, error) {
	switch config.Data.Source {
	case "sqlite":
		if config.Data.Seed {
			if err := data.SeedSQLite(config.Data.SQLitePath, config.Data.CSVDir); err != nil {
				return nil, err
			}
			log.Printf("Seeded %s from %s", config.Data.SQLitePath, config.Data.CSVDir)
		}
		return data.LoadFromSQLite(config.Data.SQLitePath)
	case "csv", "":
		return data.LoadFromCSV(config.Data.CSVDir)
	}
	return nil, fmt.Errorf("unknown data source %q", config.Data.Source)
}

func startMetricsServer(port int, path string) {
	if path == "" {
		path = "/metrics"
	}

	metricsRouter := gin.Default()
	metricsRouter.GET(path, gin.WrapH(promhttp.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
