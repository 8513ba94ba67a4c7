package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/api"
	"github.com/clearwater-labs/amlguard/internal/aml"
	"github.com/clearwater-labs/amlguard/internal/aml/docanalysis"
	"github.com/clearwater-labs/amlguard/internal/aml/workflow"
	"github.com/clearwater-labs/amlguard/pkg/logger"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to yaml configuration (defaults built in)")
		casesPath  = flag.String("cases", "", "screen a JSON case file and exit")
		addr       = flag.String("addr", ":8080", "listen address for the HTTP API")
		logLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	// .env is optional; the LLM API key usually lives there.
	if err := godotenv.Load(); err != nil {
		// proceed with the process environment
	}

	zlog, err := logger.NewLogger(*logLevel)
	if err != nil {
		os.Exit(1)
	}
	defer zlog.Sync()
	log := zlog.Sugar()

	cfg := aml.DefaultConfig()
	if *configPath != "" {
		cfg, err = aml.LoadConfig(*configPath)
		if err != nil {
			log.Fatalw("failed to load configuration", "path", *configPath, "error", err)
		}
	} else if err := cfg.Validate(); err != nil {
		log.Fatalw("default configuration invalid", "error", err)
	}

	apiKey := os.Getenv(cfg.LLM.APIKeyEnv)
	if apiKey == "" {
		log.Warnw("no LLM API key set; document analysis will degrade to zero contribution",
			"env", cfg.LLM.APIKeyEnv)
	}
	analyzer := docanalysis.NewClient(cfg.LLM, apiKey, log)

	engine := workflow.NewEngine(cfg, analyzer, log)

	if *casesPath != "" {
		runCaseFile(log, engine, *casesPath)
		return
	}

	server := api.NewServer(zlog, engine)
	log.Infow("amlguard listening", "addr", *addr)
	if err := server.Run(*addr); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}

// runCaseFile screens every case in a sample file and logs the reports.
func runCaseFile(log *zap.SugaredLogger, engine *workflow.Engine, path string) {
	cases, err := aml.LoadSampleCases(path)
	if err != nil {
		log.Fatalw("failed to load case file", "path", path, "error", err)
	}

	ctx := context.Background()
	for i, sc := range cases {
		report, err := engine.RunAnalysis(ctx, sc.Transaction, sc.Customer)
		if err != nil {
			log.Errorw("case rejected",
				"index", i,
				"scenario", sc.Scenario,
				"error", err,
			)
			continue
		}
		log.Infow("case screened",
			"index", i,
			"scenario", sc.Scenario,
			"case_id", report.CaseID,
			"composite_score", report.CompositeScore,
			"decision", report.Decision,
			"requires_human_review", report.RequiresHumanReview,
			"alerts", report.Alerts,
			"decision_path", report.DecisionPath,
			"expected_outcome", sc.ExpectedOutcome,
		)
	}
}
