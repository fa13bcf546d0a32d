package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/regulaite/internal/classification"
	"github.com/Veraticus/regulaite/internal/common"
	"github.com/Veraticus/regulaite/internal/compliance"
	"github.com/Veraticus/regulaite/internal/config"
	"github.com/Veraticus/regulaite/internal/engine"
	"github.com/Veraticus/regulaite/internal/explain"
	"github.com/Veraticus/regulaite/internal/llm"
	"github.com/Veraticus/regulaite/internal/rules"
	"github.com/spf13/viper"
)

// pipeline is everything a command needs to run checks.
type pipeline struct {
	engine   *engine.Engine
	rules    *rules.Table
	settings config.Settings
}

func loadSettings() (config.Settings, error) {
	settings := config.FromViper(viper.GetViper())
	if err := settings.Validate(); err != nil {
		return config.Settings{}, common.NewUserError("invalid configuration", err)
	}
	return settings, nil
}

func loadRules(settings config.Settings) (*rules.Table, error) {
	if settings.RulesPath == "" {
		return rules.Default(), nil
	}
	table, err := rules.LoadFile(settings.RulesPath)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("could not load rule table %s", settings.RulesPath), err)
	}
	slog.Info("Loaded rule table", "path", settings.RulesPath)
	return table, nil
}

// createGenerator builds the text-generation client. A missing API key is
// not an error: explanations fall back to a fixed message.
func createGenerator(ctx context.Context, settings config.Settings) (llm.Generator, error) {
	svc, err := llm.New(ctx, llm.Config{
		Provider:    settings.LLM.Provider,
		APIKey:      settings.LLM.APIKey,
		Model:       settings.LLM.Model,
		BaseURL:     settings.LLM.BaseURL,
		Timeout:     settings.LLM.Timeout,
		Temperature: settings.LLM.Temperature,
		MaxTokens:   settings.LLM.MaxTokens,
		RateLimit:   settings.LLM.RateLimit,
	}, slog.Default())
	if errors.Is(err, llm.ErrServiceUnavailable) {
		slog.Warn("No LLM API key configured, explanations are disabled", "provider", settings.LLM.Provider)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	slog.Info("Text generation enabled", "provider", svc.Name())
	return svc, nil
}

func newPipeline(ctx context.Context) (*pipeline, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	table, err := loadRules(settings)
	if err != nil {
		return nil, err
	}

	generator, err := createGenerator(ctx, settings)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	classifier, err := classification.New(settings.ClassifierStrategy, generator, logger)
	if err != nil {
		return nil, err
	}

	eng := engine.New(
		classifier,
		compliance.NewEvaluator(table),
		explain.New(generator, logger),
		logger,
	)

	return &pipeline{engine: eng, rules: table, settings: settings}, nil
}
