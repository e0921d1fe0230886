// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/wpml2pll/internal/cache"
	"github.com/olegiv/wpml2pll/internal/config"
	"github.com/olegiv/wpml2pll/internal/i18n"
	"github.com/olegiv/wpml2pll/internal/metrics"
	"github.com/olegiv/wpml2pll/internal/migration"
	"github.com/olegiv/wpml2pll/internal/options"
	"github.com/olegiv/wpml2pll/internal/polylang"
	"github.com/olegiv/wpml2pll/internal/store"
	"github.com/olegiv/wpml2pll/internal/wpml"
)

// app holds the long-lived collaborators shared by every trigger mode.
type app struct {
	cfg     *config.Config
	db      *sql.DB
	tables  store.Tables
	cache   cache.Cache
	options *options.Store
	source  *wpml.Reader
	metrics *metrics.Collector
	logger  *slog.Logger
}

func newApp(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*app, error) {
	tables, err := store.NewTables(cfg.TablePrefix)
	if err != nil {
		return nil, err
	}
	c := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix + cfg.TablePrefix,
		DefaultTTL: cfg.CacheTTLDuration(),
	}, logger)

	return &app{
		cfg:     cfg,
		db:      db,
		tables:  tables,
		cache:   c,
		options: options.New(db, tables),
		source:  wpml.NewReader(db, tables),
		metrics: metrics.New(),
		logger:  logger,
	}, nil
}

// status returns the recorder backed by the status option.
func (a *app) status() *migration.OptionStatus {
	return migration.NewOptionStatus(a.options)
}

// newDriver builds a driver over freshly loaded settings. Settings are read
// per step because earlier stages change what later ones see.
func (a *app) newDriver(ctx context.Context) (*migration.Driver, error) {
	settings, err := migration.LoadSettings(ctx, a.options, a.cfg.BatchSize, a.cfg.ExcludedStringDomains)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	target := polylang.NewModel(a.db, a.tables, a.cache, a.logger,
		polylang.WithTranslatedTypes(settings.Source.TranslatedPostTypes(), settings.Source.TranslatedTaxonomies()),
		polylang.WithCacheTTL(a.cfg.CacheTTLDuration()))

	stages := migration.NewStages(migration.Deps{
		DB:       a.db,
		Tables:   a.tables,
		Source:   a.source,
		Target:   target,
		Catalogs: target,
		Options:  a.options,
		Locales:  polylang.LookupLocale,
		Rows:     a.metrics,
		Logger:   a.logger,
	}, settings)

	chain, err := migration.NewChain(stages...)
	if err != nil {
		return nil, err
	}

	translate := i18n.Translator(a.cfg.Lang)
	return migration.NewDriver(chain, a.logger,
		migration.WithPreflight(func(ctx context.Context) error {
			return localizePreflight(migration.Preflight(ctx, a.options, target), translate)
		}),
		migration.WithObserver(a.metrics),
		migration.WithStatus(a.status()),
		migration.WithTranslator(translate),
	), nil
}

// localizePreflight translates the problems of a preflight failure.
func localizePreflight(err error, translate func(string) string) error {
	var pe *migration.PreflightError
	if !errors.As(err, &pe) {
		return err
	}
	problems := make([]string, len(pe.Problems))
	for i, p := range pe.Problems {
		problems[i] = translate(p)
	}
	return &migration.PreflightError{Problems: problems}
}

func (a *app) close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Error("error closing cache", "error", err)
	}
}
