// Command veritas answers questions strictly from locally ingested documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/veritas/internal/adapters/driven/ai"
	"github.com/custodia-labs/veritas/internal/adapters/driven/config/file"
	"github.com/custodia-labs/veritas/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/veritas/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/veritas/internal/adapters/driving/cli"
	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/services"
	"github.com/custodia-labs/veritas/internal/logger"
	"github.com/custodia-labs/veritas/internal/normalisers"
	"github.com/custodia-labs/veritas/internal/postprocessors"
)

// version is set at build time via -ldflags.
var version = "dev"

// probeTimeout bounds the embedding call used to learn an unknown dimension.
const probeTimeout = 30 * time.Second

func main() {
	cli.SetVersion(version)
	cli.SetFactory(buildServices)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildServices wires adapters into services. Without withIndex only the
// settings service is built, so a broken provider can always be fixed.
func buildServices(cfg cli.Config, withIndex bool) (*cli.Services, error) {
	configDir := cfg.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator(), dataDir)

	svc := &cli.Services{Settings: settingsService, Close: func() {}}
	if !withIndex {
		return svc, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	models, err := ai.Initialise(settings)
	if err != nil {
		return nil, err
	}
	svc.Warnings = models.Warnings

	dim, err := embeddingDimensions(models, settings)
	if err != nil {
		models.Close()
		return nil, err
	}
	if settings.Index.Dimensions == 0 {
		settings.Index.Dimensions = dim
		if err := settingsService.Save(settings); err != nil {
			logger.Warn("Could not remember index dimension: %v", err)
		}
	}

	index, err := flat.New(dim)
	if err != nil {
		models.Close()
		return nil, err
	}
	session := services.NewSession(index, filepath.Join(settings.Index.Dir, settings.Index.Collection))
	if err := session.Load(); err != nil {
		switch {
		case errors.Is(err, domain.ErrDimensionMismatch):
			models.Close()
			return nil, fmt.Errorf("index %s was built with a different embedding model: %w",
				session.Prefix(), err)
		case !errors.Is(err, fs.ErrNotExist):
			svc.Warnings = append(svc.Warnings, fmt.Sprintf("index %s could not be loaded, starting empty: %v", session.Prefix(), err))
		}
	}

	catalogue, err := sqlite.NewStore(dataDir)
	if err != nil {
		models.Close()
		return nil, fmt.Errorf("open catalogue: %w", err)
	}
	docStore := catalogue.DocumentStore()

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		models.Close()
		catalogue.Close()
		return nil, err
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.BuildPipeline(registry, settings.Pipeline)
	if err != nil {
		models.Close()
		catalogue.Close()
		return nil, fmt.Errorf("build chunking pipeline: %w", err)
	}

	search := services.NewSearchService(session, models.EmbeddingService, models.Scorer, settings.Retrieval)

	svc.Ingest = services.NewIngestService(normalisers.NewDefaultRegistry(), pipeline, models.EmbeddingService, session, docStore)
	svc.Search = search
	svc.Answer = services.NewAnswerService(search, models.LLMService, prompts)
	svc.Document = services.NewDocumentService(docStore, session)
	svc.Close = func() {
		models.Close()
		catalogue.Close()
	}
	return svc, nil
}

// embeddingDimensions returns the configured dimension, the model's known
// size, or the length of one probe embedding, in that order.
func embeddingDimensions(models *ai.InitResult, settings *domain.AppSettings) (int, error) {
	if settings.Index.Dimensions > 0 {
		return settings.Index.Dimensions, nil
	}
	if dim := models.EmbeddingService.Dimensions(); dim > 0 {
		return dim, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	vec, err := models.EmbeddingService.Embed(ctx, "veritas")
	if err != nil {
		return 0, fmt.Errorf("%w: learn dimension of %s: %w",
			domain.ErrEmbeddingUnavailable, models.EmbeddingService.ModelName(), err)
	}
	return len(vec), nil
}
