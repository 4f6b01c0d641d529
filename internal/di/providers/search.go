package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/cadenceapp/cadence-server/internal/config"
	"github.com/cadenceapp/cadence-server/internal/logger"
	"github.com/cadenceapp/cadence-server/internal/search"
	"github.com/cadenceapp/cadence-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SongIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve song index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSongIndex(search.Options{
		DataPath: cfg.Data.SearchIndexPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SongIndex: index}, nil
}

// RebuildSearchIndexIfNeeded rebuilds the song index from the store when the
// document count disagrees with the catalog.
func RebuildSearchIndexIfNeeded(i do.Injector) error {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	songService := do.MustInvoke[*service.SongService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx := context.Background()

	songCount, err := storeHandle.CountSongs(ctx)
	if err != nil {
		return err
	}
	docCount, err := indexHandle.DocumentCount()
	if err == nil && docCount == uint64(songCount) {
		return nil
	}

	log.Info("Search index out of date, rebuilding",
		"songs", songCount,
		"documents", docCount,
	)
	return songService.RebuildIndex(ctx)
}
