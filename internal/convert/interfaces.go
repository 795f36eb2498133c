package convert

import (
	"briefdeck/internal/core"
	"briefdeck/internal/store"
)

// Recorder keeps the history of conversions. *store.Store implements it.
type Recorder interface {
	RecordPreview(presentationID, sourceName, previewURL string, classifications []core.Classification) (*store.Conversion, error)
	RecordDownload(presentationID, downloadURL string, slideCount int) error
	GetConversion(presentationID string) (*store.Conversion, error)
}

// ResponseCache stores oracle responses. *store.Store implements it.
type ResponseCache interface {
	GetCachedResponse(kind, model, prompt string) (string, bool, error)
	CacheResponse(kind, model, prompt, response string) error
}

// Sink persists generated artifacts. *store.FileSink implements it.
type Sink interface {
	Save(kind store.Kind, presentationID, ext string, data []byte) (path, url string, err error)
}
