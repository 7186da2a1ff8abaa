package fetchers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"empleoformal/internal/logger"
	"empleoformal/internal/storage"
)

// DataFetcher resolves a data source (local path, gs:// object or http(s) URL) into raw bytes
type DataFetcher struct {
	client   *resty.Client
	gcsFetch func(ctx context.Context, url string) ([]byte, error)
	log      *logger.Logger
}

// NewDataFetcher creates a new data fetcher instance
func NewDataFetcher() *DataFetcher {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(2 * time.Second)
	client.SetHeader("User-Agent", "empleoformal-dashboard")

	return &DataFetcher{
		client:   client,
		gcsFetch: storage.FetchObject,
		log:      logger.Component("fetcher"),
	}
}

// Fetch returns the content of source
func (f *DataFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("empty data source")
	}

	start := time.Now()
	var (
		data []byte
		err  error
	)

	kind := ClassifySource(source)
	switch kind {
	case SourceGCS:
		data, err = f.gcsFetch(ctx, source)
	case SourceHTTP:
		data, err = f.fetchHTTP(ctx, source)
	default:
		data, err = f.fetchLocal(ctx, source)
	}
	if err != nil {
		return nil, err
	}

	f.log.Debug("Fetched data source", logger.Fields{
		"source":   source,
		"kind":     string(kind),
		"bytes":    len(data),
		"duration": time.Since(start).String(),
	})
	return data, nil
}

func (f *DataFetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/csv, application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, */*").
		Get(url)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", url, resp.StatusCode())
	}

	return resp.Body(), nil
}

func (f *DataFetcher) fetchLocal(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	return data, nil
}
