// Package export copies committed mirror items into external sinks. A sink
// receives the current state of every item named by the change journal;
// tombstones remove the exported copy.
package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

// Sink names accepted in the export configuration.
const (
	SinkFile = "file"
	SinkS3   = "s3"
)

var (
	ErrUnknownSink   = errors.New("unknown export sink")
	ErrInvalidItemID = errors.New("item id cannot be used as an object name")
)

// Sink is an export destination. Put and Delete must be idempotent: the same
// item may be exported more than once.
type Sink interface {
	// Name identifies the sink in export checkpoints.
	Name() string
	Put(ctx context.Context, item models.Item) error
	Delete(ctx context.Context, collectionID, uid string) error
}

// NewSink builds the configured sink. It returns nil and no error when export
// is disabled.
func NewSink(ctx context.Context, cfg config.ClientExport) (Sink, error) {
	switch cfg.Sink {
	case "":
		return nil, nil
	case SinkFile:
		return NewFileSink(cfg.Dir)
	case SinkS3:
		return NewS3Sink(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSink, cfg.Sink)
	}
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidItemID, name)
	}
	return nil
}
