package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/service"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

const (
	streamBatch     = 500
	streamWriteWait = 10 * time.Second

	streamMessageEntry     = "entry"
	streamMessageError     = "error"
	streamMessageCompacted = "compacted"
)

// streamJournal tails the journal of a collection over a websocket. Every
// entry after since is sent as one message; new entries are picked up by
// polling the journal. The stream ends when the client goes away. A since
// below the compaction floor is refused with 410 before the upgrade; a
// stream that falls behind a later compaction gets a "compacted" message
// and is closed.
func (h *Handler) streamJournal(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collectionID := chi.URLParam(r, "collectionID")

	since, _, err := pageParams(r)
	if err != nil {
		h.writeServiceError(w, r, "*Handler.streamJournal", err)
		return
	}

	page, err := h.services.FeedService.Journal(r.Context(), collectionID, since, streamBatch)
	if err != nil {
		h.writeJournalError(w, r, "*Handler.streamJournal", err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already answered the request
		log.Err(err).Str("func", "*Handler.streamJournal").Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client never sends data; reading is only needed to notice a close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	log.Info().Str("collection_id", collectionID).Int64("since", since).Msg("journal stream opened")

	ticker := time.NewTicker(h.streamPoll)
	defer ticker.Stop()

	for {
		for i := range page.Entries {
			msg := models.JournalStreamMessage{Type: streamMessageEntry, Entry: &page.Entries[i]}
			if err = writeStreamMessage(conn, msg); err != nil {
				log.Debug().Err(err).Msg("journal stream closed")
				return
			}
		}
		since = page.Next

		if page.Length == streamBatch {
			if page, err = h.nextStreamPage(ctx, conn, collectionID, since); err != nil {
				return
			}
			continue
		}

		select {
		case <-ctx.Done():
			log.Info().Str("collection_id", collectionID).Msg("journal stream closed")
			return
		case <-ticker.C:
		}

		if page, err = h.nextStreamPage(ctx, conn, collectionID, since); err != nil {
			return
		}
	}
}

// nextStreamPage reads the next batch and reports read failures to the
// client before the stream is closed.
func (h *Handler) nextStreamPage(ctx context.Context, conn *websocket.Conn, collectionID string, since int64) (models.JournalResponse, error) {
	page, err := h.services.FeedService.Journal(ctx, collectionID, since, streamBatch)
	if err == nil || ctx.Err() != nil {
		return page, err
	}

	log := logger.FromContext(ctx)
	var compacted *service.JournalCompactedError
	if errors.As(err, &compacted) {
		log.Warn().Err(err).Str("collection_id", collectionID).Msg("journal stream fell behind compaction")
		_ = writeStreamMessage(conn, models.JournalStreamMessage{
			Type:             streamMessageCompacted,
			Error:            err.Error(),
			CompactedThrough: compacted.CompactedThrough,
		})
		return page, err
	}

	log.Err(err).Str("func", "*Handler.streamJournal").Msg("failed to read journal")
	_ = writeStreamMessage(conn, models.JournalStreamMessage{Type: streamMessageError, Error: err.Error()})
	return page, err
}

func writeStreamMessage(conn *websocket.Conn, msg models.JournalStreamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
