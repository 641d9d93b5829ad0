package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-mirror-keeper/internal/adapter"
	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/store"
	"github.com/MKhiriev/go-mirror-keeper/internal/utils"
	"github.com/MKhiriev/go-mirror-keeper/internal/validators"
	"github.com/MKhiriev/go-mirror-keeper/models"
)

type syncCoordinator struct {
	items     store.ItemRepository
	cursors   store.CursorRepository
	edits     store.PendingEditRepository
	committer store.SyncCommitter

	remote    adapter.RemoteAdapter
	resolver  ConflictResolver
	validator validators.Validator
	retry     RetryPolicy
	ids       *utils.UUIDGenerator

	collections []string
	pageSize    int
	concurrency int

	// active maps collections with a run in flight to its live state.
	mu     sync.Mutex
	active map[string]models.SyncState

	commitLocks sync.Map

	logger *logger.Logger
}

// NewSyncCoordinator wires the coordinator to the local mirror and the remote
// service.
func NewSyncCoordinator(storages *store.ClientStorages, remote adapter.RemoteAdapter, resolver ConflictResolver, cfg config.ClientSync, log *logger.Logger) SyncCoordinator {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &syncCoordinator{
		items:       storages.Items,
		cursors:     storages.Cursors,
		edits:       storages.PendingEdits,
		committer:   storages.Committer,
		remote:      remote,
		resolver:    resolver,
		validator:   validators.NewSyncValidator(),
		retry:       NewRetryPolicy(cfg),
		ids:         utils.NewUUIDGenerator(),
		collections: slices.Clone(cfg.Collections),
		pageSize:    cfg.PageSize,
		concurrency: concurrency,
		active:      make(map[string]models.SyncState),
		logger:      log,
	}
}

func (c *syncCoordinator) Sync(ctx context.Context, collectionID string) (SyncReport, error) {
	if !c.acquire(collectionID) {
		return SyncReport{}, ErrSyncInProgress
	}
	defer c.release(collectionID)

	if err := c.cursors.Ensure(ctx, collectionID); err != nil {
		return SyncReport{}, err
	}
	collection, err := c.cursors.Get(ctx, collectionID)
	if err != nil {
		return SyncReport{}, err
	}
	if collection.IsFailed() {
		return SyncReport{}, fmt.Errorf("%w: %s: %s", ErrCollectionFailed, collectionID, collection.FailureReason)
	}

	run := newSyncRun(c.ids.Generate(), collectionID, collection.Cursor)

	runLogger := c.logger.With().
		Str("collection_id", collectionID).
		Str("run_id", run.id).
		Logger()
	ctx = runLogger.WithContext(ctx)

	started := time.Now()
	report, err := c.execute(ctx, run)
	if err != nil {
		c.fail(ctx, run, err)
		return report, err
	}

	runLogger.Info().
		Int("fetched", report.Fetched).
		Int("pushed", report.Pushed).
		Int("applied", report.Applied).
		Int("skipped", report.Skipped).
		Dur("took", time.Since(started)).
		Msg("sync run finished")

	return report, nil
}

func (c *syncCoordinator) execute(ctx context.Context, run *syncRun) (SyncReport, error) {
	c.setState(ctx, run, models.StateFetching)
	if err := c.fetch(ctx, run); err != nil {
		return run.report(), fmt.Errorf("fetching: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return run.report(), err
	}

	c.setState(ctx, run, models.StateReconciling)
	if err := c.reconcile(ctx, run); err != nil {
		return run.report(), fmt.Errorf("reconciling: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return run.report(), err
	}

	c.setState(ctx, run, models.StateCommitting)
	result, err := c.commit(ctx, run)
	if err != nil {
		return run.report(), fmt.Errorf("committing: %w", err)
	}

	c.setState(ctx, run, models.StateIdle)

	report := run.report()
	report.Applied = len(result.Entries)
	report.Skipped = result.Skipped
	report.Settled = result.Settled

	return report, nil
}

// fetch pulls delta pages from the run's cursor until the remote reports no
// more data.
func (c *syncCoordinator) fetch(ctx context.Context, run *syncRun) error {
	cursor := run.cursor

	for {
		var page models.DeltaPage
		err := c.retry.Do(ctx, "fetch delta", func(ctx context.Context) error {
			var fetchErr error
			page, fetchErr = c.remote.FetchDelta(ctx, run.collectionID, cursor, c.pageSize)
			return fetchErr
		})
		if err != nil {
			return fmt.Errorf("fetch delta after cursor %q: %w", cursor, err)
		}

		if err = c.validator.Validate(ctx, page); err != nil {
			return fmt.Errorf("%w: %w", adapter.ErrProtocol, err)
		}
		if page.HasMore && page.NextCursor == cursor {
			return fmt.Errorf("%w: %w: %q", adapter.ErrProtocol, ErrCursorNotAdvanced, cursor)
		}

		for _, item := range page.Items {
			run.collect(item)
		}
		if page.NextCursor != "" {
			cursor = page.NextCursor
		}

		logger.FromContext(ctx).Debug().
			Int("items", len(page.Items)).
			Str("next_cursor", cursor).
			Bool("has_more", page.HasMore).
			Msg("delta page received")

		if !page.HasMore {
			break
		}
		if err = ctx.Err(); err != nil {
			return err
		}
	}

	run.nextCursor = cursor
	return nil
}

// reconcile matches the fetched items against a snapshot of the pending
// edits. Edits staged after the snapshot wait for the next run.
func (c *syncCoordinator) reconcile(ctx context.Context, run *syncRun) error {
	edits, err := c.edits.List(ctx, run.collectionID)
	if err != nil {
		return err
	}

	pending := make(map[string]models.PendingEdit, len(edits))
	for _, edit := range edits {
		pending[edit.UID] = edit
	}
	touched := mapset.NewThreadUnsafeSet[string]()

	for _, incoming := range run.items {
		edit, ok := pending[incoming.UID]
		if !ok {
			run.apply(incoming, models.JournalRemoteApplied)
			continue
		}

		touched.Add(incoming.UID)
		if err = c.resolve(ctx, run, edit, incoming, true); err != nil {
			return err
		}
	}

	for _, edit := range edits {
		if touched.Contains(edit.UID) {
			continue
		}
		if err = c.pushUntouched(ctx, run, edit); err != nil {
			return err
		}
	}

	return nil
}

// resolve routes a pending edit that met a remote version of its item through
// the resolver. refresh allows one re-fetch when a push turns out stale.
func (c *syncCoordinator) resolve(ctx context.Context, run *syncRun, edit models.PendingEdit, incoming models.RemoteItem, refresh bool) error {
	if remoteHoldsEdit(edit, incoming) {
		// An earlier run pushed the edit but did not commit.
		logger.FromContext(ctx).Info().
			Str("uid", edit.UID).
			Str("stamp", incoming.RemoteStamp.String()).
			Msg("remote already holds the edit, settling without push")
		run.apply(incoming, models.JournalLocalApplied)
		run.settle(edit, nil)
		return nil
	}

	outcome := c.resolver.Resolve(edit, incoming)

	logger.FromContext(ctx).Debug().
		Str("uid", edit.UID).
		Str("base", edit.BaseRemoteStamp.String()).
		Str("incoming", incoming.RemoteStamp.String()).
		Stringer("outcome", outcome.Kind).
		Msg("conflict resolved")

	switch outcome.Kind {
	case models.AcceptRemote:
		run.apply(incoming, models.JournalConflictResolved)
		run.settle(edit, nil)
		return nil

	case models.Merge:
		run.apply(incoming, models.JournalConflictResolved)
		replacement := models.PendingEdit{
			ID:              c.ids.Generate(),
			CollectionID:    run.collectionID,
			UID:             edit.UID,
			BaseRemoteStamp: incoming.RemoteStamp,
			NewPayload:      outcome.MergedPayload,
			CreatedAt:       time.Now(),
		}
		run.settle(edit, &replacement)
		return nil

	default:
		base := edit.BaseRemoteStamp
		if !refresh {
			// Second attempt after a stale push: rebase onto what the remote
			// holds now.
			base = incoming.RemoteStamp
		}
		return c.push(ctx, run, edit, base, refresh)
	}
}

// pushUntouched pushes an edit whose item was not part of the fetched batch.
// Edits that would not change the mirrored item are settled without a push.
func (c *syncCoordinator) pushUntouched(ctx context.Context, run *syncRun, edit models.PendingEdit) error {
	current, err := c.items.Get(ctx, run.collectionID, edit.UID)
	switch {
	case err == nil && isNoOpEdit(edit, current):
		logger.FromContext(ctx).Debug().Str("uid", edit.UID).Msg("dropping no-op edit")
		run.settle(edit, nil)
		return nil
	case err != nil && !errors.Is(err, store.ErrItemNotFound):
		return err
	}

	return c.push(ctx, run, edit, edit.BaseRemoteStamp, true)
}

func (c *syncCoordinator) push(ctx context.Context, run *syncRun, edit models.PendingEdit, base models.Stamp, refresh bool) error {
	req := models.PushRequestFromEdit(edit)
	req.BaseRemoteStamp = base

	var stamp models.Stamp
	err := c.retry.Do(ctx, "push", func(ctx context.Context) error {
		var pushErr error
		stamp, pushErr = c.remote.Push(ctx, run.collectionID, req)
		return pushErr
	})

	switch {
	case err == nil:
		run.pushed++
		run.apply(models.RemoteItem{
			UID:         edit.UID,
			Payload:     edit.NewPayload,
			RemoteStamp: stamp,
			Deleted:     edit.Delete,
		}, models.JournalLocalApplied)
		run.settle(edit, nil)
		return nil

	case errors.Is(err, adapter.ErrStaleBase) && refresh:
		logger.FromContext(ctx).Info().
			Str("uid", edit.UID).
			Str("base", base.String()).
			Msg("push rejected as stale, refreshing item")

		var fresh models.RemoteItem
		err = c.retry.Do(ctx, "fetch item", func(ctx context.Context) error {
			var fetchErr error
			fresh, fetchErr = c.remote.FetchItem(ctx, run.collectionID, edit.UID)
			return fetchErr
		})
		if err != nil {
			return fmt.Errorf("refresh item %s: %w", edit.UID, err)
		}
		if err = c.validator.Validate(ctx, fresh); err != nil {
			return fmt.Errorf("%w: refresh item %s: %w", adapter.ErrProtocol, edit.UID, err)
		}
		return c.resolve(ctx, run, edit, fresh, false)

	case errors.Is(err, adapter.ErrStaleBase):
		return fmt.Errorf("%w: %s: %w", ErrRepeatedStaleBase, edit.UID, err)

	default:
		return fmt.Errorf("push %s: %w", edit.UID, err)
	}
}

// commit writes the run atomically. It holds the collection's commit lock and
// ignores cancellation of ctx so that a started commit always completes.
func (c *syncCoordinator) commit(ctx context.Context, run *syncRun) (store.CommitResult, error) {
	lock := c.commitLock(run.collectionID)
	lock.Lock()
	defer lock.Unlock()

	return c.committer.Commit(context.WithoutCancel(ctx), store.CommitBatch{
		CollectionID: run.collectionID,
		Cursor:       run.nextCursor,
		SyncedAt:     time.Now(),
		Writes:       run.writes,
		Settlements:  run.settlements,
	})
}

func (c *syncCoordinator) fail(ctx context.Context, run *syncRun, err error) {
	log := logger.FromContext(ctx)
	reason, fatal := classifyRunError(err)

	if !fatal {
		log.Warn().Err(err).Str("state", string(run.state)).Msg("sync run failed, collection stays retryable")
		c.setState(ctx, run, models.StateIdle)
		return
	}

	log.Error().Err(err).Str("state", string(run.state)).Msg("sync run failed, marking collection as failed")
	c.setState(ctx, run, models.StateFailed)

	if markErr := c.cursors.MarkFailed(context.WithoutCancel(ctx), run.collectionID, reason, time.Now()); markErr != nil {
		log.Err(markErr).Msg("failed to persist failed state")
	}
}

func (c *syncCoordinator) SyncAll(ctx context.Context) error {
	ids, err := c.collectionIDs(ctx)
	if err != nil {
		return err
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(c.concurrency)

	for _, id := range ids {
		g.Go(func() error {
			_, syncErr := c.Sync(ctx, id)
			switch {
			case syncErr == nil:
			case errors.Is(syncErr, ErrCollectionFailed), errors.Is(syncErr, ErrSyncInProgress):
				c.logger.Debug().Err(syncErr).Str("collection_id", id).Msg("collection skipped")
			default:
				mu.Lock()
				errs = append(errs, fmt.Errorf("collection %s: %w", id, syncErr))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (c *syncCoordinator) Status(ctx context.Context) ([]models.CollectionStatus, error) {
	collections, err := c.cursors.List(ctx)
	if err != nil {
		return nil, err
	}

	known := mapset.NewThreadUnsafeSet[string]()
	for _, collection := range collections {
		known.Add(collection.ID)
	}
	for _, id := range c.collections {
		if !known.Contains(id) {
			collections = append(collections, models.Collection{ID: id, State: models.StateIdle})
		}
	}
	slices.SortFunc(collections, func(a, b models.Collection) int {
		return strings.Compare(a.ID, b.ID)
	})

	statuses := make([]models.CollectionStatus, 0, len(collections))
	for _, collection := range collections {
		status := models.CollectionStatus{Collection: collection, RunState: collection.State}
		if state, ok := c.liveState(collection.ID); ok {
			status.RunState = state
		}

		status.PendingEdits, err = c.edits.Count(ctx, collection.ID)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

func (c *syncCoordinator) Reset(ctx context.Context, collectionID string) error {
	if err := c.cursors.Reset(ctx, collectionID); err != nil {
		return err
	}

	c.logger.Info().Str("collection_id", collectionID).Msg("collection reset")
	return nil
}

func (c *syncCoordinator) collectionIDs(ctx context.Context) ([]string, error) {
	if len(c.collections) > 0 {
		return c.collections, nil
	}

	collections, err := c.cursors.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(collections))
	for _, collection := range collections {
		ids = append(ids, collection.ID)
	}
	return ids, nil
}

func (c *syncCoordinator) acquire(collectionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.active[collectionID]; busy {
		return false
	}
	c.active[collectionID] = models.StateIdle
	return true
}

func (c *syncCoordinator) release(collectionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.active, collectionID)
}

func (c *syncCoordinator) liveState(collectionID string) (models.SyncState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.active[collectionID]
	return state, ok
}

func (c *syncCoordinator) setState(ctx context.Context, run *syncRun, state models.SyncState) {
	from := run.state
	run.state = state

	c.mu.Lock()
	c.active[run.collectionID] = state
	c.mu.Unlock()

	logger.FromContext(ctx).Debug().
		Str("from", string(from)).
		Str("state", string(state)).
		Msg("sync state changed")
}

func (c *syncCoordinator) commitLock(collectionID string) *sync.Mutex {
	lock, _ := c.commitLocks.LoadOrStore(collectionID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// remoteHoldsEdit reports whether incoming is a newer remote version carrying
// exactly the content of edit.
func remoteHoldsEdit(edit models.PendingEdit, incoming models.RemoteItem) bool {
	if !incoming.RemoteStamp.NewerThan(edit.BaseRemoteStamp) {
		return false
	}
	if edit.Delete || incoming.Deleted {
		return edit.Delete && incoming.Deleted
	}
	return bytes.Equal(edit.NewPayload, incoming.Payload)
}
