// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-mirror-keeper/models"
)

const (
	tableCollections       = "collections"
	tableItems             = "items"
	tableJournal           = "journal"
	tablePendingEdits      = "pending_edits"
	tableExportCheckpoints = "export_checkpoints"
)

var (
	collectionColumns = []string{
		"collection_id",
		"sync_cursor",
		"revision",
		"state",
		"failure_reason",
		"failed_at",
		"last_synced_at",
		"compacted_through",
	}

	itemColumns = []string{
		"collection_id",
		"uid",
		"payload",
		"payload_codec",
		"remote_stamp",
		"deleted",
		"local_revision",
		"digest",
		"updated_at",
	}

	journalColumns = []string{
		"collection_id",
		"uid",
		"kind",
		"resulting_local_revision",
		"created_at",
	}

	pendingEditColumns = []string{
		"collection_id",
		"uid",
		"edit_id",
		"base_remote_stamp",
		"new_payload",
		"deleted",
		"created_at",
	}
)

// ── collections ───────────────────────────────────────────────────────────────

func buildEnsureCollectionQuery(b sq.StatementBuilderType, collectionID string) (string, []any, error) {
	return b.Insert(tableCollections).
		Columns("collection_id").
		Values(collectionID).
		Suffix("ON CONFLICT (collection_id) DO NOTHING").
		ToSql()
}

func buildSelectCollectionQuery(b sq.StatementBuilderType, collectionID string) (string, []any, error) {
	return b.Select(collectionColumns...).
		From(tableCollections).
		Where(sq.Eq{"collection_id": collectionID}).
		ToSql()
}

func buildSelectAllCollectionsQuery(b sq.StatementBuilderType) (string, []any, error) {
	return b.Select(collectionColumns...).
		From(tableCollections).
		OrderBy("collection_id").
		ToSql()
}

func buildNextRevisionQuery(b sq.StatementBuilderType, collectionID string) (string, []any, error) {
	return b.Update(tableCollections).
		Set("revision", sq.Expr("revision + 1")).
		Where(sq.Eq{"collection_id": collectionID}).
		Suffix("RETURNING revision").
		ToSql()
}

func buildAdvanceCursorQuery(b sq.StatementBuilderType, collectionID, cursor string, at time.Time) (string, []any, error) {
	return b.Update(tableCollections).
		Set("sync_cursor", cursor).
		Set("last_synced_at", at.UTC()).
		Set("state", string(models.StateIdle)).
		Set("failure_reason", "").
		Set("failed_at", nil).
		Where(sq.Eq{"collection_id": collectionID}).
		ToSql()
}

func buildMarkFailedQuery(b sq.StatementBuilderType, collectionID, reason string, at time.Time) (string, []any, error) {
	return b.Update(tableCollections).
		Set("state", string(models.StateFailed)).
		Set("failure_reason", reason).
		Set("failed_at", at.UTC()).
		Where(sq.Eq{"collection_id": collectionID}).
		ToSql()
}

func buildResetCollectionQuery(b sq.StatementBuilderType, collectionID string) (string, []any, error) {
	return b.Update(tableCollections).
		Set("state", string(models.StateIdle)).
		Set("failure_reason", "").
		Set("failed_at", nil).
		Where(sq.Eq{"collection_id": collectionID}).
		ToSql()
}

// ── items ─────────────────────────────────────────────────────────────────────

func buildSelectItemQuery(b sq.StatementBuilderType, collectionID, uid string) (string, []any, error) {
	return b.Select(itemColumns...).
		From(tableItems).
		Where(sq.Eq{"collection_id": collectionID, "uid": uid}).
		ToSql()
}

func buildSelectItemsSinceQuery(b sq.StatementBuilderType, collectionID string, revision int64, limit int) (string, []any, error) {
	return b.Select(itemColumns...).
		From(tableItems).
		Where(sq.Eq{"collection_id": collectionID}).
		Where(sq.Gt{"local_revision": revision}).
		OrderBy("local_revision ASC").
		Limit(uint64(limit)).
		ToSql()
}

func buildUpsertItemQuery(b sq.StatementBuilderType, item models.Item, payload []byte, codec string) (string, []any, error) {
	return b.Insert(tableItems).
		Columns(itemColumns...).
		Values(
			item.CollectionID,
			item.UID,
			payload,
			codec,
			string(item.RemoteStamp),
			item.Deleted,
			item.LocalRevision,
			item.Digest,
			item.UpdatedAt.UTC(),
		).
		Suffix(`ON CONFLICT (collection_id, uid) DO UPDATE SET
			payload        = excluded.payload,
			payload_codec  = excluded.payload_codec,
			remote_stamp   = excluded.remote_stamp,
			deleted        = excluded.deleted,
			local_revision = excluded.local_revision,
			digest         = excluded.digest,
			updated_at     = excluded.updated_at`).
		ToSql()
}

// ── journal ───────────────────────────────────────────────────────────────────

func buildInsertJournalEntryQuery(b sq.StatementBuilderType, entry models.JournalEntry) (string, []any, error) {
	return b.Insert(tableJournal).
		Columns(journalColumns...).
		Values(
			entry.CollectionID,
			entry.UID,
			string(entry.Kind),
			entry.ResultingLocalRevision,
			entry.Timestamp.UTC(),
		).
		ToSql()
}

func buildSelectJournalSinceQuery(b sq.StatementBuilderType, collectionID string, revision int64, limit int) (string, []any, error) {
	return b.Select(journalColumns...).
		From(tableJournal).
		Where(sq.Eq{"collection_id": collectionID}).
		Where(sq.Gt{"resulting_local_revision": revision}).
		OrderBy("resulting_local_revision ASC").
		Limit(uint64(limit)).
		ToSql()
}

func buildCompactJournalQuery(b sq.StatementBuilderType, collectionID string, throughRevision int64) (string, []any, error) {
	return b.Delete(tableJournal).
		Where(sq.Eq{"collection_id": collectionID}).
		Where(sq.LtOrEq{"resulting_local_revision": throughRevision}).
		ToSql()
}

// buildRaiseCompactionFloorQuery moves compacted_through forward only.
func buildRaiseCompactionFloorQuery(b sq.StatementBuilderType, collectionID string, throughRevision int64) (string, []any, error) {
	return b.Update(tableCollections).
		Set("compacted_through", sq.Expr(
			"CASE WHEN compacted_through < ? THEN ? ELSE compacted_through END",
			throughRevision, throughRevision,
		)).
		Where(sq.Eq{"collection_id": collectionID}).
		ToSql()
}

func buildSelectCompactionFloorQuery(b sq.StatementBuilderType, collectionID string) (string, []any, error) {
	return b.Select("compacted_through").
		From(tableCollections).
		Where(sq.Eq{"collection_id": collectionID}).
		ToSql()
}

// ── pending edits ─────────────────────────────────────────────────────────────

func buildStagePendingEditQuery(b sq.StatementBuilderType, edit models.PendingEdit) (string, []any, error) {
	return b.Insert(tablePendingEdits).
		Columns(pendingEditColumns...).
		Values(
			edit.CollectionID,
			edit.UID,
			edit.ID,
			string(edit.BaseRemoteStamp),
			edit.NewPayload,
			edit.Delete,
			edit.CreatedAt.UTC(),
		).
		Suffix(`ON CONFLICT (collection_id, uid) DO UPDATE SET
			edit_id           = excluded.edit_id,
			base_remote_stamp = excluded.base_remote_stamp,
			new_payload       = excluded.new_payload,
			deleted           = excluded.deleted,
			created_at        = excluded.created_at`).
		ToSql()
}

func buildSelectPendingEditQuery(b sq.StatementBuilderType, collectionID, uid string) (string, []any, error) {
	return b.Select(pendingEditColumns...).
		From(tablePendingEdits).
		Where(sq.Eq{"collection_id": collectionID, "uid": uid}).
		ToSql()
}

func buildSelectPendingEditsQuery(b sq.StatementBuilderType, collectionID string) (string, []any, error) {
	return b.Select(pendingEditColumns...).
		From(tablePendingEdits).
		Where(sq.Eq{"collection_id": collectionID}).
		OrderBy("created_at ASC", "uid ASC").
		ToSql()
}

func buildCountPendingEditsQuery(b sq.StatementBuilderType, collectionID string) (string, []any, error) {
	return b.Select("COUNT(*)").
		From(tablePendingEdits).
		Where(sq.Eq{"collection_id": collectionID}).
		ToSql()
}

func buildDeletePendingEditQuery(b sq.StatementBuilderType, collectionID, uid, editID string) (string, []any, error) {
	return b.Delete(tablePendingEdits).
		Where(sq.Eq{"collection_id": collectionID, "uid": uid, "edit_id": editID}).
		ToSql()
}

func buildReplacePendingEditQuery(b sq.StatementBuilderType, editID string, replacement models.PendingEdit) (string, []any, error) {
	return b.Update(tablePendingEdits).
		Set("edit_id", replacement.ID).
		Set("base_remote_stamp", string(replacement.BaseRemoteStamp)).
		Set("new_payload", replacement.NewPayload).
		Set("deleted", replacement.Delete).
		Set("created_at", replacement.CreatedAt.UTC()).
		Where(sq.Eq{
			"collection_id": replacement.CollectionID,
			"uid":           replacement.UID,
			"edit_id":       editID,
		}).
		ToSql()
}

// ── export checkpoints ────────────────────────────────────────────────────────

func buildSelectCheckpointQuery(b sq.StatementBuilderType, exporter, collectionID string) (string, []any, error) {
	return b.Select("exporter", "collection_id", "revision", "updated_at").
		From(tableExportCheckpoints).
		Where(sq.Eq{"exporter": exporter, "collection_id": collectionID}).
		ToSql()
}

func buildSaveCheckpointQuery(b sq.StatementBuilderType, checkpoint models.ExportCheckpoint) (string, []any, error) {
	return b.Insert(tableExportCheckpoints).
		Columns("exporter", "collection_id", "revision", "updated_at").
		Values(
			checkpoint.Exporter,
			checkpoint.CollectionID,
			checkpoint.Revision,
			checkpoint.UpdatedAt.UTC(),
		).
		Suffix(`ON CONFLICT (exporter, collection_id) DO UPDATE SET
			revision   = excluded.revision,
			updated_at = excluded.updated_at`).
		ToSql()
}

func buildMinCheckpointQuery(b sq.StatementBuilderType, collectionID string) (string, []any, error) {
	return b.Select("MIN(revision)").
		From(tableExportCheckpoints).
		Where(sq.Eq{"collection_id": collectionID}).
		ToSql()
}
