// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-mirror-keeper/models"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func validPage() models.DeltaPage {
	return models.DeltaPage{
		Items: []models.RemoteItem{
			{UID: "a", Payload: []byte("x"), RemoteStamp: "1"},
			{UID: "b", RemoteStamp: "2", Deleted: true},
		},
		NextCursor: "c1",
		HasMore:    true,
	}
}

func validEdit() models.PendingEdit {
	return models.PendingEdit{
		ID:           "e1",
		CollectionID: "vault",
		UID:          "a",
		NewPayload:   []byte("new"),
	}
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

func TestNewSyncValidator(t *testing.T) {
	require.NotNil(t, NewSyncValidator())
}

func TestValidate_Dispatch(t *testing.T) {
	v := NewSyncValidator()
	ctx := context.Background()
	page := validPage()
	edit := validEdit()

	assert.NoError(t, v.Validate(ctx, page))
	assert.NoError(t, v.Validate(ctx, &page))
	assert.NoError(t, v.Validate(ctx, page.Items[0]))
	assert.NoError(t, v.Validate(ctx, edit))
	assert.NoError(t, v.Validate(ctx, &edit))
	assert.NoError(t, v.Validate(ctx, models.EditRequest{UID: "a", Delete: true}))
	assert.ErrorIs(t, v.Validate(ctx, 42), ErrUnsupportedType)
	assert.ErrorIs(t, v.Validate(ctx, page, "bogus"), ErrUnknownField)
}

// ---------------------------------------------------------------------------
// DeltaPage
// ---------------------------------------------------------------------------

func TestValidate_DeltaPage(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *models.DeltaPage)
		fields  []string
		wantErr error
	}{
		{name: "valid", mutate: func(p *models.DeltaPage) {}},
		{name: "empty last page", mutate: func(p *models.DeltaPage) { *p = models.DeltaPage{} }},
		{name: "missing uid", mutate: func(p *models.DeltaPage) { p.Items[0].UID = "" }, wantErr: ErrInvalidUID},
		{name: "uid with slash", mutate: func(p *models.DeltaPage) { p.Items[1].UID = "a/b" }, wantErr: ErrInvalidUID},
		{name: "missing stamp", mutate: func(p *models.DeltaPage) { p.Items[1].RemoteStamp = "" }, wantErr: ErrInvalidStamp},
		{name: "has more without cursor", mutate: func(p *models.DeltaPage) { p.NextCursor = "" }, wantErr: ErrMissingNextCursor},
		{
			name:   "cursor check only",
			mutate: func(p *models.DeltaPage) { p.Items[0].UID = "" },
			fields: []string{FieldNextCursor},
		},
	}

	v := NewSyncValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := validPage()
			tt.mutate(&page)

			err := v.Validate(context.Background(), page, tt.fields...)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// Edits
// ---------------------------------------------------------------------------

func TestValidate_PendingEdit(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *models.PendingEdit)
		wantErr error
	}{
		{name: "valid", mutate: func(e *models.PendingEdit) {}},
		{name: "empty payload is allowed", mutate: func(e *models.PendingEdit) { e.NewPayload = []byte{} }},
		{name: "delete", mutate: func(e *models.PendingEdit) { e.Delete = true; e.NewPayload = nil }},
		{name: "missing id", mutate: func(e *models.PendingEdit) { e.ID = "" }, wantErr: ErrInvalidEditID},
		{name: "missing collection", mutate: func(e *models.PendingEdit) { e.CollectionID = " " }, wantErr: ErrInvalidCollectionID},
		{name: "missing uid", mutate: func(e *models.PendingEdit) { e.UID = "" }, wantErr: ErrInvalidUID},
		{name: "no payload", mutate: func(e *models.PendingEdit) { e.NewPayload = nil }, wantErr: ErrEmptyEditPayload},
		{name: "payload on delete", mutate: func(e *models.PendingEdit) { e.Delete = true }, wantErr: ErrPayloadOnDelete},
	}

	v := NewSyncValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edit := validEdit()
			tt.mutate(&edit)

			err := v.Validate(context.Background(), edit)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_EditRequest(t *testing.T) {
	v := NewSyncValidator()
	ctx := context.Background()

	assert.NoError(t, v.Validate(ctx, models.EditRequest{UID: "a", Payload: []byte("p")}))
	assert.ErrorIs(t, v.Validate(ctx, models.EditRequest{Payload: []byte("p")}), ErrInvalidUID)
	assert.ErrorIs(t, v.Validate(ctx, models.EditRequest{UID: "a"}), ErrEmptyEditPayload)
	assert.NoError(t, v.Validate(ctx, models.EditRequest{UID: "a"}, FieldUID))
}
