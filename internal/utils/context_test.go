package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKeyString(t *testing.T) {
	assert.Equal(t, "operator", OperatorCtxKey.String())
}

func TestGetOperatorFromContext(t *testing.T) {
	tests := []struct {
		name   string
		ctx    context.Context
		want   string
		wantOK bool
	}{
		{
			name:   "present",
			ctx:    context.WithValue(context.Background(), OperatorCtxKey, "exporter"),
			want:   "exporter",
			wantOK: true,
		},
		{
			name: "missing",
			ctx:  context.Background(),
		},
		{
			name: "wrong type",
			ctx:  context.WithValue(context.Background(), OperatorCtxKey, 42),
		},
		{
			name: "empty",
			ctx:  context.WithValue(context.Background(), OperatorCtxKey, ""),
		},
		{
			name: "different key with same name",
			ctx:  context.WithValue(context.Background(), "operator", "exporter"), //nolint:staticcheck
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GetOperatorFromContext(tt.ctx)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
