package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folioworks/api/pkg/logger"
)

func TestVisitService_Record(t *testing.T) {
	repo := &fakeVisitRepo{}
	svc := NewVisitService(repo, logger.NewNop())

	svc.Record(context.Background(), RecordVisitInput{
		SourceAddr: "1.2.3.4",
		Path:       "/blog",
		Method:     "GET",
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0.0.0",
		Referer:    "https://news.ycombinator.com/",
	})

	require.Len(t, repo.created, 1)
	v := repo.created[0]
	assert.Equal(t, "1.2.3.4", v.SourceAddr())
	assert.Equal(t, "/blog", v.Path())
	assert.Equal(t, "GET", v.Method())
	assert.Equal(t, "Chrome", v.Browser())
	assert.Equal(t, "Windows", v.OS())
	assert.Equal(t, "desktop", v.Device())
}

func TestVisitService_Record_UnknownSource(t *testing.T) {
	repo := &fakeVisitRepo{}
	svc := NewVisitService(repo, logger.NewNop())

	svc.Record(context.Background(), RecordVisitInput{Path: "/"})

	require.Len(t, repo.created, 1)
	assert.Equal(t, "unknown", repo.created[0].SourceAddr())
}

func TestVisitService_Record_SwallowsStoreError(t *testing.T) {
	repo := &fakeVisitRepo{createErr: assert.AnError}
	svc := NewVisitService(repo, logger.NewNop())

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), RecordVisitInput{SourceAddr: "1.2.3.4", Path: "/"})
	})
	assert.Empty(t, repo.created)
}
