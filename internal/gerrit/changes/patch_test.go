package changes

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/matereview/internal/errors"
)

const formatPatch = `From 184ebe53805e102605d11f6b143486d15c23a09c Mon Sep 17 00:00:00 2001
From: John Doe <john@example.com>
Date: Thu, 1 Feb 2013 09:59:32 +0000
Subject: [PATCH] Implementing Feature X

---
 README.md | 3 ++-
 new.go    | 3 +++
 2 files changed, 5 insertions(+), 1 deletion(-)

diff --git a/README.md b/README.md
index 1111111..2222222 100644
--- a/README.md
+++ b/README.md
@@ -1,2 +1,3 @@
 # Project
-old line
+new line
+another line
diff --git a/new.go b/new.go
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/new.go
@@ -0,0 +1,3 @@
+package main
+
+func main() {}
` + "-- \n2.39.0\n"

func TestService_DownloadPatch(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(formatPatch))
	client := new(MockRequester)
	client.On("SyncRaw", mock.Anything, http.MethodGet, "/changes/42/revisions/current/patch").
		Return([]byte(encoded+"\n"), nil).Once()

	patch, err := NewService(client).DownloadPatch(context.Background(), NumberID(42))

	require.NoError(t, err)
	assert.Equal(t, formatPatch, string(patch))
}

func TestService_DownloadPatch_BadBase64(t *testing.T) {
	client := new(MockRequester)
	client.On("SyncRaw", mock.Anything, http.MethodGet, "/changes/42/revisions/current/patch").
		Return([]byte("not base64!"), nil).Once()

	_, err := NewService(client).DownloadPatch(context.Background(), NumberID(42))

	assert.True(t, errors.Is(err, domainErrors.ErrDecodePatch))
}

func TestService_DownloadPatch_HTTPError(t *testing.T) {
	client := new(MockRequester)
	client.On("SyncRaw", mock.Anything, http.MethodGet, "/changes/42/revisions/current/patch").
		Return(nil, domainErrors.ErrNotFound).Once()

	_, err := NewService(client).DownloadPatch(context.Background(), NumberID(42))

	assert.True(t, errors.Is(err, domainErrors.ErrNotFound))
}

func TestSummarizePatch(t *testing.T) {
	summary, err := SummarizePatch([]byte(formatPatch))

	require.NoError(t, err)
	assert.Equal(t, []FileStat{
		{Path: "README.md", Added: 2, Removed: 1},
		{Path: "new.go", Added: 3, Removed: 0},
	}, summary.Files)
	assert.Equal(t, 5, summary.Added)
	assert.Equal(t, 1, summary.Removed)
}
