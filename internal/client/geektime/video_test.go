package geektime

import (
	"context"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClientImpl_GetVideoCollectionList verifies that the collection list is
// synthesized from the known ID ranges without any network traffic.
func TestClientImpl_GetVideoCollectionList(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s", r.URL.Path)
	}), nil)

	refs := client.GetVideoCollectionList()
	require.Len(t, refs, 116)

	ids := make(map[int64]bool, len(refs))
	for _, ref := range refs {
		ids[ref.CollectionID] = true
	}

	// Both inclusive ranges are present and the gap between them is not.
	assert.Equal(t, int64(3), refs[0].CollectionID)
	assert.Equal(t, int64(81), refs[78].CollectionID)
	assert.Equal(t, int64(104), refs[79].CollectionID)
	assert.Equal(t, int64(140), refs[115].CollectionID)
	assert.True(t, ids[50])
	assert.False(t, ids[2])
	assert.False(t, ids[82])
	assert.False(t, ids[103])
	assert.False(t, ids[141])
}

// TestClientImpl_GetVideoCollectionIntro tests collection intro retrieval,
// including the exact request payload and the metadata cache.
func TestClientImpl_GetVideoCollectionIntro(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		hits    int
		payload []byte
	)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/account/ticket/login":
			handleLogin(w, r)
		case "/serv/v2/video/GetCollectById":
			body, _ := io.ReadAll(r.Body)

			mu.Lock()
			hits++
			payload = body
			mu.Unlock()

			writeEnvelope(w, 0, map[string]any{
				"id":          19,
				"title":       "深入浅出架构",
				"description": "每天五分钟",
				"video_count": 12,
			}, "")
		}
	}), nil)

	ctx := context.Background()

	collection, err := client.GetVideoCollectionIntro(ctx, 19)
	require.NoError(t, err)
	require.NotNil(t, collection)
	assert.Equal(t, int64(19), collection.ID)
	assert.Equal(t, "深入浅出架构", collection.Title)
	assert.Equal(t, "每天五分钟", collection.Intro)
	assert.Equal(t, int64(12), collection.VideoCount)

	// The collection identifier goes over the wire as a string.
	mu.Lock()
	assert.JSONEq(t, `{"id": "19"}`, string(payload))
	mu.Unlock()

	// A second lookup is served from the cache without another API call.
	cached, err := client.GetVideoCollectionIntro(ctx, 19)
	require.NoError(t, err)
	assert.Same(t, collection, cached)

	mu.Lock()
	assert.Equal(t, 1, hits)
	mu.Unlock()
}

// TestClientImpl_GetVideoList tests video listing for a collection.
func TestClientImpl_GetVideoList(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		payload []byte
	)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/account/ticket/login":
			handleLogin(w, r)
		case "/serv/v2/video/GetListByType":
			body, _ := io.ReadAll(r.Body)

			mu.Lock()
			payload = body
			mu.Unlock()

			writeEnvelope(w, 0, map[string]any{
				"list": []map[string]any{
					{"id": 7, "title": "如何做架构评审", "author_name": "王乐", "duration": 420},
					{"id": 8, "title": "灰度发布实践", "author_name": "王乐", "duration": 380},
				},
			}, "")
		}
	}), nil)

	videos, err := client.GetVideoList(context.Background(), 19)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, int64(7), videos[0].ID)
	assert.Equal(t, "如何做架构评审", videos[0].Title)
	assert.Equal(t, int64(420), videos[0].Duration)

	mu.Lock()
	assert.JSONEq(t, `{"id": "19", "size": 50}`, string(payload))
	mu.Unlock()
}

// TestClientImpl_GetVideoList_EmptyCollection verifies that a null data field
// yields no videos and no error.
func TestClientImpl_GetVideoList_EmptyCollection(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/account/ticket/login":
			handleLogin(w, r)
		case "/serv/v2/video/GetListByType":
			writeEnvelope(w, 0, nil, "")
		}
	}), nil)

	videos, err := client.GetVideoList(context.Background(), 19)
	require.NoError(t, err)
	assert.Empty(t, videos)
}
