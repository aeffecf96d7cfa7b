package geektime

//go:generate $MOCKGEN -source=client.go -destination=mocks/client_mock.go

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/oshokin/geektime-grabber/internal/config"
	"github.com/oshokin/geektime-grabber/internal/logger"
	http_transport "github.com/oshokin/geektime-grabber/internal/transport/http"
	"github.com/oshokin/geektime-grabber/internal/utils"
)

// Client defines the interface for interacting with the GeekTime API.
type Client interface {
	// DownloadFromURL downloads content from the specified URL.
	DownloadFromURL(ctx context.Context, url string) (io.ReadCloser, error)
	// FetchAsset fetches an asset with its reported size from the specified URL.
	FetchAsset(ctx context.Context, assetURL string) (*FetchAssetResult, error)
	// GetCourseIntro retrieves the introduction of a single course.
	GetCourseIntro(ctx context.Context, courseID int64) (*Course, error)
	// GetCourseList retrieves all courses visible to the account, grouped by product type.
	GetCourseList(ctx context.Context) (map[string]*CourseGroup, error)
	// GetPostComments retrieves all comment pages of an article.
	GetPostComments(ctx context.Context, postID int64) ([][]*Comment, error)
	// GetPostContent retrieves the full content of a single article.
	GetPostContent(ctx context.Context, postID int64) (*Post, error)
	// GetPostList retrieves the article list of a course in chronological order.
	GetPostList(ctx context.Context, courseID int64) ([]*Post, error)
	// GetVideoCollectionIntro retrieves the introduction of a daily lesson collection.
	GetVideoCollectionIntro(ctx context.Context, collectionID int64) (*VideoCollection, error)
	// GetVideoCollectionList returns identifiers of the known daily lesson collections.
	GetVideoCollectionList() []*VideoCollectionRef
	// GetVideoList retrieves the videos of a daily lesson collection.
	GetVideoList(ctx context.Context, collectionID int64) ([]*Video, error)
	// HasSession reports whether an authenticated session is currently present.
	HasSession() bool
	// ResetSession performs a fresh login and replaces the current session.
	ResetSession(ctx context.Context) error
}

// ClientImpl implements the Client interface for interacting with the GeekTime API.
type ClientImpl struct {
	// cfg contains the application configuration.
	cfg *config.Config
	// httpClient is the HTTP client for making requests.
	httpClient *http.Client
	// userAgents generates a fresh browser identity for each login.
	userAgents utils.UserAgentProvider
	// defaultUserAgent identifies the client on calls made without a session.
	defaultUserAgent string
	// sessionMu guards access to session.
	sessionMu sync.RWMutex
	// session is the current authenticated state, nil while logged out.
	session *Session
	// loginMu serializes logins so concurrent session resets don't interleave.
	loginMu sync.Mutex
	// coursesCache caches course intros to reduce duplicate API calls for the same course.
	coursesCache *lru.Cache[int64, *Course]
	// collectionsCache caches collection intros to reduce duplicate API calls for the same collection.
	collectionsCache *lru.Cache[int64, *VideoCollection]
}

// NewClient creates and returns a new instance of ClientImpl.
// Unless login is disabled or deferred, it authenticates immediately so a
// misconfigured account fails fast.
func NewClient(ctx context.Context, cfg *config.Config) (Client, error) {
	userAgents := utils.NewRandomUserAgentProvider()

	// Initialize the HTTP client with custom transport and timeout.
	// The injector covers asset downloads, which carry no session identity,
	// with a stable browser User-Agent.
	httpClient := &http.Client{
		Transport: http_transport.NewUserAgentInjector(
			http_transport.NewLogTransport(http.DefaultTransport, 0),
			utils.NewSimpleUserAgentProvider(http_transport.DefaultUserAgent)),
		Timeout: http_transport.DefaultTimeout,
	}

	// Initialize LRU caches for metadata to reduce redundant API calls.
	coursesCache, err := lru.New[int64, *Course](coursesCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create courses cache: %w", err)
	}

	collectionsCache, err := lru.New[int64, *VideoCollection](collectionsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create collections cache: %w", err)
	}

	client := &ClientImpl{
		cfg:              cfg,
		httpClient:       httpClient,
		userAgents:       userAgents,
		defaultUserAgent: userAgents.GetUserAgent(),
		coursesCache:     coursesCache,
		collectionsCache: collectionsCache,
	}

	// A browser-exported cookie string is adopted as the session directly.
	if cookie := strings.TrimSpace(cfg.Cookie); cookie != "" {
		session, err := newSessionFromCookieString(cookie, client.defaultUserAgent)
		if err != nil {
			return nil, err
		}

		client.session = session

		return client, nil
	}

	if cfg.NoLogin || cfg.LazyLogin {
		return client, nil
	}

	if err = client.ResetSession(ctx); err != nil {
		return nil, err
	}

	return client, nil
}

// DownloadFromURL downloads content from the specified URL.
func (c *ClientImpl) DownloadFromURL(ctx context.Context, url string) (io.ReadCloser, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		response.Body.Close() //nolint:gosec // Error on close is not critical here.

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return response.Body, nil
}

// FetchAsset fetches an asset such as narration audio or a cover image,
// along with its reported size.
func (c *ClientImpl) FetchAsset(ctx context.Context, assetURL string) (*FetchAssetResult, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	// Add a Range header to request partial content.
	request.Header.Add("Range", "bytes=0-")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusPartialContent {
		response.Body.Close() //nolint:gosec // Error on close is not critical here.

		return nil, fmt.Errorf("%w: %d", ErrUnexpectedHTTPStatus, response.StatusCode)
	}

	return &FetchAssetResult{
		Body:       response.Body,
		TotalBytes: response.ContentLength,
	}, nil
}

// GetCourseIntro retrieves the introduction of a single course.
// Uses an LRU cache to avoid redundant API calls for the same course.
func (c *ClientImpl) GetCourseIntro(ctx context.Context, courseID int64) (*Course, error) {
	if cached, ok := c.coursesCache.Get(courseID); ok {
		logger.Debugf(ctx, "Course intro cache hit for ID: %d", courseID)

		return cached, nil
	}

	course, err := callWithRetry(c, ctx, func(ctx context.Context) (*Course, error) {
		if err := c.ensureSession(ctx); err != nil {
			return nil, err
		}

		result, err := postJSON[*Course](c, ctx, courseIntroURI, c.courseReferer(courseID), courseIntroRequest{
			CID: strconv.FormatInt(courseID, 10),
		})
		if err != nil {
			return nil, err
		}

		if result == nil {
			return nil, &APIError{
				Message: fmt.Sprintf("invalid course ID: %d", courseID),
				Err:     ErrInvalidCourseID,
			}
		}

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	c.coursesCache.Add(courseID, course)

	return course, nil
}

// GetCourseList retrieves all courses visible to the account, grouped by
// product type. Keys are the platform's numeric product type identifiers
// ("1" columns, "2" micro courses, "3" videos).
func (c *ClientImpl) GetCourseList(ctx context.Context) (map[string]*CourseGroup, error) {
	return callWithRetry(c, ctx, func(ctx context.Context) (map[string]*CourseGroup, error) {
		if err := c.ensureSession(ctx); err != nil {
			return nil, err
		}

		return postJSON[map[string]*CourseGroup](c, ctx, courseListURI, c.cfg.APIBaseURL+courseListRefererPath, nil)
	})
}

// GetPostComments retrieves every comment page of an article. Pages come back
// separately in fetch order rather than merged, and pagination advances on
// the score of each page's last comment.
func (c *ClientImpl) GetPostComments(ctx context.Context, postID int64) ([][]*Comment, error) {
	return callWithRetry(c, ctx, func(ctx context.Context) ([][]*Comment, error) {
		if err := c.ensureSession(ctx); err != nil {
			return nil, err
		}

		var (
			pages  [][]*Comment
			cursor int64
		)

		for {
			data, err := postJSON[*commentsData](c, ctx, commentsURI, c.postReferer(postID), commentsRequest{
				AID:  strconv.FormatInt(postID, 10),
				Prev: cursor,
			})
			if err != nil {
				return nil, err
			}

			// An empty page means the thread is exhausted even if the
			// pagination flag claims otherwise.
			if data == nil || len(data.List) == 0 {
				break
			}

			pages = append(pages, data.List)
			cursor = data.List[len(data.List)-1].Score

			if data.Page == nil || !data.Page.More {
				break
			}
		}

		return pages, nil
	})
}

// GetPostContent retrieves the full content of a single article.
func (c *ClientImpl) GetPostContent(ctx context.Context, postID int64) (*Post, error) {
	return callWithRetry(c, ctx, func(ctx context.Context) (*Post, error) {
		if err := c.ensureSession(ctx); err != nil {
			return nil, err
		}

		return postJSON[*Post](c, ctx, postContentURI, c.postReferer(postID), postContentRequest{ID: postID})
	})
}

// GetPostList retrieves the article list of a course in chronological order.
// The API serves newest first, so the list is reversed before returning.
func (c *ClientImpl) GetPostList(ctx context.Context, courseID int64) ([]*Post, error) {
	return callWithRetry(c, ctx, func(ctx context.Context) ([]*Post, error) {
		if err := c.ensureSession(ctx); err != nil {
			return nil, err
		}

		data, err := postJSON[*postListData](c, ctx, postListURI, c.courseReferer(courseID), postListRequest{
			CID:   strconv.FormatInt(courseID, 10),
			Size:  postListPageSize,
			Prev:  0,
			Order: postListOrder,
		})
		if err != nil {
			return nil, err
		}

		if data == nil || len(data.List) == 0 {
			return nil, fmt.Errorf("%w: %d", ErrCourseNotFound, courseID)
		}

		posts := data.List
		slices.Reverse(posts)

		return posts, nil
	})
}

// GetVideoCollectionIntro retrieves the introduction of a daily lesson collection.
// Uses an LRU cache to avoid redundant API calls for the same collection.
func (c *ClientImpl) GetVideoCollectionIntro(ctx context.Context, collectionID int64) (*VideoCollection, error) {
	if cached, ok := c.collectionsCache.Get(collectionID); ok {
		logger.Debugf(ctx, "Collection intro cache hit for ID: %d", collectionID)

		return cached, nil
	}

	collection, err := callWithRetry(c, ctx, func(ctx context.Context) (*VideoCollection, error) {
		if err := c.ensureSession(ctx); err != nil {
			return nil, err
		}

		return postJSON[*VideoCollection](c, ctx, collectionIntroURI, c.collectionReferer(collectionID),
			collectionIntroRequest{ID: strconv.FormatInt(collectionID, 10)})
	})
	if err != nil {
		return nil, err
	}

	if collection != nil {
		c.collectionsCache.Add(collectionID, collection)
	}

	return collection, nil
}

// GetVideoCollectionList returns identifiers of the known daily lesson
// collections. No listing endpoint is known, so the result is synthesized
// from fixed ID ranges and involves no network traffic.
func (c *ClientImpl) GetVideoCollectionList() []*VideoCollectionRef {
	total := 0
	for _, idRange := range videoCollectionIDRanges {
		total += int(idRange[1]-idRange[0]) + 1
	}

	refs := make([]*VideoCollectionRef, 0, total)

	for _, idRange := range videoCollectionIDRanges {
		for id := idRange[0]; id <= idRange[1]; id++ {
			refs = append(refs, &VideoCollectionRef{CollectionID: id})
		}
	}

	return refs
}

// GetVideoList retrieves the videos of a daily lesson collection.
func (c *ClientImpl) GetVideoList(ctx context.Context, collectionID int64) ([]*Video, error) {
	return callWithRetry(c, ctx, func(ctx context.Context) ([]*Video, error) {
		if err := c.ensureSession(ctx); err != nil {
			return nil, err
		}

		data, err := postJSON[*videoListData](c, ctx, videoListURI, c.collectionReferer(collectionID), videoListRequest{
			ID:   strconv.FormatInt(collectionID, 10),
			Size: videoListPageSize,
		})
		if err != nil {
			return nil, err
		}

		if data == nil {
			return nil, nil
		}

		return data.List, nil
	})
}
