package geektime

import "time"

const (
	// loginURI is the password login endpoint on the account service.
	loginURI = "/account/ticket/login"
	// courseListURI lists every course grouped by product type.
	courseListURI = "/serv/v1/column/all"
	// courseIntroURI returns the introduction of a single course.
	courseIntroURI = "/serv/v1/column/intro"
	// postListURI returns the article list of a course.
	postListURI = "/serv/v1/column/articles"
	// postContentURI returns the full content of a single article.
	postContentURI = "/serv/v1/article"
	// commentsURI returns one page of article comments.
	commentsURI = "/serv/v1/comments"
	// collectionIntroURI returns the introduction of a daily lesson collection.
	collectionIntroURI = "/serv/v2/video/GetCollectById"
	// videoListURI returns the videos of a daily lesson collection.
	videoListURI = "/serv/v2/video/GetListByType"
)

const (
	// loginReferer mirrors the sign-in page a browser posts the login form from.
	loginReferer = "https://account.geekbang.org/signin?redirect=https%3A%2F%2Fwww.geekbang.org%2F"
	// acceptLanguage mimics a Chinese-locale browser on the login request.
	acceptLanguage = "zh-CN,zh;q=0.8,zh-TW;q=0.7,zh-HK;q=0.5,en-US;q=0.3,en;q=0.2"
	// courseListRefererPath is the catalog page course list requests originate from.
	courseListRefererPath = "/paid-content"
	// courseRefererPath prefixes the course page used as a referer for course requests.
	courseRefererPath = "/column/"
	// postRefererPath prefixes the article page used as a referer for article requests.
	postRefererPath = "/column/article/"
	// collectionRefererPath prefixes the collection page used as a referer for video requests.
	collectionRefererPath = "/dailylesson/collection/"
)

const (
	// loginPlatformWeb marks login requests as coming from the web client.
	loginPlatformWeb = 3
	// loginAppID identifies the product being signed into.
	loginAppID = 1
	// loginRemember asks the account service for a long-lived session ticket.
	loginRemember = 1
	// postListPageSize is the page size for article listings.
	// No course comes close to this many articles, so one request fetches them all.
	postListPageSize = 1000
	// postListOrder requests article listings newest first.
	postListOrder = "newest"
	// videoListPageSize is the page size for collection video listings.
	videoListPageSize = 50
)

// transportRetryPause is how long to wait before refreshing the session and
// replaying a request that failed at the transport level.
const transportRetryPause = 100 * time.Millisecond

const (
	// coursesCacheSize defines the maximum number of course intros to cache.
	// The whole catalog is a few hundred courses, so this holds all of it.
	coursesCacheSize = 500
	// collectionsCacheSize defines the maximum number of collection intros to cache.
	// Daily lesson collections number well under two hundred.
	collectionsCacheSize = 200
)

// videoCollectionIDRanges holds the inclusive ID ranges of the known daily
// lesson collections. No server-side endpoint enumerating collections is
// known, so the collection list is synthesized from these hand-maintained
// ranges instead.
var videoCollectionIDRanges = [...][2]int64{
	{3, 81},
	{104, 140},
}
