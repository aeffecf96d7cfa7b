package geektime

import "io"

// CourseGroup is one product type bucket in the course list response.
type CourseGroup struct {
	// List is the courses in the bucket.
	List []*CourseSummary `json:"list"`
	// Nav describes the product type of the bucket.
	Nav *CourseNav `json:"nav"`
}

// CourseNav describes a product type in the course list response.
type CourseNav struct {
	// ID is the numeric product type identifier.
	ID int64 `json:"id"`
	// Name is the product type name.
	Name string `json:"name"`
}

// CourseSummary is a single course entry in the course list response.
type CourseSummary struct {
	// ID is the unique course identifier.
	ID int64 `json:"id"`
	// Title is the course name.
	Title string `json:"column_title"`
	// Subtitle is the course tagline.
	Subtitle string `json:"column_subtitle"`
	// AuthorName is the name of the course author.
	AuthorName string `json:"author_name"`
	// Cover is the URL of the course cover image.
	Cover string `json:"column_cover"`
	// HadSub indicates whether the account has purchased the course.
	HadSub bool `json:"had_sub"`
}

// Course is the full introduction of a single course.
type Course struct {
	// ID is the unique course identifier.
	ID int64 `json:"id"`
	// Type is the product type of the course (1 for article columns, 3 for video courses).
	Type int64 `json:"column_type"`
	// Title is the course name.
	Title string `json:"column_title"`
	// Subtitle is the course tagline.
	Subtitle string `json:"column_subtitle"`
	// Intro is the course introduction in HTML.
	Intro string `json:"column_intro"`
	// Unit describes the course volume, e.g. "共75讲".
	Unit string `json:"column_unit"`
	// Cover is the URL of the course cover image.
	Cover string `json:"column_cover"`
	// AuthorName is the name of the course author.
	AuthorName string `json:"author_name"`
	// AuthorIntro is a short author biography.
	AuthorIntro string `json:"author_intro"`
	// IsFinish indicates whether the course has finished updating.
	IsFinish bool `json:"is_finish"`
	// HadSub indicates whether the account has purchased the course.
	HadSub bool `json:"had_sub"`
}

// Post is one article of a course. Listing calls fill only the summary
// fields; GetPostContent fills the content and media fields as well.
type Post struct {
	// ID is the unique article identifier.
	ID int64 `json:"id"`
	// CID is the identifier of the course the article belongs to.
	CID int64 `json:"cid"`
	// Title is the article name.
	Title string `json:"article_title"`
	// Summary is a short article abstract.
	Summary string `json:"article_summary"`
	// Content is the article body in HTML.
	Content string `json:"article_content"`
	// Cover is the URL of the article cover image.
	Cover string `json:"article_cover"`
	// AudioDownloadURL is the URL of the narration audio, empty if none exists.
	AudioDownloadURL string `json:"audio_download_url"`
	// AudioSize is the narration audio size in bytes.
	AudioSize int64 `json:"audio_size"`
	// AudioTime is the narration audio duration, e.g. "11:23".
	AudioTime string `json:"audio_time"`
	// VideoMedia carries encoded video stream descriptions for video courses.
	VideoMedia string `json:"video_media"`
	// ChapterID is the identifier of the chapter the article belongs to.
	ChapterID int64 `json:"chapter_id"`
	// PublishTime is the publication timestamp.
	PublishTime int64 `json:"article_ctime"`
	// IsVideoPreview indicates whether only a preview of the video is available.
	IsVideoPreview bool `json:"is_video_preview"`
}

// Comment is a single reader comment below an article.
type Comment struct {
	// ID is the unique comment identifier.
	ID int64 `json:"id"`
	// UserName is the display name of the commenter.
	UserName string `json:"user_name"`
	// UserHeader is the URL of the commenter's avatar.
	UserHeader string `json:"user_header"`
	// Content is the comment text.
	Content string `json:"comment_content"`
	// LikeCount is the number of likes the comment received.
	LikeCount int64 `json:"like_count"`
	// CreateTime is the comment creation timestamp.
	CreateTime int64 `json:"comment_ctime"`
	// Score orders comments within the thread; the score of a page's last
	// comment doubles as the cursor for the next page request.
	Score int64 `json:"score"`
	// Replies are the replies attached to the comment.
	Replies []*CommentReply `json:"replies"`
}

// CommentReply is a reply attached to a comment, usually by the course author.
type CommentReply struct {
	// Content is the reply text.
	Content string `json:"content"`
	// UserName is the display name of the replier.
	UserName string `json:"user_name"`
	// CreateTime is the reply creation timestamp.
	CreateTime int64 `json:"ctime"`
}

// VideoCollection is the introduction of a daily lesson collection.
type VideoCollection struct {
	// ID is the unique collection identifier.
	ID int64 `json:"id"`
	// Title is the collection name.
	Title string `json:"title"`
	// Intro is the collection description.
	Intro string `json:"description"`
	// Cover is the URL of the collection cover image.
	Cover string `json:"cover"`
	// VideoCount is the number of videos in the collection.
	VideoCount int64 `json:"video_count"`
}

// VideoCollectionRef identifies one daily lesson collection in the
// synthesized collection list.
type VideoCollectionRef struct {
	// CollectionID is the collection identifier.
	CollectionID int64 `json:"collection_id"`
}

// Video is one video entry of a daily lesson collection.
type Video struct {
	// ID is the unique video identifier.
	ID int64 `json:"id"`
	// Title is the video name.
	Title string `json:"title"`
	// Cover is the URL of the video cover image.
	Cover string `json:"cover"`
	// AuthorName is the name of the lecturer.
	AuthorName string `json:"author_name"`
	// Duration is the video length in seconds.
	Duration int64 `json:"duration"`
}

// FetchAssetResult wraps a streamed asset download.
type FetchAssetResult struct {
	// Body is the asset content stream. The caller must close it.
	Body io.ReadCloser
	// TotalBytes is the size reported by the server, -1 when unknown.
	TotalBytes int64
}

// Request payloads mirror the wire format exactly: most endpoints expect
// course, article, and collection IDs as JSON strings, while the article
// content endpoint takes a numeric ID.

type loginRequest struct {
	Country   string `json:"country"`
	Cellphone string `json:"cellphone"`
	Password  string `json:"password"`
	Captcha   string `json:"captcha"`
	Remember  int    `json:"remember"`
	Platform  int    `json:"platform"`
	AppID     int    `json:"appid"`
}

type courseIntroRequest struct {
	CID string `json:"cid"`
}

type postListRequest struct {
	CID   string `json:"cid"`
	Size  int    `json:"size"`
	Prev  int64  `json:"prev"`
	Order string `json:"order"`
}

type postContentRequest struct {
	ID int64 `json:"id"`
}

type commentsRequest struct {
	AID  string `json:"aid"`
	Prev int64  `json:"prev"`
}

type collectionIntroRequest struct {
	ID string `json:"id"`
}

type videoListRequest struct {
	ID   string `json:"id"`
	Size int    `json:"size"`
}

// postListData is the data payload of the article list endpoint.
type postListData struct {
	// List is one page of articles, newest first.
	List []*Post `json:"list"`
}

// commentsData is the data payload of the comments endpoint.
type commentsData struct {
	// List is one page of comments.
	List []*Comment `json:"list"`
	// Page carries the pagination state.
	Page *commentPageInfo `json:"page"`
}

// commentPageInfo is the pagination state of a comments page.
type commentPageInfo struct {
	// More indicates whether further pages exist.
	More bool `json:"more"`
	// Count is the total number of comments.
	Count int64 `json:"count"`
}

// videoListData is the data payload of the video list endpoint.
type videoListData struct {
	// List is the videos of the collection.
	List []*Video `json:"list"`
}
