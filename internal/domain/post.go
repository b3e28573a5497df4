package domain

import "time"

// Author identifies the account that produced a post.
type Author struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// Embed references media or a quoted post attached to a post.
type Embed struct {
	Type string `json:"type"` // "image", "link", "quote"
	URI  string `json:"uri,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

// ReplyRef links a reply post to the thread it belongs to.
type ReplyRef struct {
	RootURI   string `json:"root_uri"`
	ParentURI string `json:"parent_uri"`
}

// Post is a raw candidate item from the content source, pre-filtering.
// URIs are unique within one pipeline run; the pipeline's seen set
// enforces at-most-once processing.
type Post struct {
	URI         string    `json:"uri"`
	CID         string    `json:"cid"`
	Author      Author    `json:"author"`
	Text        string    `json:"text"`
	Embed       *Embed    `json:"embed,omitempty"`
	LikeCount   int       `json:"like_count"`
	RepostCount int       `json:"repost_count"`
	ReplyCount  int       `json:"reply_count"`
	IndexedAt   time.Time `json:"indexed_at"`
	Reply       *ReplyRef `json:"reply,omitempty"`
}

// IsReply reports whether the post belongs to a thread.
func (p *Post) IsReply() bool {
	return p.Reply != nil && p.Reply.ParentURI != ""
}

// Thread is the auxiliary context resolved for one post: the post
// itself, its parent when it is a reply, and its direct replies.
type Thread struct {
	Post    Post   `json:"post"`
	Parent  *Post  `json:"parent,omitempty"`
	Replies []Post `json:"replies,omitempty"`
}

// HasReplyFrom reports whether the given account already replied
// somewhere in the resolved thread.
func (t *Thread) HasReplyFrom(did string) bool {
	if did == "" {
		return false
	}
	for i := range t.Replies {
		if t.Replies[i].Author.DID == did {
			return true
		}
	}
	return false
}

// FeedItem is a post that survived every filter, decorated with the
// scoring diagnostics the dashboard renders. Items live for one
// pipeline run and are never persisted.
type FeedItem struct {
	Post         Post          `json:"post"`
	KeywordMatch *KeywordMatch `json:"keyword_match,omitempty"`
	TimeScore    float64       `json:"time_score"`
	ParentPost   *Post         `json:"parent_post,omitempty"`
}
