// Package forum defines the wire types of the community-forum API: posts,
// questions and their answers, comments, and the pagination and status
// envelopes the server wraps them in.
package forum

// Post is a free-board post.
type Post struct {
	PostNum     int    `json:"postNum"`
	Title       string `json:"title"`
	TextBody    string `json:"textBody"`
	User        string `json:"user"`
	ID          string `json:"id"`
	IsLiked     bool   `json:"isLiked"`
	Like        int    `json:"like"`
	Visit       int    `json:"visit"`
	PostingDate string `json:"postingDate"`
	Comment     int    `json:"comment"`
}

// Question is a question-board post. User and ID are empty for questions
// whose author has been deleted.
type Question struct {
	PostNum     int    `json:"postNum"`
	Title       string `json:"title"`
	TextBody    string `json:"textBody"`
	User        string `json:"user"`
	ID          string `json:"id"`
	Liked       bool   `json:"liked"`
	Like        int    `json:"like"`
	Visit       int    `json:"visit"`
	PostingDate string `json:"postingDate"`
	Comment     int    `json:"comment"`
	Answer      int    `json:"answer"`
}

// Answer is a reply to a question, with up/down voting.
type Answer struct {
	PostNum     int    `json:"postNum"`
	Title       string `json:"title"`
	TextBody    string `json:"textBody"`
	User        string `json:"user"`
	ID          string `json:"id"`
	IsLiked     bool   `json:"isLiked"`
	IsDisliked  bool   `json:"isDisliked"`
	Like        int    `json:"like"`
	Dislike     int    `json:"dislike"`
	PostingDate string `json:"postingDate"`
	Comment     int    `json:"comment"`
}

// Comment is a comment on a post. Parent is 0 for top-level comments and the
// parent comment number for replies.
type Comment struct {
	Parent         int    `json:"parent"`
	CommentNum     int    `json:"commentNum"`
	CommentBody    string `json:"commentBody"`
	CommentingDate string `json:"commentingDate"`
	ID             string `json:"id"`
	User           string `json:"user"`
}

// Page is the server's pagination envelope (Spring Data style).
type Page[T any] struct {
	Content    []T  `json:"content"`
	First      bool `json:"first"`
	Last       bool `json:"last"`
	TotalPages int  `json:"totalPages"`
}

// Envelope is the status envelope carried by mutating responses:
// {status: "success"|"error", message?}.
type Envelope struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// PostInput is the payload for creating or editing a post, question, or
// answer.
type PostInput struct {
	Title    string `json:"title"`
	TextBody string `json:"textBody"`
}

// SearchQuery selects which fields a keyword search matches against.
// The flags are integers on the wire (1 = search this field).
type SearchQuery struct {
	Keyword string `json:"keyword"`
	Title   int    `json:"title"`
	Text    int    `json:"text"`
	User    int    `json:"user"`
}

// RegisterInput is the payload for creating a new member account.
type RegisterInput struct {
	ID       string `json:"id"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// MemberEdit is the payload for /api/member/edit. Zero-valued fields are
// omitted so only changed fields reach the server; Password carries the
// member's current password as confirmation, NewPassword is set only for a
// password change.
type MemberEdit struct {
	ID          string `json:"id,omitempty"`
	Nickname    string `json:"nickname,omitempty"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password,omitempty"`
	NewPassword string `json:"newPassword,omitempty"`
}
