package models

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Post bodies are author-written rich text and are rendered unescaped.
type Post struct {
	ID       int64  `json:"id"`
	AuthorID int64  `json:"author_id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Date     string `json:"date"`
	Body     string `json:"body"`
	ImgURL   string `json:"img_url"`

	AuthorName string `json:"-"`
}

// Comment text is sanitized before it reaches the store.
type Comment struct {
	ID       int64  `json:"id"`
	PostID   int64  `json:"post_id"`
	AuthorID int64  `json:"author_id"`
	Text     string `json:"text"`

	AuthorName  string `json:"-"`
	AuthorEmail string `json:"-"`
}

// PostDateLayout is the layout of Post.Date, e.g. "August 24, 2024".
const PostDateLayout = "January 02, 2006"
