package domain

// Video is a student practice submission. The list endpoint returns it
// without Feedback/Timestamps; the detail endpoint fills them in.
type Video struct {
	ID           int         `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	BabyAge      string      `json:"baby_age"`
	PracticeType string      `json:"practice_type"`
	Question     string      `json:"question,omitempty"`
	VideoURL     string      `json:"video_url"`
	ThumbnailURL string      `json:"thumbnail_url,omitempty"`
	UserID       int         `json:"user_id"`
	OwnerName    string      `json:"owner_name,omitempty"`
	HasFeedback  bool        `json:"has_feedback"`
	CreatedAt    string      `json:"created_at,omitempty"`
	Feedback     *Feedback   `json:"feedback,omitempty"`
	Timestamps   []Timestamp `json:"timestamps,omitempty"`
}

// Feedback is the instructor's written review. At most one per video;
// the backend upserts on repeat submissions.
type Feedback struct {
	ID          int    `json:"id"`
	Content     string `json:"content"`
	TeacherName string `json:"teacher_name"`
}

// Timestamp is a time-coded comment (mm:ss). The backend keeps them in
// insertion order, not sorted by the time value.
type Timestamp struct {
	ID      int    `json:"id"`
	Time    string `json:"time"`
	Comment string `json:"comment"`
}
