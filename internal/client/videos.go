package client

import (
	"babymassage/webapp/internal/domain"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// ListVideos returns every video the backend lets the caller see: a
// student's own uploads, or all submissions for a teacher.
func (c *Client) ListVideos(ctx context.Context) ([]domain.Video, error) {
	var videos []domain.Video
	if err := c.do(ctx, http.MethodGet, "/videos", nil, "", &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// GetVideo fetches one video with its feedback and timestamp comments.
func (c *Client) GetVideo(ctx context.Context, id int) (*domain.Video, error) {
	var video domain.Video
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/videos/%d", id), nil, "", &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// VideoUpload is the multipart payload for a new practice video.
type VideoUpload struct {
	Title        string
	Description  string
	BabyAge      string
	PracticeType string
	Question     string // optional

	FileName    string
	ContentType string
	Size        int64 // declared size, used for progress percentages
	File        io.Reader
}

// UploadResult is the backend's answer to a completed upload.
type UploadResult struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
}

// UploadVideo streams the multipart form to the backend. If a progress
// callback is installed it receives 0-100 percentages as the file part is
// consumed by the transport.
func (c *Client) UploadVideo(ctx context.Context, up VideoUpload) (*UploadResult, error) {
	if up.File == nil {
		return nil, errors.New("upload: missing video file")
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeUploadForm(mw, up, c.progressFn)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	var out UploadResult
	if err := c.do(ctx, http.MethodPost, "/videos", pr, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func writeUploadForm(mw *multipart.Writer, up VideoUpload, report func(int)) error {
	fields := []struct{ name, value string }{
		{"title", up.Title},
		{"description", up.Description},
		{"baby_age", up.BabyAge},
		{"practice_type", up.PracticeType},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return err
		}
	}
	if up.Question != "" {
		if err := mw.WriteField("question", up.Question); err != nil {
			return err
		}
	}

	// CreateFormFile would hardcode application/octet-stream; the backend
	// rejects anything whose content type is not video/*.
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="video_file"; filename="%s"`, escapeQuotes(up.FileName)))
	header.Set("Content-Type", up.ContentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(part, &progressReader{r: up.File, total: up.Size, report: report})
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// progressReader counts bytes as the transport drains the file and reports
// whole-percent changes.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	report func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.report != nil && p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct != p.last {
			p.last = pct
			p.report(pct)
		}
	}
	return n, err
}

// AddFeedback submits the instructor's written review for a video. The
// backend records which teacher wrote it and upserts repeat submissions.
func (c *Client) AddFeedback(ctx context.Context, videoID int, content string) error {
	payload := struct {
		Content string `json:"content"`
	}{Content: content}
	return c.postJSON(ctx, fmt.Sprintf("/videos/%d/feedback", videoID), payload, nil)
}

// AddTimestamp appends a time-coded comment (mm:ss) to a video.
func (c *Client) AddTimestamp(ctx context.Context, videoID int, time, comment string) error {
	payload := struct {
		Time    string `json:"time"`
		Comment string `json:"comment"`
	}{Time: time, Comment: comment}
	return c.postJSON(ctx, fmt.Sprintf("/videos/%d/timestamps", videoID), payload, nil)
}
