package web

import (
	"babymassage/webapp/internal/client"
	"babymassage/webapp/internal/domain"
	"babymassage/webapp/internal/session"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TeacherHandler serves the instructor area: submission list, detail with
// feedback and timestamp forms, and the per-student view.
type TeacherHandler struct {
	store  *session.Store
	logger *zap.Logger
}

func NewTeacherHandler(store *session.Store, logger *zap.Logger) *TeacherHandler {
	return &TeacherHandler{store: store, logger: logger}
}

// StudentGroup is one student's submissions on the teacher list page.
type StudentGroup struct {
	ID     int
	Name   string
	Videos []domain.Video
}

func (h *TeacherHandler) Videos(c *gin.Context) {
	filter := c.DefaultQuery("filter", "all")
	search := c.Query("q")

	data := gin.H{
		"Title":  "生徒の動画一覧",
		"Filter": filter,
		"Search": search,
	}

	videos, err := h.store.API(c.Request.Context()).ListVideos(c.Request.Context())
	if err != nil {
		h.logger.Warn("video list fetch failed", zap.Error(err))
		data["Error"] = "動画を読み込めませんでした。もう一度お試しください。"
		render(c, http.StatusBadGateway, "teacher_videos.html", data)
		return
	}

	data["Groups"] = groupByStudent(videos, filter, search)
	render(c, http.StatusOK, "teacher_videos.html", data)
}

// groupByStudent buckets videos per student, drops students whose name
// misses the search term, applies the feedback-status filter, and returns
// the groups in ascending student-id order.
func groupByStudent(videos []domain.Video, filter, search string) []StudentGroup {
	byStudent := make(map[int]*StudentGroup)
	for _, v := range videos {
		group, ok := byStudent[v.UserID]
		if !ok {
			name := v.OwnerName
			if name == "" {
				name = fmt.Sprintf("ユーザー %d", v.UserID)
			}
			group = &StudentGroup{ID: v.UserID, Name: name}
			byStudent[v.UserID] = group
		}
		group.Videos = append(group.Videos, v)
	}

	groups := make([]StudentGroup, 0, len(byStudent))
	for _, group := range byStudent {
		if search != "" && !strings.Contains(strings.ToLower(group.Name), strings.ToLower(search)) {
			continue
		}
		kept := group.Videos[:0:0]
		for _, v := range group.Videos {
			switch filter {
			case "pending":
				if v.HasFeedback {
					continue
				}
			case "completed":
				if !v.HasFeedback {
					continue
				}
			}
			kept = append(kept, v)
		}
		if len(kept) == 0 {
			continue
		}
		group.Videos = kept
		groups = append(groups, *group)
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}

func (h *TeacherHandler) VideoDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderNotFound(c)
		return
	}

	video, err := h.store.API(c.Request.Context()).GetVideo(c.Request.Context(), id)
	if err != nil {
		if client.IsNotFound(err) {
			h.renderNotFound(c)
			return
		}
		h.logger.Warn("video detail fetch failed", zap.Int("video_id", id), zap.Error(err))
		render(c, http.StatusBadGateway, "not_found.html", gin.H{
			"Title":    "エラー",
			"Message":  "動画の詳細を読み込めませんでした。",
			"BackLink": "/teacher/videos",
		})
		return
	}

	data := gin.H{
		"Title": video.Title,
		"Video": video,
	}
	switch {
	case c.Query("feedback") == "1":
		data["Flash"] = "フィードバックを送信しました。"
	case c.Query("timestamp") == "1":
		data["Flash"] = "タイムスタンプコメントを追加しました。"
	}
	switch c.Query("error") {
	case "feedback":
		data["Error"] = "フィードバックの送信に失敗しました。もう一度お試しください。"
	case "timestamp":
		data["Error"] = "タイムスタンプコメントの追加に失敗しました。もう一度お試しください。"
	case "time":
		data["Error"] = "時間は mm:ss 形式で入力してください。"
	}
	render(c, http.StatusOK, "teacher_video.html", data)
}

func (h *TeacherHandler) renderNotFound(c *gin.Context) {
	render(c, http.StatusNotFound, "not_found.html", gin.H{
		"Title":    "動画が見つかりません",
		"Message":  "動画が見つかりません",
		"BackLink": "/teacher/videos",
	})
}

func (h *TeacherHandler) SubmitFeedback(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderNotFound(c)
		return
	}
	detailPath := fmt.Sprintf("/teacher/video/%d", id)

	content := strings.TrimSpace(c.PostForm("content"))
	if content == "" {
		c.Redirect(http.StatusSeeOther, detailPath)
		return
	}

	if err := h.store.API(c.Request.Context()).AddFeedback(c.Request.Context(), id, content); err != nil {
		h.logger.Warn("feedback submit failed", zap.Int("video_id", id), zap.Error(err))
		c.Redirect(http.StatusSeeOther, detailPath+"?error=feedback")
		return
	}
	c.Redirect(http.StatusSeeOther, detailPath+"?feedback=1")
}

// timestampPattern matches the mm:ss format produced by the detail page's
// current-time control.
var timestampPattern = regexp.MustCompile(`^[0-9]{1,3}:[0-5][0-9]$`)

func (h *TeacherHandler) SubmitTimestamp(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderNotFound(c)
		return
	}
	detailPath := fmt.Sprintf("/teacher/video/%d", id)

	timeCode := strings.TrimSpace(c.PostForm("time"))
	comment := strings.TrimSpace(c.PostForm("comment"))
	if comment == "" {
		c.Redirect(http.StatusSeeOther, detailPath)
		return
	}
	if !timestampPattern.MatchString(timeCode) {
		c.Redirect(http.StatusSeeOther, detailPath+"?error=time")
		return
	}

	if err := h.store.API(c.Request.Context()).AddTimestamp(c.Request.Context(), id, timeCode, comment); err != nil {
		h.logger.Warn("timestamp submit failed", zap.Int("video_id", id), zap.Error(err))
		c.Redirect(http.StatusSeeOther, detailPath+"?error=timestamp")
		return
	}
	c.Redirect(http.StatusSeeOther, detailPath+"?timestamp=1")
}

func (h *TeacherHandler) StudentVideos(c *gin.Context) {
	studentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		render(c, http.StatusNotFound, "not_found.html", gin.H{
			"Title":    "エラー",
			"Message":  "この生徒の動画は見つかりませんでした。",
			"BackLink": "/teacher/videos",
		})
		return
	}

	// The backend has no per-student endpoint; fetch everything visible to
	// the teacher and filter locally, as the list page does.
	videos, err := h.store.API(c.Request.Context()).ListVideos(c.Request.Context())
	if err != nil {
		h.logger.Warn("video list fetch failed", zap.Int("student_id", studentID), zap.Error(err))
		render(c, http.StatusBadGateway, "not_found.html", gin.H{
			"Title":    "エラー",
			"Message":  "動画の読み込み中にエラーが発生しました。",
			"BackLink": "/teacher/videos",
		})
		return
	}

	var studentVideos []domain.Video
	for _, v := range videos {
		if v.UserID == studentID {
			studentVideos = append(studentVideos, v)
		}
	}
	if len(studentVideos) == 0 {
		render(c, http.StatusNotFound, "not_found.html", gin.H{
			"Title":    "エラー",
			"Message":  "この生徒の動画は見つかりませんでした。",
			"BackLink": "/teacher/videos",
		})
		return
	}

	studentName := studentVideos[0].OwnerName
	if studentName == "" {
		studentName = fmt.Sprintf("ユーザー %d", studentID)
	}

	render(c, http.StatusOK, "teacher_student_videos.html", gin.H{
		"Title":       studentName + "の動画一覧",
		"StudentName": studentName,
		"Videos":      studentVideos,
	})
}
