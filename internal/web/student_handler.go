package web

import (
	"babymassage/webapp/internal/client"
	"babymassage/webapp/internal/session"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StudentHandler serves the student area: upload, list, detail.
type StudentHandler struct {
	store          *session.Store
	maxUploadBytes int64
	progress       *progressTracker
	logger         *zap.Logger
}

func NewStudentHandler(store *session.Store, maxUploadBytes int64, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{
		store:          store,
		maxUploadBytes: maxUploadBytes,
		progress:       newProgressTracker(),
		logger:         logger,
	}
}

func emptyUploadForm() gin.H {
	return gin.H{
		"Title":        "",
		"Description":  "",
		"BabyAge":      "",
		"PracticeType": "",
		"Question":     "",
	}
}

// backendErrorMessage prefers the backend's detail message and falls back
// to the page's own localized text.
func backendErrorMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

func (h *StudentHandler) UploadForm(c *gin.Context) {
	render(c, http.StatusOK, "upload.html", gin.H{
		"Title":         "動画アップロード",
		"BabyAges":      babyAgeOptions,
		"PracticeTypes": practiceTypeOptions,
		"Form":          emptyUploadForm(),
	})
}

func (h *StudentHandler) Upload(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	description := c.PostForm("description")
	babyAge := c.PostForm("baby_age")
	practiceType := c.PostForm("practice_type")
	question := c.PostForm("question")

	renderError := func(message string) {
		render(c, http.StatusBadRequest, "upload.html", gin.H{
			"Title":         "動画アップロード",
			"Error":         message,
			"BabyAges":      babyAgeOptions,
			"PracticeTypes": practiceTypeOptions,
			"Form": gin.H{
				"Title":        title,
				"Description":  description,
				"BabyAge":      babyAge,
				"PracticeType": practiceType,
				"Question":     question,
			},
		})
	}

	// Everything below is checked before any backend call.
	if title == "" || babyAge == "" || practiceType == "" {
		renderError("タイトル、赤ちゃんの月齢、練習内容を入力してください。")
		return
	}

	file, header, err := c.Request.FormFile("video_file")
	if err != nil {
		renderError("動画ファイルを選択してください。")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		renderError("ファイルサイズが大きすぎます。100MB以下の動画を選択してください。")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") {
		renderError("動画ファイルを選択してください。")
		return
	}

	ctx := c.Request.Context()
	sessionID := h.store.ID(ctx)
	h.progress.set(sessionID, 0)
	defer h.progress.clear(sessionID)

	api := h.store.API(ctx)
	api.SetUploadProgressFunc(func(percent int) {
		h.progress.set(sessionID, percent)
	})

	result, err := api.UploadVideo(ctx, client.VideoUpload{
		Title:        title,
		Description:  description,
		BabyAge:      babyAge,
		PracticeType: practiceType,
		Question:     question,
		FileName:     header.Filename,
		ContentType:  contentType,
		Size:         header.Size,
		File:         file,
	})
	if err != nil {
		h.logger.Warn("video upload failed", zap.Error(err))
		renderError(backendErrorMessage(err, "アップロード中にエラーが発生しました。もう一度お試しください。"))
		return
	}

	h.logger.Info("video uploaded", zap.Int("video_id", result.ID))
	c.Redirect(http.StatusSeeOther, "/student/videos?uploaded=1")
}

// UploadProgress reports the relay progress of this session's in-flight
// upload as JSON for the form's polling script.
func (h *StudentHandler) UploadProgress(c *gin.Context) {
	percent := h.progress.get(h.store.ID(c.Request.Context()))
	c.JSON(http.StatusOK, gin.H{"percent": percent})
}

func (h *StudentHandler) Videos(c *gin.Context) {
	data := gin.H{"Title": "マイ動画一覧"}
	if c.Query("uploaded") == "1" {
		data["Flash"] = "動画のアップロードが完了しました。"
	}

	videos, err := h.store.API(c.Request.Context()).ListVideos(c.Request.Context())
	if err != nil {
		h.logger.Warn("video list fetch failed", zap.Error(err))
		data["Error"] = "動画を読み込めませんでした。もう一度お試しください。"
		render(c, http.StatusBadGateway, "student_videos.html", data)
		return
	}

	data["Videos"] = videos
	render(c, http.StatusOK, "student_videos.html", data)
}

func (h *StudentHandler) VideoDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		render(c, http.StatusNotFound, "not_found.html", gin.H{
			"Title":    "動画が見つかりません",
			"Message":  "動画が見つかりません",
			"BackLink": "/student/videos",
		})
		return
	}

	video, err := h.store.API(c.Request.Context()).GetVideo(c.Request.Context(), id)
	if err != nil {
		if client.IsNotFound(err) {
			render(c, http.StatusNotFound, "not_found.html", gin.H{
				"Title":    "動画が見つかりません",
				"Message":  "動画が見つかりません",
				"BackLink": "/student/videos",
			})
			return
		}
		h.logger.Warn("video detail fetch failed", zap.Int("video_id", id), zap.Error(err))
		render(c, http.StatusBadGateway, "not_found.html", gin.H{
			"Title":    "エラー",
			"Message":  "動画の詳細を読み込めませんでした。",
			"BackLink": "/student/videos",
		})
		return
	}

	render(c, http.StatusOK, "student_video.html", gin.H{
		"Title": video.Title,
		"Video": video,
	})
}
