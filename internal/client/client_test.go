package client

import (
	"babymassage/webapp/internal/config"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(config.APIConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(config.APIConfig{})
	assert.Error(t, err)
}

func TestLoginSendsFormAndParsesToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostFormValue("username"))
		assert.Equal(t, "p", r.PostFormValue("password"))

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok123",
			"token_type":   "bearer",
			"is_teacher":   true,
		})
	})

	tok, err := c.Login(context.Background(), "alice", "p")
	require.NoError(t, err)
	assert.Equal(t, "tok123", tok.AccessToken)
	assert.True(t, tok.IsTeacher)
}

func TestLoginInvalidCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect username or password"})
	})

	_, err := c.Login(context.Background(), "alice", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Incorrect username or password", apiErr.Detail)
}

func TestRegisterPostsJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])
		assert.Equal(t, "a@x.com", body["email"])
		assert.Equal(t, "p", body["password"])
		assert.Equal(t, false, body["is_teacher"])

		json.NewEncoder(w).Encode(map[string]any{"id": 1})
	})

	err := c.Register(context.Background(), "alice", "a@x.com", "p", false)
	assert.NoError(t, err)
}

func TestCurrentUserSendsBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"id": 3, "username": "alice", "email": "a@x.com", "is_teacher": false,
		})
	})

	user, err := c.WithToken("tok123").CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsTeacher)
}

func TestWithTokenDoesNotMutateBaseClient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]any{})
	})

	_ = c.WithToken("tok123")
	// The base client must still send unauthenticated requests.
	_, err := c.ListVideos(context.Background())
	assert.NoError(t, err)
}

func TestListVideos(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 7, "title": "背中のマッサージ練習", "user_id": 3, "has_feedback": false},
		})
	})

	videos, err := c.WithToken("tok").ListVideos(context.Background())
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, 7, videos[0].ID)
	assert.Equal(t, 3, videos[0].UserID)
	assert.False(t, videos[0].HasFeedback)
}

func TestGetVideoNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Video not found"})
	})

	_, err := c.WithToken("tok").GetVideo(context.Background(), 999)
	assert.True(t, IsNotFound(err))
}

func TestGetVideoParsesFeedbackAndTimestamps(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos/7", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id": 7, "title": "背中のマッサージ練習", "user_id": 3, "has_feedback": true,
			"feedback": map[string]any{"id": 1, "content": "とても良いです", "teacher_name": "sensei"},
			"timestamps": []map[string]any{
				{"id": 1, "time": "01:30", "comment": "ここは力を抜いて"},
				{"id": 2, "time": "00:45", "comment": "良い手の動きです"},
			},
		})
	})

	video, err := c.WithToken("tok").GetVideo(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, video.Feedback)
	assert.Equal(t, "sensei", video.Feedback.TeacherName)
	// Insertion order, not sorted by time value.
	require.Len(t, video.Timestamps, 2)
	assert.Equal(t, "01:30", video.Timestamps[0].Time)
	assert.Equal(t, "00:45", video.Timestamps[1].Time)
}

func TestUploadVideoStreamsMultipartWithProgress(t *testing.T) {
	content := bytes.Repeat([]byte("v"), 4096)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "背中のマッサージ練習", r.PostFormValue("title"))
		assert.Equal(t, "2-3", r.PostFormValue("baby_age"))
		assert.Equal(t, "back", r.PostFormValue("practice_type"))
		assert.Equal(t, "力加減はどうですか", r.PostFormValue("question"))

		file, header, err := r.FormFile("video_file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "practice.mp4", header.Filename)
		assert.Equal(t, "video/mp4", header.Header.Get("Content-Type"))
		got, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, content, got)

		json.NewEncoder(w).Encode(map[string]any{"id": 9, "message": "Video uploaded successfully"})
	})

	var mu sync.Mutex
	var reported []int
	auth := c.WithToken("tok")
	auth.SetUploadProgressFunc(func(percent int) {
		mu.Lock()
		reported = append(reported, percent)
		mu.Unlock()
	})

	result, err := auth.UploadVideo(context.Background(), VideoUpload{
		Title:        "背中のマッサージ練習",
		Description:  "背中を中心に練習しました",
		BabyAge:      "2-3",
		PracticeType: "back",
		Question:     "力加減はどうですか",
		FileName:     "practice.mp4",
		ContentType:  "video/mp4",
		Size:         int64(len(content)),
		File:         bytes.NewReader(content),
	})
	require.NoError(t, err)
	assert.Equal(t, 9, result.ID)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, reported)
	assert.Equal(t, 100, reported[len(reported)-1])
	for i := 1; i < len(reported); i++ {
		assert.LessOrEqual(t, reported[i-1], reported[i])
	}
}

func TestUploadVideoRequiresFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := c.UploadVideo(context.Background(), VideoUpload{Title: "x"})
	assert.Error(t, err)
}

func TestUploadVideoSurfacesBackendError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Teachers cannot upload videos"})
	})

	_, err := c.WithToken("tok").UploadVideo(context.Background(), VideoUpload{
		Title: "x", BabyAge: "2-3", PracticeType: "back",
		FileName: "a.mp4", ContentType: "video/mp4", Size: 4,
		File: bytes.NewReader([]byte("data")),
	})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Teachers cannot upload videos", apiErr.Detail)
}

func TestAddFeedback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos/7/feedback", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "とても良いです", body["content"])
		json.NewEncoder(w).Encode(map[string]any{"id": 1, "message": "Feedback added successfully"})
	})

	err := c.WithToken("tok").AddFeedback(context.Background(), 7, "とても良いです")
	assert.NoError(t, err)
}

func TestAddTimestamp(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos/7/timestamps", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "01:30", body["time"])
		assert.Equal(t, "ここは力を抜いて", body["comment"])
		json.NewEncoder(w).Encode(map[string]any{"id": 1})
	})

	err := c.WithToken("tok").AddTimestamp(context.Background(), 7, "01:30", "ここは力を抜いて")
	assert.NoError(t, err)
}

func TestAPIErrorWithoutDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.ListVideos(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Empty(t, apiErr.Detail)
	assert.Contains(t, apiErr.Error(), "Bad Gateway")
}
