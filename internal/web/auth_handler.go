package web

import (
	"babymassage/webapp/internal/session"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves the public pages: home, login, register, unauthorized.
type AuthHandler struct {
	store  *session.Store
	logger *zap.Logger
}

func NewAuthHandler(store *session.Store, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{store: store, logger: logger}
}

func (h *AuthHandler) Home(c *gin.Context) {
	render(c, http.StatusOK, "home.html", gin.H{
		"Title": "ベビーマッサージ教室",
	})
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	data := gin.H{
		"Title":    "ログイン",
		"From":     c.Query("from"),
		"Username": "",
	}
	if c.Query("registered") == "1" {
		data["Flash"] = "登録が完了しました。ログインしてください。"
	}
	render(c, http.StatusOK, "login.html", data)
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if username == "" || password == "" {
		render(c, http.StatusBadRequest, "login.html", gin.H{
			"Title":    "ログイン",
			"Error":    "ユーザー名とパスワードを入力してください",
			"Username": username,
		})
		return
	}

	landing, ok := h.store.Login(c.Request.Context(), username, password)
	if !ok {
		render(c, http.StatusUnauthorized, "login.html", gin.H{
			"Title":    "ログイン",
			"Error":    "ログインに失敗しました。認証情報を確認してください。",
			"Username": username,
		})
		return
	}

	c.Redirect(http.StatusSeeOther, landing)
}

func (h *AuthHandler) RegisterForm(c *gin.Context) {
	render(c, http.StatusOK, "register.html", gin.H{
		"Title":     "新規登録",
		"Username":  "",
		"Email":     "",
		"IsTeacher": false,
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirm := c.PostForm("password_confirm")
	isTeacher := c.PostForm("is_teacher") != ""

	renderError := func(message string) {
		render(c, http.StatusBadRequest, "register.html", gin.H{
			"Title":     "新規登録",
			"Error":     message,
			"Username":  username,
			"Email":     email,
			"IsTeacher": isTeacher,
		})
	}

	if username == "" || email == "" || password == "" || confirm == "" {
		renderError("すべての項目を入力してください")
		return
	}
	if password != confirm {
		renderError("パスワードが一致しません")
		return
	}

	if !h.store.Register(c.Request.Context(), username, email, password, isTeacher) {
		renderError("登録に失敗しました。別のユーザー名やメールアドレスをお試しください。")
		return
	}

	// Registration does not log the account in.
	c.Redirect(http.StatusSeeOther, "/login?registered=1")
}

func (h *AuthHandler) Unauthorized(c *gin.Context) {
	render(c, http.StatusForbidden, "unauthorized.html", gin.H{
		"Title": "アクセス権限がありません",
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.store.Logout(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/login")
}
