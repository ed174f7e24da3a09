package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/architect/internal/db"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	sessionUserIDKey   = "user_id"
	sessionPublicIDKey = "user_public_id"
)

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp 注册新账号并直接建立会话
func (a *API) SignUp(c *gin.Context) {
	var payload credentialsPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	email := strings.TrimSpace(strings.ToLower(payload.Email))
	if email == "" || !strings.Contains(email, "@") {
		respondError(c, http.StatusBadRequest, "请输入有效的邮箱")
		return
	}
	if len(payload.Password) < 6 {
		respondError(c, http.StatusBadRequest, "密码至少需要 6 位")
		return
	}

	var existing db.User
	err := a.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		respondError(c, http.StatusConflict, "该邮箱已被注册")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusInternalServerError, "注册失败")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "注册失败")
		return
	}

	user := db.User{Email: email, Password: string(hashed)}
	if err := a.db.Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "注册失败")
		return
	}

	if !saveUserSession(c, user) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToPayload(user)})
}

// Login 校验邮箱密码并建立会话
func (a *API) Login(c *gin.Context) {
	var payload credentialsPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	email := strings.TrimSpace(strings.ToLower(payload.Email))

	var user db.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "邮箱或密码错误")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "邮箱或密码错误")
		return
	}

	if !saveUserSession(c, user) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToPayload(user)})
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "退出登录失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"signed_out": true})
}

// Me 返回当前会话用户
func (a *API) Me(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	var user db.User
	if err := a.db.First(&user, userID).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "请先登录")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userToPayload(user)})
}

// AuthRequired 保护需要登录的 API 分组
// 无会话时直接返回 401，数据操作在入口处即被挡下
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUserID(c) == 0 {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentUserID 从会话取出当前用户主键，未登录时为 0
func currentUserID(c *gin.Context) uint {
	session := sessions.Default(c)
	raw := session.Get(sessionUserIDKey)
	if raw == nil {
		return 0
	}
	if id, ok := raw.(uint); ok {
		return id
	}
	return 0
}

func saveUserSession(c *gin.Context, user db.User) bool {
	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionPublicIDKey, user.PublicID)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return false
	}
	return true
}

func userToPayload(user db.User) gin.H {
	return gin.H{
		"id":    user.PublicID,
		"email": user.Email,
	}
}
