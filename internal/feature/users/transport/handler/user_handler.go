// Package handler はusersフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"user_backend/internal/feature/users/domain/entity"
	"user_backend/internal/feature/users/transport/http/dto"
	"user_backend/internal/feature/users/usecase"
)

// UserUsecase はユーザー操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserUsecase interface {
	ListUsers(ctx context.Context, page usecase.Page) (*usecase.UserPage, error)
	GetUser(ctx context.Context, id uint) (*entity.User, error)
	CreateUser(ctx context.Context, in usecase.CreateUserInput) (*entity.User, error)
	UpdateUser(ctx context.Context, id uint, in usecase.UpdateUserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

// UserHandler はユーザーリソースのHTTPリクエストを処理します。
type UserHandler struct {
	uc UserUsecase
}

// NewUserHandler は UserHandler の新しいインスタンスを生成します。
func NewUserHandler(uc UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

// Register はユーザーリソースのルートをグループに登録します。
func (h *UserHandler) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List はユーザー一覧を返します。offset と limit で範囲を指定できます。
func (h *UserHandler) List(c *gin.Context) {
	var q dto.ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid query"})
		return
	}
	page, err := h.uc.ListUsers(c.Request.Context(), usecase.Page{Offset: q.Offset, Limit: q.Limit})
	if err != nil {
		writeError(c, "list users", err)
		return
	}
	items := make([]dto.UserResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, dto.FromEntity(&page.Items[i]))
	}
	c.JSON(http.StatusOK, dto.UserListResponse{
		Items:  items,
		Total:  page.Total,
		Offset: page.Offset,
		Limit:  page.Limit,
	})
}

// Get はIDで指定したユーザーを返します。
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	user, err := h.uc.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(user))
}

// Create はユーザーを作成し、201と作成したユーザーを返します。
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("create user validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
		return
	}
	user, err := h.uc.CreateUser(c.Request.Context(), usecase.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, "create user", err)
		return
	}
	slog.Info("user created", "user_id", user.ID)
	c.Header("Location", "/api/users/"+strconv.FormatUint(uint64(user.ID), 10))
	c.JSON(http.StatusCreated, dto.FromEntity(user))
}

// Update は指定されたフィールドだけを更新します。
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update user validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
		return
	}
	user, err := h.uc.UpdateUser(c.Request.Context(), id, usecase.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, "update user", err)
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(user))
}

// Delete はユーザーを削除し、204を返します。
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.uc.DeleteUser(c.Request.Context(), id); err != nil {
		writeError(c, "delete user", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseID はパスパラメータ :id を解析します。不正な場合は400を書き込み false を返します。
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// writeError はユースケースのエラーをHTTPステータスに変換します。
// 想定外のエラーは内容を公開せず500を返します。
func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: usecase.ErrUserNotFound.Error()})
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: usecase.ErrEmailAlreadyExists.Error()})
	case errors.Is(err, usecase.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		slog.Error(op+" failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}
