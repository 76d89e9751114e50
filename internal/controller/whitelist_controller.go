package controller

import (
	"errors"
	"strconv"

	"exam_prep_backend/internal/service"
	"exam_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// WhitelistController 注册白名单管理，仅管理员可用
type WhitelistController struct {
	WhitelistService *service.WhitelistService
}

func NewWhitelistController(whitelistService *service.WhitelistService) *WhitelistController {
	return &WhitelistController{WhitelistService: whitelistService}
}

type WhitelistAddRequest struct {
	Email string `json:"email" binding:"required,email"`
	Note  string `json:"note"`
}

// Add godoc
// @Summary 添加白名单邮箱
// @Tags 白名单
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body WhitelistAddRequest true "白名单邮箱"
// @Success 201 {object} util.Response{data=model.WhitelistEmail}
// @Router /api/admin/whitelist [post]
func (c *WhitelistController) Add(ctx *gin.Context) {
	var req WhitelistAddRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	entry, err := c.WhitelistService.Add(claims.UserID, req.Email, req.Note)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Conflict(ctx, "该邮箱已在白名单中")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, entry)
}

// Remove godoc
// @Summary 移除白名单邮箱
// @Tags 白名单
// @Security BearerAuth
// @Param   email path string true "邮箱"
// @Success 200 {object} util.Response
// @Router /api/admin/whitelist/{email} [delete]
func (c *WhitelistController) Remove(ctx *gin.Context) {
	email := ctx.Param("email")
	if email == "" {
		util.BadRequest(ctx, "email is required")
		return
	}
	if err := c.WhitelistService.Remove(email); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// List godoc
// @Summary 白名单列表
// @Tags 白名单
// @Security BearerAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.PageResponse
// @Router /api/admin/whitelist [get]
func (c *WhitelistController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	entries, total, err := c.WhitelistService.List(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  entries,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
