package controller

import (
	"errors"
	"strconv"

	"exam_prep_backend/internal/service"
	"exam_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// TestController 考试会话接口：开考、作答、自适应逐题、交卷
type TestController struct {
	TestService        *service.TestService
	CalibrationService *service.CalibrationService
}

func NewTestController(testService *service.TestService, calibrationService *service.CalibrationService) *TestController {
	return &TestController{
		TestService:        testService,
		CalibrationService: calibrationService,
	}
}

// StartTest godoc
// @Summary 开始一次测试
// @Description Mock 按策略选题一次性下发；adaptive 只下发首题，后续走 next 接口
// @Tags 测试
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.StartTestRequest true "测试配置"
// @Success 201 {object} util.Response{data=service.StartTestResponse}
// @Failure 404 {object} util.Response "范围内无有效题目"
// @Router /api/tests [post]
func (c *TestController) StartTest(ctx *gin.Context) {
	var req service.StartTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	resp, err := c.TestService.StartTest(claims.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrNoActiveQuestions) {
			util.Error(ctx, 404, "所选范围内没有有效题目")
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, resp)
}

// SubmitAnswer godoc
// @Summary 提交作答（非自适应）
// @Description 重复提交幂等覆盖；自适应测试请使用 next 接口
// @Tags 测试
// @Security BearerAuth
// @Param   id path string true "会话 ID"
// @Param   body body service.SubmitAnswerRequest true "作答"
// @Success 200 {object} util.Response{data=model.TestAnswer}
// @Router /api/tests/{id}/answers [post]
func (c *TestController) SubmitAnswer(ctx *gin.Context) {
	var req service.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	answer, err := c.TestService.SubmitAnswer(claims.UserID, ctx.Param("id"), req)
	if err != nil {
		c.writeAttemptError(ctx, err)
		return
	}
	util.Success(ctx, answer)
}

type NextQuestionRequest struct {
	LastAnswer *service.LastAnswer `json:"lastAnswer"`
}

// NextQuestion godoc
// @Summary 自适应测试取下一题
// @Description 携带上一题作答则先落库并更新校准，再按策略下发下一题
// @Tags 测试
// @Security BearerAuth
// @Param   id path string true "会话 ID"
// @Param   body body NextQuestionRequest false "上一题作答（首题可省略）"
// @Success 200 {object} util.Response{data=service.NextQuestionResponse}
// @Router /api/tests/{id}/next [post]
func (c *TestController) NextQuestion(ctx *gin.Context) {
	var req NextQuestionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	claims := util.GetUserFromContext(ctx)
	resp, err := c.TestService.NextQuestion(claims.UserID, ctx.Param("id"), req.LastAnswer)
	if err != nil {
		c.writeAttemptError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// FinishAttempt godoc
// @Summary 交卷
// @Description 幂等；非自适应测试在此批量更新校准记录
// @Tags 测试
// @Security BearerAuth
// @Param   id path string true "会话 ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/tests/{id}/finish [post]
func (c *TestController) FinishAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	score, err := c.TestService.FinishAttempt(claims.UserID, ctx.Param("id"))
	if err != nil {
		c.writeAttemptError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"score": score})
}

// GetAttempt godoc
// @Summary 会话详情
// @Tags 测试
// @Security BearerAuth
// @Param   id path string true "会话 ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/tests/{id} [get]
func (c *TestController) GetAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	attempt, answers, err := c.TestService.GetAttempt(claims.UserID, ctx.Param("id"))
	if err != nil {
		c.writeAttemptError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"attempt": attempt, "answers": answers})
}

// ListAttempts godoc
// @Summary 历史测试列表
// @Tags 测试
// @Security BearerAuth
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.PageResponse
// @Router /api/tests [get]
func (c *TestController) ListAttempts(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	claims := util.GetUserFromContext(ctx)
	attempts, total, err := c.TestService.ListAttempts(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  attempts,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// ResetCalibration godoc
// @Summary 重置本人校准记录
// @Description 保留作答计数，仅重新进入校准期
// @Tags 测试
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/calibration/reset [post]
func (c *TestController) ResetCalibration(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.CalibrationService.ResetCalibration(claims.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func (c *TestController) writeAttemptError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAttemptNotFound), errors.Is(err, util.ErrQuestionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrAttemptNotInProgress), errors.Is(err, util.ErrNotAdaptiveAttempt),
		errors.Is(err, util.ErrQuestionNotServed), errors.Is(err, util.ErrAdaptiveAnswerFlow):
		util.Conflict(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
