package controller

import (
	"errors"
	"strconv"

	"exam_prep_backend/internal/service"
	"exam_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ContentController 试卷/章节/题目的管理端接口
type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

// CreatePaper godoc
// @Summary 创建试卷
// @Tags 内容管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.PaperRequest true "试卷信息"
// @Success 201 {object} util.Response{data=model.Paper}
// @Router /api/admin/papers [post]
func (c *ContentController) CreatePaper(ctx *gin.Context) {
	var req service.PaperRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	paper, err := c.ContentService.CreatePaper(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, paper)
}

// UpdatePaper godoc
// @Summary 更新试卷
// @Tags 内容管理
// @Security BearerAuth
// @Param   id path int true "试卷 ID"
// @Param   body body service.PaperRequest true "试卷信息"
// @Success 200 {object} util.Response{data=model.Paper}
// @Router /api/admin/papers/{id} [put]
func (c *ContentController) UpdatePaper(ctx *gin.Context) {
	var req service.PaperRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	paper, err := c.ContentService.UpdatePaper(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		if errors.Is(err, util.ErrPaperNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, paper)
}

// ListPapers godoc
// @Summary 试卷列表
// @Tags 内容管理
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Paper}
// @Router /api/papers [get]
func (c *ContentController) ListPapers(ctx *gin.Context) {
	papers, err := c.ContentService.ListPapers()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, papers)
}

// CreateSection godoc
// @Summary 创建章节
// @Tags 内容管理
// @Security BearerAuth
// @Param   paperId path int true "试卷 ID"
// @Param   body body service.SectionRequest true "章节信息"
// @Success 201 {object} util.Response{data=model.Section}
// @Router /api/admin/papers/{paperId}/sections [post]
func (c *ContentController) CreateSection(ctx *gin.Context) {
	var req service.SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	section, err := c.ContentService.CreateSection(util.MustParseUint(ctx.Param("paperId")), req)
	if err != nil {
		if errors.Is(err, util.ErrPaperNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, section)
}

// ListSections godoc
// @Summary 章节列表
// @Tags 内容管理
// @Security BearerAuth
// @Param   paperId path int true "试卷 ID"
// @Success 200 {object} util.Response{data=[]model.Section}
// @Router /api/papers/{paperId}/sections [get]
func (c *ContentController) ListSections(ctx *gin.Context) {
	sections, err := c.ContentService.ListSections(util.MustParseUint(ctx.Param("paperId")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sections)
}

// CreateSubsection godoc
// @Summary 创建小节
// @Tags 内容管理
// @Security BearerAuth
// @Param   sectionId path int true "章节 ID"
// @Param   body body service.SectionRequest true "小节信息"
// @Success 201 {object} util.Response{data=model.Subsection}
// @Router /api/admin/sections/{sectionId}/subsections [post]
func (c *ContentController) CreateSubsection(ctx *gin.Context) {
	var req service.SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	subsection, err := c.ContentService.CreateSubsection(util.MustParseUint(ctx.Param("sectionId")), req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, subsection)
}

// ListSubsections godoc
// @Summary 小节列表
// @Tags 内容管理
// @Security BearerAuth
// @Param   sectionId path int true "章节 ID"
// @Success 200 {object} util.Response{data=[]model.Subsection}
// @Router /api/sections/{sectionId}/subsections [get]
func (c *ContentController) ListSubsections(ctx *gin.Context) {
	subsections, err := c.ContentService.ListSubsections(util.MustParseUint(ctx.Param("sectionId")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subsections)
}

// CreateQuestion godoc
// @Summary 创建题目
// @Tags 内容管理
// @Security BearerAuth
// @Param   body body service.QuestionRequest true "题目信息"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /api/admin/questions [post]
func (c *ContentController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	question, err := c.ContentService.CreateQuestion(req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, question)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Tags 内容管理
// @Security BearerAuth
// @Param   id path int true "题目 ID"
// @Param   body body service.QuestionRequest true "题目信息"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/admin/questions/{id} [put]
func (c *ContentController) UpdateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	question, err := c.ContentService.UpdateQuestion(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, question)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 内容管理
// @Security BearerAuth
// @Param   id path int true "题目 ID"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [delete]
func (c *ContentController) DeleteQuestion(ctx *gin.Context) {
	if err := c.ContentService.DeleteQuestion(util.MustParseUint(ctx.Param("id"))); err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// ListQuestions godoc
// @Summary 题目列表（按试卷分页）
// @Tags 内容管理
// @Security BearerAuth
// @Param   paperId query int true "试卷 ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页数量"
// @Success 200 {object} util.PageResponse
// @Router /api/admin/questions [get]
func (c *ContentController) ListQuestions(ctx *gin.Context) {
	paperID := util.MustParseUint(ctx.Query("paperId"))
	if paperID == 0 {
		util.BadRequest(ctx, "paperId is required")
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	questions, total, err := c.ContentService.ListQuestions(paperID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  questions,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// UploadQuestionImage godoc
// @Summary 上传题目配图
// @Tags 内容管理
// @Accept  multipart/form-data
// @Security BearerAuth
// @Param   id path int true "题目 ID"
// @Param   file formData file true "图片文件"
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/questions/{id}/image [post]
func (c *ContentController) UploadQuestionImage(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	url, err := c.ContentService.UploadQuestionImage(
		ctx.Request.Context(),
		util.MustParseUint(ctx.Param("id")),
		fileHeader.Filename,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, gin.H{"imageUrl": url})
}
