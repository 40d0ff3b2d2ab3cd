package controller

import (
	"course_risk_backend/internal/service"
	"course_risk_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RiskController struct {
	CourseService *service.CourseService
}

func NewRiskController(courseService *service.CourseService) *RiskController {
	return &RiskController{CourseService: courseService}
}

// GetCourseRisk godoc
// @Summary Evaluate course risk
// @Description Runs an ephemeral evaluation; nothing is persisted
// @Tags risk
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Success 200 {object} util.Response{data=model.RiskReport} "Success"
// @Failure 400 {object} util.Response "Weights not configured"
// @Router /api/courses/{id}/risk [get]
func (c *RiskController) GetCourseRisk(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	report, err := c.CourseService.CourseRisk(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// Predict godoc
// @Summary Persist a risk prediction
// @Description Evaluates and stores a snapshot together with a suggestion set
// @Tags risk
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Success 200 {object} util.Response{data=model.RiskReport} "Success"
// @Router /api/courses/{id}/predict [post]
func (c *RiskController) Predict(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	report, err := c.CourseService.Predict(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// WhatIf godoc
// @Summary Run a what-if simulation
// @Description Compares a simulated scenario against the stored baseline; overrides are never persisted into it
// @Tags risk
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Param   body body service.WhatIfInput true "Override and save flag"
// @Success 200 {object} util.Response{data=model.WhatIfResult} "Success"
// @Failure 400 {object} util.Response "Invalid override"
// @Router /api/courses/{id}/whatif [post]
func (c *RiskController) WhatIf(ctx *gin.Context) {
	var input service.WhatIfInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.CourseService.WhatIf(ctx.Request.Context(), claims.UserID, ctx.Param("id"), input)
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetSuggestions godoc
// @Summary Get remediation suggestions
// @Description Returns cached suggestions for the course, generating them when stale
// @Tags risk
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Success 200 {object} util.Response{data=[]model.SuggestionItem} "Success"
// @Router /api/courses/{id}/suggestions [get]
func (c *RiskController) GetSuggestions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	items, err := c.CourseService.GetSuggestions(ctx.Request.Context(), claims.UserID, ctx.Param("id"))
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, items)
}
