package controller

import (
	"course_risk_backend/internal/model"
	"course_risk_backend/internal/service"
	"course_risk_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	CourseService *service.CourseService
	MLService     *service.MLService
}

func NewAdminController(courseService *service.CourseService, mlService *service.MLService) *AdminController {
	return &AdminController{CourseService: courseService, MLService: mlService}
}

// ListStudents godoc
// @Summary List students with their course risk
// @Description Evaluates every student's courses, filtered, sorted and paginated
// @Tags admin
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId query string false "Filter by course"
// @Param   bucket query string false "Filter by bucket (green|yellow|red)"
// @Param   highRiskOnly query bool false "Only red-bucket rows"
// @Param   sort query string false "Sort key (probability|weightedPercent|absences)"
// @Param   page query int false "Page number"
// @Param   limit query int false "Page size"
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/admin/students [get]
func (c *AdminController) ListStudents(ctx *gin.Context) {
	page, limit := util.ParsePagination(ctx.DefaultQuery("page", "1"), ctx.DefaultQuery("limit", "20"))
	query := model.AdminStudentsQuery{
		CourseID:     ctx.Query("courseId"),
		Bucket:       model.RiskBucket(ctx.Query("bucket")),
		HighRiskOnly: ctx.Query("highRiskOnly") == "true",
		Sort:         ctx.Query("sort"),
		Page:         page,
		Limit:        limit,
	}

	rows, total, err := c.CourseService.ListAtRiskStudents(ctx.Request.Context(), query)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:       rows,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: util.TotalPages(total, limit),
	})
}

// GetStudent godoc
// @Summary Get a student's risk detail
// @Description Returns the student profile with a full risk report per course
// @Tags admin
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Student ID"
// @Success 200 {object} util.Response{data=model.AdminStudentDetail} "Success"
// @Failure 404 {object} util.Response "Student not found"
// @Router /api/admin/students/{id} [get]
func (c *AdminController) GetStudent(ctx *gin.Context) {
	studentID := util.MustParseUint(ctx.Param("id"))
	if studentID == 0 {
		util.BadRequest(ctx, "invalid student id")
		return
	}

	detail, err := c.CourseService.GetStudentDetail(ctx.Request.Context(), studentID)
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// GetStudentCourses godoc
// @Summary List a student's courses
// @Tags admin
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Student ID"
// @Success 200 {object} util.Response{data=[]model.CourseCard} "Success"
// @Failure 404 {object} util.Response "Student not found"
// @Router /api/admin/students/{id}/courses [get]
func (c *AdminController) GetStudentCourses(ctx *gin.Context) {
	studentID := util.MustParseUint(ctx.Param("id"))
	if studentID == 0 {
		util.BadRequest(ctx, "invalid student id")
		return
	}

	cards, err := c.CourseService.ListStudentCourses(ctx.Request.Context(), studentID)
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, cards)
}

// GetStudentCourseRisk godoc
// @Summary Evaluate one course of a student
// @Tags admin
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Student ID"
// @Param   courseId path string true "Course ID"
// @Success 200 {object} util.Response{data=model.RiskReport} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/admin/students/{id}/courses/{courseId}/risk [get]
func (c *AdminController) GetStudentCourseRisk(ctx *gin.Context) {
	studentID := util.MustParseUint(ctx.Param("id"))
	if studentID == 0 {
		util.BadRequest(ctx, "invalid student id")
		return
	}

	report, err := c.CourseService.AdminCourseRisk(ctx.Request.Context(), studentID, ctx.Param("courseId"))
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// MLHealth godoc
// @Summary Check the ML estimator health
// @Tags admin
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "Success"
// @Router /api/admin/ml/health [get]
func (c *AdminController) MLHealth(ctx *gin.Context) {
	util.Success(ctx, c.MLService.Health(ctx.Request.Context()))
}

// MLFeatureImportance godoc
// @Summary Get the ML model feature importance
// @Tags admin
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 502 {object} util.Response "Estimator unavailable"
// @Router /api/admin/ml/feature-importance [get]
func (c *AdminController) MLFeatureImportance(ctx *gin.Context) {
	payload, err := c.MLService.FeatureImportance(ctx.Request.Context())
	if err != nil {
		util.Error(ctx, 502, "ML estimator is unavailable")
		return
	}
	util.Success(ctx, payload)
}
