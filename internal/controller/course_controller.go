package controller

import (
	"course_risk_backend/internal/service"
	"course_risk_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// respondCourseError maps service sentinels to HTTP statuses; anything
// unmapped is a 500.
func respondCourseError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound), errors.Is(err, util.ErrWeekNotFound), errors.Is(err, util.ErrStudentNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrCourseForbidden):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrWeightsNotConfigured),
		errors.Is(err, util.ErrInvalidWeights),
		errors.Is(err, util.ErrInvalidOverride):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// CreateCourse godoc
// @Summary Create a course
// @Description Creates a course owned by the current student and seeds its week slots
// @Tags courses
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateCourseInput true "Course payload"
// @Success 201 {object} util.Response{data=model.Course} "Created"
// @Failure 400 {object} util.Response "Invalid payload"
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var input service.CreateCourseInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.CreateCourse(claims.UserID, input)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// ListCourses godoc
// @Summary List the current student's courses
// @Description Returns dashboard cards with the latest ephemeral risk evaluation
// @Tags courses
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.CourseCard} "Success"
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	cards, err := c.CourseService.ListCourses(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, cards)
}

// GetCourse godoc
// @Summary Get a course
// @Tags courses
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Success 200 {object} util.Response{data=model.Course} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.GetCourse(claims.UserID, ctx.Param("id"))
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// RenameCourse godoc
// @Summary Rename a course
// @Tags courses
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Param   body body service.CreateCourseInput true "New title"
// @Success 200 {object} util.Response{data=model.Course} "Success"
// @Router /api/courses/{id} [put]
func (c *CourseController) RenameCourse(ctx *gin.Context) {
	var input service.CreateCourseInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.RenameCourse(claims.UserID, ctx.Param("id"), input.Title)
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary Delete a course
// @Tags courses
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Success 200 {object} util.Response "Success"
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.CourseService.DeleteCourse(claims.UserID, ctx.Param("id")); err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SetManualSyllabus godoc
// @Summary Configure course weights
// @Description Replaces the full component weight set; weights must sum to 100
// @Tags courses
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Param   body body service.SyllabusInput true "Component weights"
// @Success 200 {object} util.Response{data=model.ComponentWeights} "Success"
// @Failure 400 {object} util.Response "Invalid weights"
// @Router /api/courses/{id}/syllabus/manual [post]
func (c *CourseController) SetManualSyllabus(ctx *gin.Context) {
	var input service.SyllabusInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	weights, err := c.CourseService.SetManualSyllabus(ctx.Request.Context(), claims.UserID, ctx.Param("id"), input)
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, weights)
}

// GetWeights godoc
// @Summary Get course weights
// @Tags courses
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Success 200 {object} util.Response{data=model.ComponentWeights} "Success"
// @Failure 400 {object} util.Response "Weights not configured"
// @Router /api/courses/{id}/weights [get]
func (c *CourseController) GetWeights(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	weights, err := c.CourseService.GetWeights(claims.UserID, ctx.Param("id"))
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, weights)
}

// UploadSyllabus godoc
// @Summary Upload a syllabus document
// @Description Archives the raw file; weights are configured via the manual endpoint
// @Tags courses
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Param   file formData file true "Syllabus file (.pdf, .docx, .txt)"
// @Success 201 {object} util.Response{data=model.SyllabusFile} "Created"
// @Failure 400 {object} util.Response "Invalid file"
// @Router /api/courses/{id}/syllabus/upload [post]
func (c *CourseController) UploadSyllabus(ctx *gin.Context) {
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

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = util.MimeOctetStream
	}

	claims := util.GetUserFromContext(ctx)
	saved, err := c.CourseService.UploadSyllabus(ctx.Request.Context(), claims.UserID, ctx.Param("id"),
		fileHeader.Filename, file, fileHeader.Size, contentType)
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Created(ctx, saved)
}

// SubmitExam godoc
// @Summary Submit an exam score
// @Description Upserts the midterm or final score; resubmitting overwrites
// @Tags submissions
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Param   body body service.ExamSubmissionInput true "Exam submission"
// @Success 200 {object} util.Response{data=model.ExamSubmission} "Success"
// @Router /api/courses/{id}/exams [post]
func (c *CourseController) SubmitExam(ctx *gin.Context) {
	var input service.ExamSubmissionInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	submission, err := c.CourseService.SubmitExam(ctx.Request.Context(), claims.UserID, ctx.Param("id"), input)
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, submission)
}

// ListExams godoc
// @Summary List exam submissions
// @Tags submissions
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Success 200 {object} util.Response{data=[]model.ExamSubmission} "Success"
// @Router /api/courses/{id}/exams [get]
func (c *CourseController) ListExams(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	exams, err := c.CourseService.ListExams(claims.UserID, ctx.Param("id"))
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, exams)
}

// SubmitWeek godoc
// @Summary Submit weekly activity
// @Description Upserts the quiz score, assignment score and absence count of one week
// @Tags submissions
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Param   body body service.WeekSubmissionInput true "Week submission"
// @Success 200 {object} util.Response{data=model.WeekSubmission} "Success"
// @Failure 404 {object} util.Response "Week not found"
// @Router /api/courses/{id}/weeks [post]
func (c *CourseController) SubmitWeek(ctx *gin.Context) {
	var input service.WeekSubmissionInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	submission, err := c.CourseService.SubmitWeek(ctx.Request.Context(), claims.UserID, ctx.Param("id"), input)
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, submission)
}

// ListWeeks godoc
// @Summary List course weeks
// @Description Returns every seeded week merged with the student's submissions
// @Tags submissions
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Course ID"
// @Success 200 {object} util.Response{data=[]model.WeekView} "Success"
// @Router /api/courses/{id}/weeks [get]
func (c *CourseController) ListWeeks(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	weeks, err := c.CourseService.ListWeeks(claims.UserID, ctx.Param("id"))
	if err != nil {
		respondCourseError(ctx, err)
		return
	}
	util.Success(ctx, weeks)
}
