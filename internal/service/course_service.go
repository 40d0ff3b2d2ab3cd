package service

import (
	"context"
	"course_risk_backend/internal/config"
	"course_risk_backend/internal/model"
	"course_risk_backend/internal/repository"
	"course_risk_backend/internal/util"
	"course_risk_backend/pkg/logger"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"course_risk_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ProbabilityEstimator is the slice of MLService the evaluation path needs.
type ProbabilityEstimator interface {
	PredictCourseRisk(ctx context.Context, features model.RiskFeatures) (float64, error)
}

// CourseService owns the course lifecycle and every risk evaluation entry
// point. Evaluations are ephemeral by default; only the explicit predict
// and save-what-if operations persist anything.
type CourseService struct {
	CourseRepo     *repository.CourseRepository
	SubmissionRepo *repository.SubmissionRepository
	RiskRepo       *repository.RiskRepository
	UserRepo       *repository.UserRepository
	Engine         *RiskEngineService
	Estimator      ProbabilityEstimator
	Suggestions    *SuggestionService
	Storage        *StorageService
	Config         *config.Config
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	submissionRepo *repository.SubmissionRepository,
	riskRepo *repository.RiskRepository,
	userRepo *repository.UserRepository,
	engine *RiskEngineService,
	estimator ProbabilityEstimator,
	suggestions *SuggestionService,
	storage *StorageService,
	cfg *config.Config,
) *CourseService {
	return &CourseService{
		CourseRepo:     courseRepo,
		SubmissionRepo: submissionRepo,
		RiskRepo:       riskRepo,
		UserRepo:       userRepo,
		Engine:         engine,
		Estimator:      estimator,
		Suggestions:    suggestions,
		Storage:        storage,
		Config:         cfg,
	}
}

type CreateCourseInput struct {
	Title string `json:"title" binding:"required,min=1,max=200"`
}

type SyllabusInput struct {
	Weights map[string]float64 `json:"weights" binding:"required"`
}

type ExamSubmissionInput struct {
	Type  model.ExamType `json:"type" binding:"required,oneof=midterm final"`
	Score float64        `json:"score" binding:"min=0,max=100"`
}

type WeekSubmissionInput struct {
	WeekNumber       int      `json:"weekNumber" binding:"required,min=1"`
	QuizScore        *float64 `json:"quizScore" binding:"omitempty,min=0,max=100"`
	AssignmentScore  *float64 `json:"assignmentScore" binding:"omitempty,min=0,max=100"`
	AbsenceCountWeek float64  `json:"absenceCountWeek" binding:"min=0"`
}

type WhatIfInput struct {
	Override model.Override `json:"override"`
	Save     bool           `json:"save"`
}

func (s *CourseService) CreateCourse(studentID uint, input CreateCourseInput) (*model.Course, error) {
	course := &model.Course{StudentID: studentID, Title: input.Title}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	if err := s.CourseRepo.SeedWeeks(course.ID, s.Engine.CourseWeeks()); err != nil {
		return nil, err
	}
	return course, nil
}

// ListCourses returns the student's courses as dashboard cards. A course
// whose weights are not configured yet shows up with a zeroed evaluation
// instead of failing the whole listing.
func (s *CourseService) ListCourses(ctx context.Context, studentID uint) ([]*model.CourseCard, error) {
	courses, err := s.CourseRepo.FindByStudent(studentID)
	if err != nil {
		return nil, err
	}

	cards := make([]*model.CourseCard, len(courses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, course := range courses {
		i, course := i, course
		g.Go(func() error {
			card := &model.CourseCard{
				ID:            course.ID,
				StudentID:     course.StudentID,
				Title:         course.Title,
				CreatedAt:     course.CreatedAt,
				Bucket:        model.BucketGreen,
				AbsenceStatus: model.AbsenceOK,
			}
			computation, result, err := s.evaluate(gctx, course, model.Override{})
			if err != nil {
				if errors.Is(err, util.ErrWeightsNotConfigured) {
					cards[i] = card
					return nil
				}
				return err
			}
			card.WeightedPercent = computation.WeightedPercent
			card.ProbabilityFail = result.ProbabilityFail
			card.Bucket = result.Bucket
			card.TotalAbsences = computation.TotalAbsences
			card.AbsenceStatus = model.AbsenceStatusFor(computation.TotalAbsences)
			cards[i] = card
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cards, nil
}

func (s *CourseService) GetCourse(studentID uint, courseID string) (*model.Course, error) {
	return s.loadOwnedCourse(courseID, studentID)
}

func (s *CourseService) RenameCourse(studentID uint, courseID string, title string) (*model.Course, error) {
	course, err := s.loadOwnedCourse(courseID, studentID)
	if err != nil {
		return nil, err
	}
	course.Title = title
	if err := s.CourseRepo.Save(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(studentID uint, courseID string) error {
	if _, err := s.loadOwnedCourse(courseID, studentID); err != nil {
		return err
	}
	return s.CourseRepo.Delete(courseID)
}

// SetManualSyllabus replaces the course's component weights wholesale. The
// raw map is validated before anything is written.
func (s *CourseService) SetManualSyllabus(ctx context.Context, studentID uint, courseID string, input SyllabusInput) (model.ComponentWeights, error) {
	if _, err := s.loadOwnedCourse(courseID, studentID); err != nil {
		return nil, err
	}
	weights, err := model.NormalizeWeights(input.Weights)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidWeights, err)
	}
	if err := s.CourseRepo.ReplaceWeights(courseID, weights); err != nil {
		return nil, err
	}
	s.Suggestions.Invalidate(ctx, courseID, studentID)
	return weights, nil
}

func (s *CourseService) GetWeights(studentID uint, courseID string) (model.ComponentWeights, error) {
	if _, err := s.loadOwnedCourse(courseID, studentID); err != nil {
		return nil, err
	}
	weights, err := s.CourseRepo.GetWeights(courseID)
	if err != nil {
		return nil, err
	}
	if weights == nil {
		return nil, util.ErrWeightsNotConfigured
	}
	return weights, nil
}

// UploadSyllabus archives the raw syllabus document. The file is kept for
// audit only; weights are always configured through the manual endpoint.
func (s *CourseService) UploadSyllabus(ctx context.Context, studentID uint, courseID string, fileName string, reader io.Reader, size int64, contentType string) (*model.SyllabusFile, error) {
	if _, err := s.loadOwnedCourse(courseID, studentID); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	allowed := false
	for _, e := range util.AllowedSyllabusExtensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("unsupported syllabus file type %q", ext)
	}

	objectName := fmt.Sprintf("syllabus/%s/%s%s", courseID, uuid.New().String(), ext)
	url, err := s.Storage.Upload(ctx, objectName, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	file := &model.SyllabusFile{
		CourseID: courseID,
		FileName: fileName,
		URL:      url,
		Size:     size,
	}
	if err := s.RiskRepo.SaveSyllabusFile(file); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *CourseService) SubmitExam(ctx context.Context, studentID uint, courseID string, input ExamSubmissionInput) (*model.ExamSubmission, error) {
	if _, err := s.loadOwnedCourse(courseID, studentID); err != nil {
		return nil, err
	}
	submission := &model.ExamSubmission{
		CourseID:    courseID,
		StudentID:   studentID,
		Type:        input.Type,
		Score:       util.Clamp(input.Score, 0, 100),
		SubmittedAt: time.Now(),
	}
	if err := s.SubmissionRepo.UpsertExam(submission); err != nil {
		return nil, err
	}
	s.Suggestions.Invalidate(ctx, courseID, studentID)
	return submission, nil
}

func (s *CourseService) SubmitWeek(ctx context.Context, studentID uint, courseID string, input WeekSubmissionInput) (*model.WeekSubmission, error) {
	if _, err := s.loadOwnedCourse(courseID, studentID); err != nil {
		return nil, err
	}
	week, err := s.CourseRepo.FindWeek(courseID, input.WeekNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrWeekNotFound
		}
		return nil, err
	}

	submission := &model.WeekSubmission{
		CourseWeekID:     week.ID,
		StudentID:        studentID,
		QuizScore:        input.QuizScore,
		AssignmentScore:  input.AssignmentScore,
		AbsenceCountWeek: input.AbsenceCountWeek,
		SubmittedAt:      time.Now(),
	}
	if err := s.SubmissionRepo.UpsertWeek(submission); err != nil {
		return nil, err
	}
	s.Suggestions.Invalidate(ctx, courseID, studentID)
	return submission, nil
}

// ListWeeks merges the seeded week slots with the student's submissions so
// unsubmitted weeks still appear with empty values.
func (s *CourseService) ListWeeks(studentID uint, courseID string) ([]*model.WeekView, error) {
	if _, err := s.loadOwnedCourse(courseID, studentID); err != nil {
		return nil, err
	}
	weeks, err := s.CourseRepo.ListWeeks(courseID)
	if err != nil {
		return nil, err
	}
	submitted, err := s.SubmissionRepo.ListWeekSubmissions(courseID, studentID)
	if err != nil {
		return nil, err
	}

	byWeek := make(map[int]*model.WeekView, len(submitted))
	for _, view := range submitted {
		byWeek[view.WeekNumber] = view
	}

	views := make([]*model.WeekView, 0, len(weeks))
	for _, week := range weeks {
		if view, ok := byWeek[week.WeekNumber]; ok {
			views = append(views, view)
			continue
		}
		views = append(views, &model.WeekView{WeekNumber: week.WeekNumber})
	}
	return views, nil
}

func (s *CourseService) ListExams(studentID uint, courseID string) ([]*model.ExamSubmission, error) {
	if _, err := s.loadOwnedCourse(courseID, studentID); err != nil {
		return nil, err
	}
	return s.SubmissionRepo.ListExams(courseID, studentID)
}

// CourseRisk returns an ephemeral evaluation; nothing is persisted.
func (s *CourseService) CourseRisk(ctx context.Context, studentID uint, courseID string) (*model.RiskReport, error) {
	course, err := s.loadOwnedCourse(courseID, studentID)
	if err != nil {
		return nil, err
	}
	computation, result, err := s.evaluate(ctx, course, model.Override{})
	if err != nil {
		return nil, err
	}
	return s.report(course, computation, result), nil
}

// Predict runs an evaluation and persists it as a snapshot together with a
// fresh suggestion set.
func (s *CourseService) Predict(ctx context.Context, studentID uint, courseID string) (*model.RiskReport, error) {
	course, err := s.loadOwnedCourse(courseID, studentID)
	if err != nil {
		return nil, err
	}
	computation, result, err := s.evaluate(ctx, course, model.Override{})
	if err != nil {
		return nil, err
	}

	prediction := &model.RiskPrediction{
		CourseID:        course.ID,
		StudentID:       studentID,
		ProbabilityFail: result.ProbabilityFail,
		Bucket:          result.Bucket,
		IsAutoFail:      result.IsAutoFail,
		Reasons:         result.Reasons,
		Features:        result.Features,
	}
	if err := s.RiskRepo.SavePrediction(prediction); err != nil {
		return nil, err
	}

	items := s.Suggestions.GetOrGenerate(ctx, course.ID, studentID, result.Reasons, computation.WeightedPercent)
	if err := s.RiskRepo.SaveSuggestion(&model.Suggestion{
		CourseID:  course.ID,
		StudentID: studentID,
		Items:     items,
	}); err != nil {
		return nil, err
	}

	report := s.report(course, computation, result)
	report.Suggestions = items
	return report, nil
}

func (s *CourseService) GetSuggestions(ctx context.Context, studentID uint, courseID string) ([]model.SuggestionItem, error) {
	course, err := s.loadOwnedCourse(courseID, studentID)
	if err != nil {
		return nil, err
	}
	computation, result, err := s.evaluate(ctx, course, model.Override{})
	if err != nil {
		return nil, err
	}
	return s.Suggestions.GetOrGenerate(ctx, course.ID, studentID, result.Reasons, computation.WeightedPercent), nil
}

// WhatIf evaluates a simulated scenario against the stored baseline. The
// two evaluations run concurrently and degrade to the heuristic
// independently; overrides never touch stored data.
func (s *CourseService) WhatIf(ctx context.Context, studentID uint, courseID string, input WhatIfInput) (*model.WhatIfResult, error) {
	course, err := s.loadOwnedCourse(courseID, studentID)
	if err != nil {
		return nil, err
	}
	if err := input.Override.Validate(s.Engine.CourseWeeks()); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidOverride, err)
	}

	result, err := whatIfOutcome(ctx, func(c context.Context, o model.Override) (model.Computation, model.RiskResult, error) {
		return s.evaluate(c, course, o)
	}, input.Override)
	if err != nil {
		return nil, err
	}
	result.CourseID = course.ID
	result.StudentID = studentID

	monitoring.WhatIfRuns.Inc()

	if input.Save {
		if err := s.RiskRepo.SaveWhatIf(&model.WhatIfSimulation{
			CourseID:            course.ID,
			StudentID:           studentID,
			BaselineProbability: result.BaselineProbability,
			NewProbability:      result.NewProbability,
			Delta:               result.Delta,
			Overrides:           input.Override,
		}); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// scenarioEval evaluates one scenario of a course under the given override.
type scenarioEval func(ctx context.Context, override model.Override) (model.Computation, model.RiskResult, error)

// whatIfOutcome runs the baseline and simulated evaluations concurrently
// and compares them. Each evaluation degrades to the heuristic on its own;
// an empty override yields a delta of exactly zero.
func whatIfOutcome(ctx context.Context, eval scenarioEval, override model.Override) (*model.WhatIfResult, error) {
	var (
		baselineResult  model.RiskResult
		simComputation  model.Computation
		simulatedResult model.RiskResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, result, err := eval(gctx, model.Override{})
		baselineResult = result
		return err
	})
	g.Go(func() error {
		computation, result, err := eval(gctx, override)
		simComputation = computation
		simulatedResult = result
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.WhatIfResult{
		BaselineProbability: baselineResult.ProbabilityFail,
		NewProbability:      simulatedResult.ProbabilityFail,
		Delta:               simulatedResult.ProbabilityFail - baselineResult.ProbabilityFail,
		Bucket:              simulatedResult.Bucket,
		IsAutoFail:          simulatedResult.IsAutoFail,
		Reasons:             simulatedResult.Reasons,
		ChangedFeatures:     override.Changes(),
		NewWeightedPercent:  simComputation.WeightedPercent,
	}, nil
}

// ListAtRiskStudents builds the admin dashboard table: every student's
// courses are evaluated in parallel, then filtered, sorted and paginated.
func (s *CourseService) ListAtRiskStudents(ctx context.Context, query model.AdminStudentsQuery) ([]*model.AdminStudentRow, int64, error) {
	students, err := s.UserRepo.FindStudents()
	if err != nil {
		return nil, 0, err
	}

	rowsPerStudent := make([][]*model.AdminStudentRow, len(students))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, student := range students {
		i, student := i, student
		g.Go(func() error {
			courses, err := s.CourseRepo.FindByStudent(student.ID)
			if err != nil {
				return err
			}
			var rows []*model.AdminStudentRow
			for _, course := range courses {
				if query.CourseID != "" && course.ID != query.CourseID {
					continue
				}
				computation, result, err := s.evaluate(gctx, course, model.Override{})
				if err != nil {
					if errors.Is(err, util.ErrWeightsNotConfigured) {
						continue
					}
					return err
				}
				rows = append(rows, &model.AdminStudentRow{
					StudentID:       student.ID,
					StudentName:     student.FullName,
					StudentEmail:    student.Email,
					CourseID:        course.ID,
					CourseTitle:     course.Title,
					WeightedPercent: computation.WeightedPercent,
					ProbabilityFail: result.ProbabilityFail,
					Bucket:          result.Bucket,
					TotalAbsences:   computation.TotalAbsences,
					CanStillPass:    computation.MaxAchievablePercent >= passThreshold && !result.IsAutoFail,
				})
			}
			rowsPerStudent[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var rows []*model.AdminStudentRow
	for _, chunk := range rowsPerStudent {
		rows = append(rows, chunk...)
	}

	filtered := rows[:0]
	for _, row := range rows {
		if query.Bucket != "" && row.Bucket != query.Bucket {
			continue
		}
		if query.HighRiskOnly && row.Bucket != model.BucketRed {
			continue
		}
		filtered = append(filtered, row)
	}

	switch query.Sort {
	case "weightedPercent":
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].WeightedPercent < filtered[j].WeightedPercent
		})
	case "absences":
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].TotalAbsences > filtered[j].TotalAbsences
		})
	default:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].ProbabilityFail > filtered[j].ProbabilityFail
		})
	}

	total := int64(len(filtered))
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(filtered) {
		return []*model.AdminStudentRow{}, total, nil
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

// GetStudentDetail returns a student profile with a full risk report per
// course, for the admin drill-down view.
func (s *CourseService) GetStudentDetail(ctx context.Context, studentID uint) (*model.AdminStudentDetail, error) {
	student, err := s.UserRepo.FindByID(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStudentNotFound
		}
		return nil, err
	}

	courses, err := s.CourseRepo.FindByStudent(student.ID)
	if err != nil {
		return nil, err
	}

	detail := &model.AdminStudentDetail{
		ID:       student.ID,
		FullName: student.FullName,
		Email:    student.Email,
		Role:     student.Role,
		Courses:  []*model.RiskReport{},
	}
	for _, course := range courses {
		computation, result, err := s.evaluate(ctx, course, model.Override{})
		if err != nil {
			if errors.Is(err, util.ErrWeightsNotConfigured) {
				continue
			}
			return nil, err
		}
		detail.Courses = append(detail.Courses, s.report(course, computation, result))
	}
	return detail, nil
}

// AdminCourseRisk evaluates one course on behalf of an admin; the course
// must belong to the named student.
func (s *CourseService) AdminCourseRisk(ctx context.Context, studentID uint, courseID string) (*model.RiskReport, error) {
	course, err := s.loadOwnedCourse(courseID, studentID)
	if err != nil {
		return nil, err
	}
	computation, result, err := s.evaluate(ctx, course, model.Override{})
	if err != nil {
		return nil, err
	}
	return s.report(course, computation, result), nil
}

// ListStudentCourses returns a student's courses as cards, for the admin
// drill-down.
func (s *CourseService) ListStudentCourses(ctx context.Context, studentID uint) ([]*model.CourseCard, error) {
	if _, err := s.UserRepo.FindByID(studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStudentNotFound
		}
		return nil, err
	}
	return s.ListCourses(ctx, studentID)
}

func (s *CourseService) loadOwnedCourse(courseID string, studentID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if course.StudentID != studentID {
		return nil, util.ErrCourseForbidden
	}
	return course, nil
}

func (s *CourseService) buildComputation(course *model.Course, override model.Override) (model.Computation, error) {
	weights, err := s.CourseRepo.GetWeights(course.ID)
	if err != nil {
		return model.Computation{}, err
	}
	if weights == nil {
		return model.Computation{}, util.ErrWeightsNotConfigured
	}

	totalWeeks := s.Engine.CourseWeeks()
	if count, err := s.CourseRepo.CountWeeks(course.ID); err == nil && count > 0 {
		totalWeeks = int(count)
	}

	weekRecords, err := s.SubmissionRepo.WeekRecords(course.ID, course.StudentID)
	if err != nil {
		return model.Computation{}, err
	}
	examRecords, err := s.SubmissionRepo.ExamRecords(course.ID, course.StudentID)
	if err != nil {
		return model.Computation{}, err
	}

	return s.Engine.BuildComputation(weights, totalWeeks, weekRecords, examRecords, override)
}

// evaluate is the single evaluation path: build the feature vector, try
// the external estimator, blend when it answers and fall back to the
// heuristic when it does not. Estimator failure is never an error here.
func (s *CourseService) evaluate(ctx context.Context, course *model.Course, override model.Override) (model.Computation, model.RiskResult, error) {
	computation, err := s.buildComputation(course, override)
	if err != nil {
		return model.Computation{}, model.RiskResult{}, err
	}

	result := s.Engine.Calculate(computation, nil)
	if !result.IsAutoFail && s.Estimator != nil {
		ml, err := s.Estimator.PredictCourseRisk(ctx, result.Features)
		if err != nil {
			monitoring.MLFallbacks.Inc()
			logger.Log.Warn("ml estimator unavailable, using heuristic",
				zap.String("courseId", course.ID),
				zap.Error(err))
		} else {
			result = s.Engine.Calculate(computation, &ml)
		}
	}

	monitoring.RiskEvaluations.WithLabelValues(string(result.Bucket)).Inc()
	return computation, result, nil
}

func (s *CourseService) report(course *model.Course, computation model.Computation, result model.RiskResult) *model.RiskReport {
	return &model.RiskReport{
		CourseID:             course.ID,
		StudentID:            course.StudentID,
		Title:                course.Title,
		WeightedPercent:      computation.WeightedPercent,
		RemainingWeight:      computation.RemainingWeight,
		MaxAchievablePercent: computation.MaxAchievablePercent,
		CanStillPass:         computation.MaxAchievablePercent >= passThreshold && !result.IsAutoFail,
		TotalAbsences:        computation.TotalAbsences,
		AbsenceStatus:        model.AbsenceStatusFor(computation.TotalAbsences),
		ProbabilityFail:      result.ProbabilityFail,
		Bucket:               result.Bucket,
		IsAutoFail:           result.IsAutoFail,
		Reasons:              result.Reasons,
		CreatedAt:            time.Now(),
	}
}
