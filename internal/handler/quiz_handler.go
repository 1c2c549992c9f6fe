package handler

import (
	"log"
	"net/http"
	"strconv"

	"kidquiz/internal/domain"
	"kidquiz/internal/middleware"
	"kidquiz/internal/models"
	"kidquiz/internal/repository"
	"kidquiz/internal/service"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	quizzes *service.QuizService
	gen     *service.QuizGenService
	kids    *service.KidService
}

func NewQuizHandler(quizzes *service.QuizService, gen *service.QuizGenService, kids *service.KidService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, gen: gen, kids: kids}
}

type QuestionRequest struct {
	Text               string   `json:"text" binding:"required,min=1"`
	Options            []string `json:"options" binding:"required"`
	CorrectOptionIndex int      `json:"correct_option_index"`
	Points             int      `json:"points"`
}

type QuizRequest struct {
	Title       string            `json:"title" binding:"required,min=1,max=255"`
	Description string            `json:"description"`
	Category    string            `json:"category" binding:"required,oneof=MATH SCIENCE READING HISTORY GEOGRAPHY ART MUSIC GENERAL"`
	Difficulty  string            `json:"difficulty" binding:"required,oneof=EASY MEDIUM HARD"`
	GradeLevel  int               `json:"grade_level" binding:"min=0,max=12"`
	Active      *bool             `json:"active"`
	Questions   []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

func (r *QuizRequest) questions() []models.Question {
	qs := make([]models.Question, 0, len(r.Questions))
	for i, qr := range r.Questions {
		q := models.Question{
			Position:           i,
			Text:               qr.Text,
			CorrectOptionIndex: qr.CorrectOptionIndex,
			Points:             qr.Points,
		}
		q.SetOptions(qr.Options)
		qs = append(qs, q)
	}
	return qs
}

// questionView is a question as kids see it, with the correct index and
// point weight stripped.
type questionView struct {
	ID       uint     `json:"id"`
	Position int      `json:"position"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
}

func quizView(q *models.Quiz, includeAnswers bool) gin.H {
	out := gin.H{
		"id":               q.ID,
		"title":            q.Title,
		"description":      q.Description,
		"category":         q.Category,
		"difficulty":       q.Difficulty,
		"grade_level":      q.GradeLevel,
		"active":           q.Active,
		"generated_by_llm": q.GeneratedByLLM,
		"created_at":       q.CreatedAt,
	}
	if includeAnswers {
		type fullQuestion struct {
			questionView
			CorrectOptionIndex int `json:"correct_option_index"`
			Points             int `json:"points"`
		}
		qs := make([]fullQuestion, 0, len(q.Questions))
		for _, question := range q.Questions {
			qs = append(qs, fullQuestion{
				questionView:       questionView{ID: question.ID, Position: question.Position, Text: question.Text, Options: question.Options()},
				CorrectOptionIndex: question.CorrectOptionIndex,
				Points:             question.Points,
			})
		}
		out["questions"] = qs
	} else {
		qs := make([]questionView, 0, len(q.Questions))
		for _, question := range q.Questions {
			qs = append(qs, questionView{ID: question.ID, Position: question.Position, Text: question.Text, Options: question.Options()})
		}
		out["questions"] = qs
	}
	return out
}

func (h *QuizHandler) Create(c *gin.Context) {
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quiz := &models.Quiz{
		Title:               req.Title,
		Description:         req.Description,
		Category:            req.Category,
		Difficulty:          req.Difficulty,
		GradeLevel:          req.GradeLevel,
		Active:              true,
		CreatedByGuardianID: middleware.GetAccountID(c),
		Questions:           req.questions(),
	}
	if req.Active != nil {
		quiz.Active = *req.Active
	}
	if err := h.quizzes.Create(quiz); err != nil {
		h.writeQuizError(c, err)
		return
	}
	c.JSON(http.StatusCreated, quizView(quiz, true))
}

func (h *QuizHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	quiz, err := h.quizzes.GetByID(id)
	if err != nil {
		h.writeQuizError(c, err)
		return
	}
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quiz.Title = req.Title
	quiz.Description = req.Description
	quiz.Category = req.Category
	quiz.Difficulty = req.Difficulty
	quiz.GradeLevel = req.GradeLevel
	if req.Active != nil {
		quiz.Active = *req.Active
	}
	questions := req.questions()
	if err := service.ValidateQuestions(questions); err != nil {
		h.writeQuizError(c, err)
		return
	}
	if err := h.quizzes.Update(quiz); err != nil {
		h.writeQuizError(c, err)
		return
	}
	if err := h.quizzes.ReplaceQuestions(quiz.ID, questions); err != nil {
		h.writeQuizError(c, err)
		return
	}
	quiz, err = h.quizzes.GetByID(id)
	if err != nil {
		h.writeQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, quizView(quiz, true))
}

func (h *QuizHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.quizzes.Delete(id); err != nil {
		h.writeQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "quiz deleted"})
}

// Get returns a quiz. Kid tokens get the play view with answers stripped;
// guardians get the full authoring view.
func (h *QuizHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	quiz, err := h.quizzes.GetByID(id)
	if err != nil {
		h.writeQuizError(c, err)
		return
	}
	includeAnswers := middleware.GetRole(c) == domain.RoleGuardian
	if !includeAnswers && !quiz.Active {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrQuizNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, quizView(quiz, includeAnswers))
}

func (h *QuizHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	grade, _ := strconv.Atoi(c.Query("grade_level"))
	f := repository.QuizFilter{
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
		GradeLevel: grade,
		ActiveOnly: middleware.GetRole(c) != domain.RoleGuardian || c.DefaultQuery("active", "true") != "false",
		Limit:      limit,
		Offset:     offset,
	}
	quizzes, err := h.quizzes.List(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list quizzes"})
		return
	}
	// listing stays light: no questions payload
	out := make([]gin.H, 0, len(quizzes))
	for i := range quizzes {
		q := quizzes[i]
		out = append(out, gin.H{
			"id":               q.ID,
			"title":            q.Title,
			"description":      q.Description,
			"category":         q.Category,
			"difficulty":       q.Difficulty,
			"grade_level":      q.GradeLevel,
			"active":           q.Active,
			"generated_by_llm": q.GeneratedByLLM,
			"created_at":       q.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": out})
}

type SubmitRequest struct {
	Answers []service.SubmittedAnswer `json:"answers" binding:"required,dive"`
}

// Submit grades an attempt for the kid in the path. The first completed
// attempt per quiz pays the coin reward.
func (h *QuizHandler) Submit(c *gin.Context) {
	quizID, ok := paramID(c, "id")
	if !ok {
		return
	}
	kidID, ok := paramID(c, "kidId")
	if !ok {
		return
	}
	if !kidAccess(c, h.kids, kidID, false) {
		return
	}
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.quizzes.Submit(kidID, quizID, req.Answers)
	if err != nil {
		h.writeQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *QuizHandler) ListAttempts(c *gin.Context) {
	kidID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !kidAccess(c, h.kids, kidID, false) {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	attempts, err := h.quizzes.ListAttempts(kidID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list attempts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}

type GenerateRequest struct {
	Topic         string `json:"topic" binding:"required,min=2,max=255"`
	Category      string `json:"category" binding:"required,oneof=MATH SCIENCE READING HISTORY GEOGRAPHY ART MUSIC GENERAL"`
	Difficulty    string `json:"difficulty" binding:"required,oneof=EASY MEDIUM HARD"`
	GradeLevel    int    `json:"grade_level" binding:"min=0,max=12"`
	QuestionCount int    `json:"question_count" binding:"min=0,max=20"`
}

// Generate drafts a quiz from the configured LLM. The draft is saved inactive
// so the guardian can review before kids see it.
func (h *QuizHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quiz, err := h.gen.Generate(c.Request.Context(), middleware.GetAccountID(c), req.Topic, req.Category, req.Difficulty, req.GradeLevel, req.QuestionCount)
	if err != nil {
		switch err {
		case service.ErrGenerationUnavailable:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			log.Printf("[quizzes] generation failed: guardian=%d topic=%q err=%v", middleware.GetAccountID(c), req.Topic, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "quiz generation failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, quizView(quiz, true))
}

func (h *QuizHandler) writeQuizError(c *gin.Context, err error) {
	switch err {
	case service.ErrQuizNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case service.ErrQuizInactive:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case service.ErrQuizNoQuestions, service.ErrBadQuestion:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "quiz error"})
	}
}
