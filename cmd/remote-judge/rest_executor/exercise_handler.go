package restexecutor

import (
	"net/http"
	"strconv"

	"github.com/codepractice/remote-judge/cmd/remote-judge/model"
	"github.com/codepractice/remote-judge/judger"
	"github.com/codepractice/remote-judge/problem"
	"github.com/codepractice/remote-judge/request"
	"github.com/gin-gonic/gin"
)

type exerciseHandle struct {
	exercises *problem.Set
	judger    *judger.Judger
	factory   *request.Factory
}

// NewExerciseHandle creates a new exercise handle
func NewExerciseHandle(s *problem.Set, j *judger.Judger, f *request.Factory) Register {
	return &exerciseHandle{
		exercises: s,
		judger:    j,
		factory:   f,
	}
}

func (e *exerciseHandle) Register(r *gin.Engine) {
	r.GET("/exercises", e.handleList)
	r.GET("/exercises/:id", e.handleGet)
	r.POST("/exercises/:id/submit", e.handleSubmit)
}

func (e *exerciseHandle) handleList(c *gin.Context) {
	var d problem.Difficulty
	if v := c.Query("difficulty"); v != "" {
		if err := d.UnmarshalText([]byte(v)); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
			return
		}
	}
	list := e.exercises.Filter(c.Query("category"), d, c.Query("q"))
	ret := make([]model.ExerciseSummary, 0, len(list))
	for _, ex := range list {
		ret = append(ret, model.NewExerciseSummary(ex))
	}
	c.JSON(http.StatusOK, ret)
}

func (e *exerciseHandle) handleGet(c *gin.Context) {
	ex, ok := e.exercise(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ex)
}

func (e *exerciseHandle) handleSubmit(c *gin.Context) {
	ex, ok := e.exercise(c)
	if !ok {
		return
	}
	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
		return
	}
	lang := req.Language
	if lang == "" {
		lang = ex.Lang()
	}
	j, ok := judgerFor(c, e.judger, e.factory, lang)
	if !ok {
		return
	}

	v, err := j.RunAll(c.Request.Context(), req.Source, ex.TestCases)
	if err != nil {
		abortWithValidation(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewTestResponse(v))
}

func (e *exerciseHandle) exercise(c *gin.Context) (*problem.Exercise, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, "invalid exercise id")
		return nil, false
	}
	ex, ok := e.exercises.Get(id)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, "exercise not found")
		return nil, false
	}
	return ex, true
}
