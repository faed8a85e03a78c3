package restexecutor

import (
	"errors"
	"net/http"

	"github.com/codepractice/remote-judge/client"
	"github.com/codepractice/remote-judge/cmd/remote-judge/model"
	"github.com/codepractice/remote-judge/judger"
	"github.com/codepractice/remote-judge/request"
	"github.com/codepractice/remote-judge/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type cmdHandle struct {
	judger  *judger.Judger
	factory *request.Factory
	logger  *zap.Logger
}

// NewCmdHandle creates a new command handle
func NewCmdHandle(j *judger.Judger, f *request.Factory, logger *zap.Logger) Register {
	return &cmdHandle{
		judger:  j,
		factory: f,
		logger:  logger,
	}
}

func (c *cmdHandle) Register(r *gin.Engine) {
	// Run handle
	r.POST("/run", c.handleRun)
	// Test handle
	r.POST("/test", c.handleTest)
}

func (c *cmdHandle) handleRun(ctx *gin.Context) {
	var req model.RunRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
		return
	}
	j, ok := judgerFor(ctx, c.judger, c.factory, req.Language)
	if !ok {
		return
	}

	o, err := j.Execute(ctx.Request.Context(), req.Source, req.Stdin)
	if err != nil {
		abortWithValidation(ctx, err)
		return
	}
	c.logger.Sugar().Debugf("run: %+v", o)
	ctx.JSON(http.StatusOK, model.RunResponse{
		Output:  o.Message(),
		Outcome: o,
	})
}

func (c *cmdHandle) handleTest(ctx *gin.Context) {
	var req model.TestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
		return
	}
	if len(req.TestCases) == 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, "no test cases provided")
		return
	}
	j, ok := judgerFor(ctx, c.judger, c.factory, req.Language)
	if !ok {
		return
	}

	v, err := j.RunAll(ctx.Request.Context(), req.Source, req.TestCases)
	if err != nil {
		abortWithValidation(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, model.NewTestResponse(v))
}

// judgerFor returns the judger for the requested language, the default
// judger is used when no language is given
func judgerFor(ctx *gin.Context, j *judger.Judger, f *request.Factory, lang types.Language) (*judger.Judger, bool) {
	if lang == "" {
		return j, true
	}
	b, err := f.Builder(lang)
	if err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
		return nil, false
	}
	return j.WithBuilder(b), true
}

func abortWithValidation(ctx *gin.Context, err error) {
	ctx.Error(err)
	if errors.Is(err, types.ErrEmptyProgram) {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, client.EmptyProgramMessage)
		return
	}
	ctx.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
}
