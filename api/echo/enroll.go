package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kozihq/kozi/core/course"
	"github.com/kozihq/kozi/core/enroll"
	"github.com/kozihq/kozi/core/user"
)

type enrollmentApi struct {
	svc      *enroll.Service
	userSvc  *user.Service
	validate *validator.Validate
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := enrollmentApi{
		svc:      deps.EnrollSvc,
		userSvc:  deps.UserSvc,
		validate: deps.Validate,
	}

	g.POST("/courses/:id/enroll", api.enroll, jwt)

	eg := g.Group("/enrollments", jwt)
	eg.GET("", api.listMine)
	eg.POST("/:id/progress", api.updateProgress)

	g.GET("/admin/stats", api.stats, jwt, adminMiddleware())
}

// Handlers

func (api *enrollmentApi) enroll(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	enr, err := api.svc.Enroll(ctx.Request().Context(), ctxUsr.ID, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollmentApi) listMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	enrolled, err := api.svc.ListByUser(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrolled == nil {
		enrolled = []enroll.EnrolledCourse{}
	}
	return ctx.JSON(http.StatusOK, enrolled)
}

// updateProgress persists a progress percentage reported by the client and
// replies with the stored enrollment; clients must display the returned value.
// Accepts both JSON and `progress=<integer>` form-urlencoded bodies.
func (api *enrollmentApi) updateProgress(ctx echo.Context) error {
	var data enroll.ProgressUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgressUpdate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	// owner or admin only; hide the enrollment's existence otherwise
	enr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == enroll.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding enrollment by ID")
	}
	if enr.UserID != ctxUsr.ID && !ctxUsr.IsAdmin() {
		return errHttpNotFound
	}

	enr, err = api.svc.SetProgress(ctx.Request().Context(), enr.ID, data.Progress)
	if err != nil {
		return errors.Wrap(err, "updating progress")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "assembling stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
