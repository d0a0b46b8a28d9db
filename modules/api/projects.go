package api

import (
	"github.com/dmitrymomot/storefront/handler"
	"github.com/dmitrymomot/storefront/svc/projects"
)

func (a *api) submitProject(ctx handler.Context, req projects.SubmitRequest) handler.Response {
	r, err := a.Projects.Submit(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Created(r)
}

type pageQuery struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (a *api) adminListProjects(ctx handler.Context, req pageQuery) handler.Response {
	list, err := a.Projects.List(ctx, clampLimit(req.Limit), max(req.Offset, 0))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(list)
}
