package api

import (
	"github.com/dmitrymomot/storefront/handler"
	"github.com/dmitrymomot/storefront/svc/settings"
)

func (a *api) getSettings(ctx handler.Context, _ struct{}) handler.Response {
	s, err := a.Settings.Snapshot(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(s)
}

func (a *api) updateSettings(ctx handler.Context, req settings.UpdateRequest) handler.Response {
	req.UpdatedBy = ctx.UserID()
	s, err := a.Settings.Update(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(s)
}
