package api

import (
	"log/slog"

	"github.com/dmitrymomot/storefront/handler"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/notifications"
)

type wallQuery struct {
	Unread bool `query:"unread"`
	Limit  int  `query:"limit"`
	Offset int  `query:"offset"`
}

func (a *api) listWall(ctx handler.Context, req wallQuery) handler.Response {
	userID := ctx.UserID()
	items, err := a.Wall.List(ctx, userID, notifications.ListOptions{
		Limit:      clampLimit(req.Limit),
		Offset:     max(req.Offset, 0),
		OnlyUnread: req.Unread,
	})
	if err != nil {
		return handler.Error(err)
	}
	unread, err := a.Wall.CountUnread(ctx, userID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(items, handler.WithJSONMeta(map[string]any{"unread": unread}))
}

type markReadRequest struct {
	IDs []string `json:"ids"`
}

// markWallRead marks the listed notifications read, or all of them when ids is empty.
func (a *api) markWallRead(ctx handler.Context, req markReadRequest) handler.Response {
	if err := a.Wall.MarkRead(ctx, ctx.UserID(), req.IDs...); err != nil {
		return handler.Error(err)
	}
	return handler.NoContent()
}

func (a *api) streamWall(ctx handler.Context, _ struct{}) handler.Response {
	userID := ctx.UserID()
	updates := a.Hub.Subscribe(ctx, userID)

	return handler.SSE(func(stream handler.EventStream) error {
		for {
			select {
			case <-stream.Done():
				return nil
			case n, ok := <-updates:
				if !ok {
					return nil
				}
				if err := stream.Send("notification", n); err != nil {
					a.logger.LogAttrs(ctx, slog.LevelDebug, "wall stream closed",
						logger.UserID(userID),
						logger.Error(err),
					)
					return err
				}
			}
		}
	}, a.heartbeat)
}
