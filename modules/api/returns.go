package api

import (
	"time"

	"github.com/dmitrymomot/storefront/handler"
	"github.com/dmitrymomot/storefront/pkg/file"
	"github.com/dmitrymomot/storefront/svc/orders"
	"github.com/dmitrymomot/storefront/svc/returns"
)

type createReturnRequest struct {
	OrderID     string            `path:"orderID" json:"-"`
	Reason      returns.Reason    `json:"reason" form:"reason"`
	Condition   returns.Condition `json:"condition" form:"condition"`
	Description string            `json:"description" form:"description"`
	Images      []file.Upload     `json:"-" file:"images"`
}

func (a *api) createReturn(ctx handler.Context, req createReturnRequest) handler.Response {
	r, err := a.Returns.Create(ctx, req.OrderID, ctx.UserID(), returns.Details{
		Reason:      req.Reason,
		Condition:   req.Condition,
		Description: req.Description,
		Images:      req.Images,
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.Created(r)
}

func (a *api) listOrderReturns(ctx handler.Context, req orderPath) handler.Response {
	o, err := a.Orders.Get(ctx, req.OrderID)
	if err != nil {
		return handler.Error(err)
	}
	if !ownedBy(o.UserID, ctx.UserID()) {
		return handler.Error(orders.ErrOrderNotFound)
	}

	list, err := a.Returns.ListByOrder(ctx, req.OrderID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(list)
}

type returnPath struct {
	RequestID string `path:"requestID" json:"-"`
}

type pickupRequest struct {
	RequestID  string    `path:"requestID" json:"-"`
	PickupDate time.Time `json:"pickup_date"`
}

func (a *api) schedulePickup(ctx handler.Context, req pickupRequest) handler.Response {
	if err := a.checkReturnOwner(ctx, req.RequestID); err != nil {
		return handler.Error(err)
	}
	r, err := a.Returns.SchedulePickup(ctx, req.RequestID, req.PickupDate)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(r)
}

func (a *api) confirmHandover(ctx handler.Context, req returnPath) handler.Response {
	if err := a.checkReturnOwner(ctx, req.RequestID); err != nil {
		return handler.Error(err)
	}
	r, err := a.Returns.ConfirmHandover(ctx, req.RequestID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(r)
}

func (a *api) checkReturnOwner(ctx handler.Context, id string) error {
	r, err := a.Returns.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ownedBy(r.UserID, ctx.UserID()) {
		return returns.ErrRequestNotFound
	}
	return nil
}

type listReturnsQuery struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

func (a *api) adminListReturns(ctx handler.Context, req listReturnsQuery) handler.Response {
	list, err := a.Returns.List(ctx, returns.Filter{
		Status: returns.Status(req.Status),
		Limit:  clampLimit(req.Limit),
		Offset: max(req.Offset, 0),
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(list, handler.WithJSONMeta(map[string]any{"count": len(list)}))
}

type decisionRequest struct {
	RequestID string           `path:"requestID" json:"-"`
	Decision  returns.Decision `json:"decision"`
	Notes     string           `json:"notes"`
}

func (a *api) adminDecide(ctx handler.Context, req decisionRequest) handler.Response {
	r, err := a.Returns.Decide(ctx, req.RequestID, req.Decision, req.Notes)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(r)
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return 50
	case n > 200:
		return 200
	default:
		return n
	}
}
