package api

import (
	"github.com/dmitrymomot/storefront/handler"
	"github.com/dmitrymomot/storefront/svc/orders"
)

type orderPath struct {
	OrderID string `path:"orderID" json:"-"`
}

type orderView struct {
	Order       orders.Order       `json:"order"`
	Eligibility orders.Eligibility `json:"eligibility"`
}

func (a *api) getOrder(ctx handler.Context, req orderPath) handler.Response {
	o, e, err := a.Orders.Eligibility(ctx, req.OrderID)
	if err != nil {
		return handler.Error(err)
	}
	if !ownedBy(o.UserID, ctx.UserID()) {
		return handler.Error(orders.ErrOrderNotFound)
	}
	return handler.JSON(orderView{Order: o, Eligibility: e})
}

func (a *api) placeOrder(ctx handler.Context, req orders.PlaceRequest) handler.Response {
	req.UserID = ctx.UserID()
	o, err := a.Orders.Place(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Created(o)
}

func (a *api) cancelOrder(ctx handler.Context, req orderPath) handler.Response {
	o, err := a.Orders.Cancel(ctx, req.OrderID, ctx.UserID())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(o)
}

type orderStatusRequest struct {
	OrderID string        `path:"orderID" json:"-"`
	Status  orders.Status `json:"status"`
}

func (a *api) adminUpdateOrderStatus(ctx handler.Context, req orderStatusRequest) handler.Response {
	o, err := a.Orders.UpdateStatus(ctx, req.OrderID, req.Status)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(o)
}

// ownedBy treats anonymous callers as trusted upstream; otherwise the caller
// must own the resource.
func ownedBy(owner, caller string) bool {
	return caller == "" || owner == caller
}
