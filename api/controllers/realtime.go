package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-orders/api/responses"
	"github.com/angelmondragon/storefront-orders/internal/realtime"
	pkgerrors "github.com/angelmondragon/storefront-orders/pkg/errors"
	"github.com/angelmondragon/storefront-orders/pkg/logger"
)

type channelServer interface {
	Serve(w http.ResponseWriter, r *http.Request, channel string) error
}

// OrderStream upgrades to a websocket carrying the events of one order. It is
// public like the status endpoint; frames on the order channel carry only the
// status view.
func OrderStream(hub channelServer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "orderId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}
		serveChannel(w, r, hub, realtime.OrderChannel(orderID), logg)
	}
}

// AdminStream upgrades to a websocket carrying every order event.
func AdminStream(hub channelServer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serveChannel(w, r, hub, realtime.AdminChannel, logg)
	}
}

func serveChannel(w http.ResponseWriter, r *http.Request, hub channelServer, channel string, logg *logger.Logger) {
	ctx := logg.WithField(r.Context(), "channel", channel)
	// Upgrade failures have already been answered by the upgrader.
	if err := hub.Serve(w, r, channel); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "websocket upgrade failed")
	}
}
