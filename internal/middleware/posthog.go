package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Analytics receives product events. *utils.PosthogClientWrapper implements it.
type Analytics interface {
	IsInitialized() bool
	Enqueue(distinctID string, event string, properties map[string]any)
}

const analyticsKey = "analytics"

// Club events emitted by handlers.
const (
	EventDuesChargePosted  = "dues_charge_posted"
	EventDuesPaymentPosted = "dues_payment_posted"
	EventDuesExported      = "dues_roster_exported"
)

var pathsToSkip = map[string]bool{
	"/health":          true,
	"/webhooks/stripe": true,
}

// PosthogMiddleware makes the analytics client available to handlers and
// records one event per successful authenticated API call, tagged with the
// caller's role.
func PosthogMiddleware(client Analytics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !client.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}
		c.Set(analyticsKey, client)
		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		// "/api/v1/players/:playerID/dues" -> "api_v1_players_:playerID_dues"
		eventName := strings.ReplaceAll(strings.TrimPrefix(c.FullPath(), "/"), "/", "_")
		if eventName == "" {
			return
		}
		props := map[string]any{
			"method":      c.Request.Method,
			"status_code": c.Writer.Status(),
		}
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, p := range c.Params {
				params[p.Key] = p.Value
			}
			props["params"] = params
		}
		enqueue(c, client, eventName, props)
	}
}

// TrackEvent sends a club event for the authenticated caller. It is a no-op
// when analytics is disabled or the request is anonymous.
func TrackEvent(c *gin.Context, eventName string, properties map[string]any) {
	v, ok := c.Get(analyticsKey)
	if !ok {
		return
	}
	client, ok := v.(Analytics)
	if !ok {
		return
	}
	if properties == nil {
		properties = make(map[string]any)
	}
	properties["path"] = c.Request.URL.Path
	enqueue(c, client, eventName, properties)
}

func enqueue(c *gin.Context, client Analytics, eventName string, props map[string]any) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		return
	}
	if role, ok := GetRoleFromContext(c); ok {
		props["role"] = string(role)
	}
	client.Enqueue(userID, eventName, props)
}
