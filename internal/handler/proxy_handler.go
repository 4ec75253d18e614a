package handler

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jutt16/right2thrive-sub001/internal/guard"
	"github.com/jutt16/right2thrive-sub001/internal/handler/middleware"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
)

// ProxyHandler relays page-script calls to the backend from the same origin,
// attaching the session's bearer token on the way.
type ProxyHandler struct {
	responder
	client *apiclient.Client
}

func NewProxyHandler(client *apiclient.Client, g *guard.Guard, log logging.Logger) *ProxyHandler {
	return &ProxyHandler{
		responder: responder{guard: g, log: log},
		client:    client,
	}
}

// Spends and awards go through their confirmation flows, never the relay.
var flowOnly = []struct {
	pattern  *regexp.Regexp
	location string
}{
	{regexp.MustCompile(`^/api/thrive-tokens/rewards/[^/]+/redeem(/.*)?$`), "/rewards"},
	{regexp.MustCompile(`^/api/thrive-tokens/reflections(/.*)?$`), "/reflection"},
}

// relayPath resolves the wildcard to a clean backend path under /api/.
func relayPath(wildcard string) (string, bool) {
	raw, err := url.PathUnescape(wildcard)
	if err != nil {
		return "", false
	}
	cleaned := path.Clean("/api/" + strings.TrimLeft(raw, "/"))
	if !strings.HasPrefix(cleaned, "/api/") {
		return "", false
	}
	return cleaned, true
}

// flowLocation returns where a write to apiPath has to be made instead, or ""
// when the relay may carry it.
func flowLocation(method, apiPath string) string {
	switch method {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return ""
	}
	lower := strings.ToLower(apiPath)
	for _, f := range flowOnly {
		if f.pattern.MatchString(lower) {
			return f.location
		}
	}
	return ""
}

// Forward relays the request
// ALL /proxy/api/*
func (h *ProxyHandler) Forward(c *fiber.Ctx) error {
	apiPath, ok := relayPath(c.Params("*"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid path",
		})
	}

	if location := flowLocation(c.Method(), apiPath); location != "" {
		h.log.Warn(c.UserContext(), "relay refused flow endpoint", "method", c.Method(), "path", apiPath)
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":    "flow_required",
			"message":  "This action needs to be confirmed first.",
			"redirect": location,
		})
	}

	resp, err := h.client.Forward(c.UserContext(), apiclient.RawRequest{
		Method:      c.Method(),
		Path:        (&url.URL{Path: apiPath}).EscapedPath(),
		RawQuery:    string(c.Request().URI().QueryString()),
		Body:        c.Body(),
		ContentType: c.Get(fiber.HeaderContentType),
		Token:       middleware.CurrentSession(c).Token,
	})
	if err != nil {
		return h.fail(c, err, "We couldn't reach the server. Please try again.")
	}

	if resp.IsAuthExpired() {
		return middleware.Deny(c, h.guard.Expire(c.UserContext(), middleware.SessionID(c)))
	}

	if resp.ContentType != "" {
		c.Set(fiber.HeaderContentType, resp.ContentType)
	}
	return c.Status(resp.Status).Send(resp.Body)
}
