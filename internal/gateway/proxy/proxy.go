package proxy

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Proxy Handler
// ============================================================

// forwardHeaders: заголовки запроса, которые передаются сервисам.
var forwardHeaders = []string{
	fiber.HeaderContentType,
	fiber.HeaderAuthorization,
	fiber.HeaderAccept,
	fiber.HeaderOrigin,
	fiber.HeaderAccessControlRequestMethod,
	fiber.HeaderAccessControlRequestHeaders,
	"X-Source",
	"X-Restaurant-ID",
	"X-Client-Info",
	"Apikey",
}

// hopHeaders не копируются из ответа сервиса.
var hopHeaders = map[string]bool{
	"Connection":        true,
	"Content-Length":    true,
	"Keep-Alive":        true,
	"Transfer-Encoding": true,
}

type Proxy struct {
	client *http.Client
	log    *zap.Logger
}

func New(timeout time.Duration, log *zap.Logger) *Proxy {
	return &Proxy{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Mount проксирует всё под prefix на targetURL, отрезая prefix от пути.
func (p *Proxy) Mount(prefix, targetURL string) fiber.Handler {
	target := strings.TrimRight(targetURL, "/")
	return func(c fiber.Ctx) error {
		path := strings.TrimPrefix(c.Path(), prefix)
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		url := target + path
		if qs := string(c.Request().URI().QueryString()); qs != "" {
			url += "?" + qs
		}
		return p.Forward(c, url)
	}
}

// Forward проксирует запрос по переданному URL.
func (p *Proxy) Forward(c fiber.Ctx, targetURL string) error {
	p.log.Debug("proxy request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("content_length", len(c.Body())),
		zap.String("target", targetURL),
	)

	req, err := http.NewRequestWithContext(c.Context(), c.Method(), targetURL, bytes.NewReader(c.Body()))
	if err != nil {
		p.log.Error("proxy build request failed", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "proxy failed"})
	}

	for _, h := range forwardHeaders {
		if v := c.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn("upstream unreachable", zap.String("target", targetURL), zap.Error(err))
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach upstream service"})
	}
	defer resp.Body.Close()

	return p.copyResponse(c, resp)
}

func (p *Proxy) copyResponse(c fiber.Ctx, resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		p.log.Warn("upstream response read failed", zap.Error(err))
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "invalid upstream response"})
	}

	for key, values := range resp.Header {
		if len(values) > 0 && !hopHeaders[key] {
			c.Set(key, values[0])
		}
	}

	c.Status(resp.StatusCode)
	return c.Send(data)
}
