package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/user/docker-version-fetcher/pkg/errors"
)

// GotifyClient implementa NotificationClient para enviar notificaciones a un
// servidor Gotify
type GotifyClient struct {
	serverURL string
	token     string
	client    *http.Client
}

// NewGotifyClient crea un nuevo cliente de Gotify
func NewGotifyClient(serverURL, token string, timeout time.Duration) *GotifyClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GotifyClient{
		serverURL: strings.TrimRight(serverURL, "/"),
		token:     token,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name devuelve el nombre del cliente de notificación
func (g *GotifyClient) Name() string {
	return "gotify"
}

// Send envía una notificación al servidor Gotify. El fallo de entrega se
// reporta al llamador pero nunca se reintenta aquí: el driver periódico es
// el único mecanismo de reintento.
func (g *GotifyClient) Send(ctx context.Context, title, message string, priority int) error {
	if g.serverURL == "" {
		return errors.New("gotify.Send", "server URL is required")
	}
	if g.token == "" {
		return errors.New("gotify.Send", "application token is required")
	}

	payload := map[string]interface{}{
		"title":    title,
		"message":  message,
		"priority": priority,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap("gotify.Send", err)
	}

	url := g.serverURL + "/message"

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return errors.Wrap("gotify.Send", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Gotify-Key", g.token)

	resp, err := g.client.Do(req)
	if err != nil {
		return errors.Wrapf("gotify.Send", errors.ErrNotificationFailed, "%v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap("gotify.Send", err)
	}

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("gotify.Send", "gotify API error: %s (status: %d)",
			strings.TrimSpace(string(body)), resp.StatusCode)
	}

	return nil
}

// healthURL construye la URL del endpoint de salud del servidor
func (g *GotifyClient) healthURL() string {
	return g.serverURL + "/health"
}

// CheckHealth verifica la conectividad con el servidor Gotify
func (g *GotifyClient) CheckHealth(ctx context.Context) error {
	if g.serverURL == "" {
		return errors.New("gotify.CheckHealth", "server URL is required")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", g.healthURL(), nil)
	if err != nil {
		return errors.Wrap("gotify.CheckHealth", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return errors.Wrapf("gotify.CheckHealth", errors.ErrNetworkError, "%v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf("gotify.CheckHealth", "unexpected status %d from %s", resp.StatusCode, g.healthURL())
	}

	return nil
}
