package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/docker-version-fetcher/pkg/errors"
	"github.com/user/docker-version-fetcher/pkg/types"
)

// Service coordina el envío de notificaciones a múltiples clientes
type Service struct {
	clients []types.NotificationClient
}

// NewService crea un nuevo servicio de notificaciones
func NewService(clients ...types.NotificationClient) *Service {
	return &Service{
		clients: clients,
	}
}

// AddClient agrega un cliente de notificación al servicio
func (s *Service) AddClient(client types.NotificationClient) {
	s.clients = append(s.clients, client)
}

// HasClients verifica si hay clientes de notificación configurados
func (s *Service) HasClients() bool {
	return len(s.clients) > 0
}

// ClientNames devuelve los nombres de todos los clientes configurados
func (s *Service) ClientNames() []string {
	names := make([]string, len(s.clients))
	for i, client := range s.clients {
		names[i] = client.Name()
	}
	return names
}

// Notify envía una notificación a todos los clientes configurados
func (s *Service) Notify(ctx context.Context, title, message string, priority int) error {
	if len(s.clients) == 0 {
		return nil // No hay clientes configurados, no es un error
	}

	var errs []string
	for _, client := range s.clients {
		if err := client.Send(ctx, title, message, priority); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", client.Name(), err))
		}
	}

	if len(errs) > 0 {
		return errors.Newf("notifier.Notify", "failed to send notifications: %s", strings.Join(errs, "; "))
	}

	return nil
}
