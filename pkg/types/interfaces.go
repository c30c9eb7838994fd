package types

import "context"

// RegistryClient define la interfaz para consultar un registro de imágenes.
// Las implementaciones se seleccionan en la construcción, nunca por reemplazo
// de comportamiento en tiempo de ejecución.
type RegistryClient interface {
	// RepositoryExists verifica si un repositorio existe en el registro
	RepositoryExists(ctx context.Context, repository string) (bool, error)

	// ListTags obtiene los tags publicados con sus digests por plataforma
	ListTags(ctx context.Context, repository string) ([]TagRecord, error)

	// Name devuelve el nombre del registro
	Name() string
}

// InventorySource define la interfaz para listar las imágenes locales en uso
type InventorySource interface {
	// ListRunning devuelve una referencia por cada contenedor en ejecución
	ListRunning(ctx context.Context) ([]LocalImageRef, error)
}

// NotificationClient define la interfaz para clientes de notificación
type NotificationClient interface {
	// Send envía una notificación con título, mensaje y prioridad
	Send(ctx context.Context, title, message string, priority int) error

	// Name devuelve el nombre del cliente de notificación
	Name() string
}
