package interfaces

import (
	"context"

	"go-remote-handlebars/internal/models"
)

//go:generate mockgen -package=mock -source=transport.go -destination=mock/transport.go

// Transport performs a single HTTP exchange. Deadlines are the transport's concern.
type Transport interface {
	Fetch(ctx context.Context, req *models.Request) (*models.Response, error)
}
