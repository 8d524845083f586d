package registration

import "context"

// SessionStore guarda los formularios abiertos (un Wizard por sesión).
type SessionStore interface {
	Create(ctx context.Context, s Session) error
	GetByID(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Session, error)
}
