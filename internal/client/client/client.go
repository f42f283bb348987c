package client

import (
	"context"

	"github.com/dmitrijs2005/prodauth/internal/client/models"
)

// Client is the transport contract of the product-authentication API.
// Methods that take an explicit token use it instead of the session token.
type Client interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*models.User, error)
	Refresh(ctx context.Context, token string) (*models.RefreshResponse, error)

	Verify(ctx context.Context, serial string) (*models.VerificationResult, error)
	Stats(ctx context.Context) (*models.ScanStats, error)

	CertificatePDF(ctx context.Context, id int64) ([]byte, error)
}

// Authenticator supplies the session token for outgoing requests and is told
// when the server rejects it with 401.
type Authenticator interface {
	Token() string
	Expire(ctx context.Context, token string)
}

// ResourceAPI is the REST contract of one administrative collection. T is the
// record type, P the create/update payload.
type ResourceAPI[T any, P any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, payload P) (T, error)
	Update(ctx context.Context, id int64, payload P) (T, error)
	Delete(ctx context.Context, id int64) error
}
