package chi

import (
	"context"

	domast "github.com/kailas-cloud/estatedash/internal/domain/assistant"
	"github.com/kailas-cloud/estatedash/internal/domain/listing"
	"github.com/kailas-cloud/estatedash/internal/domain/submission"
	"github.com/kailas-cloud/estatedash/internal/domain/user"
	dashboarduc "github.com/kailas-cloud/estatedash/internal/usecase/dashboard"
	healthuc "github.com/kailas-cloud/estatedash/internal/usecase/health"
	"github.com/kailas-cloud/estatedash/internal/usecase/session"
)

// Accounts authenticates and registers users.
type Accounts interface {
	Login(ctx context.Context, email, password string) (user.User, error)
	Register(ctx context.Context, email, firstName, password string) (user.User, error)
}

// Sessions is the per-login session registry.
type Sessions interface {
	Create(userID, firstName string) *session.Session
	Get(id string) (*session.Session, error)
	Delete(id string)
}

// Dashboard renders listings for a session.
type Dashboard interface {
	View(ctx context.Context, sess *session.Session, q dashboarduc.Query) (dashboarduc.View, error)
	Refresh(sess *session.Session)
	Property(ctx context.Context, sess *session.Session, propertyID string) (listing.Detail, error)
	Image(ctx context.Context, sess *session.Session, propertyID string, index int) ([]byte, error)
	Preferences(ctx context.Context, sess *session.Session) (*submission.Submission, error)
}

// Assistant answers questions and drafts enquiries about a property.
type Assistant interface {
	Chat(ctx context.Context, sess *session.Session, propertyID string, history []domast.Message, message string) (string, error)
	Draft(ctx context.Context, sess *session.Session, propertyID, intent string) (string, error)
	Greeting(ctx context.Context, sess *session.Session, propertyID string) (string, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
