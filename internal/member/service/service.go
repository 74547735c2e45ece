// Package service implements the membership core: registration, the
// approval lifecycle, interest management and admin queries.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	accountmodels "culturecrm/internal/account/models"
	accountservice "culturecrm/internal/account/service"
	activitymodels "culturecrm/internal/activity/models"
	interestmodels "culturecrm/internal/interest/models"
	"culturecrm/internal/member/metrics"
	"culturecrm/internal/member/models"
	txcontext "culturecrm/pkg/platform/tx"

	id "culturecrm/pkg/domain"
)

type MemberStore interface {
	Create(ctx context.Context, member *models.Member) error
	FindByID(ctx context.Context, memberID id.MemberID) (*models.Member, error)
	FindByAccount(ctx context.Context, accountID id.AccountID) (*models.Member, error)
	Execute(ctx context.Context, memberID id.MemberID,
		validate func(*models.Member) error, mutate func(*models.Member)) (*models.Member, error)
	AddInterest(ctx context.Context, memberID id.MemberID, name interestmodels.Name) (bool, error)
	RemoveInterest(ctx context.Context, memberID id.MemberID, name interestmodels.Name) (bool, error)
	Search(ctx context.Context, query models.SearchQuery) ([]*models.Member, error)
}

type HistoryStore interface {
	Append(ctx context.Context, entry models.InterestHistoryEntry) error
	ListByMember(ctx context.Context, memberID id.MemberID) ([]models.InterestHistoryEntry, error)
}

// InterestCatalog is the fixed interest catalog. The enum already bounds the
// value space; the catalog lookup keeps the service honest against the rows
// actually seeded.
type InterestCatalog interface {
	FindByName(ctx context.Context, name interestmodels.Name) (*interestmodels.Interest, error)
	List(ctx context.Context) ([]*interestmodels.Interest, error)
}

// AccountDirectory is the slice of the account service the membership core
// consumes.
type AccountDirectory interface {
	Create(ctx context.Context, params accountservice.CreateParams) (*accountmodels.Account, error)
	FindByID(ctx context.Context, accountID id.AccountID) (*accountmodels.Account, error)
	UpdateProfile(ctx context.Context, accountID id.AccountID, params accountservice.UpdateProfileParams) (*accountmodels.Account, error)
}

// ActivityRecorder appends to the audit trail. A failed audit write fails the
// operation that triggered it.
type ActivityRecorder interface {
	Record(ctx context.Context, entry activitymodels.Entry) error
}

// Service orchestrates membership operations.
type Service struct {
	members  MemberStore
	history  HistoryStore
	catalog  InterestCatalog
	accounts AccountDirectory
	activity ActivityRecorder
	txRunner txcontext.Runner
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTxRunner sets the unit-of-work boundary for multi-store writes.
// Database deployments pass the pgx runner; the default is no boundary.
func WithTxRunner(runner txcontext.Runner) Option {
	return func(s *Service) { s.txRunner = runner }
}

// New constructs a Service.
func New(members MemberStore, history HistoryStore, catalog InterestCatalog,
	accounts AccountDirectory, activity ActivityRecorder, opts ...Option) *Service {
	s := &Service{
		members:  members,
		history:  history,
		catalog:  catalog,
		accounts: accounts,
		activity: activity,
		txRunner: txcontext.NopRunner(),
		tracer:   otel.Tracer("culturecrm/member"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) log(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, msg, args...)
	}
}
