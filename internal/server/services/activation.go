package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/carmeet/internal/common"
	"github.com/dmitrijs2005/carmeet/internal/dbx"
	"github.com/dmitrijs2005/carmeet/internal/logging"
	"github.com/dmitrijs2005/carmeet/internal/server/config"
	"github.com/dmitrijs2005/carmeet/internal/server/mailer"
	"github.com/dmitrijs2005/carmeet/internal/server/models"
	"github.com/dmitrijs2005/carmeet/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/carmeet/internal/timex"
	"github.com/google/uuid"
)

const activationSubject = "Activate your carmeet account"

// ActivationService sends activation links to new users and activates their
// accounts when a link is followed.
type ActivationService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	tokens        *TokenHelper[uuid.UUID]
	mailer        mailer.Mailer
	clock         timex.Clock
	sender        string
	activationURL string
	logger        logging.Logger
}

func NewActivationService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	tokens *TokenHelper[uuid.UUID],
	mail mailer.Mailer,
	clock timex.Clock,
	cfg *config.Config,
	logger logging.Logger,
) *ActivationService {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	return &ActivationService{
		db:            db,
		repomanager:   m,
		tokens:        tokens,
		mailer:        mail,
		clock:         clock,
		sender:        cfg.MailSender,
		activationURL: cfg.ActivationURL,
		logger:        logger.With("module", "activation"),
	}
}

// RequestActivation issues an activation token for an inactive user and
// mails the link. With reset, pending requests are dropped first so the
// throttle does not apply. Delivery failures are logged, not returned.
func (s *ActivationService) RequestActivation(ctx context.Context, userID uuid.UUID, reset bool) (*models.Token, error) {
	user, err := s.repomanager.Users(s.db).Find(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	if user.Active {
		return nil, common.ErrUserAlreadyActive
	}

	if reset {
		if err := s.tokens.RemoveUserTokenRequests(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	token, err := s.tokens.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	msg := mailer.Message{
		From:    s.sender,
		To:      user.Email,
		Subject: activationSubject,
		Headers: map[string]string{common.TokenHeaderName: token.PublicToken},
		Body:    s.activationBody(user, token),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn(ctx, "activation mail not delivered", "user", user.ID, "error", err)
	}

	return token, nil
}

// Activate consumes an activation token. The user is marked active and all
// of their token requests are removed in one transaction.
func (s *ActivationService) Activate(ctx context.Context, fullToken string) (*models.User, error) {
	userID, err := s.tokens.ValidateTokenAndFetchUser(ctx, fullToken)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		u, err := users.Find(ctx, userID)
		if err != nil {
			return fmt.Errorf("error searching user: %w", err)
		}
		if u.Active {
			return common.ErrUserAlreadyActive
		}

		now := s.clock.Now()
		if err := users.Activate(ctx, u.ID, now); err != nil {
			return err
		}
		if err := s.repomanager.TokenRequests(tx).RemoveTokenRequest(ctx, u.ID); err != nil {
			return fmt.Errorf("error removing token requests: %w", err)
		}

		u.Active = true
		u.ActivatedAt = &now
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user activated", "user", user.ID)
	return user, nil
}

func (s *ActivationService) activationBody(user *models.User, token *models.Token) string {
	link := strings.ReplaceAll(s.activationURL, "%s", token.PublicToken)
	return fmt.Sprintf("Hello %s,\n\nfollow the link below to activate your account:\n\n%s\n\nThe link expires at %s.\n",
		user.UserName, link, token.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"))
}
