package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/form"
	"github.com/evpower/recruit-backend/internal/mail"
	"github.com/evpower/recruit-backend/internal/model"
)

// ErrEmailRegistered is returned when an application already exists for the email.
var ErrEmailRegistered = errors.New("email already registered")

// SubmittedMessage acknowledges an accepted application.
const SubmittedMessage = "Application submitted successfully. Emails are being sent."

// FieldErrors carries the failing form fields of a rejected application.
type FieldErrors form.Errors

// Error returns the message of the first failing field in form order.
func (e FieldErrors) Error() string {
	for _, f := range form.Fields {
		if msg := e[f]; msg != "" {
			return msg
		}
	}
	return "invalid application form"
}

// ApplicationStore persists applications and candidate logins.
type ApplicationStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateWithCandidate(ctx context.Context, a *model.Application, u *model.AptitudeUser) error
	List(ctx context.Context, limit, offset int) ([]model.Application, int, error)
}

// MailEnqueuer hands messages to the mail worker.
type MailEnqueuer interface {
	Enqueue(ctx context.Context, msgs ...*mail.Message) error
}

// PasswordHasher hashes candidate passwords.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// ApplicationService accepts job applications and issues aptitude credentials.
type ApplicationService struct {
	cfg    *config.Config
	apps   ApplicationStore
	media  *MediaService
	hasher PasswordHasher
	mailer MailEnqueuer
	log    zerolog.Logger
	now    func() time.Time
}

// NewApplicationService creates a new ApplicationService.
func NewApplicationService(
	cfg *config.Config,
	apps ApplicationStore,
	media *MediaService,
	hasher PasswordHasher,
	mailer MailEnqueuer,
	log zerolog.Logger,
) *ApplicationService {
	return &ApplicationService{
		cfg:    cfg,
		apps:   apps,
		media:  media,
		hasher: hasher,
		mailer: mailer,
		log:    log.With().Str("component", "application_service").Logger(),
		now:    time.Now,
	}
}

// Submit validates and stores an application, creates the candidate login
// and queues the notification e-mails.
func (s *ApplicationService) Submit(ctx context.Context, in *model.ApplicationFormInput) (*model.ApplicationAck, error) {
	if ok, errs := form.ValidateForm(*in); !ok {
		failed := make(FieldErrors)
		for f, msg := range errs {
			if msg != "" {
				failed[f] = msg
			}
		}
		return nil, failed
	}
	if err := s.media.CheckResume(in.Resume); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(in.Email)
	exists, err := s.apps.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailRegistered
	}

	cgpa, _ := form.ParseCGPA(in.CGPA)
	resumePath, err := s.media.SaveResume(in.Resume)
	if err != nil {
		return nil, fmt.Errorf("save resume: %w", err)
	}

	password, err := GenerateTempPassword()
	if err != nil {
		_ = s.media.RemoveResume(resumePath)
		return nil, err
	}
	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		_ = s.media.RemoveResume(resumePath)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	app := &model.Application{
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Address:    strings.TrimSpace(in.Address),
		Mobile:     strings.TrimSpace(in.Mobile),
		Email:      email,
		Graduation: strings.TrimSpace(in.Graduation),
		CGPA:       cgpa,
		Position:   in.Position,
		ResumePath: resumePath,
	}
	user := &model.AptitudeUser{Email: email, PasswordHash: hash}

	if err := s.apps.CreateWithCandidate(ctx, app, user); err != nil {
		_ = s.media.RemoveResume(resumePath)
		// A concurrent submission for the same email won the insert.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailRegistered
		}
		return nil, fmt.Errorf("store application: %w", err)
	}

	s.log.Info().Int("application_id", app.ID).Str("position", app.Position).Msg("Application stored")

	// Mail delivery is best effort; the application is already stored.
	if err := s.queueMails(ctx, app, in.Resume.Filename, password); err != nil {
		s.log.Error().Err(err).Int("application_id", app.ID).Msg("Failed to queue application mails")
	}

	return &model.ApplicationAck{
		Message: SubmittedMessage,
		SavedApplication: model.SavedApplication{
			ID:        app.ID,
			FirstName: app.FirstName,
			LastName:  app.LastName,
			Email:     app.Email,
			Position:  app.Position,
		},
	}, nil
}

func (s *ApplicationService) queueMails(ctx context.Context, app *model.Application, resumeName, password string) error {
	now := s.now()

	scheduled, err := mail.ScheduledTest(app.Email, app.FirstName, password, mail.ScheduledTestDate(now))
	if err != nil {
		return err
	}
	invite, err := mail.Invitation(app.Email, app.FirstName, password, s.cfg.ClientBaseURL, now.Add(s.cfg.AptitudeInviteDelay))
	if err != nil {
		return err
	}

	msgs := []*mail.Message{mail.Confirmation(app.Email, app.FirstName), scheduled}
	if s.cfg.AdminEmail != "" {
		msgs = append(msgs, mail.AdminNotice(s.cfg.AdminEmail, app.FirstName, app.LastName, app.Email, app.Mobile,
			mail.Attachment{Filename: resumeName, Path: app.ResumePath}))
	}
	msgs = append(msgs, invite)

	return s.mailer.Enqueue(ctx, msgs...)
}

// List returns stored applications newest first.
func (s *ApplicationService) List(ctx context.Context, page, perPage int) ([]model.Application, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	return s.apps.List(ctx, perPage, (page-1)*perPage)
}
