package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/mail"
	"github.com/evpower/recruit-backend/internal/model"
)

type fakeApplicationStore struct {
	existing  map[string]bool
	createErr error
	created   []*model.Application
	users     []*model.AptitudeUser
}

func (f *fakeApplicationStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	return f.existing[strings.ToLower(email)], nil
}

func (f *fakeApplicationStore) CreateWithCandidate(_ context.Context, a *model.Application, u *model.AptitudeUser) error {
	if f.createErr != nil {
		return f.createErr
	}
	a.ID = len(f.created) + 1
	f.created = append(f.created, a)
	f.users = append(f.users, u)
	return nil
}

func (f *fakeApplicationStore) List(_ context.Context, limit, offset int) ([]model.Application, int, error) {
	return nil, 0, nil
}

type fakeMailer struct {
	queued []*mail.Message
	err    error
}

func (f *fakeMailer) Enqueue(_ context.Context, msgs ...*mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.queued = append(f.queued, msgs...)
	return nil
}

type plainHasher struct{}

func (plainHasher) HashPassword(p string) (string, error) { return "hashed:" + p, nil }

func newTestApplicationService(t *testing.T, store *fakeApplicationStore, mailer *fakeMailer) (*ApplicationService, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		UploadDir:           t.TempDir(),
		MaxUploadBytes:      1024,
		AdminEmail:          "hr@example.com",
		ClientBaseURL:       "http://localhost:5173",
		AptitudeInviteDelay: 2 * time.Minute,
	}
	media := NewMediaService(cfg)
	fixed := time.Date(2026, 5, 4, 9, 30, 15, 0, time.UTC)
	media.now = func() time.Time { return fixed }

	svc := NewApplicationService(cfg, store, media, plainHasher{}, mailer, zerolog.Nop())
	svc.now = func() time.Time { return fixed }
	return svc, cfg
}

func validApplication() *model.ApplicationFormInput {
	return &model.ApplicationFormInput{
		FirstName:  " Asha ",
		LastName:   "Rao",
		Address:    "12 MG Road, Pune",
		Mobile:     "9876543210",
		Email:      "asha@example.com ",
		Graduation: "B.Tech",
		CGPA:       "8.4",
		Position:   "Data Analyst",
		Resume:     &model.ResumeFile{Filename: "Asha CV.pdf", Data: []byte("%PDF")},
	}
}

func TestApplicationService_Submit(t *testing.T) {
	store := &fakeApplicationStore{}
	mailer := &fakeMailer{}
	svc, cfg := newTestApplicationService(t, store, mailer)

	ack, err := svc.Submit(context.Background(), validApplication())
	require.NoError(t, err)

	assert.Equal(t, SubmittedMessage, ack.Message)
	assert.Equal(t, model.SavedApplication{
		ID: 1, FirstName: "Asha", LastName: "Rao", Email: "asha@example.com", Position: "Data Analyst",
	}, ack.SavedApplication)

	require.Len(t, store.created, 1)
	app := store.created[0]
	assert.Equal(t, 8.4, app.CGPA)
	assert.Equal(t, filepath.Join(cfg.UploadDir, "20260504_093015_Asha_CV.pdf"), app.ResumePath)
	data, err := os.ReadFile(app.ResumePath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	require.Len(t, store.users, 1)
	password := strings.TrimPrefix(store.users[0].PasswordHash, "hashed:")
	assert.Len(t, password, 8)

	require.Len(t, mailer.queued, 4)
	subjects := []string{}
	for _, m := range mailer.queued {
		subjects = append(subjects, m.Subject)
	}
	assert.Equal(t, []string{
		"Your Application Submitted Successfully",
		"Your Scheduled Aptitude Test Date & Time",
		"New Job Application Submitted",
		"Aptitude Test Invitation",
	}, subjects)
	assert.Contains(t, mailer.queued[1].HTML, password)
	assert.Equal(t, []string{"hr@example.com"}, mailer.queued[2].To)
	assert.Equal(t, app.ResumePath, mailer.queued[2].Attachments[0].Path)
	assert.Equal(t, time.Date(2026, 5, 4, 9, 32, 15, 0, time.UTC), mailer.queued[3].NotBefore)
}

func TestApplicationService_Submit_InvalidForm(t *testing.T) {
	store := &fakeApplicationStore{}
	svc, _ := newTestApplicationService(t, store, &fakeMailer{})

	in := validApplication()
	in.Mobile = "12345"
	in.CGPA = "11"

	_, err := svc.Submit(context.Background(), in)
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Enter a valid 10-digit mobile number", fe["mobile"])
	assert.Equal(t, "CGPA must be between 0 and 10", fe["cgpa"])
	assert.Equal(t, "Enter a valid 10-digit mobile number", err.Error())
	assert.Empty(t, store.created)
}

func TestApplicationService_Submit_UnsupportedResume(t *testing.T) {
	svc, _ := newTestApplicationService(t, &fakeApplicationStore{}, &fakeMailer{})

	in := validApplication()
	in.Resume.Filename = "cv.png"

	_, err := svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestApplicationService_Submit_DuplicateEmail(t *testing.T) {
	store := &fakeApplicationStore{existing: map[string]bool{"asha@example.com": true}}
	svc, cfg := newTestApplicationService(t, store, &fakeMailer{})

	_, err := svc.Submit(context.Background(), validApplication())
	assert.ErrorIs(t, err, ErrEmailRegistered)

	entries, _ := os.ReadDir(cfg.UploadDir)
	assert.Empty(t, entries, "no resume is written for a rejected application")
}

func TestApplicationService_Submit_ConcurrentDuplicateEmail(t *testing.T) {
	// The pre-check passed but the unique index rejected the insert.
	store := &fakeApplicationStore{createErr: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})}
	svc, cfg := newTestApplicationService(t, store, &fakeMailer{})

	_, err := svc.Submit(context.Background(), validApplication())
	assert.ErrorIs(t, err, ErrEmailRegistered)

	entries, _ := os.ReadDir(cfg.UploadDir)
	assert.Empty(t, entries)
}

func TestApplicationService_Submit_StoreFailureRemovesResume(t *testing.T) {
	store := &fakeApplicationStore{createErr: errors.New("db down")}
	svc, cfg := newTestApplicationService(t, store, &fakeMailer{})

	_, err := svc.Submit(context.Background(), validApplication())
	require.Error(t, err)

	entries, _ := os.ReadDir(cfg.UploadDir)
	assert.Empty(t, entries)
}

func TestApplicationService_Submit_MailFailureStillAccepts(t *testing.T) {
	store := &fakeApplicationStore{}
	svc, _ := newTestApplicationService(t, store, &fakeMailer{err: errors.New("redis down")})

	ack, err := svc.Submit(context.Background(), validApplication())
	require.NoError(t, err)
	assert.Equal(t, 1, ack.SavedApplication.ID)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "cv.pdf", sanitizeFilename("../../etc/cv.pdf"))
	assert.Equal(t, "my_cv.docx", sanitizeFilename(`C:\Users\me\my cv.docx`))
	assert.Equal(t, "resume", sanitizeFilename(".."))
}
