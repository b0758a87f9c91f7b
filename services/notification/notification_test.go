package notification

import (
	"errors"
	"testing"

	"courseapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(toEmail, subject, htmlBody string) error {
	f.sent = append(f.sent, sentMail{To: toEmail, Subject: subject, Body: htmlBody})
	return f.err
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.NotificationTemplate{}))
	return db
}

func TestSendRendersPlaceholders(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&models.NotificationTemplate{
		EventName: models.EventCourseEnrolled,
		Subject:   "Welcome to {{course}}",
		Body:      "<p>Hi {{ username }}, you are enrolled in {{course}}.</p>",
	}).Error)

	mailer := &fakeMailer{}
	svc := NewService(db, mailer)

	err := svc.Send(models.EventCourseEnrolled, map[string]string{
		"username": "riya",
		"course":   "Intro to Go",
	}, "riya@example.com")
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "riya@example.com", mailer.sent[0].To)
	assert.Equal(t, "Welcome to Intro to Go", mailer.sent[0].Subject)
	assert.Equal(t, "<p>Hi riya, you are enrolled in Intro to Go.</p>", mailer.sent[0].Body)
}

func TestSendLeavesUnknownTokensInPlace(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&models.NotificationTemplate{
		EventName: models.EventUserRegistered,
		Subject:   "Hello {{username}}",
		Body:      "Your code is {{otp}}",
	}).Error)

	mailer := &fakeMailer{}
	svc := NewService(db, mailer)

	err := svc.Send(models.EventUserRegistered, map[string]string{"username": "riya"}, "riya@example.com")
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Your code is {{otp}}", mailer.sent[0].Body)
}

func TestSendUnknownEvent(t *testing.T) {
	db := testDB(t)
	mailer := &fakeMailer{}
	svc := NewService(db, mailer)

	err := svc.Send("NO_SUCH_EVENT", nil, "riya@example.com")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.Empty(t, mailer.sent)
}

func TestSendPropagatesMailerFailure(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&models.NotificationTemplate{
		EventName: models.EventUserForgotPassword,
		Subject:   "Reset your password",
		Body:      "Code: {{otp}}",
	}).Error)

	mailer := &fakeMailer{err: errors.New("quota exceeded")}
	svc := NewService(db, mailer)

	err := svc.Send(models.EventUserForgotPassword, map[string]string{"otp": "123456"}, "riya@example.com")
	assert.Error(t, err)
	assert.Len(t, mailer.sent, 1)
}
