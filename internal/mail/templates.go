package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// ScheduleLayout formats the aptitude test date in candidate e-mails.
const ScheduleLayout = "02 January 2006 at 03:04 PM"

var (
	scheduledTmpl = template.Must(template.New("scheduled").Parse(`
<p>Hi {{.FirstName}},</p>
<p>Your aptitude test is scheduled for <strong>{{.Date}}</strong>.</p>
<p>Please login using the following credentials:</p>
<ul>
    <li><strong>Username:</strong> {{.Email}}</li>
    <li><strong>Password:</strong> {{.Password}}</li>
</ul>
<p>Best of luck!</p>
`))

	invitationTmpl = template.Must(template.New("invitation").Parse(`
<p>Hi {{.FirstName}},</p>
<p>You're invited to take the aptitude test.</p>
<p><strong>Login Credentials:</strong></p>
<ul>
    <li><strong>Login ID:</strong> {{.Email}}</li>
    <li><strong>Password:</strong> {{.Password}}</li>
</ul>
<p>Click the button below to start the test:</p>
<a href="{{.Link}}" target="_blank" style="padding: 10px 20px; background-color: #007BFF; color: white; text-decoration: none; border-radius: 5px;">Start Test</a>
<p>Best of luck!</p>
`))
)

type credentialsData struct {
	FirstName string
	Email     string
	Password  string
	Date      string
	Link      string
}

// ScheduledTestDate returns 11:00 two days after now, in now's location.
func ScheduledTestDate(now time.Time) time.Time {
	d := now.AddDate(0, 0, 2)
	return time.Date(d.Year(), d.Month(), d.Day(), 11, 0, 0, 0, d.Location())
}

// Confirmation acknowledges a received application.
func Confirmation(to, firstName string) *Message {
	return &Message{
		To:      []string{to},
		Subject: "Your Application Submitted Successfully",
		Text:    fmt.Sprintf("Hi %s,\n\nThank you for applying. We have received your application.\n\nRegards,\nTeam", firstName),
	}
}

// ScheduledTest tells the candidate when to sit the test and how to log in.
func ScheduledTest(to, firstName, password string, at time.Time) (*Message, error) {
	html, err := render(scheduledTmpl, credentialsData{
		FirstName: firstName,
		Email:     to,
		Password:  password,
		Date:      at.Format(ScheduleLayout),
	})
	if err != nil {
		return nil, err
	}
	return &Message{
		To:      []string{to},
		Subject: "Your Scheduled Aptitude Test Date & Time",
		HTML:    html,
	}, nil
}

// Invitation links the candidate to the test. Delivery waits until notBefore.
func Invitation(to, firstName, password, link string, notBefore time.Time) (*Message, error) {
	html, err := render(invitationTmpl, credentialsData{
		FirstName: firstName,
		Email:     to,
		Password:  password,
		Link:      link,
	})
	if err != nil {
		return nil, err
	}
	return &Message{
		To:        []string{to},
		Subject:   "Aptitude Test Invitation",
		HTML:      html,
		NotBefore: notBefore,
	}, nil
}

// AdminNotice tells the hiring admin about a new applicant, resume attached.
func AdminNotice(to, firstName, lastName, email, mobile string, resume Attachment) *Message {
	return &Message{
		To:          []string{to},
		Subject:     "New Job Application Submitted",
		Text:        fmt.Sprintf("New applicant:\n\nName: %s %s\nEmail: %s\nMobile: %s", firstName, lastName, email, mobile),
		Attachments: []Attachment{resume},
	}
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
